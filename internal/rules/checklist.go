package rules

// ClauseCheck says how to recognise a clause and what to tell the author when
// it is missing.
type ClauseCheck struct {
	Keywords    []string
	Description string
	Suggestion  string
}

// Only some clause ids are covered. A required clause without an entry here
// is never verified (see CheckStructure).
var checklist = map[ClauseID]ClauseCheck{
	ClauseParties: {
		Keywords:    []string{"party", "parties", "between", "by and between"},
		Description: "Document must clearly identify all parties",
		Suggestion:  "Add: 'This Agreement is entered into between [Party A] and [Party B]'",
	},
	ClauseEffectiveDate: {
		Keywords:    []string{"date", "dated", "as of", "entered into as of"},
		Description: "Document must have an effective date",
		Suggestion:  "Add effective date: 'as of [Date]'",
	},
	ClauseGoverningLaw: {
		Keywords:    []string{"governing law", "governed by", "laws of", "jurisdiction"},
		Description: "Document must specify governing law",
		Suggestion:  "Add: 'This Agreement shall be governed by the laws of [Jurisdiction]'",
	},
	ClauseSignatures: {
		Keywords:    []string{"signature", "signed", "executed"},
		Description: "Document must have signature provisions",
		Suggestion:  "Add signature section for all parties",
	},
	ClauseEquityDistribution: {
		Keywords:    []string{"equity", "shares", "ownership", "stock"},
		Description: "Founder agreement must define equity split",
		Suggestion:  "Add: 'Equity shall be distributed as follows: [details]'",
	},
	ClauseVestingSchedule: {
		Keywords:    []string{"vesting", "vest", "cliff"},
		Description: "Founder agreement must include vesting terms",
		Suggestion:  "Add: 'Equity shall vest over [period] with [cliff]'",
	},
	ClauseIntellectualProp: {
		Keywords:    []string{"intellectual property", "ip", "patents", "copyright"},
		Description: "Document should address IP ownership",
		Suggestion:  "Add: 'All intellectual property shall belong to [Party]'",
	},
	ClauseCompensation: {
		Keywords:    []string{"compensation", "salary", "payment"},
		Description: "Employment agreement must specify compensation",
		Suggestion:  "Add: 'Employee shall receive [amount] per [period]'",
	},
	ClauseInvestmentAmount: {
		Keywords:    []string{"purchase amount", "investment", "inr", "rs"},
		Description: "SAFE must specify investment amount",
		Suggestion:  "Add: 'Purchase Amount: INR [amount]'",
	},
	ClauseValuationCap: {
		Keywords:    []string{"valuation cap", "cap"},
		Description: "SAFE should include valuation cap",
		Suggestion:  "Add: 'Valuation Cap: INR [amount]'",
	},
}

// CheckFor returns the checklist entry for id, if the clause is covered.
func CheckFor(id ClauseID) (ClauseCheck, bool) {
	c, ok := checklist[id]
	if !ok {
		return ClauseCheck{}, false
	}
	c.Keywords = append([]string(nil), c.Keywords...)
	return c, true
}
