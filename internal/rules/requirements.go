// Package rules holds the flaw detectors and the aggregator that turns their
// output into a single ranked report. Every table in this package is built
// once and never mutated, so detectors can run concurrently without locks.
package rules

import "github.com/codewithboateng/lexcheck/internal/ir"

// ClauseID names a category of legal content a document may be required to carry.
type ClauseID string

const (
	ClauseParties            ClauseID = "parties_identification"
	ClauseConfidentialDef    ClauseID = "confidential_information_definition"
	ClauseObligations        ClauseID = "obligations"
	ClauseTermDuration       ClauseID = "term_duration"
	ClauseGoverningLaw       ClauseID = "governing_law"
	ClauseSignatures         ClauseID = "signatures"
	ClauseDisputeResolution  ClauseID = "dispute_resolution"
	ClauseRemedies           ClauseID = "remedies"
	ClauseReturnOfMaterials  ClauseID = "return_of_materials"
	ClausePositionDuties     ClauseID = "position_duties"
	ClauseCompensation       ClauseID = "compensation"
	ClauseTermTermination    ClauseID = "term_termination"
	ClauseBenefits           ClauseID = "benefits"
	ClauseNonCompete         ClauseID = "non_compete"
	ClauseIntellectualProp   ClauseID = "intellectual_property"
	ClauseEquityDistribution ClauseID = "equity_distribution"
	ClauseVestingSchedule    ClauseID = "vesting_schedule"
	ClauseInvestmentAmount   ClauseID = "investment_amount"
	ClauseValuationCap       ClauseID = "valuation_cap"
	ClauseConversionTerms    ClauseID = "conversion_terms"
	ClauseEffectiveDate      ClauseID = "effective_date"
)

// ClauseRequirement is what a document type must, may and must not contain.
type ClauseRequirement struct {
	Required   []ClauseID `json:"required_clauses"`
	Optional   []ClauseID `json:"optional_clauses"`
	Prohibited []string   `json:"prohibited_terms"`
}

var requirements = map[ir.DocumentType]ClauseRequirement{
	ir.DocNDA: {
		Required: []ClauseID{
			ClauseParties,
			ClauseConfidentialDef,
			ClauseObligations,
			ClauseTermDuration,
			ClauseGoverningLaw,
			ClauseSignatures,
		},
		Optional:   []ClauseID{ClauseDisputeResolution, ClauseRemedies, ClauseReturnOfMaterials},
		Prohibited: []string{"perpetual confidentiality", "unlimited liability"},
	},
	ir.DocEmployment: {
		Required: []ClauseID{
			ClauseParties,
			ClausePositionDuties,
			ClauseCompensation,
			ClauseTermTermination,
			ClauseGoverningLaw,
			ClauseSignatures,
		},
		Optional: []ClauseID{ClauseBenefits, ClauseNonCompete, ClauseIntellectualProp},
	},
	ir.DocFounder: {
		Required: []ClauseID{
			ClauseParties,
			ClauseEquityDistribution,
			ClauseVestingSchedule,
			ClauseIntellectualProp,
			ClauseGoverningLaw,
			ClauseSignatures,
		},
		Optional: []ClauseID{ClauseNonCompete, ClauseDisputeResolution},
	},
	ir.DocSAFE: {
		Required: []ClauseID{
			ClauseParties,
			ClauseInvestmentAmount,
			ClauseValuationCap,
			ClauseConversionTerms,
			ClauseGoverningLaw,
			ClauseSignatures,
		},
	},
	ir.DocGeneral: {
		Required: []ClauseID{
			ClauseParties,
			ClauseEffectiveDate,
			ClauseGoverningLaw,
			ClauseSignatures,
		},
	},
}

// Lookup returns the requirements for documentType. Unknown types get the
// GENERAL entry. The returned slices are copies.
func Lookup(documentType string) ClauseRequirement {
	req := requirements[ir.NormalizeDocumentType(documentType)]
	return ClauseRequirement{
		Required:   append([]ClauseID{}, req.Required...),
		Optional:   append([]ClauseID{}, req.Optional...),
		Prohibited: append([]string{}, req.Prohibited...),
	}
}
