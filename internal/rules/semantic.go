package rules

import (
	"strings"
	"unicode/utf8"

	"github.com/codewithboateng/lexcheck/internal/ir"
)

// minDetailLength is the character count below which a document is too brief.
const minDetailLength = 300

type semanticInput struct {
	text         string
	lower        string
	documentType string
}

type semanticRule struct {
	applies func(in semanticInput) bool
	flaw    ir.Flaw
}

// semanticRules are evaluated in order, independently of each other. The
// document type is available to predicates but no current rule uses it.
var semanticRules = []semanticRule{
	{
		applies: func(in semanticInput) bool {
			return utf8.RuneCountInString(in.text) < minDetailLength
		},
		flaw: ir.Flaw{
			FlawType:    "INSUFFICIENT_DETAIL",
			Severity:    ir.SeverityMedium,
			Location:    locationDocumentWide,
			Description: "Document is unusually brief",
			Suggestion:  "Ensure all material terms are detailed",
		},
	},
	{
		applies: func(in semanticInput) bool {
			return strings.Contains(in.lower, "section 27") && strings.Contains(in.lower, "non-compete")
		},
		flaw: ir.Flaw{
			FlawType:    "SECTION_27_VIOLATION",
			Severity:    ir.SeverityCritical,
			Location:    "Non-compete clause",
			Description: "Non-compete may violate Section 27 of Indian Contract Act",
			Suggestion:  "Remove post-termination non-compete or limit to employment period only",
		},
	},
}

// Analyze applies the cross-cutting semantic heuristics.
func Analyze(text, documentType string) []ir.Flaw {
	in := semanticInput{text: text, lower: strings.ToLower(text), documentType: documentType}
	var out []ir.Flaw
	for _, r := range semanticRules {
		if r.applies(in) {
			out = append(out, r.flaw)
		}
	}
	return out
}
