package parser

import (
	"strings"

	"github.com/codewithboateng/lexcheck/internal/ir"
)

// DetectDocumentType guesses the document type from its content.
// The first matching rule wins.
func DetectDocumentType(text string) ir.DocumentType {
	lower := strings.ToLower(text)
	has := func(s string) bool { return strings.Contains(lower, s) }

	switch {
	case has("non-disclosure") || has("confidential"):
		return ir.DocNDA
	case has("employment agreement") || has("employee"):
		return ir.DocEmployment
	case has("founder") && has("equity"):
		return ir.DocFounder
	case has("safe") && has("investment"):
		return ir.DocSAFE
	default:
		return ir.DocGeneral
	}
}
