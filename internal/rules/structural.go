package rules

import (
	"log/slog"
	"strings"

	"github.com/codewithboateng/lexcheck/internal/ir"
)

const locationDocumentWide = "Document-wide"

// MissingFlawType is the flaw type raised when a required clause is absent.
func MissingFlawType(id ClauseID) string {
	return "MISSING_" + strings.ToUpper(string(id))
}

// CheckStructure flags every required clause of documentType whose keywords
// are all absent from text. Missing clauses are always CRITICAL. Required
// clauses with no checklist entry are skipped.
func CheckStructure(text, documentType string) []ir.Flaw {
	lower := strings.ToLower(text)
	var out []ir.Flaw
	for _, id := range Lookup(documentType).Required {
		check, ok := checklist[id]
		if !ok {
			slog.Debug("required clause has no checklist entry; not verified",
				"clause", id, "document_type", documentType)
			continue
		}
		if containsAny(lower, check.Keywords) {
			continue
		}
		out = append(out, ir.Flaw{
			FlawType:    MissingFlawType(id),
			Severity:    ir.SeverityCritical,
			Location:    locationDocumentWide,
			Description: check.Description,
			Suggestion:  check.Suggestion,
		})
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
