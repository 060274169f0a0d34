package rules

import (
	"strings"
	"time"

	"github.com/codewithboateng/lexcheck/internal/ir"
	"github.com/codewithboateng/lexcheck/internal/storage"
)

// ApplyWaivers filters out flaws that match any active waiver for documentType.
// Returns (kept, waivedCount).
func ApplyWaivers(in []ir.Flaw, documentType string, waivers []storage.Waiver, now time.Time) ([]ir.Flaw, int) {
	if len(waivers) == 0 || len(in) == 0 {
		return in, 0
	}
	var out []ir.Flaw
	waived := 0
nextFlaw:
	for _, f := range in {
		for _, w := range waivers {
			if !active(w, now) {
				continue
			}
			if !eqCI(f.FlawType, w.FlawType) {
				continue
			}
			if w.DocumentType != "" && !eqCI(documentType, w.DocumentType) {
				continue
			}
			if w.PatternSub != "" {
				ps := strings.ToUpper(w.PatternSub)
				if !strings.Contains(strings.ToUpper(f.Evidence), ps) &&
					!strings.Contains(strings.ToUpper(f.Description), ps) {
					continue
				}
			}
			waived++
			continue nextFlaw
		}
		out = append(out, f)
	}
	return out, waived
}

func active(w storage.Waiver, now time.Time) bool {
	if w.RevokedAt != nil {
		return false
	}
	return w.ExpiresAt.IsZero() || w.ExpiresAt.After(now)
}

func eqCI(a, b string) bool { return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) }
