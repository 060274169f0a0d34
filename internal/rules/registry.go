package rules

import (
	"sort"
	"strings"

	"github.com/codewithboateng/lexcheck/internal/ir"
)

// Rule sources.
const (
	SourceStructural = "structural"
	SourcePattern    = "pattern"
	SourceSemantic   = "semantic"
)

// Rule describes one flaw type the engine can emit.
type Rule struct {
	ID       string      `json:"id"`
	Summary  string      `json:"summary"`
	Severity ir.Severity `json:"default_severity"`
	Source   string      `json:"source"`
}

// List returns every flaw type reachable with ps, sorted by ID. A nil ps
// means the built-in patterns.
func List(ps *PatternSet) []Rule {
	if ps == nil {
		ps = defaultPatterns
	}
	var out []Rule
	for id, c := range checklist {
		out = append(out, Rule{
			ID:       MissingFlawType(id),
			Summary:  c.Description,
			Severity: ir.SeverityCritical,
			Source:   SourceStructural,
		})
	}
	for _, r := range ps.rules {
		out = append(out, Rule{ID: r.FlawType, Summary: r.Description, Severity: r.Severity, Source: SourcePattern})
	}
	for _, r := range semanticRules {
		out = append(out, Rule{ID: r.flaw.FlawType, Summary: r.flaw.Description, Severity: r.flaw.Severity, Source: SourceSemantic})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns a rule by ID, case-insensitively.
func Get(ps *PatternSet, id string) (Rule, bool) {
	id = strings.ToUpper(strings.TrimSpace(id))
	for _, r := range List(ps) {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}
