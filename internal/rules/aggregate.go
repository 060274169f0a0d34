package rules

import (
	"slices"

	"github.com/codewithboateng/lexcheck/internal/ir"
)

type flawKey struct {
	flawType string
	location string
}

// Aggregate merges detector output into a report. Inputs are concatenated
// structural, pattern, semantic; the first flaw with a given (type, location)
// wins; the survivors are stably sorted by severity. The verdict passes
// through untouched.
func Aggregate(verdict ir.Verdict, structural, pattern, semantic []ir.Flaw) ir.Report {
	all := make([]ir.Flaw, 0, len(structural)+len(pattern)+len(semantic))
	all = append(all, structural...)
	all = append(all, pattern...)
	all = append(all, semantic...)

	flaws := Dedupe(all)
	slices.SortStableFunc(flaws, func(a, b ir.Flaw) int {
		return a.Severity.Rank() - b.Severity.Rank()
	})

	counts := make(map[ir.Severity]int, 4)
	for _, s := range ir.Severities() {
		counts[s] = 0
	}
	for _, f := range flaws {
		counts[f.Severity]++
	}

	return ir.Report{
		IsValid:          verdict.IsValid,
		Confidence:       verdict.Confidence,
		TotalFlaws:       len(flaws),
		CountsBySeverity: counts,
		Flaws:            flaws,
	}
}

// Dedupe drops every flaw whose (type, location) already appeared earlier.
func Dedupe(in []ir.Flaw) []ir.Flaw {
	seen := make(map[flawKey]struct{}, len(in))
	out := make([]ir.Flaw, 0, len(in))
	for _, f := range in {
		k := flawKey{f.FlawType, f.Location}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, f)
	}
	return out
}
