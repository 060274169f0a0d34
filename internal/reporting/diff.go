package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codewithboateng/lexcheck/internal/ir"
)

// Diff compares two runs of (usually) the same document.
type Diff struct {
	BaseID  string        `json:"base_id"`
	HeadID  string        `json:"head_id"`
	Summary DiffSummary   `json:"summary"`
	New     []ir.Flaw     `json:"new"`
	Removed []ir.Flaw     `json:"removed"`
	Changed []DiffChanged `json:"changed"`
}

type DiffSummary struct {
	NewCount     int `json:"new"`
	RemovedCount int `json:"removed"`
	ChangedCount int `json:"changed"`
}

type DiffChanged struct {
	Key     string   `json:"key"`
	Base    ir.Flaw  `json:"base"`
	Head    ir.Flaw  `json:"head"`
	Changed []string `json:"fields_changed"`
}

// DiffRuns matches flaws by (flaw type, location).
func DiffRuns(base, head *ir.Run) Diff {
	bm := map[string]ir.Flaw{}
	hm := map[string]ir.Flaw{}
	for _, f := range base.Report.Flaws {
		bm[keyOf(f)] = f
	}
	for _, f := range head.Report.Flaws {
		hm[keyOf(f)] = f
	}

	d := Diff{BaseID: base.ID, HeadID: head.ID, New: []ir.Flaw{}, Removed: []ir.Flaw{}, Changed: []DiffChanged{}}

	// additions & changes
	for k, hf := range hm {
		bf, ok := bm[k]
		if !ok {
			d.New = append(d.New, hf)
			continue
		}
		var fields []string
		if bf.Severity != hf.Severity {
			fields = append(fields, "severity")
		}
		if strings.TrimSpace(bf.Description) != strings.TrimSpace(hf.Description) {
			fields = append(fields, "description")
		}
		if len(fields) > 0 {
			d.Changed = append(d.Changed, DiffChanged{Key: k, Base: bf, Head: hf, Changed: fields})
		}
	}
	// removals
	for k, bf := range bm {
		if _, ok := hm[k]; !ok {
			d.Removed = append(d.Removed, bf)
		}
	}

	sortFlaws(d.New)
	sortFlaws(d.Removed)
	sort.Slice(d.Changed, func(i, j int) bool { return d.Changed[i].Key < d.Changed[j].Key })

	d.Summary = DiffSummary{
		NewCount:     len(d.New),
		RemovedCount: len(d.Removed),
		ChangedCount: len(d.Changed),
	}
	return d
}

// WriteDiffJSON writes <outDir>/diff_<base>__<head>.json and returns its path.
func WriteDiffJSON(outDir string, base, head *ir.Run) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, "diff_"+base.ID+"__"+head.ID+".json")
	b, err := json.MarshalIndent(DiffRuns(base, head), "", "  ")
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, b, 0o644)
}

func keyOf(f ir.Flaw) string {
	return norm(f.FlawType) + "|" + norm(f.Location)
}

func sortFlaws(fs []ir.Flaw) {
	sort.Slice(fs, func(i, j int) bool { return keyOf(fs[i]) < keyOf(fs[j]) })
}

func norm(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
