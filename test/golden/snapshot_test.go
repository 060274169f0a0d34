package golden

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/codewithboateng/lexcheck/internal/ir"
	"github.com/codewithboateng/lexcheck/internal/parser"
	"github.com/codewithboateng/lexcheck/internal/validator"
)

var update = flag.Bool("update", false, "update golden snapshot")

const goldenFile = "testdata/expected.json"

const sampleNDA = "This Non-Disclosure Agreement is made between Acme Corp and someone at Beta.\n" +
	"The Receiving Party may disclose information to its advisors.\n" +
	"Confidentiality obligations continue forever.\n" +
	"The fee payable is to be determined.\n"

// analyzeFile writes content to a temp file and runs it through the same
// load + validate path the CLI uses, without a classifier.
func analyzeFile(t *testing.T, name, content, documentType string) ir.Run {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	doc, err := parser.Load(p)
	if err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
	run, err := validator.New(validator.WithMetrics(false)).Run(context.Background(), doc, documentType)
	if err != nil {
		t.Fatalf("validate %s: %v", name, err)
	}
	return run
}

func TestGolden_NDASnapshot(t *testing.T) {
	run := analyzeFile(t, "mutual-nda.txt", sampleNDA, "NDA")

	// Normalize volatile fields before snapshot
	run.ID = "run-golden"
	run.StartedAt = time.Time{}
	run.DurationMS = 0
	run.Source = filepath.Base(run.Source)

	got, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		t.Fatalf("marshal got: %v", err)
	}

	if *update {
		if err := os.MkdirAll(filepath.Dir(goldenFile), 0o755); err != nil {
			t.Fatalf("mkdir golden dir: %v", err)
		}
		if err := os.WriteFile(goldenFile, got, 0o644); err != nil {
			t.Fatalf("write golden: %v", err)
		}
		t.Logf("updated %s", goldenFile)
		return
	}

	want, err := os.ReadFile(goldenFile)
	if err != nil {
		t.Fatalf("read golden (%s): %v\nRun with: go test ./test/golden -run TestGolden_NDASnapshot -args -update", goldenFile, err)
	}

	if !bytes.Equal(bytes.TrimSpace(got), bytes.TrimSpace(want)) {
		tmp := filepath.Join(t.TempDir(), "got.json")
		_ = os.WriteFile(tmp, got, 0o644)
		t.Fatalf("golden mismatch.\n  golden: %s\n  actual: %s\nTip: update with\n  go test ./test/golden -run TestGolden_NDASnapshot -count=1 -args -update", goldenFile, tmp)
	}
}
