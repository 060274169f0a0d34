package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/lexcheck/internal/ir"
)

func TestAnalyze_BrevityBoundary(t *testing.T) {
	flaws := Analyze(strings.Repeat("a", 299), "GENERAL")
	require.Len(t, flaws, 1)
	assert.Equal(t, "INSUFFICIENT_DETAIL", flaws[0].FlawType)
	assert.Equal(t, ir.SeverityMedium, flaws[0].Severity)
	assert.Equal(t, "Document-wide", flaws[0].Location)

	assert.Empty(t, Analyze(strings.Repeat("a", 300), "GENERAL"))
}

func TestAnalyze_BrevityCountsCharactersNotBytes(t *testing.T) {
	// 299 two-byte runes: 598 bytes but still too short.
	flaws := Analyze(strings.Repeat("é", 299), "NDA")
	require.Len(t, flaws, 1)
	assert.Equal(t, "INSUFFICIENT_DETAIL", flaws[0].FlawType)
}

func TestAnalyze_Section27AnyDocumentType(t *testing.T) {
	text := "Subject to SECTION 27, the Non-Compete below applies." + strings.Repeat(" filler", 50)
	for _, dt := range []string{"GENERAL", "NDA", "EMPLOYMENT_AGREEMENT", "FOUNDER_AGREEMENT", "SAFE_AGREEMENT", "LEASE"} {
		flaws := Analyze(text, dt)
		require.Len(t, flaws, 1, dt)
		assert.Equal(t, "SECTION_27_VIOLATION", flaws[0].FlawType)
		assert.Equal(t, ir.SeverityCritical, flaws[0].Severity)
		assert.Equal(t, "Non-compete clause", flaws[0].Location)
	}
}

func TestAnalyze_Section27NeedsBothTerms(t *testing.T) {
	pad := strings.Repeat(" filler", 50)
	assert.Empty(t, Analyze("Section 27 applies."+pad, "GENERAL"))
	assert.Empty(t, Analyze("A non-compete applies."+pad, "GENERAL"))
}

func TestAnalyze_BothRulesFireInTableOrder(t *testing.T) {
	flaws := Analyze("section 27 / non-compete", "GENERAL")
	require.Len(t, flaws, 2)
	assert.Equal(t, "INSUFFICIENT_DETAIL", flaws[0].FlawType)
	assert.Equal(t, "SECTION_27_VIOLATION", flaws[1].FlawType)
}
