package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/lexcheck/internal/ir"
)

func TestLookup_KnownTypes(t *testing.T) {
	nda := Lookup("NDA")
	assert.Equal(t, []ClauseID{
		ClauseParties, ClauseConfidentialDef, ClauseObligations,
		ClauseTermDuration, ClauseGoverningLaw, ClauseSignatures,
	}, nda.Required)
	assert.Equal(t, []string{"perpetual confidentiality", "unlimited liability"}, nda.Prohibited)

	safe := Lookup("SAFE_AGREEMENT")
	assert.Contains(t, safe.Required, ClauseConversionTerms)
	assert.Empty(t, safe.Optional)
}

func TestLookup_UnknownFallsBackToGeneral(t *testing.T) {
	general := Lookup("GENERAL")
	for _, dt := range []string{"", "LEASE", "nda", " NDA"} {
		assert.Equal(t, general, Lookup(dt), "type %q", dt)
	}
}

func TestLookup_ReturnsCopies(t *testing.T) {
	req := Lookup("NDA")
	req.Required[0] = "tampered"
	req.Prohibited[0] = "tampered"
	again := Lookup("NDA")
	assert.Equal(t, ClauseParties, again.Required[0])
	assert.Equal(t, "perpetual confidentiality", again.Prohibited[0])
}

func TestCheckStructure_NDAMissingGoverningLaw(t *testing.T) {
	text := "This agreement is made between Acme Ltd and Beta LLC. Signed by both."
	flaws := CheckStructure(text, "NDA")
	require.Len(t, flaws, 1)
	assert.Equal(t, "MISSING_GOVERNING_LAW", flaws[0].FlawType)
	assert.Equal(t, ir.SeverityCritical, flaws[0].Severity)
	assert.Equal(t, "Document-wide", flaws[0].Location)
	assert.Equal(t, "Document must specify governing law", flaws[0].Description)
}

func TestCheckStructure_KeywordsAreCaseInsensitive(t *testing.T) {
	text := "BY AND BETWEEN the undersigned, DATED today. GOVERNED BY the LAWS OF Kenya. EXECUTED."
	assert.Empty(t, CheckStructure(text, "GENERAL"))
}

func TestCheckStructure_OrderFollowsRegistry(t *testing.T) {
	flaws := CheckStructure("hello world", "GENERAL")
	var types []string
	for _, f := range flaws {
		types = append(types, f.FlawType)
	}
	assert.Equal(t, []string{
		"MISSING_PARTIES_IDENTIFICATION",
		"MISSING_EFFECTIVE_DATE",
		"MISSING_GOVERNING_LAW",
		"MISSING_SIGNATURES",
	}, types)
}

func TestCheckStructure_OneCriticalFlawPerCoveredClause(t *testing.T) {
	for _, info := range ir.DocumentTypes() {
		dt := string(info.Value)
		t.Run(dt, func(t *testing.T) {
			var want []string
			for _, id := range Lookup(dt).Required {
				if _, ok := CheckFor(id); ok {
					want = append(want, MissingFlawType(id))
				}
			}
			flaws := CheckStructure("zzz", dt)
			require.Len(t, flaws, len(want))
			for i, f := range flaws {
				assert.Equal(t, want[i], f.FlawType)
				assert.Equal(t, ir.SeverityCritical, f.Severity)
			}
		})
	}
}

func TestCheckStructure_UncoveredClausesAreNotVerified(t *testing.T) {
	_, ok := CheckFor(ClauseConversionTerms)
	require.False(t, ok)

	flaws := CheckStructure("zzz", "SAFE_AGREEMENT")
	for _, f := range flaws {
		assert.NotEqual(t, "MISSING_CONVERSION_TERMS", f.FlawType)
	}
}
