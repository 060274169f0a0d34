package validator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/lexcheck/internal/classifier"
	"github.com/codewithboateng/lexcheck/internal/ir"
	"github.com/codewithboateng/lexcheck/internal/storage"
)

const cleanAgreement = "This Agreement is entered into as of 1 March 2026 by and between Acme Private Limited and Beta Advisors LLP (together, the Parties).\n" +
	"Acme shall pay Beta a fixed fee of INR 500000 within thirty days of each invoice.\n" +
	"Beta shall deliver the services described in Schedule A with reasonable skill and care.\n" +
	"This Agreement shall be governed by the laws of India and the courts at Bengaluru shall have exclusive jurisdiction.\n" +
	"Signed and executed by the authorised signatories of both Parties on the date first written above.\n"

func flawTypes(r ir.Report) []string {
	out := make([]string, 0, len(r.Flaws))
	for _, f := range r.Flaws {
		out = append(out, f.FlawType)
	}
	return out
}

func TestValidate_EmptyText(t *testing.T) {
	v := New(WithMetrics(false))
	for _, s := range []string{"", "   ", "\n\t"} {
		_, err := v.Validate(context.Background(), s, "NDA")
		assert.ErrorIs(t, err, ErrEmptyText)
	}
}

func TestValidate_CleanDocumentWithoutClassifier(t *testing.T) {
	r, err := New(WithMetrics(false)).Validate(context.Background(), cleanAgreement, "GENERAL")
	require.NoError(t, err)
	assert.Empty(t, r.Flaws, "unexpected flaws: %v", flawTypes(r))
	assert.True(t, r.IsValid)
	assert.True(t, r.IsCompliant())
	assert.True(t, r.Degraded)
	assert.Equal(t, FallbackConfidence, r.Confidence)
}

func TestValidate_ClassifierErrorFallsBack(t *testing.T) {
	v := New(WithMetrics(false), WithClassifier(classifier.Static{Err: errors.New("model offline")}))
	r, err := v.Validate(context.Background(), cleanAgreement, "GENERAL")
	require.NoError(t, err)
	assert.Equal(t, 0.75, r.Confidence)
	assert.True(t, r.IsValid)
	assert.True(t, r.IsCompliant())
	assert.True(t, r.Degraded)
}

func TestValidate_FallbackValidityFollowsFlaws(t *testing.T) {
	r, err := New(WithMetrics(false)).Validate(context.Background(), "The obligations may change.", "GENERAL")
	require.NoError(t, err)
	assert.False(t, r.IsValid)
	assert.Equal(t, 0.75, r.Confidence)
}

func TestValidate_ClassifierVerdictPassesThrough(t *testing.T) {
	v := New(WithMetrics(false), WithClassifier(classifier.Static{Verdict: ir.Verdict{IsValid: false, Confidence: 0.91}}))
	r, err := v.Validate(context.Background(), cleanAgreement, "GENERAL")
	require.NoError(t, err)
	assert.False(t, r.IsValid)
	assert.Equal(t, 0.91, r.Confidence)
	assert.False(t, r.Degraded)
	assert.True(t, r.IsCompliant())
}

func TestValidate_ClassifierTimeout(t *testing.T) {
	slow := classifier.Func(func(ctx context.Context, _ string) (ir.Verdict, error) {
		<-ctx.Done()
		return ir.Verdict{}, ctx.Err()
	})
	v := New(WithMetrics(false), WithClassifier(slow), WithClassifierTimeout(10*time.Millisecond))
	r, err := v.Validate(context.Background(), cleanAgreement, "GENERAL")
	require.NoError(t, err)
	assert.True(t, r.Degraded)
	assert.Equal(t, 0.75, r.Confidence)
}

func TestValidate_ConfidenceOutOfRange(t *testing.T) {
	v := New(WithMetrics(false), WithClassifier(classifier.Static{Verdict: ir.Verdict{IsValid: true, Confidence: 1.5}}))
	r, err := v.Validate(context.Background(), cleanAgreement, "GENERAL")
	require.NoError(t, err)
	assert.True(t, r.Degraded)
	assert.Equal(t, 0.75, r.Confidence)
}

func TestValidate_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(WithMetrics(false)).Validate(ctx, cleanAgreement, "GENERAL")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidate_NDAMissingGoverningLaw(t *testing.T) {
	text := "This Non-Disclosure Agreement is made between Acme and Beta. " +
		"Confidential Information shall be kept secret. Signed by both."
	r, err := New(WithMetrics(false)).Validate(context.Background(), text, "NDA")
	require.NoError(t, err)

	var found *ir.Flaw
	for i := range r.Flaws {
		if r.Flaws[i].FlawType == "MISSING_GOVERNING_LAW" {
			found = &r.Flaws[i]
		}
	}
	require.NotNil(t, found, "flaws: %v", flawTypes(r))
	assert.Equal(t, ir.SeverityCritical, found.Severity)
	assert.False(t, r.IsCompliant())
}

func TestValidate_Section27AnyType(t *testing.T) {
	text := cleanAgreement + "Clause 9 imposes a non-compete. See Section 27."
	for _, dt := range []string{"GENERAL", "NDA", "anything"} {
		r, err := New(WithMetrics(false)).Validate(context.Background(), text, dt)
		require.NoError(t, err)
		assert.Contains(t, flawTypes(r), "SECTION_27_VIOLATION", dt)
		assert.Equal(t, ir.SeverityCritical, r.Flaws[0].Severity)
	}
}

type staticWaivers []storage.Waiver

func (s staticWaivers) ListWaivers(bool) ([]storage.Waiver, error) { return s, nil }

type failingWaivers struct{}

func (failingWaivers) ListWaivers(bool) ([]storage.Waiver, error) { return nil, errors.New("db closed") }

func TestValidate_Waivers(t *testing.T) {
	text := cleanAgreement + "The vendor may subcontract."
	ws := staticWaivers{{FlawType: "WEAK_OBLIGATIONS", ExpiresAt: time.Now().Add(time.Hour)}}

	r, err := New(WithMetrics(false)).Validate(context.Background(), text, "GENERAL")
	require.NoError(t, err)
	require.Contains(t, flawTypes(r), "WEAK_OBLIGATIONS")

	r, err = New(WithMetrics(false), WithWaivers(ws)).Validate(context.Background(), text, "GENERAL")
	require.NoError(t, err)
	assert.NotContains(t, flawTypes(r), "WEAK_OBLIGATIONS")
	assert.Equal(t, 1, r.Waived)
	assert.True(t, r.IsValid)
	assert.Equal(t, 0, r.Count(ir.SeverityMedium))

	_, err = New(WithMetrics(false), WithWaivers(failingWaivers{})).Validate(context.Background(), text, "GENERAL")
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	doc := ir.Document{Source: "nda.txt", Format: "txt", Text: "This non-disclosure agreement may be signed."}
	run, err := New(WithMetrics(false)).Run(context.Background(), doc, "")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, ir.DocNDA, run.DocumentType)
	assert.Equal(t, "nda.txt", run.Source)
	assert.Equal(t, ir.Version, run.Version)
	assert.NotEmpty(t, run.Summary)
	assert.Contains(t, run.Summary, "CRITICAL")

	run2, err := New(WithMetrics(false)).Run(context.Background(), doc, "")
	require.NoError(t, err)
	assert.NotEqual(t, run.ID, run2.ID)

	_, err = New(WithMetrics(false)).Run(context.Background(), ir.Document{}, "NDA")
	assert.ErrorIs(t, err, ErrEmptyText)
}
