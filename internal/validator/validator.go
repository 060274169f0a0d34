// Package validator runs the full document check: rule detectors, the
// optional validity classifier, waivers and aggregation into one report.
package validator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/codewithboateng/lexcheck/internal/classifier"
	"github.com/codewithboateng/lexcheck/internal/ir"
	"github.com/codewithboateng/lexcheck/internal/metrics"
	"github.com/codewithboateng/lexcheck/internal/parser"
	"github.com/codewithboateng/lexcheck/internal/reporting"
	"github.com/codewithboateng/lexcheck/internal/rules"
	"github.com/codewithboateng/lexcheck/internal/storage"
)

// FallbackConfidence is reported whenever the classifier verdict is unusable.
const FallbackConfidence = 0.75

// ErrEmptyText is returned for input that is empty or whitespace only.
var ErrEmptyText = errors.New("document text is empty")

// WaiverSource supplies waivers; *storage.DB satisfies it.
type WaiverSource interface {
	ListWaivers(activeOnly bool) ([]storage.Waiver, error)
}

// Validator is safe for concurrent use.
type Validator struct {
	classifier classifier.Classifier
	patterns   *rules.PatternSet
	waivers    WaiverSource
	timeout    time.Duration
	logger     *slog.Logger
	observe    bool
	now        func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithClassifier sets the validity classifier. Without one every report is degraded.
func WithClassifier(c classifier.Classifier) Option {
	return func(v *Validator) { v.classifier = c }
}

// WithPatterns replaces the built-in pattern set.
func WithPatterns(ps *rules.PatternSet) Option {
	return func(v *Validator) {
		if ps != nil {
			v.patterns = ps
		}
	}
}

// WithWaivers enables waiver filtering.
func WithWaivers(ws WaiverSource) Option {
	return func(v *Validator) { v.waivers = ws }
}

// WithClassifierTimeout bounds each classifier call; zero means no extra bound.
func WithClassifierTimeout(d time.Duration) Option {
	return func(v *Validator) { v.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithMetrics toggles Prometheus recording.
func WithMetrics(on bool) Option {
	return func(v *Validator) { v.observe = on }
}

// New builds a Validator with the built-in patterns and no classifier.
func New(opts ...Option) *Validator {
	v := &Validator{
		patterns: rules.DefaultPatterns(),
		logger:   slog.Default(),
		observe:  true,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Patterns returns the active pattern set.
func (v *Validator) Patterns() *rules.PatternSet { return v.patterns }

// Validate checks text as documentType (unknown types use GENERAL requirements).
func (v *Validator) Validate(ctx context.Context, text, documentType string) (ir.Report, error) {
	if strings.TrimSpace(text) == "" {
		return ir.Report{}, ErrEmptyText
	}
	start := v.now()
	dt := ir.NormalizeDocumentType(documentType)

	var (
		verdict  ir.Verdict
		fallback string
		found    [3][]ir.Flaw
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		verdict, fallback = v.classify(gctx, text)
		return nil
	})
	g.Go(func() error {
		found[0] = rules.CheckStructure(text, string(dt))
		found[1] = v.patterns.Scan(text)
		found[2] = rules.Analyze(text, string(dt))
		return nil
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return ir.Report{}, err
	}

	waived := 0
	if v.waivers != nil {
		ws, err := v.waivers.ListWaivers(true)
		if err != nil {
			return ir.Report{}, fmt.Errorf("load waivers: %w", err)
		}
		for i := range found {
			var n int
			found[i], n = rules.ApplyWaivers(found[i], string(dt), ws, start)
			waived += n
		}
	}

	report := rules.Aggregate(verdict, found[0], found[1], found[2])
	report.Waived = waived
	if fallback != "" {
		report.IsValid = report.TotalFlaws == 0
		report.Confidence = FallbackConfidence
		report.Degraded = true
		if v.observe {
			metrics.ClassifierFallbacks.WithLabelValues(fallback).Inc()
		}
	}

	took := v.now().Sub(start)
	if v.observe {
		metrics.ObserveReport(dt, report, took)
	}
	v.logger.Debug("document validated",
		"document_type", dt,
		"flaws", report.TotalFlaws,
		"waived", waived,
		"compliant", report.IsCompliant(),
		"degraded", report.Degraded,
		"took", took)
	return report, nil
}

// classify returns the classifier verdict, or a non-empty fallback reason.
func (v *Validator) classify(ctx context.Context, text string) (ir.Verdict, string) {
	if v.classifier == nil {
		return ir.Verdict{}, metrics.FallbackNoClassifier
	}
	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}
	verdict, err := v.classifier.Classify(ctx, text)
	if err != nil {
		reason := metrics.FallbackError
		if errors.Is(err, context.DeadlineExceeded) {
			reason = metrics.FallbackTimeout
		}
		v.logger.Warn("classifier unavailable, using fallback verdict", "reason", reason, "error", err)
		return ir.Verdict{}, reason
	}
	if math.IsNaN(verdict.Confidence) || verdict.Confidence < 0 || verdict.Confidence > 1 {
		v.logger.Warn("classifier confidence out of range, using fallback verdict", "confidence", verdict.Confidence)
		return ir.Verdict{}, metrics.FallbackOutOfRange
	}
	return verdict, ""
}

// Run validates doc and wraps the report as a persisted-run record.
// An empty documentType is sniffed from the text.
func (v *Validator) Run(ctx context.Context, doc ir.Document, documentType string) (ir.Run, error) {
	if strings.TrimSpace(documentType) == "" {
		documentType = string(parser.DetectDocumentType(doc.Text))
	}
	started := v.now()
	report, err := v.Validate(ctx, doc.Text, documentType)
	if err != nil {
		return ir.Run{}, err
	}
	return ir.Run{
		ID:           uuid.NewString(),
		StartedAt:    started.UTC(),
		Source:       doc.Source,
		DocumentType: ir.NormalizeDocumentType(documentType),
		Version:      ir.Version,
		Summary:      reporting.Summary(report),
		DurationMS:   v.now().Sub(started).Milliseconds(),
		Report:       report,
	}, nil
}
