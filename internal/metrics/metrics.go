// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/codewithboateng/lexcheck/internal/ir"
)

const namespace = "lexcheck"

// Fallback reasons recorded by ClassifierFallbacks.
const (
	FallbackNoClassifier = "no_classifier"
	FallbackError        = "error"
	FallbackTimeout      = "timeout"
	FallbackOutOfRange   = "out_of_range"
)

var (
	Validations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Documents validated, by document type and compliance.",
		},
		[]string{"document_type", "compliant"},
	)
	Flaws = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flaws_total",
			Help:      "Flaws reported after de-duplication, by severity.",
		},
		[]string{"severity"},
	)
	ClassifierFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifier_fallbacks_total",
			Help:      "Validations that used the fallback verdict, by reason.",
		},
		[]string{"reason"},
	)
	ValidationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_duration_seconds",
			Help:      "Wall time of a full validation including the classifier call.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		},
	)
	ClassifierCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifier_cache_hits_total",
			Help:      "Classifier verdicts served from the cache.",
		},
	)
	ClassifierCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifier_cache_misses_total",
			Help:      "Classifier verdicts that required a model call.",
		},
	)
)

// ObserveReport records one finished validation.
func ObserveReport(documentType ir.DocumentType, r ir.Report, took time.Duration) {
	Validations.WithLabelValues(string(documentType), strconv.FormatBool(r.IsCompliant())).Inc()
	for _, f := range r.Flaws {
		Flaws.WithLabelValues(string(f.Severity)).Inc()
	}
	ValidationDuration.Observe(took.Seconds())
}
