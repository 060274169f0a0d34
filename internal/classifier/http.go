package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/codewithboateng/lexcheck/internal/ir"
)

// maxResponseSize limits the model response body.
const maxResponseSize = 1 << 20

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	IsValid    *bool    `json:"is_valid"`
	Confidence *float64 `json:"confidence"`
}

// HTTPClassifier calls a model service that accepts {"text": ...} and
// answers {"is_valid": bool, "confidence": float}.
type HTTPClassifier struct {
	endpoint    string
	httpClient  *http.Client
	retryConfig RetryConfig
	logger      *slog.Logger
}

// HTTPOption configures an HTTPClassifier.
type HTTPOption func(*HTTPClassifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClassifier) { h.httpClient = c }
}

// WithRetryConfig sets the retry configuration.
func WithRetryConfig(cfg RetryConfig) HTTPOption {
	return func(h *HTTPClassifier) { h.retryConfig = cfg }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) HTTPOption {
	return func(h *HTTPClassifier) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHTTP creates a classifier for the model service at endpoint.
func NewHTTP(endpoint string, opts ...HTTPOption) *HTTPClassifier {
	h := &HTTPClassifier{
		endpoint:    endpoint,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		retryConfig: DefaultRetryConfig(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.retryConfig.MaxAttempts < 1 {
		h.retryConfig.MaxAttempts = 1
	}
	return h
}

// Classify posts text to the model service, retrying transient failures.
func (h *HTTPClassifier) Classify(ctx context.Context, text string) (ir.Verdict, error) {
	body, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return ir.Verdict{}, fmt.Errorf("%w: encode request: %w", ErrUnavailable, err)
	}

	var lastErr error
	for attempt := 1; attempt <= h.retryConfig.MaxAttempts; attempt++ {
		v, err := h.doRequest(ctx, body)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if IsFatal(err) {
			break
		}
		if attempt < h.retryConfig.MaxAttempts {
			wait := h.retryConfig.backoff(attempt)
			h.logger.Debug("classifier request failed, retrying",
				"attempt", attempt,
				"max_attempts", h.retryConfig.MaxAttempts,
				"backoff", wait,
				"error", err)
			select {
			case <-ctx.Done():
				return ir.Verdict{}, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
			case <-time.After(wait):
			}
		}
	}
	return ir.Verdict{}, fmt.Errorf("%w: %w", ErrUnavailable, lastErr)
}

func (h *HTTPClassifier) doRequest(ctx context.Context, body []byte) (ir.Verdict, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return ir.Verdict{}, NewFatalError(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ir.Verdict{}, NewFatalError(err)
		}
		return ir.Verdict{}, NewTransientError(fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return ir.Verdict{}, NewTransientError(fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return ir.Verdict{}, classifyHTTPError(resp.StatusCode, raw)
	}

	var out classifyResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return ir.Verdict{}, NewFatalError(fmt.Errorf("decode response: %w", err))
	}
	if out.IsValid == nil || out.Confidence == nil {
		return ir.Verdict{}, NewFatalError(fmt.Errorf("response missing is_valid or confidence"))
	}
	return ir.Verdict{IsValid: *out.IsValid, Confidence: *out.Confidence}, nil
}

// classifyHTTPError determines if an HTTP error is transient or fatal.
func classifyHTTPError(statusCode int, body []byte) error {
	s := string(body)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	err := fmt.Errorf("model service error (status %d): %s", statusCode, s)
	switch {
	case statusCode == http.StatusTooManyRequests, statusCode >= 500:
		return NewTransientError(err)
	default:
		return NewFatalError(err)
	}
}
