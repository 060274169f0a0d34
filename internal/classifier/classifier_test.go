package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/lexcheck/internal/ir"
)

func fastRetry(n int) RetryConfig {
	return RetryConfig{MaxAttempts: n, BackoffBase: time.Millisecond, BackoffMultiplier: 2, MaxBackoff: 5 * time.Millisecond}
}

func TestHTTPClassifier_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req classifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "This Agreement", req.Text)
		_, _ = w.Write([]byte(`{"is_valid":true,"confidence":0.93}`))
	}))
	defer srv.Close()

	v, err := NewHTTP(srv.URL).Classify(context.Background(), "This Agreement")
	require.NoError(t, err)
	assert.Equal(t, ir.Verdict{IsValid: true, Confidence: 0.93}, v)
}

func TestHTTPClassifier_RetriesTransient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"is_valid":false,"confidence":0.6}`))
	}))
	defer srv.Close()

	v, err := NewHTTP(srv.URL, WithRetryConfig(fastRetry(3))).Classify(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, v.IsValid)
	assert.EqualValues(t, 3, calls.Load())
}

func TestHTTPClassifier_FatalNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, WithRetryConfig(fastRetry(3))).Classify(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, IsFatal(err))
	assert.EqualValues(t, 1, calls.Load())
}

func TestHTTPClassifier_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"label":"valid"}`))
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, WithRetryConfig(fastRetry(2))).Classify(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		code      int
		transient bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
		{http.StatusInternalServerError, true},
		{http.StatusUnauthorized, false},
		{http.StatusNotFound, false},
	}
	for _, tt := range tests {
		err := classifyHTTPError(tt.code, []byte("boom"))
		assert.Equal(t, tt.transient, IsTransient(err), "status %d", tt.code)
		assert.Equal(t, !tt.transient, IsFatal(err), "status %d", tt.code)
	}
}

func TestCached(t *testing.T) {
	var calls int
	next := Func(func(ctx context.Context, text string) (ir.Verdict, error) {
		calls++
		if text == "bad" {
			return ir.Verdict{}, errors.New("down")
		}
		return ir.Verdict{IsValid: true, Confidence: 0.8}, nil
	})
	c, err := NewCached(next, 8)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		v, err := c.Classify(ctx, "doc")
		require.NoError(t, err)
		assert.Equal(t, 0.8, v.Confidence)
	}
	assert.Equal(t, 1, calls)

	_, err = c.Classify(ctx, "bad")
	assert.Error(t, err)
	_, err = c.Classify(ctx, "bad")
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 1, c.Len())

	_, err = NewCached(next, 0)
	assert.Error(t, err)
}

func TestStatic(t *testing.T) {
	v, err := Static{Verdict: ir.Verdict{IsValid: true, Confidence: 1}}.Classify(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, v.IsValid)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Static{}.Classify(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
