// Package publish fans finished validation runs out to subscribers.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/codewithboateng/lexcheck/internal/ir"
)

// Publisher delivers a run to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, run *ir.Run) error
	Close() error
}

// Subject returns "<base>.<document type in lower case>".
func Subject(base string, dt ir.DocumentType) string {
	return strings.TrimSuffix(base, ".") + "." + strings.ToLower(string(dt))
}

// NATSPublisher publishes each run as JSON on a per-document-type subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
	owned   bool
}

// Connect dials url and returns a publisher that owns the connection.
func Connect(url, subject string, logger *slog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("lexcheck"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	p := NewNATS(conn, subject, logger)
	p.owned = true
	return p, nil
}

// NewNATS wraps an existing connection; Close leaves it open.
func NewNATS(conn *nats.Conn, subject string, logger *slog.Logger) *NATSPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NATSPublisher{conn: conn, subject: subject, logger: logger}
}

func (p *NATSPublisher) Publish(ctx context.Context, run *ir.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	subj := Subject(p.subject, run.DocumentType)
	if err := p.conn.Publish(subj, data); err != nil {
		return fmt.Errorf("publish %s: %w", subj, err)
	}
	p.logger.Debug("run published", "subject", subj, "run", run.ID, "bytes", len(data))
	return nil
}

// Close drains the connection if this publisher opened it.
func (p *NATSPublisher) Close() error {
	if !p.owned {
		return nil
	}
	return p.conn.Drain()
}

// Nop discards runs; used when NATS is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, *ir.Run) error { return nil }
func (Nop) Close() error                           { return nil }
