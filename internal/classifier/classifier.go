// Package classifier adapts external validity models to the validator.
//
// A Classifier returns a document-level verdict (is the text a valid
// agreement, and how confident is the model). The validator treats any
// error as "unavailable" and falls back to a rule-derived verdict.
package classifier

import (
	"context"
	"errors"

	"github.com/codewithboateng/lexcheck/internal/ir"
)

// ErrUnavailable is wrapped by adapters when no verdict could be produced.
var ErrUnavailable = errors.New("classifier unavailable")

// Classifier produces a validity verdict for raw document text.
type Classifier interface {
	Classify(ctx context.Context, text string) (ir.Verdict, error)
}

// Func adapts a plain function to Classifier.
type Func func(ctx context.Context, text string) (ir.Verdict, error)

func (f Func) Classify(ctx context.Context, text string) (ir.Verdict, error) { return f(ctx, text) }

// Static always returns the same verdict or error.
type Static struct {
	Verdict ir.Verdict
	Err     error
}

func (s Static) Classify(ctx context.Context, _ string) (ir.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return ir.Verdict{}, err
	}
	if s.Err != nil {
		return ir.Verdict{}, s.Err
	}
	return s.Verdict, nil
}
