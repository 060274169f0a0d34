package classifier

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/zeebo/xxh3"

	"github.com/codewithboateng/lexcheck/internal/ir"
	"github.com/codewithboateng/lexcheck/internal/metrics"
)

// Cached memoizes successful verdicts keyed by the xxh3-128 hash of the text.
// Errors are never cached.
type Cached struct {
	next  Classifier
	cache *lru.ARCCache
}

// NewCached wraps next with an ARC cache holding up to size verdicts.
func NewCached(next Classifier, size int) (*Cached, error) {
	arc, err := lru.NewARC(size)
	if err != nil {
		return nil, fmt.Errorf("classifier cache: %w", err)
	}
	return &Cached{next: next, cache: arc}, nil
}

func (c *Cached) Classify(ctx context.Context, text string) (ir.Verdict, error) {
	key := xxh3.HashString128(text)
	if v, ok := c.cache.Get(key); ok {
		metrics.ClassifierCacheHits.Inc()
		return v.(ir.Verdict), nil
	}
	metrics.ClassifierCacheMisses.Inc()

	v, err := c.next.Classify(ctx, text)
	if err != nil {
		return ir.Verdict{}, err
	}
	c.cache.Add(key, v)
	return v, nil
}

// Len returns the number of cached verdicts.
func (c *Cached) Len() int { return c.cache.Len() }
