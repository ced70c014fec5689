package oracle

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/meltforce/liftlog/internal/models"
)

// Limited caps how often the wrapped oracle is called. A denied call fails
// immediately with ErrRateLimited instead of waiting, so the caller falls back
// to its deterministic result without delaying the response.
type Limited struct {
	inner   Oracle
	limiter *rate.Limiter
}

// Compile-time check: Limited satisfies Oracle.
var _ Oracle = (*Limited)(nil)

// NewLimited wraps inner with a budget of perMinute calls (burst of the same
// size). perMinute <= 0 disables the limit.
func NewLimited(inner Oracle, perMinute int) *Limited {
	limit := rate.Inf
	burst := 0
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
		burst = perMinute
	}
	return &Limited{inner: inner, limiter: rate.NewLimiter(limit, burst)}
}

func (l *Limited) Refine(ctx context.Context, req RefineRequest) (*Refinement, error) {
	if !l.limiter.Allow() {
		return nil, ErrRateLimited
	}
	return l.inner.Refine(ctx, req)
}

func (l *Limited) ParseSplit(ctx context.Context, text string) (*models.ParsedSplit, error) {
	if !l.limiter.Allow() {
		return nil, ErrRateLimited
	}
	return l.inner.ParseSplit(ctx, text)
}
