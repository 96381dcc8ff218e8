package directory

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimited wraps a Gateway with a token bucket so that org-wide audience
// fan-out cannot stampede the upstream. Waits are cooperative: a cancelled
// context aborts the pending lookup.
type RateLimited struct {
	next Gateway
	lim  *rate.Limiter
}

// NewRateLimited builds the wrapper. perSecond <= 0 disables limiting.
func NewRateLimited(next Gateway, perSecond, burst int) *RateLimited {
	if perSecond <= 0 {
		return &RateLimited{next: next, lim: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{next: next, lim: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (g *RateLimited) GetClassRoster(ctx context.Context, classID int64) ([]int64, error) {
	if err := g.lim.Wait(ctx); err != nil {
		return nil, err
	}
	return g.next.GetClassRoster(ctx, classID)
}

func (g *RateLimited) IsInClass(ctx context.Context, userID, classID int64) (bool, error) {
	if err := g.lim.Wait(ctx); err != nil {
		return false, err
	}
	return g.next.IsInClass(ctx, userID, classID)
}

func (g *RateLimited) ListStudents(ctx context.Context) ([]int64, error) {
	if err := g.lim.Wait(ctx); err != nil {
		return nil, err
	}
	return g.next.ListStudents(ctx)
}
