package importer

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultSpacing is the minimum gap between outgoing lookups,
	// per Scryfall's fair-use expectations.
	DefaultSpacing = 100 * time.Millisecond

	// DefaultCooldown is the pause taken after a rate-limit signal
	// before the run continues with the next name.
	DefaultCooldown = 500 * time.Millisecond
)

// Governor serializes a run's lookups: it enforces a fixed
// inter-request spacing and a longer cooldown after the external
// service signals a rate limit. It never issues retries itself.
type Governor struct {
	limiter  *rate.Limiter
	cooldown time.Duration
}

// NewGovernor creates a governor with the given spacing and cooldown.
// Non-positive values fall back to the defaults.
func NewGovernor(spacing, cooldown time.Duration) *Governor {
	if spacing <= 0 {
		spacing = DefaultSpacing
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Governor{
		limiter:  rate.NewLimiter(rate.Every(spacing), 1),
		cooldown: cooldown,
	}
}

// Wait blocks until the next lookup may be issued or the context is
// cancelled.
func (g *Governor) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

// Cooldown pauses after a rate-limit signal. The pause is a suspension
// point: cancellation cuts it short.
func (g *Governor) Cooldown(ctx context.Context) error {
	timer := time.NewTimer(g.cooldown)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
