// Package guardrails holds time budgets for one backfill batch
package guardrails

import (
	"context"
	"time"
)

// Timeouts bounds a batch; zero means no extra limit at that level
type Timeouts struct {
	// Batch covers claim, embed and write for one batch
	Batch time.Duration

	// Embed caps a single provider call, retry excluded
	Embed time.Duration
}

// ForBatch returns a context bounded by Batch
func ForBatch(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Batch)
}

// ForEmbed returns a context bounded by Embed and whatever the batch has left
func ForEmbed(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Embed)
}

// Remaining returns the time until the deadline on ctx, zero when none is set or it already passed
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout takes the tighter of d and the parent remainder; it never extends a parent deadline
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
