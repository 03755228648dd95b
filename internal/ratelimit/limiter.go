// Package ratelimit provides request pacing for the traversal engine.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a minimum spacing between consecutive requests on each
// worker slot, without serializing unrelated concurrent fetches. Slot i
// gets its own token-bucket limiter, so a crawl with N slots issues at
// most N requests per delay window while slots stay independent.
type Pacer struct {
	slots []*rate.Limiter
	delay time.Duration
}

// NewPacer creates a pacer for the given number of worker slots. A
// non-positive delay disables pacing.
func NewPacer(slots int, delay time.Duration) *Pacer {
	if slots < 1 {
		slots = 1
	}
	p := &Pacer{delay: delay}
	if delay <= 0 {
		return p
	}

	p.slots = make([]*rate.Limiter, slots)
	for i := range p.slots {
		p.slots[i] = rate.NewLimiter(rate.Every(delay), 1)
	}
	return p
}

// Wait blocks until slot may issue its next request or the context is
// cancelled. Slot indices wrap around, so callers can pass any
// non-negative number.
func (p *Pacer) Wait(ctx context.Context, slot int) error {
	if p.slots == nil {
		return ctx.Err()
	}
	if slot < 0 {
		slot = -slot
	}
	return p.slots[slot%len(p.slots)].Wait(ctx)
}

// Delay returns the configured minimum spacing.
func (p *Pacer) Delay() time.Duration {
	return p.delay
}

// Slots returns the number of independent worker slots.
func (p *Pacer) Slots() int {
	if p.slots == nil {
		return 0
	}
	return len(p.slots)
}
