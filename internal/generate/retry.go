package generate

import (
	"context"
	"time"
)

// Backoff is a bounded exponential retry policy.
type Backoff struct {
	Attempts int           // total calls, including the first
	Base     time.Duration // delay after the first failure
	Max      time.Duration // 0 disables the cap
	Factor   float64
}

// DefaultBackoff allows 4 calls waiting 2s, 4s, then 8s.
func DefaultBackoff() Backoff {
	return Backoff{Attempts: 4, Base: 2 * time.Second, Max: 30 * time.Second, Factor: 2}
}

// Delay returns the wait after the given failed attempt (1-based).
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	factor := b.Factor
	if factor < 1 {
		factor = 1
	}
	d := float64(b.Base)
	for i := 1; i < attempt; i++ {
		d *= factor
		if b.Max > 0 && d >= float64(b.Max) {
			return b.Max
		}
	}
	if b.Max > 0 && time.Duration(d) > b.Max {
		return b.Max
	}
	return time.Duration(d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
