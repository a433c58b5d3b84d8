package generation

import "time"

// TickLimiter paces a loop to a fixed tick interval.
type TickLimiter struct {
	interval time.Duration
	next     time.Time
}

// NewTickLimiter creates a limiter for the given interval. A non-positive
// interval disables waiting.
func NewTickLimiter(interval time.Duration) *TickLimiter {
	return &TickLimiter{interval: interval}
}

// Wait blocks until the next tick is due.
// Uses a hybrid sleep/spin approach for sub-millisecond precision.
func (l *TickLimiter) Wait() {
	if l.interval <= 0 {
		l.next = time.Time{}
		return
	}

	if l.next.IsZero() {
		l.next = time.Now().Add(l.interval)
	} else {
		l.next = l.next.Add(l.interval)
	}

	for {
		remaining := time.Until(l.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
		if time.Until(l.next) <= 0 {
			break
		}
	}

	// If we're significantly late (e.g., hitch), resync to avoid drift
	if late := -time.Until(l.next); late > l.interval {
		l.next = time.Now().Add(l.interval)
	}
}
