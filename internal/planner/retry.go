package planner

import (
	"math"
	"math/rand/v2"
	"time"
)

// Backoff computes exponential delays with full jitter: the delay before
// retry n is uniform in [0, Base*Multiplier^n).
type Backoff struct {
	Base       time.Duration
	Multiplier float64
	Max        time.Duration
	// Jitter returns a value in [0, 1). Defaults to math/rand/v2.
	Jitter func() float64
}

// Delay returns the wait before retry number attempt (zero based).
func (b Backoff) Delay(attempt int) time.Duration {
	if b.Base <= 0 {
		return 0
	}
	mult := b.Multiplier
	if mult < 1 {
		mult = 2
	}
	ceiling := float64(b.Base) * math.Pow(mult, float64(attempt))
	if b.Max > 0 && ceiling > float64(b.Max) {
		ceiling = float64(b.Max)
	}
	jitter := b.Jitter
	if jitter == nil {
		jitter = rand.Float64
	}
	return time.Duration(jitter() * ceiling)
}

// fits reports whether sleeping d from now still ends before the deadline.
func fits(now time.Time, d time.Duration, deadline time.Time, ok bool) bool {
	if !ok {
		return true
	}
	return now.Add(d).Before(deadline)
}
