// Package ratelimit bounds how many plans one client may request per
// window.
package ratelimit

import (
	"sync"
	"time"
)

// Decision is the verdict for one request.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter grants Rate plans per Window to each client key. Windows are
// fixed and start at the first request of a key.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*window
	rate    int
	period  time.Duration
	now     func() time.Time
	done    chan struct{}
	stop    sync.Once
}

type window struct {
	left    int
	started time.Time
}

// New creates a new Limiter and starts sweeping idle clients.
func New(rate int, period time.Duration) *Limiter {
	l := &Limiter{
		clients: make(map[string]*window),
		rate:    max(rate, 0),
		period:  period,
		now:     time.Now,
		done:    make(chan struct{}),
	}

	go l.sweepLoop(5 * time.Minute)

	return l
}

// Close stops the sweeper.
func (l *Limiter) Close() {
	l.stop.Do(func() { close(l.done) })
}

// Allow reports whether key may make one more request.
func (l *Limiter) Allow(key string) bool {
	return l.Decide(key).Allowed
}

// Decide consumes one request for key and reports the outcome.
func (l *Limiter) Decide(key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.clients[key]
	if !ok || now.Sub(w.started) >= l.period {
		w = &window{left: l.rate, started: now}
		l.clients[key] = w
	}

	d := Decision{Limit: l.rate}
	if w.left > 0 {
		w.left--
		d.Allowed = true
		d.Remaining = w.left
		return d
	}
	d.RetryAfter = w.started.Add(l.period).Sub(now)
	return d
}

// Clients returns the number of tracked keys.
func (l *Limiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// sweep drops keys idle for two periods.
func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key, w := range l.clients {
		if now.Sub(w.started) > 2*l.period {
			delete(l.clients, key)
		}
	}
}

func (l *Limiter) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.done:
			return
		}
	}
}
