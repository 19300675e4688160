package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

var errProviderUnavailable = errors.New("provider unavailable")

// chaos injects random latency and failures into a fake upstream.
type chaos struct {
	minLatency  time.Duration
	maxLatency  time.Duration
	failureRate float64
}

// wait sleeps for a random latency and then fails with failureRate
// probability.
func (c chaos) wait(ctx context.Context) error {
	latency := c.minLatency
	if c.maxLatency > c.minLatency {
		latency += rand.N(c.maxLatency - c.minLatency)
	}
	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return context.Cause(ctx)
		}
	}
	if c.failureRate > 0 && rand.Float64() < c.failureRate {
		return errProviderUnavailable
	}
	return nil
}

// chance reports true with probability p.
func chance(p float64) bool {
	return rand.Float64() < p
}

// randomPrice returns a price in [min, max) rounded down to cents.
func randomPrice(min, max float64) float64 {
	price := min + rand.Float64()*(max-min)
	return float64(int(price*100)) / 100
}
