// Package cache stores assembled plans and collapses concurrent requests
// for the same query into one planning run.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/alex-user-go/tripplan/internal/obs"
	"github.com/alex-user-go/tripplan/internal/trip"
)

// PlanFunc assembles a plan for a cache miss.
type PlanFunc func(ctx context.Context) (*trip.Plan, error)

// Cache provides plan caching with TTL and request collapsing.
type Cache struct {
	store   Store
	ttl     time.Duration
	group   singleflight.Group
	logger  *zap.Logger
	metrics *obs.Metrics
}

// Option customizes a Cache.
type Option func(*Cache)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// WithMetrics sets the metrics.
func WithMetrics(m *obs.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// New creates a new Cache on top of store.
func New(store Store, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		ttl:    ttl,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key derives a cache key from every query field that influences a plan.
func Key(q trip.Query, categories []trip.Category) string {
	cats := slices.Clone(categories)
	if len(cats) == 0 {
		cats = trip.AllCategories()
	}
	slices.Sort(cats)
	cats = slices.Compact(cats)
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.String()
	}

	coords := ""
	if q.Coordinates != nil {
		coords = q.Coordinates.String()
	}
	departure := ""
	if !q.DepartureAt.IsZero() {
		departure = q.DepartureAt.UTC().Format(time.RFC3339)
	}

	return strings.ToLower(fmt.Sprintf("%s:%s:%s:%d:%d:%s:%s:%s:%d:%s:%s:%s",
		q.Origin, q.Destination, q.DateString(), q.Passengers, q.Guests,
		q.City, q.Country, coords, q.RadiusMeters, q.TravelMode, departure,
		strings.Join(names, ",")))
}

// GetOrPlan returns a cached plan or runs plan. Concurrent calls for the
// same key share one run; the run is not cancelled when one waiter leaves.
// The boolean reports a cache hit.
//
// Only plans without transient failures are stored: a plan whose error is
// non-nil, or with a slot that timed out or errored, is returned but not
// cached.
func (c *Cache) GetOrPlan(ctx context.Context, key string, plan PlanFunc) (*trip.Plan, bool, error) {
	if p, ok := c.lookup(ctx, key); ok {
		c.metrics.IncCacheHits()
		return p, true, nil
	}
	c.metrics.IncCacheMisses()

	ch := c.group.DoChan(key, func() (any, error) {
		p, err := plan(context.WithoutCancel(ctx))
		if err == nil && cacheable(p) {
			c.save(context.WithoutCancel(ctx), key, p)
		}
		return p, err
	})

	select {
	case res := <-ch:
		p, _ := res.Val.(*trip.Plan)
		return p, false, res.Err
	case <-ctx.Done():
		return nil, false, context.Cause(ctx)
	}
}

// Invalidate removes a key.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

func (c *Cache) lookup(ctx context.Context, key string) (*trip.Plan, bool) {
	b, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var p trip.Plan
	if err := json.Unmarshal(b, &p); err != nil {
		c.logger.Warn("dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		_ = c.store.Delete(ctx, key)
		return nil, false
	}
	return &p, true
}

func (c *Cache) save(ctx context.Context, key string, p *trip.Plan) {
	b, err := json.Marshal(p)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, b, c.ttl); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func cacheable(p *trip.Plan) bool {
	if p == nil {
		return false
	}
	for _, s := range p.Slots() {
		if s.Reason == trip.ReasonTimeout || s.Reason == trip.ReasonError {
			return false
		}
	}
	return true
}
