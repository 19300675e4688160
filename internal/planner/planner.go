// Package planner fans a trip query out to the category adapters and
// assembles their answers into a plan.
package planner

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/alex-user-go/tripplan/internal/normalize"
	"github.com/alex-user-go/tripplan/internal/obs"
	"github.com/alex-user-go/tripplan/internal/providers"
	"github.com/alex-user-go/tripplan/internal/trip"
)

// ErrAllCategoriesFailed is returned together with the plan when no
// attempted category produced data.
var ErrAllCategoriesFailed = errors.New("all categories failed")

const instrumentation = "github.com/alex-user-go/tripplan/internal/planner"

// Adapters bundles one adapter per category. A nil adapter leaves its
// category not implemented.
type Adapters struct {
	Flights     providers.Adapter[[]providers.RawFlightOffer]
	Lodging     providers.Adapter[[]providers.RawLodging]
	Attractions providers.Adapter[[]providers.RawPlace]
	Culture     providers.Adapter[providers.RawCultureSummary]
	Transport   providers.Adapter[providers.RawRoute]
}

// Config holds the coordinator knobs.
type Config struct {
	// Timeout bounds the whole attempt sequence of one category.
	Timeout time.Duration
	// CategoryTimeouts overrides Timeout per category.
	CategoryTimeouts map[trip.Category]time.Duration
	// GlobalTimeout bounds the joint wait for all categories.
	GlobalTimeout time.Duration
	// RetryCount is the number of retries after the first attempt. Zero
	// disables retries; it is not replaced by the default.
	RetryCount int
	// BackoffBase is the first backoff ceiling. Zero retries immediately.
	BackoffBase time.Duration
	BackoffMax  time.Duration
	Limits      normalize.Limits
}

// DefaultConfig returns the defaults: 10s category and global timeouts,
// two retries with a 500ms backoff base. NewCoordinator fills only zero
// timeouts and limits from it; start from DefaultConfig to get retries.
func DefaultConfig() Config {
	return Config{
		Timeout:       10 * time.Second,
		GlobalTimeout: 10 * time.Second,
		RetryCount:    2,
		BackoffBase:   500 * time.Millisecond,
		Limits:        normalize.DefaultLimits(),
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.GlobalTimeout <= 0 {
		c.GlobalTimeout = def.GlobalTimeout
	}
	if c.RetryCount < 0 {
		c.RetryCount = 0
	}
	if c.BackoffBase < 0 {
		c.BackoffBase = 0
	}
	c.Limits = c.Limits.WithDefaults()
	return c
}

func (c Config) timeoutFor(cat trip.Category) time.Duration {
	if d, ok := c.CategoryTimeouts[cat]; ok && d > 0 {
		return d
	}
	return c.Timeout
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithMetrics sets the Prometheus metrics.
func WithMetrics(m *obs.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithTracerProvider sets the tracer provider used for plan spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Coordinator) { c.tracer = tp.Tracer(instrumentation) }
}

// WithMeterProvider sets the meter provider used for plan durations.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *Coordinator) { c.meter = mp.Meter(instrumentation) }
}

// WithClock sets the clock.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithJitter sets the backoff jitter source.
func WithJitter(f func() float64) Option {
	return func(c *Coordinator) { c.backoff.Jitter = f }
}

// WithIDGenerator sets the plan ID generator.
func WithIDGenerator(f func() string) Option {
	return func(c *Coordinator) { c.newID = f }
}

func defaultCoordinator(cfg Config) *Coordinator {
	return &Coordinator{
		cfg:     cfg,
		logger:  zap.NewNop(),
		tracer:  otel.Tracer(instrumentation),
		meter:   otel.Meter(instrumentation),
		now:     time.Now,
		newID:   uuid.NewString,
		backoff: Backoff{Base: cfg.BackoffBase, Multiplier: 2, Max: cfg.BackoffMax},
	}
}
