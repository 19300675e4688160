package planner

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/alex-user-go/tripplan/internal/normalize"
	"github.com/alex-user-go/tripplan/internal/obs"
	"github.com/alex-user-go/tripplan/internal/providers"
	"github.com/alex-user-go/tripplan/internal/trip"
)

// Coordinator plans trips by querying every category concurrently.
type Coordinator struct {
	adapters Adapters
	cfg      Config
	backoff  Backoff

	logger       *zap.Logger
	metrics      *obs.Metrics
	tracer       trace.Tracer
	meter        metric.Meter
	planDuration metric.Float64Histogram

	now   func() time.Time
	newID func() string
}

// NewCoordinator creates a new Coordinator.
func NewCoordinator(adapters Adapters, cfg Config, opts ...Option) *Coordinator {
	cfg = cfg.withDefaults()
	c := defaultCoordinator(cfg)
	c.adapters = adapters
	for _, opt := range opts {
		opt(c)
	}

	h, err := c.meter.Float64Histogram("tripplan.plan.duration",
		metric.WithDescription("Time to assemble a trip plan"),
		metric.WithUnit("ms"))
	if err != nil {
		c.logger.Warn("failed to create plan duration instrument", zap.Error(err))
	}
	c.planDuration = h
	return c
}

// PlanTrip fans the query out to the requested categories (all when none
// are given) and assembles the answers in plan order.
//
// An invalid query returns a *trip.QueryError and no plan. Otherwise a plan
// is always returned; the error is ErrAllCategoriesFailed when no category
// produced data, or the cause of ctx when the caller cancelled.
func (c *Coordinator) PlanTrip(ctx context.Context, q trip.Query, categories ...trip.Category) (*trip.Plan, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	cats, err := enabledCategories(categories)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	ctx, span := c.tracer.Start(ctx, "planner.PlanTrip", trace.WithAttributes(
		attribute.String("trip.origin", q.Origin),
		attribute.String("trip.destination", q.Destination),
		attribute.String("trip.date", q.DateString()),
		attribute.Int("trip.categories", len(cats)),
	))
	defer span.End()

	gctx, cancel := context.WithTimeout(ctx, c.cfg.GlobalTimeout)
	defer cancel()

	asm := newAssembler(cats)
	for _, cat := range cats {
		go c.dispatch(gctx, asm, cat, q)
	}
	delivered := asm.wait(gctx)
	elapsed := time.Since(started)

	plan := &trip.Plan{
		ID:          c.newID(),
		Origin:      q.Origin,
		Destination: q.Destination,
		Date:        q.DateString(),
		GeneratedAt: c.now().UTC(),
		DurationMs:  elapsed.Milliseconds(),
	}
	asm.build(plan, delivered, elapsed)

	for _, cat := range cats {
		meta := plan.Slot(cat)
		c.metrics.ObserveCategory(cat.String(), meta.Outcome(), time.Duration(meta.DurationMs)*time.Millisecond)
	}

	result, err := c.result(ctx, plan, len(cats))
	c.metrics.ObservePlan(result)
	if c.planDuration != nil {
		c.planDuration.Record(ctx, float64(elapsed.Milliseconds()),
			metric.WithAttributes(attribute.String("result", result)))
	}

	span.SetAttributes(
		attribute.String("plan.id", plan.ID),
		attribute.String("plan.result", result),
		attribute.Int("plan.succeeded", plan.Succeeded()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	c.logger.Info("plan assembled",
		zap.String("plan_id", plan.ID),
		zap.String("origin", q.Origin),
		zap.String("destination", q.Destination),
		zap.String("date", plan.Date),
		zap.String("result", result),
		zap.Int("succeeded", plan.Succeeded()),
		zap.Int("attempted", plan.Attempted()),
		zap.Duration("duration", elapsed))

	return plan, err
}

func (c *Coordinator) result(ctx context.Context, plan *trip.Plan, enabled int) (string, error) {
	if ctx.Err() != nil {
		return "cancelled", context.Cause(ctx)
	}
	switch plan.Succeeded() {
	case 0:
		return "failed", ErrAllCategoriesFailed
	case enabled:
		return "complete", nil
	default:
		return "partial", nil
	}
}

func enabledCategories(categories []trip.Category) ([]trip.Category, error) {
	if len(categories) == 0 {
		return trip.AllCategories(), nil
	}
	var seen [trip.NumCategories]bool
	out := make([]trip.Category, 0, len(categories))
	for _, cat := range categories {
		if !cat.Valid() {
			return nil, &trip.QueryError{Field: "categories", Message: fmt.Sprintf("unknown category %d", int(cat))}
		}
		if seen[cat] {
			continue
		}
		seen[cat] = true
		out = append(out, cat)
	}
	return out, nil
}

func (c *Coordinator) dispatch(ctx context.Context, asm *assembler, cat trip.Category, q trip.Query) {
	attempts := &asm.attempts[cat]
	switch cat {
	case trip.CategoryFlights:
		s := run(ctx, c, cat, c.adapters.Flights, q, attempts, c.flights)
		asm.deliver(cat, func(p *trip.Plan) { p.Flights = s })
	case trip.CategoryLodging:
		s := run(ctx, c, cat, c.adapters.Lodging, q, attempts, c.lodging)
		asm.deliver(cat, func(p *trip.Plan) { p.Lodging = s })
	case trip.CategoryAttractions:
		s := run(ctx, c, cat, c.adapters.Attractions, q, attempts, c.attractions)
		asm.deliver(cat, func(p *trip.Plan) { p.Attractions = s })
	case trip.CategoryCulture:
		s := run(ctx, c, cat, c.adapters.Culture, q, attempts, c.culture)
		asm.deliver(cat, func(p *trip.Plan) { p.Culture = s })
	case trip.CategoryTransport:
		s := run(ctx, c, cat, c.adapters.Transport, q, attempts, c.transport)
		asm.deliver(cat, func(p *trip.Plan) { p.Transport = s })
	}
}

// run drives one category: bounded retries of upstream failures inside the
// category deadline, then normalization of the payload.
func run[R, T any](
	ctx context.Context,
	c *Coordinator,
	cat trip.Category,
	a providers.Adapter[R],
	q trip.Query,
	attempts *atomic.Int32,
	convert func(R) trip.Result[T],
) trip.Slot[T] {
	start := time.Now()
	if a == nil {
		return trip.NewSlot(cat, trip.Failure[T](trip.NotImplemented("no %s provider configured", cat)), 0, 0)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeoutFor(cat))
	defer cancel()
	ctx, span := c.tracer.Start(ctx, "planner.category", trace.WithAttributes(
		attribute.String("category", cat.String()),
	))
	defer span.End()

	var r trip.Result[R]
	for attempt := 0; ; attempt++ {
		attempts.Add(1)
		c.metrics.IncAttempts(cat.String())
		r = invoke(ctx, c.tracer, cat, attempt, a, q)
		if !r.Retryable() || attempt >= c.cfg.RetryCount {
			break
		}

		delay := c.backoff.Delay(attempt)
		deadline, ok := ctx.Deadline()
		if !fits(time.Now(), delay, deadline, ok) {
			break
		}
		c.logger.Debug("retrying category",
			zap.String("category", cat.String()),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(r.Err()))
		if !sleep(ctx, delay) {
			r = trip.Timeout[R]()
			break
		}
	}

	var res trip.Result[T]
	if raw, ok := r.Payload(); ok {
		res = convert(raw)
	} else {
		res = trip.Map(r, func(R) T {
			var zero T
			return zero
		})
	}

	slot := trip.NewSlot(cat, res, int(attempts.Load()), time.Since(start))
	span.SetAttributes(
		attribute.String("outcome", slot.Outcome()),
		attribute.Int("attempts", slot.Attempts),
	)
	if slot.Status != trip.StatusOK {
		span.SetStatus(codes.Error, slot.Message)
		c.logger.Warn("category unavailable",
			zap.String("category", cat.String()),
			zap.String("outcome", slot.Outcome()),
			zap.String("message", slot.Message),
			zap.Int("attempts", slot.Attempts))
	}
	return slot
}

// invoke runs one adapter call in its own goroutine so that the deadline
// is honored even when the adapter ignores ctx.
func invoke[R any](ctx context.Context, tracer trace.Tracer, cat trip.Category, attempt int, a providers.Adapter[R], q trip.Query) trip.Result[R] {
	ctx, span := tracer.Start(ctx, "provider.fetch", trace.WithAttributes(
		attribute.String("category", cat.String()),
		attribute.Int("attempt", attempt+1),
	))
	defer span.End()

	ch := make(chan trip.Result[R], 1)
	go func() {
		defer func() {
			if v := recover(); v != nil {
				ch <- trip.Failure[R](trip.Upstream(fmt.Errorf("panic: %v", v), "%s adapter panicked", cat))
			}
		}()
		ch <- a.Fetch(ctx, q)
	}()

	var r trip.Result[R]
	select {
	case r = <-ch:
		// An adapter that honors ctx reports expiry as an upstream error.
		if r.Retryable() && ctx.Err() != nil {
			r = trip.Timeout[R]()
		}
	case <-ctx.Done():
		r = trip.Timeout[R]()
	}

	span.SetAttributes(attribute.String("result", r.Outcome().String()))
	if perr := r.Err(); perr != nil {
		span.RecordError(perr)
	}
	return r
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Coordinator) flights(raw []providers.RawFlightOffer) trip.Result[[]trip.FlightOffer] {
	return nonEmpty(normalize.Flights(raw, c.cfg.Limits), "no usable flight offers")
}

func (c *Coordinator) lodging(raw []providers.RawLodging) trip.Result[[]trip.LodgingOption] {
	return nonEmpty(normalize.Lodging(raw, c.cfg.Limits), "no usable lodging options")
}

func (c *Coordinator) attractions(raw []providers.RawPlace) trip.Result[[]trip.Attraction] {
	return nonEmpty(normalize.Attractions(raw, c.cfg.Limits), "no usable attractions")
}

func (c *Coordinator) culture(raw providers.RawCultureSummary) trip.Result[trip.CulturalSummary] {
	s := normalize.Culture(raw, c.cfg.Limits)
	if s.Summary == "" {
		return trip.Failure[trip.CulturalSummary](trip.NotFound("no cultural summary for %q", raw.Title))
	}
	return trip.Success(s)
}

func (c *Coordinator) transport(raw providers.RawRoute) trip.Result[trip.TransportRoute] {
	r := normalize.Transport(raw, c.cfg.Limits)
	if len(r.Legs) == 0 {
		return trip.Failure[trip.TransportRoute](trip.NotFound("route has no steps"))
	}
	return trip.Success(r)
}

func nonEmpty[T any](items []T, msg string) trip.Result[[]T] {
	if len(items) == 0 {
		return trip.Failure[[]T](trip.NotFound("%s", msg))
	}
	return trip.Success(items)
}
