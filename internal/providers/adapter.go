package providers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/alex-user-go/tripplan/internal/trip"
)

// Adapter fetches the raw payload of one category. Implementations never
// panic on bad input and never cache across calls.
type Adapter[T any] interface {
	Fetch(ctx context.Context, q trip.Query) trip.Result[T]
}

// AdapterFunc turns a function into an Adapter.
type AdapterFunc[T any] func(ctx context.Context, q trip.Query) trip.Result[T]

// Fetch calls f.
func (f AdapterFunc[T]) Fetch(ctx context.Context, q trip.Query) trip.Result[T] {
	return f(ctx, q)
}

// Options configures the adapters.
type Options struct {
	// MaxResults bounds list answers (offers, places).
	MaxResults int
	// PhotoCap bounds the photos fetched per place.
	PhotoCap int
	// PhotoFanOut bounds concurrent photo lookups inside one adapter call.
	PhotoFanOut int
	// Now is the clock used for date validation.
	Now    func() time.Time
	Logger *zap.Logger
}

// DefaultOptions returns the defaults used when a field is left zero.
func DefaultOptions() Options {
	return Options{
		MaxResults:  10,
		PhotoCap:    3,
		PhotoFanOut: 4,
		Now:         time.Now,
		Logger:      zap.NewNop(),
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxResults <= 0 {
		o.MaxResults = def.MaxResults
	}
	if o.PhotoCap <= 0 {
		o.PhotoCap = def.PhotoCap
	}
	if o.PhotoFanOut <= 0 {
		o.PhotoFanOut = def.PhotoFanOut
	}
	if o.Now == nil {
		o.Now = def.Now
	}
	if o.Logger == nil {
		o.Logger = def.Logger
	}
	return o
}
