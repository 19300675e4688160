package providers

import (
	"context"

	"github.com/alex-user-go/tripplan/internal/trip"
)

// LodgingAdapter fetches lodging listings. Without a searcher it reports
// the category as not implemented.
type LodgingAdapter struct {
	searcher LodgingSearcher
	opts     Options
}

// NewLodgingAdapter creates a new LodgingAdapter. searcher may be nil.
func NewLodgingAdapter(searcher LodgingSearcher, opts Options) *LodgingAdapter {
	return &LodgingAdapter{searcher: searcher, opts: opts.withDefaults()}
}

// Fetch searches listings in the destination city.
func (a *LodgingAdapter) Fetch(ctx context.Context, q trip.Query) trip.Result[[]RawLodging] {
	if q.City == "" {
		return trip.Failure[[]RawLodging](trip.InvalidInput("destination is required for lodging"))
	}
	if q.Guests < 1 {
		return trip.Failure[[]RawLodging](trip.InvalidInput("guests must be at least 1"))
	}
	if a.searcher == nil {
		return trip.Failure[[]RawLodging](trip.NotImplemented("lodging search is not available"))
	}

	listings, err := a.searcher.SearchLodging(ctx, q.City, q.Date, q.Guests)
	if err != nil {
		return trip.Failure[[]RawLodging](classify(err, "lodging search"))
	}
	if len(listings) == 0 {
		return trip.Failure[[]RawLodging](trip.NotFound("no lodging in %s", q.City))
	}
	if len(listings) > a.opts.MaxResults {
		listings = listings[:a.opts.MaxResults]
	}
	return trip.Success(listings)
}
