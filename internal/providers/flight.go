package providers

import (
	"context"
	"regexp"
	"time"

	"github.com/alex-user-go/tripplan/internal/trip"
)

// maxPassengers is the upper bound accepted by the offers search.
const maxPassengers = 9

var iataCode = regexp.MustCompile(`^[A-Z]{3}$`)

// FlightAdapter fetches flight offers for the trip date.
type FlightAdapter struct {
	searcher FlightSearcher
	opts     Options
}

// NewFlightAdapter creates a new FlightAdapter.
func NewFlightAdapter(searcher FlightSearcher, opts Options) *FlightAdapter {
	return &FlightAdapter{searcher: searcher, opts: opts.withDefaults()}
}

// Fetch validates the query and searches offers.
func (a *FlightAdapter) Fetch(ctx context.Context, q trip.Query) trip.Result[[]RawFlightOffer] {
	if perr := a.validate(q); perr != nil {
		return trip.Failure[[]RawFlightOffer](perr)
	}
	if a.searcher == nil {
		return trip.Failure[[]RawFlightOffer](trip.NotImplemented("no flight provider configured"))
	}

	offers, err := a.searcher.SearchFlights(ctx, q.Origin, q.Destination, q.Date, q.Passengers, a.opts.MaxResults)
	if err != nil {
		return trip.Failure[[]RawFlightOffer](classify(err, "flight search"))
	}
	if len(offers) == 0 {
		return trip.Failure[[]RawFlightOffer](trip.NotFound("no flight offers from %s to %s on %s", q.Origin, q.Destination, q.DateString()))
	}
	if len(offers) > a.opts.MaxResults {
		offers = offers[:a.opts.MaxResults]
	}
	return trip.Success(offers)
}

func (a *FlightAdapter) validate(q trip.Query) *trip.ProviderError {
	if !iataCode.MatchString(q.Origin) {
		return trip.InvalidInput("origin %q is not an IATA airport code", q.Origin)
	}
	if !iataCode.MatchString(q.Destination) {
		return trip.InvalidInput("destination %q is not an IATA airport code", q.Destination)
	}
	if q.Origin == q.Destination {
		return trip.InvalidInput("origin and destination are both %s", q.Origin)
	}
	if q.Date.Before(today(a.opts.Now())) {
		return trip.InvalidInput("date %s is in the past", q.DateString())
	}
	if q.Passengers < 1 || q.Passengers > maxPassengers {
		return trip.InvalidInput("passengers must be between 1 and %d", maxPassengers)
	}
	return nil
}

func today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
