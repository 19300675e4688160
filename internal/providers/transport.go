package providers

import (
	"context"
	"slices"

	"github.com/alex-user-go/tripplan/internal/trip"
)

// TransportAdapter fetches a local transport route.
type TransportAdapter struct {
	directions DirectionsProvider
}

// NewTransportAdapter creates a new TransportAdapter.
func NewTransportAdapter(directions DirectionsProvider) *TransportAdapter {
	return &TransportAdapter{directions: directions}
}

// Fetch returns the first route between the query's transport endpoints.
func (a *TransportAdapter) Fetch(ctx context.Context, q trip.Query) trip.Result[RawRoute] {
	from, to := q.TransportEndpoints()
	if from == "" || to == "" {
		return trip.Failure[RawRoute](trip.InvalidInput("transport needs an origin and a destination"))
	}
	if !slices.Contains(trip.TravelModes, q.TravelMode) {
		return trip.Failure[RawRoute](trip.InvalidInput("unsupported travel mode %q", q.TravelMode))
	}
	if a.directions == nil {
		return trip.Failure[RawRoute](trip.NotImplemented("no directions provider configured"))
	}

	routes, err := a.directions.GetDirections(ctx, from, to, q.TravelMode, q.DepartureAt)
	if err != nil {
		return trip.Failure[RawRoute](classify(err, "directions"))
	}
	if len(routes) == 0 {
		return trip.Failure[RawRoute](trip.NotFound("no routes from %s to %s", from, to))
	}
	return trip.Success(routes[0])
}
