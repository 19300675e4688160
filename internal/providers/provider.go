package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alex-user-go/tripplan/internal/trip"
)

// FlightSearcher searches flight offers.
type FlightSearcher interface {
	SearchFlights(ctx context.Context, origin, destination string, date time.Time, passengers, max int) ([]RawFlightOffer, error)
}

// LodgingSearcher searches lodging listings.
type LodgingSearcher interface {
	SearchLodging(ctx context.Context, destination string, date time.Time, guests int) ([]RawLodging, error)
}

// AttractionFinder looks up points of interest and their photos.
type AttractionFinder interface {
	FindAttractions(ctx context.Context, loc Location, radius, maxResults int) ([]RawPlace, error)
	GetPhotos(ctx context.Context, placeID string, maxPhotos int) ([]RawPhotoRef, error)
}

// CultureSummarizer returns a cultural summary for a country.
type CultureSummarizer interface {
	SummarizeCulture(ctx context.Context, country string) (RawCultureSummary, error)
}

// DirectionsProvider returns routes between two places.
type DirectionsProvider interface {
	GetDirections(ctx context.Context, origin, destination, mode string, departure time.Time) ([]RawRoute, error)
}

// Location is either a place name or a coordinate pair.
type Location struct {
	Name   string
	Coords *trip.LatLng
}

func (l Location) String() string {
	if l.Coords != nil {
		return l.Coords.String()
	}
	return l.Name
}

var (
	// ErrNotFound is returned by clients when the upstream has no match.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest is returned when the upstream rejects the parameters.
	ErrInvalidRequest = errors.New("invalid request")
)

// AmbiguousError is returned when a lookup matched several topics.
type AmbiguousError struct {
	Query      string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%q matches several topics: %s", e.Query, strings.Join(e.Candidates, ", "))
}

// classify maps a client error to a provider failure. Context errors are
// returned as upstream failures; the coordinator decides whether the
// deadline fired.
func classify(err error, op string) *trip.ProviderError {
	var amb *AmbiguousError
	switch {
	case errors.As(err, &amb):
		return trip.Ambiguous(fmt.Sprintf("%s: several topics match %q", op, amb.Query), amb.Candidates)
	case errors.Is(err, ErrNotFound):
		return &trip.ProviderError{Kind: trip.KindNotFound, Message: op + ": " + err.Error(), Err: err}
	case errors.Is(err, ErrInvalidRequest):
		return &trip.ProviderError{Kind: trip.KindInvalidInput, Message: op + ": " + err.Error(), Err: err}
	default:
		return trip.Upstream(err, "%s", op)
	}
}
