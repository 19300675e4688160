package trip

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Travel modes accepted by the transport provider.
const (
	ModeTransit   = "transit"
	ModeDriving   = "driving"
	ModeWalking   = "walking"
	ModeBicycling = "bicycling"
)

// TravelModes lists the supported transport modes.
var TravelModes = []string{ModeTransit, ModeDriving, ModeWalking, ModeBicycling}

// DefaultRadiusMeters is the attraction search radius when none is given.
const DefaultRadiusMeters = 5000

// LatLng is a coordinate pair in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the pair lies within WGS84 bounds.
func (l LatLng) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

func (l LatLng) String() string {
	return fmt.Sprintf("%.6f,%.6f", l.Lat, l.Lng)
}

// Query is a trip planning request. It is a value type: adapters receive
// copies and never mutate it.
type Query struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Date        time.Time `json:"-"`
	Passengers  int       `json:"passengers"`
	Guests      int       `json:"guests"`

	// City is the place name used for lodging, attractions and local
	// transport. Defaults to Destination.
	City string `json:"city,omitempty"`
	// Country is the subject of the cultural lookup. Defaults to City.
	Country string `json:"country,omitempty"`
	// Coordinates override City for the attraction search.
	Coordinates  *LatLng  `json:"coordinates,omitempty"`
	RadiusMeters int       `json:"radius_meters,omitempty"`
	TravelMode   string    `json:"travel_mode,omitempty"`
	DepartureAt  time.Time `json:"-"`
}

// Option customizes a Query built by NewQuery.
type Option func(*Query)

// WithPassengers sets the passenger count.
func WithPassengers(n int) Option {
	return func(q *Query) { q.Passengers = n }
}

// WithGuests sets the lodging guest count.
func WithGuests(n int) Option {
	return func(q *Query) { q.Guests = n }
}

// WithCity sets the destination place name.
func WithCity(city string) Option {
	return func(q *Query) { q.City = city }
}

// WithCountry sets the country used for the cultural lookup.
func WithCountry(country string) Option {
	return func(q *Query) { q.Country = country }
}

// WithCoordinates sets the attraction search center.
func WithCoordinates(lat, lng float64) Option {
	return func(q *Query) { q.Coordinates = &LatLng{Lat: lat, Lng: lng} }
}

// WithRadius sets the attraction search radius in metres.
func WithRadius(meters int) Option {
	return func(q *Query) { q.RadiusMeters = meters }
}

// WithTravelMode sets the local transport mode.
func WithTravelMode(mode string) Option {
	return func(q *Query) { q.TravelMode = mode }
}

// WithDepartureAt sets the local transport departure time.
func WithDepartureAt(t time.Time) Option {
	return func(q *Query) { q.DepartureAt = t }
}

// NewQuery builds a Query with defaults applied. It does not validate;
// see Validate.
func NewQuery(origin, destination string, date time.Time, opts ...Option) Query {
	q := Query{
		Origin:      strings.TrimSpace(origin),
		Destination: strings.TrimSpace(destination),
		Date:        truncateDate(date),
	}
	for _, opt := range opts {
		opt(&q)
	}
	return q.withDefaults()
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be in YYYY-MM-DD format")
	}
	return d, nil
}

func (q Query) withDefaults() Query {
	q.City = strings.TrimSpace(q.City)
	q.Country = strings.TrimSpace(q.Country)
	if q.Passengers == 0 {
		q.Passengers = 1
	}
	if q.Guests == 0 {
		q.Guests = q.Passengers
	}
	if q.City == "" {
		q.City = q.Destination
	}
	if q.Country == "" {
		q.Country = q.City
	}
	if q.RadiusMeters == 0 {
		q.RadiusMeters = DefaultRadiusMeters
	}
	q.TravelMode = strings.ToLower(strings.TrimSpace(q.TravelMode))
	if q.TravelMode == "" {
		q.TravelMode = ModeTransit
	}
	return q
}

// Validate checks the fields every category depends on. Category specific
// checks are left to the adapters.
func (q Query) Validate() error {
	if q.Origin == "" {
		return &QueryError{Field: "origin", Message: "is required"}
	}
	if q.Destination == "" {
		return &QueryError{Field: "destination", Message: "is required"}
	}
	if q.Date.IsZero() {
		return &QueryError{Field: "date", Message: "is required"}
	}
	if q.Passengers < 0 {
		return &QueryError{Field: "passengers", Message: "must not be negative"}
	}
	if q.Guests < 0 {
		return &QueryError{Field: "guests", Message: "must not be negative"}
	}
	if q.RadiusMeters < 0 {
		return &QueryError{Field: "radius_meters", Message: "must not be negative"}
	}
	return nil
}

// TransportEndpoints returns the local transport route: from the arrival
// point to the city. When no distinct city is known the route spans the
// whole trip.
func (q Query) TransportEndpoints() (from, to string) {
	if q.City != "" && !strings.EqualFold(q.City, q.Destination) {
		return q.Destination, q.City
	}
	return q.Origin, q.Destination
}

// DateString formats Date as YYYY-MM-DD.
func (q Query) DateString() string {
	return q.Date.Format(DateLayout)
}

func truncateDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
