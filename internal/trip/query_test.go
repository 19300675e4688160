package trip

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategories(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Category
		wantErr bool
	}{
		{name: "empty means all", input: "", want: nil},
		{name: "blank parts", input: " , ,", want: nil},
		{name: "single", input: "culture", want: []Category{CategoryCulture}},
		{name: "case and spaces", input: " Flights, LODGING ", want: []Category{CategoryFlights, CategoryLodging}},
		{name: "duplicates collapse", input: "transport,flights,transport", want: []Category{CategoryTransport, CategoryFlights}},
		{name: "unknown", input: "flights,cars", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategories(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategory_String(t *testing.T) {
	for i, c := range AllCategories() {
		assert.Equal(t, Category(i), c)
		parsed, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	assert.Equal(t, "category(7)", Category(7).String())
	assert.False(t, Category(-1).Valid())
}

func TestNewQuery_Defaults(t *testing.T) {
	date := time.Date(2030, 6, 1, 15, 30, 0, 0, time.FixedZone("JST", 9*3600))
	q := NewQuery(" JFK ", "NRT", date)

	assert.Equal(t, "JFK", q.Origin)
	assert.Equal(t, "2030-06-01", q.DateString())
	assert.Equal(t, 1, q.Passengers)
	assert.Equal(t, 1, q.Guests)
	assert.Equal(t, "NRT", q.City)
	assert.Equal(t, "NRT", q.Country)
	assert.Equal(t, DefaultRadiusMeters, q.RadiusMeters)
	assert.Equal(t, ModeTransit, q.TravelMode)
	assert.Nil(t, q.Coordinates)
	require.NoError(t, q.Validate())
}

func TestNewQuery_Options(t *testing.T) {
	dep := time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)
	q := NewQuery("JFK", "NRT", dep,
		WithPassengers(3),
		WithCity(" Tokyo "),
		WithCountry("Japan"),
		WithCoordinates(35.68, 139.76),
		WithRadius(1200),
		WithTravelMode("Driving"),
		WithDepartureAt(dep),
	)

	assert.Equal(t, 3, q.Passengers)
	assert.Equal(t, 3, q.Guests, "guests default to passengers")
	assert.Equal(t, "Tokyo", q.City)
	assert.Equal(t, "Japan", q.Country)
	require.NotNil(t, q.Coordinates)
	assert.Equal(t, "35.680000,139.760000", q.Coordinates.String())
	assert.Equal(t, 1200, q.RadiusMeters)
	assert.Equal(t, ModeDriving, q.TravelMode)
	assert.Equal(t, dep, q.DepartureAt)

	from, to := q.TransportEndpoints()
	assert.Equal(t, "NRT", from)
	assert.Equal(t, "Tokyo", to)
}

func TestQuery_Validate(t *testing.T) {
	date := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		query     Query
		wantField string
	}{
		{name: "missing origin", query: NewQuery("", "NRT", date), wantField: "origin"},
		{name: "missing destination", query: NewQuery("JFK", "  ", date), wantField: "destination"},
		{name: "missing date", query: NewQuery("JFK", "NRT", time.Time{}), wantField: "date"},
		{name: "negative passengers", query: NewQuery("JFK", "NRT", date, WithPassengers(-1)), wantField: "passengers"},
		{name: "negative guests", query: NewQuery("JFK", "NRT", date, WithGuests(-2)), wantField: "guests"},
		{name: "negative radius", query: NewQuery("JFK", "NRT", date, WithRadius(-5)), wantField: "radius_meters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			var qerr *QueryError
			require.ErrorAs(t, err, &qerr)
			assert.Equal(t, tt.wantField, qerr.Field)
			assert.Equal(t, KindInvalidInput, qerr.Kind())
		})
	}
}

func TestQuery_TransportEndpointsWithoutCity(t *testing.T) {
	q := NewQuery("JFK", "NRT", time.Now(), WithCity("nrt"))
	from, to := q.TransportEndpoints()
	assert.Equal(t, "JFK", from)
	assert.Equal(t, "NRT", to)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2030-02-28 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 2, 28, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("28/02/2030")
	assert.EqualError(t, err, "date must be in YYYY-MM-DD format")
}

func TestLatLng_Valid(t *testing.T) {
	assert.True(t, LatLng{Lat: -90, Lng: 180}.Valid())
	assert.False(t, LatLng{Lat: 90.1}.Valid())
	assert.False(t, LatLng{Lng: -180.5}.Valid())
}
