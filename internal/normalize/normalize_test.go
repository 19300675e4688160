package normalize_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-user-go/tripplan/internal/normalize"
	"github.com/alex-user-go/tripplan/internal/providers"
)

func str(s string) *string { return &s }

func f64(v float64) *float64 { return &v }

func TestFlights(t *testing.T) {
	offers := []providers.RawFlightOffer{
		{
			Itineraries: []providers.RawItinerary{{Segments: []providers.RawSegment{
				{
					CarrierCode: str("nh"),
					Number:      str("9"),
					Departure:   &providers.RawEndpoint{IATACode: str("JFK"), At: str("2025-06-01T11:00:00")},
					Arrival:     &providers.RawEndpoint{IATACode: str("HND"), At: str("2025-06-02T14:25:00")},
				},
				{
					CarrierCode: str("NH"),
					Number:      str("3872"),
					Departure:   &providers.RawEndpoint{IATACode: str("HND"), At: str("2025-06-02T17:00:00")},
					Arrival:     &providers.RawEndpoint{IATACode: str("NRT"), At: str("2025-06-02T18:10:00")},
				},
				// Missing arrival is dropped.
				{CarrierCode: str("NH"), Number: str("1"), Departure: &providers.RawEndpoint{IATACode: str("NRT")}},
			}}},
			Price: &providers.RawPrice{Total: str(" 812.40 "), Currency: str(" jpy ")},
		},
		// No price at all.
		{Itineraries: []providers.RawItinerary{{Segments: []providers.RawSegment{{CarrierCode: str("JL")}}}}},
		// Unparseable price.
		{Price: &providers.RawPrice{Total: str("n/a"), Currency: str("USD")}},
	}

	got := normalize.Flights(offers, normalize.DefaultLimits())
	require.Len(t, got, 2)

	assert.Equal(t, "NH", got[0].AirlineCode)
	assert.Equal(t, "9", got[0].FlightNumber)
	assert.Equal(t, "JFK", got[0].Departure.Airport)
	assert.Equal(t, "2025-06-02T14:25:00", got[0].Arrival.At)
	assert.Equal(t, "812.40", got[0].Price.Amount)
	assert.Equal(t, "JPY", got[0].Price.Currency)
	assert.Equal(t, "NRT", got[1].Arrival.Airport)
}

func TestFlights_CapsOffers(t *testing.T) {
	offer := providers.RawFlightOffer{
		Itineraries: []providers.RawItinerary{{Segments: []providers.RawSegment{{
			CarrierCode: str("NH"),
			Number:      str("9"),
			Departure:   &providers.RawEndpoint{IATACode: str("JFK"), At: str("2025-06-01T11:00:00")},
			Arrival:     &providers.RawEndpoint{IATACode: str("NRT"), At: str("2025-06-02T14:25:00")},
		}}}},
		Price: &providers.RawPrice{Total: str("100"), Currency: str("USD")},
	}
	offers := []providers.RawFlightOffer{offer, offer, offer, offer}

	got := normalize.Flights(offers, normalize.Limits{Results: 2})
	assert.Len(t, got, 2)
}

func TestFlights_TotalOverEmptyInput(t *testing.T) {
	assert.Empty(t, normalize.Flights(nil, normalize.Limits{}))
	assert.Empty(t, normalize.Flights([]providers.RawFlightOffer{{}}, normalize.Limits{}))
}

func TestLodging(t *testing.T) {
	listings := []providers.RawLodging{
		{HotelID: "H1", Name: "Park Hotel", Currency: "eur", Price: 120, Rating: f64(4.4)},
		{HotelID: "H2", Name: " ", Currency: "EUR", Price: 90},
		{HotelID: "H3", Name: "Free", Currency: "EUR", Price: 0},
		{HotelID: "H4", Name: "No currency", Price: 50},
		{HotelID: "H1", Name: "Park Hotel", Currency: "EUR", Price: 99.5, Address: str("1 Main St")},
		{HotelID: "H5", Name: "Inn", Currency: "EUR", Price: 80, Rating: f64(7)},
	}

	got := normalize.Lodging(listings, normalize.DefaultLimits())
	require.Len(t, got, 2)

	assert.Equal(t, "H1", got[0].ID)
	assert.Equal(t, "99.50", got[0].Price.Amount)
	assert.Equal(t, "EUR", got[0].Price.Currency)
	require.NotNil(t, got[0].Address)
	assert.Equal(t, "1 Main St", *got[0].Address)

	assert.Equal(t, "H5", got[1].ID)
	assert.Nil(t, got[1].Rating, "out of range rating is absent")
	assert.Nil(t, got[1].Address)
}

func TestAttractions(t *testing.T) {
	places := []providers.RawPlace{
		{
			PlaceID:          "p1",
			Name:             str("Senso-ji"),
			FormattedAddress: str("2 Chome-3-1 Asakusa"),
			Rating:           f64(4.5),
			Website:          str(""),
			OpeningHours: &providers.RawOpeningHours{WeekdayText: []string{
				"Monday: 6AM-5PM", "Tuesday: 6AM-5PM", "", "Wednesday: 6AM-5PM",
			}},
			Photos: []providers.RawPhotoRef{
				{Reference: "a", URL: "https://example.test/a"},
				{Reference: "b"},
				{Reference: "c", URL: "https://example.test/c"},
				{Reference: "d", URL: "https://example.test/d"},
			},
		},
		{PlaceID: "p2"},
		{PlaceID: "p3", Name: str("Tokyo Tower")},
		{PlaceID: "p4", Name: str("Meiji Jingu"), OpeningHours: &providers.RawOpeningHours{}},
	}

	got := normalize.Attractions(places, normalize.Limits{Photos: 2, OpeningHours: 2})
	require.Len(t, got, 3)

	first := got[0]
	assert.Equal(t, "Senso-ji", first.Name)
	require.NotNil(t, first.Website)
	assert.Equal(t, "", *first.Website, "provided but empty stays empty")
	assert.Nil(t, first.Phone, "absent stays absent")
	assert.Equal(t, []string{"Monday: 6AM-5PM", "Tuesday: 6AM-5PM"}, first.OpeningHours)
	assert.Equal(t, []string{"https://example.test/a", "https://example.test/c"}, first.Photos)

	second := got[1]
	assert.Equal(t, "Tokyo Tower", second.Name)
	assert.Nil(t, second.Address)
	assert.Nil(t, second.Rating)
	assert.Nil(t, second.OpeningHours, "absent opening hours stay absent")
	assert.NotNil(t, second.Photos)

	third := got[2]
	assert.NotNil(t, third.OpeningHours, "provided but empty opening hours stay empty")
	assert.Empty(t, third.OpeningHours)
}

func TestAttractions_SerializesAbsentAsNull(t *testing.T) {
	got := normalize.Attractions([]providers.RawPlace{{Name: str("Tokyo Tower")}}, normalize.Limits{})
	require.Len(t, got, 1)

	body, err := json.Marshal(got[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "Tokyo Tower",
		"address": null,
		"rating": null,
		"website": null,
		"phone": null,
		"opening_hours": null,
		"photos": []
	}`, string(body))
}

func TestCulture(t *testing.T) {
	raw := providers.RawCultureSummary{
		Title:   "Culture of Japan",
		Extract: str("The culture of Japan has changed greatly over the millennia.  From the prehistoric Jōmon period to the present. It is diverse! Is it modern? Yes."),
		URL:     str("https://en.wikipedia.org/wiki/Culture_of_Japan"),
		Source:  "Wikipedia",
	}

	got := normalize.Culture(raw, normalize.DefaultLimits())
	assert.Equal(t, "Culture of Japan", got.Topic)
	assert.Equal(t, "Wikipedia: Culture of Japan", got.Source)
	assert.Equal(t, "The culture of Japan has changed greatly over the millennia. From the prehistoric Jōmon period to the present. It is diverse!", got.Summary)
	require.NotNil(t, got.URL)
}

func TestCulture_MissingFields(t *testing.T) {
	got := normalize.Culture(providers.RawCultureSummary{}, normalize.Limits{})
	assert.Equal(t, "", got.Summary)
	assert.Equal(t, "", got.Source)
	assert.Nil(t, got.URL)
}

func TestFirstSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want string
	}{
		{name: "fewer sentences than limit", text: "One. Two.", n: 3, want: "One. Two."},
		{name: "cut at limit", text: "One. Two. Three. Four.", n: 2, want: "One. Two."},
		{name: "decimal point is not a boundary", text: "Pi is 3.14 roughly. Next.", n: 1, want: "Pi is 3.14 roughly."},
		{name: "no terminator", text: "no end", n: 1, want: "no end"},
		{name: "whitespace collapsed", text: "  a\n b.  c. ", n: 5, want: "a b. c."},
		{name: "empty", text: "", n: 3, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize.FirstSentences(tt.text, tt.n))
		})
	}
}

func TestTransport(t *testing.T) {
	route := providers.RawRoute{
		Summary: str("Narita Express"),
		Legs: []providers.RawLeg{{
			Distance: &providers.RawText{Text: "66.4 km", Value: 66400},
			Duration: &providers.RawText{Text: "1 hour 5 mins", Value: 3900},
			Steps: []providers.RawStep{
				{
					HTMLInstructions: str("Walk to <b>Narita Airport Terminal 1</b>"),
					Distance:         &providers.RawText{Text: "0.2 km"},
					TravelMode:       str("WALKING"),
				},
				{
					HTMLInstructions: str("Train towards Ofuna<div style=\"font-size:0.9em\">Destination &amp; transfer</div>"),
					TravelMode:       str("TRANSIT"),
					TransitDetails: &providers.RawTransitDetails{
						Line: &providers.RawLine{
							Name:      str(""),
							ShortName: str("N'EX"),
							Vehicle:   &providers.RawVehicle{Name: str("Train")},
						},
						DepartureStop: &providers.RawStop{Name: str("Narita Airport Terminal 1")},
						ArrivalStop:   &providers.RawStop{Name: str("Tokyo")},
					},
				},
				{TravelMode: str("WALKING")},
			},
		}},
	}

	got := normalize.Transport(route, normalize.Limits{Steps: 2})
	require.NotNil(t, got.Summary)
	assert.Equal(t, "Narita Express", *got.Summary)
	require.NotNil(t, got.Distance)
	assert.Equal(t, "66.4 km", *got.Distance)
	require.Len(t, got.Legs, 2)

	walk := got.Legs[0]
	assert.Equal(t, "Walk to Narita Airport Terminal 1", walk.Instruction)
	assert.Equal(t, "walking", walk.Mode)
	assert.Nil(t, walk.Duration)
	assert.Nil(t, walk.Transit)

	train := got.Legs[1]
	assert.Equal(t, "Train towards Ofuna Destination & transfer", train.Instruction)
	require.NotNil(t, train.Transit)
	assert.Equal(t, "N'EX", *train.Transit.Line)
	assert.Equal(t, "Train", *train.Transit.Vehicle)
	assert.Equal(t, "Tokyo", *train.Transit.ArrivalStop)
}

func TestTransport_NoLegs(t *testing.T) {
	got := normalize.Transport(providers.RawRoute{}, normalize.Limits{})
	assert.Nil(t, got.Summary)
	assert.NotNil(t, got.Legs)
	assert.Empty(t, got.Legs)
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Head <b>north</b> on Main St", want: "Head north on Main St"},
		{in: "Turn left<div>Pass by the park</div>", want: "Turn left Pass by the park"},
		{in: "Caf&eacute; &amp; bar", want: "Café & bar"},
		{in: "plain", want: "plain"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize.StripHTML(tt.in))
		})
	}
}
