package providers

// Raw payloads mirror the upstream JSON documents. Pointer fields are
// optional upstream; a nil pointer means the key was absent.

// RawFlightOffer is one flight offer as returned by the offers search.
type RawFlightOffer struct {
	ID          string         `json:"id"`
	Itineraries []RawItinerary `json:"itineraries"`
	Price       *RawPrice      `json:"price"`
}

// RawItinerary is one itinerary of a flight offer.
type RawItinerary struct {
	Duration string       `json:"duration"`
	Segments []RawSegment `json:"segments"`
}

// RawSegment is one flight of an itinerary.
type RawSegment struct {
	CarrierCode *string      `json:"carrierCode"`
	Number      *string      `json:"number"`
	Departure   *RawEndpoint `json:"departure"`
	Arrival     *RawEndpoint `json:"arrival"`
}

// RawEndpoint is the departure or arrival of a segment.
type RawEndpoint struct {
	IATACode *string `json:"iataCode"`
	At       *string `json:"at"`
}

// RawPrice is the total price of an offer.
type RawPrice struct {
	Total    *string `json:"total"`
	Currency *string `json:"currency"`
}

// RawLodging is a listing from a lodging provider.
type RawLodging struct {
	HotelID  string   `json:"hotel_id"`
	Name     string   `json:"name"`
	City     string   `json:"city"`
	Address  *string  `json:"address"`
	Rating   *float64 `json:"rating"`
	Currency string   `json:"currency"`
	Price    float64  `json:"price"`
	Nights   int      `json:"nights"`
}

// RawPlace is a point of interest with its details.
type RawPlace struct {
	PlaceID          string           `json:"place_id"`
	Name             *string          `json:"name"`
	FormattedAddress *string          `json:"formatted_address"`
	Rating           *float64         `json:"rating"`
	Website          *string          `json:"website"`
	Phone            *string          `json:"formatted_phone_number"`
	OpeningHours     *RawOpeningHours `json:"opening_hours"`
	Photos           []RawPhotoRef    `json:"photos"`
}

// RawOpeningHours holds the weekly opening hours of a place.
type RawOpeningHours struct {
	WeekdayText []string `json:"weekday_text"`
}

// RawPhotoRef is a photo reference; URL is filled by the client that
// knows how to build a fetchable link.
type RawPhotoRef struct {
	Reference string `json:"photo_reference"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	URL       string `json:"-"`
}

// RawCultureSummary is an encyclopedia page summary.
type RawCultureSummary struct {
	Title   string  `json:"title"`
	Extract *string `json:"extract"`
	URL     *string `json:"url"`
	Source  string  `json:"source"`
}

// RawRoute is one route of a directions answer.
type RawRoute struct {
	Summary *string  `json:"summary"`
	Legs    []RawLeg `json:"legs"`
}

// RawLeg is one leg of a route.
type RawLeg struct {
	Distance *RawText  `json:"distance"`
	Duration *RawText  `json:"duration"`
	Steps    []RawStep `json:"steps"`
}

// RawText is a human readable value with its numeric form.
type RawText struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

// RawStep is one instruction of a leg.
type RawStep struct {
	HTMLInstructions *string            `json:"html_instructions"`
	Distance         *RawText           `json:"distance"`
	Duration         *RawText           `json:"duration"`
	TravelMode       *string            `json:"travel_mode"`
	TransitDetails   *RawTransitDetails `json:"transit_details"`
}

// RawTransitDetails describes the vehicle of a transit step.
type RawTransitDetails struct {
	Line          *RawLine `json:"line"`
	DepartureStop *RawStop `json:"departure_stop"`
	ArrivalStop   *RawStop `json:"arrival_stop"`
}

// RawLine is a public transport line.
type RawLine struct {
	Name      *string     `json:"name"`
	ShortName *string     `json:"short_name"`
	Vehicle   *RawVehicle `json:"vehicle"`
}

// RawVehicle is the vehicle serving a line.
type RawVehicle struct {
	Name *string `json:"name"`
	Type *string `json:"type"`
}

// RawStop is a transit stop.
type RawStop struct {
	Name *string `json:"name"`
}
