package trip

// Money is an amount in a given currency. Amount keeps the decimal text
// sent upstream so that no precision is lost.
type Money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// FlightPoint is one end of a flight segment. At is the local wall-clock
// time in ISO 8601 without zone, as published by the airline.
type FlightPoint struct {
	Airport string `json:"airport"`
	At      string `json:"at"`
}

// FlightOffer is a normalized itinerary segment.
type FlightOffer struct {
	AirlineCode  string      `json:"airline_code"`
	FlightNumber string      `json:"flight_number"`
	Departure    FlightPoint `json:"departure"`
	Arrival      FlightPoint `json:"arrival"`
	Price        Money       `json:"price"`
}

// LodgingOption is a normalized lodging listing.
type LodgingOption struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Address *string  `json:"address"`
	Rating  *float64 `json:"rating"`
	Price   Money    `json:"price"`
}

// Attraction is a normalized point of interest. Nil pointers mean the
// provider did not supply the field.
type Attraction struct {
	Name         string   `json:"name"`
	Address      *string  `json:"address"`
	Rating       *float64 `json:"rating"`
	Website      *string  `json:"website"`
	Phone        *string  `json:"phone"`
	OpeningHours []string `json:"opening_hours"`
	Photos       []string `json:"photos"`
}

// TransitDetail describes the public transport vehicle of a leg.
type TransitDetail struct {
	Line          *string `json:"line"`
	Vehicle       *string `json:"vehicle"`
	DepartureStop *string `json:"departure_stop"`
	ArrivalStop   *string `json:"arrival_stop"`
}

// TransportLeg is one normalized step of a route.
type TransportLeg struct {
	Instruction string         `json:"instruction"`
	Distance    *string        `json:"distance"`
	Duration    *string        `json:"duration"`
	Mode        string         `json:"mode"`
	Transit     *TransitDetail `json:"transit,omitempty"`
}

// TransportRoute is the normalized local transport answer.
type TransportRoute struct {
	Summary  *string        `json:"summary"`
	Distance *string        `json:"distance"`
	Duration *string        `json:"duration"`
	Legs     []TransportLeg `json:"legs"`
}

// CulturalSummary is a short text about a country's culture.
type CulturalSummary struct {
	Topic   string  `json:"topic"`
	Summary string  `json:"summary"`
	Source  string  `json:"source"`
	URL     *string `json:"url"`
}
