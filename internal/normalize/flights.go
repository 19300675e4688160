package normalize

import (
	"strconv"
	"strings"

	"github.com/alex-user-go/tripplan/internal/providers"
	"github.com/alex-user-go/tripplan/internal/trip"
)

// Flights flattens offers into one record per itinerary segment. Offers
// without a usable price and segments without carrier, number, airports
// or times are dropped; the record has no optional fields to leave empty.
func Flights(offers []providers.RawFlightOffer, lim Limits) []trip.FlightOffer {
	lim = lim.WithDefaults()
	out := make([]trip.FlightOffer, 0, len(offers))

	for _, offer := range capped(offers, lim.Results) {
		price, ok := flightPrice(offer.Price)
		if !ok {
			continue
		}
		for _, it := range offer.Itineraries {
			for _, seg := range it.Segments {
				if fo, ok := flightSegment(seg, price); ok {
					out = append(out, fo)
				}
			}
		}
	}
	return out
}

func flightPrice(p *providers.RawPrice) (trip.Money, bool) {
	if p == nil {
		return trip.Money{}, false
	}
	amount := value(p.Total)
	cur := currency(value(p.Currency))
	if amount == "" || cur == "" {
		return trip.Money{}, false
	}
	if f, err := strconv.ParseFloat(amount, 64); err != nil || f < 0 {
		return trip.Money{}, false
	}
	return trip.Money{Amount: amount, Currency: cur}, true
}

func flightSegment(seg providers.RawSegment, price trip.Money) (trip.FlightOffer, bool) {
	carrier := strings.ToUpper(value(seg.CarrierCode))
	number := value(seg.Number)
	dep, okDep := flightPoint(seg.Departure)
	arr, okArr := flightPoint(seg.Arrival)
	if carrier == "" || number == "" || !okDep || !okArr {
		return trip.FlightOffer{}, false
	}
	return trip.FlightOffer{
		AirlineCode:  carrier,
		FlightNumber: number,
		Departure:    dep,
		Arrival:      arr,
		Price:        price,
	}, true
}

func flightPoint(e *providers.RawEndpoint) (trip.FlightPoint, bool) {
	if e == nil {
		return trip.FlightPoint{}, false
	}
	p := trip.FlightPoint{
		Airport: strings.ToUpper(value(e.IATACode)),
		At:      value(e.At),
	}
	return p, p.Airport != "" && p.At != ""
}
