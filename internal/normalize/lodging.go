package normalize

import (
	"strconv"
	"strings"

	"github.com/alex-user-go/tripplan/internal/providers"
	"github.com/alex-user-go/tripplan/internal/trip"
)

// Lodging normalizes listings. Listings without id, name, positive price
// or currency are dropped. Duplicate ids keep the lowest price at the
// position of the first occurrence.
func Lodging(listings []providers.RawLodging, lim Limits) []trip.LodgingOption {
	lim = lim.WithDefaults()

	out := make([]trip.LodgingOption, 0, len(listings))
	index := make(map[string]int)
	prices := make(map[string]float64)

	for _, l := range listings {
		id := strings.TrimSpace(l.HotelID)
		name := strings.TrimSpace(l.Name)
		cur := currency(l.Currency)
		if id == "" || name == "" || cur == "" || l.Price <= 0 {
			continue
		}

		opt := trip.LodgingOption{
			ID:      id,
			Name:    name,
			Address: optional(l.Address),
			Rating:  rating(l.Rating),
			Price: trip.Money{
				Amount:   strconv.FormatFloat(l.Price, 'f', 2, 64),
				Currency: cur,
			},
		}

		if i, ok := index[id]; ok {
			if l.Price < prices[id] {
				out[i] = opt
				prices[id] = l.Price
			}
			continue
		}
		index[id] = len(out)
		prices[id] = l.Price
		out = append(out, opt)
	}
	return capped(out, lim.Results)
}
