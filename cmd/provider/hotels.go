package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// hotel represents a listing returned by the fake lodging providers.
type hotel struct {
	HotelID  string   `json:"hotel_id"`
	Name     string   `json:"name"`
	City     string   `json:"city"`
	Address  *string  `json:"address,omitempty"`
	Rating   *float64 `json:"rating,omitempty"`
	Currency string   `json:"currency"`
	Price    float64  `json:"price"`
	Nights   int      `json:"nights"`
}

type rate struct {
	id, name string
	min, max float64
	rating   float64
}

// hotelProvider is a fake lodging upstream serving GET /search.
type hotelProvider struct {
	chaos  chaos
	rates  []rate
	quirks bool
	logger *zap.Logger
}

// newHotels1 answers quickly with clean data.
func newHotels1(logger *zap.Logger) *hotelProvider {
	return &hotelProvider{
		chaos: chaos{minLatency: 50 * time.Millisecond, maxLatency: 200 * time.Millisecond, failureRate: 0.1},
		rates: []rate{
			{id: "H001", name: "Grand Hotel", min: 100, max: 200, rating: 4.4},
			{id: "H002", name: "City Center Inn", min: 80, max: 150, rating: 3.9},
			{id: "H003", name: "Budget Stay", min: 50, max: 100, rating: 3.1},
			{id: "H004", name: "Luxury Palace", min: 200, max: 400, rating: 4.8},
		},
		logger: logger,
	}
}

// newHotels2 is slower, fails more often and sometimes returns
// inconsistent data: lower-case currencies, listings without an id and
// duplicates of another provider's hotels.
func newHotels2(logger *zap.Logger) *hotelProvider {
	return &hotelProvider{
		chaos: chaos{minLatency: 75 * time.Millisecond, maxLatency: 300 * time.Millisecond, failureRate: 0.15},
		rates: []rate{
			{id: "H001", name: "Grand Hotel", min: 90, max: 180, rating: 4.4},
			{id: "H005", name: "Seaside Resort", min: 150, max: 300, rating: 4.2},
			{id: "H006", name: "Mountain Lodge", min: 120, max: 250},
		},
		quirks: true,
		logger: logger,
	}
}

func (p *hotelProvider) listings(city string, nights int) []hotel {
	city = strings.ToLower(strings.TrimSpace(city))

	out := make([]hotel, 0, len(p.rates)+1)
	for _, r := range p.rates {
		h := hotel{
			HotelID:  r.id,
			Name:     r.name,
			City:     city,
			Currency: "EUR",
			Price:    randomPrice(r.min, r.max) * float64(nights),
			Nights:   nights,
		}
		if r.rating > 0 {
			rating := r.rating
			h.Rating = &rating
		}
		if p.quirks && chance(0.5) {
			h.Currency = "eur"
		}
		out = append(out, h)
	}
	if p.quirks && chance(0.3) {
		out = append(out, hotel{Name: "Mystery Hotel", City: city, Currency: "EUR", Price: 100, Nights: nights})
	}
	return out
}

func (p *hotelProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	city := strings.TrimSpace(q.Get("city"))
	if city == "" || q.Get("checkin") == "" {
		http.Error(w, "missing required parameters", http.StatusBadRequest)
		return
	}
	nights, err := strconv.Atoi(q.Get("nights"))
	if err != nil || nights <= 0 {
		http.Error(w, "invalid nights", http.StatusBadRequest)
		return
	}
	if adults, err := strconv.Atoi(q.Get("adults")); err != nil || adults <= 0 {
		http.Error(w, "invalid adults", http.StatusBadRequest)
		return
	}

	if err := p.chaos.wait(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, p.logger, p.listings(city, nights))
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}
