package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const fakeTokenTTL = 30 * time.Minute

// amadeusProvider fakes the token and flight offers endpoints.
type amadeusProvider struct {
	chaos  chaos
	logger *zap.Logger
}

func newAmadeus(logger *zap.Logger) *amadeusProvider {
	return &amadeusProvider{
		chaos:  chaos{minLatency: 100 * time.Millisecond, maxLatency: 400 * time.Millisecond, failureRate: 0.05},
		logger: logger,
	}
}

func (p *amadeusProvider) routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/security/oauth2/token", p.token)
	mux.HandleFunc("GET /v2/shopping/flight-offers", p.offers)
}

func (p *amadeusProvider) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.PostForm.Get("client_id") == "" || r.PostForm.Get("client_secret") == "" {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
		return
	}
	writeJSON(w, p.logger, map[string]any{
		"type":         "amadeusOAuth2Token",
		"access_token": uuid.NewString(),
		"token_type":   "Bearer",
		"expires_in":   int(fakeTokenTTL.Seconds()),
	})
}

type segment struct {
	CarrierCode string   `json:"carrierCode"`
	Number      string   `json:"number"`
	Departure   endpoint `json:"departure"`
	Arrival     endpoint `json:"arrival"`
}

type endpoint struct {
	IATACode string `json:"iataCode"`
	At       string `json:"at"`
}

func (p *amadeusProvider) offers(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		http.Error(w, `{"errors":[{"status":401,"title":"Unauthorized"}]}`, http.StatusUnauthorized)
		return
	}
	q := r.URL.Query()
	from := strings.ToUpper(q.Get("originLocationCode"))
	to := strings.ToUpper(q.Get("destinationLocationCode"))
	day, err := time.Parse("2006-01-02", q.Get("departureDate"))
	if len(from) != 3 || len(to) != 3 || err != nil {
		http.Error(w, `{"errors":[{"status":400,"title":"INVALID FORMAT"}]}`, http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(q.Get("max"))
	if limit <= 0 {
		limit = 250
	}

	if err := p.chaos.wait(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	const layout = "2006-01-02T15:04:05"
	carriers := []string{"NH", "JL", "UA"}
	data := make([]map[string]any, 0, min(limit, len(carriers)))
	for i, carrier := range carriers[:min(limit, len(carriers))] {
		dep := day.Add(time.Duration(8+3*i) * time.Hour)
		itinerary := []segment{{
			CarrierCode: carrier,
			Number:      strconv.Itoa(10 + i),
			Departure:   endpoint{IATACode: from, At: dep.Format(layout)},
			Arrival:     endpoint{IATACode: to, At: dep.Add(13 * time.Hour).Format(layout)},
		}}
		data = append(data, map[string]any{
			"id":          strconv.Itoa(i + 1),
			"itineraries": []map[string]any{{"duration": "PT13H", "segments": itinerary}},
			"price":       map[string]string{"total": fmt.Sprintf("%.2f", randomPrice(600, 1400)), "currency": "USD"},
		})
	}
	writeJSON(w, p.logger, map[string]any{"data": data})
}
