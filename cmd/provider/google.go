package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// googleProvider fakes the geocoding, places and directions endpoints.
type googleProvider struct {
	chaos  chaos
	logger *zap.Logger
}

func newGoogle(logger *zap.Logger) *googleProvider {
	return &googleProvider{
		chaos:  chaos{minLatency: 30 * time.Millisecond, maxLatency: 150 * time.Millisecond, failureRate: 0.05},
		logger: logger,
	}
}

func (p *googleProvider) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /maps/api/geocode/json", p.guard(p.geocode))
	mux.HandleFunc("GET /maps/api/place/nearbysearch/json", p.guard(p.nearby))
	mux.HandleFunc("GET /maps/api/place/details/json", p.guard(p.details))
	mux.HandleFunc("GET /maps/api/directions/json", p.guard(p.directions))
}

// guard checks the api key and applies chaos. Google reports errors in
// the status field of a 200 response.
func (p *googleProvider) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") == "" {
			writeJSON(w, p.logger, map[string]string{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid."})
			return
		}
		if err := p.chaos.wait(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		next(w, r)
	}
}

type fakePlace struct {
	id, name, address, phone string
	rating                   float64
}

var fakePlaces = []fakePlace{
	{id: "p1", name: "Senso-ji", address: "2-3-1 Asakusa, Taito City", phone: "+81 3-3842-0181", rating: 4.5},
	{id: "p2", name: "Meiji Jingu", address: "1-1 Yoyogikamizonocho, Shibuya", rating: 4.6},
	{id: "p3", name: "Tokyo Skytree", address: "1-1-2 Oshiage, Sumida City", phone: "+81 570-55-0634", rating: 4.4},
}

func (p *googleProvider) geocode(w http.ResponseWriter, r *http.Request) {
	if strings.TrimSpace(r.URL.Query().Get("address")) == "" {
		writeJSON(w, p.logger, map[string]any{"status": "INVALID_REQUEST", "results": []any{}})
		return
	}
	writeJSON(w, p.logger, map[string]any{
		"status": "OK",
		"results": []any{map[string]any{
			"geometry": map[string]any{"location": map[string]float64{"lat": 35.6762, "lng": 139.6503}},
		}},
	})
}

func (p *googleProvider) nearby(w http.ResponseWriter, r *http.Request) {
	results := make([]map[string]any, 0, len(fakePlaces))
	for _, fp := range fakePlaces {
		results = append(results, map[string]any{"place_id": fp.id, "name": fp.name, "rating": fp.rating})
	}
	writeJSON(w, p.logger, map[string]any{"status": "OK", "results": results})
}

func (p *googleProvider) details(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("place_id")
	for _, fp := range fakePlaces {
		if fp.id != id {
			continue
		}
		result := map[string]any{
			"place_id":          fp.id,
			"name":              fp.name,
			"formatted_address": fp.address,
			"rating":            fp.rating,
			"opening_hours": map[string]any{"weekday_text": []string{
				"Monday: 6:00 AM - 5:00 PM", "Tuesday: 6:00 AM - 5:00 PM", "Wednesday: 6:00 AM - 5:00 PM",
				"Thursday: 6:00 AM - 5:00 PM", "Friday: 6:00 AM - 5:00 PM", "Saturday: 6:00 AM - 5:00 PM",
				"Sunday: 6:00 AM - 5:00 PM",
			}},
			"photos": []map[string]any{
				{"photo_reference": fp.id + "-a", "width": 1600, "height": 1200},
				{"photo_reference": fp.id + "-b", "width": 1200, "height": 800},
			},
		}
		if fp.phone != "" {
			result["formatted_phone_number"] = fp.phone
		}
		writeJSON(w, p.logger, map[string]any{"status": "OK", "result": result})
		return
	}
	writeJSON(w, p.logger, map[string]any{"status": "NOT_FOUND"})
}

func (p *googleProvider) directions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, mode := q.Get("origin"), q.Get("destination"), q.Get("mode")
	if from == "" || to == "" {
		writeJSON(w, p.logger, map[string]any{"status": "INVALID_REQUEST", "routes": []any{}})
		return
	}
	if mode == "" {
		mode = "driving"
	}

	steps := []map[string]any{{
		"html_instructions": fmt.Sprintf("Walk to <b>%s Station</b>", from),
		"distance":          map[string]any{"text": "0.4 km", "value": 400},
		"duration":          map[string]any{"text": "5 mins", "value": 300},
		"travel_mode":       "WALKING",
	}}
	if mode == "transit" {
		steps = append(steps, map[string]any{
			"html_instructions": "Train towards <b>" + to + "</b>",
			"distance":          map[string]any{"text": "61.2 km", "value": 61200},
			"duration":          map[string]any{"text": "55 mins", "value": 3300},
			"travel_mode":       "TRANSIT",
			"transit_details": map[string]any{
				"line": map[string]any{
					"name":       "Narita Express",
					"short_name": "N'EX",
					"vehicle":    map[string]string{"name": "Train", "type": "HEAVY_RAIL"},
				},
				"departure_stop": map[string]string{"name": from + " Station"},
				"arrival_stop":   map[string]string{"name": to + " Station"},
			},
		})
	} else {
		steps = append(steps, map[string]any{
			"html_instructions": "Continue to <b>" + to + "</b><div style=\"font-size:0.9em\">Destination will be on the right</div>",
			"distance":          map[string]any{"text": "60.8 km", "value": 60800},
			"duration":          map[string]any{"text": "1 hour 5 mins", "value": 3900},
			"travel_mode":       strings.ToUpper(mode),
		})
	}

	writeJSON(w, p.logger, map[string]any{
		"status": "OK",
		"routes": []any{map[string]any{
			"summary": from + " to " + to,
			"legs": []any{map[string]any{
				"distance": map[string]any{"text": "61.6 km", "value": 61600},
				"duration": map[string]any{"text": "1 hour", "value": 3600},
				"steps":    steps,
			}},
		}},
	})
}
