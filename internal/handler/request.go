package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/alex-user-go/tripplan/internal/trip"
)

// maxBodyBytes bounds POST /v1/plan bodies.
const maxBodyBytes = 64 << 10

// PlanRequest is the wire form of a trip query, shared by the GET query
// string and the POST body.
type PlanRequest struct {
	Origin       string       `json:"origin"`
	Destination  string       `json:"destination"`
	Date         string       `json:"date"`
	Categories   []string     `json:"categories,omitempty"`
	Passengers   int          `json:"passengers,omitempty"`
	Guests       int          `json:"guests,omitempty"`
	City         string       `json:"city,omitempty"`
	Country      string       `json:"country,omitempty"`
	Coordinates  *trip.LatLng `json:"coordinates,omitempty"`
	RadiusMeters int          `json:"radius_meters,omitempty"`
	TravelMode   string       `json:"travel_mode,omitempty"`
	DepartureAt  string       `json:"departure_at,omitempty"`
}

const planRequestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "required": ["origin", "destination", "date"],
  "properties": {
    "origin": {"type": "string", "minLength": 1},
    "destination": {"type": "string", "minLength": 1},
    "date": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
    "categories": {
      "type": "array",
      "uniqueItems": true,
      "items": {"type": "string", "enum": ["flights", "lodging", "attractions", "culture", "transport"]}
    },
    "passengers": {"type": "integer", "minimum": 1},
    "guests": {"type": "integer", "minimum": 1},
    "city": {"type": "string"},
    "country": {"type": "string"},
    "coordinates": {
      "type": "object",
      "additionalProperties": false,
      "required": ["lat", "lng"],
      "properties": {
        "lat": {"type": "number", "minimum": -90, "maximum": 90},
        "lng": {"type": "number", "minimum": -180, "maximum": 180}
      }
    },
    "radius_meters": {"type": "integer", "minimum": 1, "maximum": 50000},
    "travel_mode": {"type": "string", "enum": ["transit", "driving", "walking", "bicycling"]},
    "departure_at": {"type": "string", "format": "date-time"}
  }
}`

var planSchema = func() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(planRequestSchema))
	if err != nil {
		panic(fmt.Sprintf("plan request schema: %v", err))
	}
	return s
}()

// SchemaError lists the violations of a POST body.
type SchemaError struct {
	Details []string
}

func (e *SchemaError) Error() string {
	return "request body does not match schema: " + strings.Join(e.Details, "; ")
}

// ParseQueryParams reads a PlanRequest from the URL query of a GET request.
func ParseQueryParams(r *http.Request) (PlanRequest, error) {
	v := r.URL.Query()
	req := PlanRequest{
		Origin:      strings.TrimSpace(v.Get("origin")),
		Destination: strings.TrimSpace(v.Get("destination")),
		Date:        strings.TrimSpace(v.Get("date")),
		City:        v.Get("city"),
		Country:     v.Get("country"),
		TravelMode:  v.Get("mode"),
		DepartureAt: v.Get("departure"),
	}
	if list := v.Get("categories"); list != "" {
		req.Categories = strings.Split(list, ",")
	}

	var err error
	if req.Passengers, err = positiveInt(v.Get("passengers"), "passengers"); err != nil {
		return req, err
	}
	if req.Guests, err = positiveInt(v.Get("guests"), "guests"); err != nil {
		return req, err
	}
	if req.RadiusMeters, err = positiveInt(v.Get("radius"), "radius"); err != nil {
		return req, err
	}

	lat, lng := v.Get("lat"), v.Get("lng")
	if lat != "" || lng != "" {
		c, err := parseLatLng(lat, lng)
		if err != nil {
			return req, err
		}
		req.Coordinates = c
	}
	return req, nil
}

// DecodeBody validates a POST body against the request schema and decodes it.
func DecodeBody(r *http.Request) (PlanRequest, error) {
	var req PlanRequest
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, &SchemaError{Details: []string{fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit)}}
		}
		return req, fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return req, &SchemaError{Details: []string{"body is empty"}}
	}

	result, err := planSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return req, &SchemaError{Details: []string{err.Error()}}
	}
	if !result.Valid() {
		details := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			details[i] = desc.String()
		}
		return req, &SchemaError{Details: details}
	}

	if err := json.Unmarshal(body, &req); err != nil {
		return req, &SchemaError{Details: []string{err.Error()}}
	}
	return req, nil
}

// Query converts the request into a trip query and the requested
// categories. Format problems are reported as *trip.QueryError; semantic
// checks are left to the planner.
func (p PlanRequest) Query() (trip.Query, []trip.Category, error) {
	var date time.Time
	if p.Date != "" {
		d, err := trip.ParseDate(p.Date)
		if err != nil {
			return trip.Query{}, nil, &trip.QueryError{Field: "date", Message: "must be in YYYY-MM-DD format"}
		}
		date = d
	}

	cats, err := trip.ParseCategories(strings.Join(p.Categories, ","))
	if err != nil {
		return trip.Query{}, nil, &trip.QueryError{Field: "categories", Message: err.Error()}
	}

	opts := []trip.Option{
		trip.WithPassengers(p.Passengers),
		trip.WithGuests(p.Guests),
		trip.WithCity(p.City),
		trip.WithCountry(p.Country),
		trip.WithRadius(p.RadiusMeters),
		trip.WithTravelMode(p.TravelMode),
	}
	if p.Coordinates != nil {
		if !p.Coordinates.Valid() {
			return trip.Query{}, nil, &trip.QueryError{Field: "coordinates", Message: "out of range"}
		}
		opts = append(opts, trip.WithCoordinates(p.Coordinates.Lat, p.Coordinates.Lng))
	}
	if p.DepartureAt != "" {
		t, err := time.Parse(time.RFC3339, p.DepartureAt)
		if err != nil {
			return trip.Query{}, nil, &trip.QueryError{Field: "departure", Message: "must be an RFC 3339 timestamp"}
		}
		opts = append(opts, trip.WithDepartureAt(t))
	}

	return trip.NewQuery(p.Origin, p.Destination, date, opts...), cats, nil
}

func positiveInt(s, field string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, &trip.QueryError{Field: field, Message: "must be a positive integer"}
	}
	return n, nil
}

func parseLatLng(lat, lng string) (*trip.LatLng, error) {
	if lat == "" || lng == "" {
		return nil, &trip.QueryError{Field: "coordinates", Message: "lat and lng must be given together"}
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, &trip.QueryError{Field: "lat", Message: "must be a number"}
	}
	ln, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return nil, &trip.QueryError{Field: "lng", Message: "must be a number"}
	}
	return &trip.LatLng{Lat: la, Lng: ln}, nil
}
