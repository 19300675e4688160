package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// DirectionsClient implements DirectionsProvider on the Google Directions
// web service.
type DirectionsClient struct {
	http   *HTTPClient
	apiKey string
}

// NewDirectionsClient creates a new DirectionsClient.
func NewDirectionsClient(baseURL, apiKey string, timeout time.Duration, opts ...ClientOption) *DirectionsClient {
	return &DirectionsClient{
		http:   NewHTTPClient("directions", baseURL, timeout, opts...),
		apiKey: apiKey,
	}
}

type directionsResponse struct {
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message"`
	Routes       []RawRoute `json:"routes"`
}

// GetDirections returns the routes between origin and destination.
func (c *DirectionsClient) GetDirections(ctx context.Context, origin, destination, mode string, departure time.Time) ([]RawRoute, error) {
	q := url.Values{}
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	q.Set("origin", origin)
	q.Set("destination", destination)
	q.Set("mode", mode)
	if !departure.IsZero() {
		q.Set("departure_time", strconv.FormatInt(departure.Unix(), 10))
	}

	var resp directionsResponse
	if err := c.http.GetJSON(ctx, "/maps/api/directions/json", q, &resp); err != nil {
		return nil, err
	}
	if err := googleStatus("directions", resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}
	if len(resp.Routes) == 0 {
		return nil, fmt.Errorf("no routes from %q to %q: %w", origin, destination, ErrNotFound)
	}
	return resp.Routes, nil
}
