package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// amadeusTokenPath is the client credentials endpoint.
const amadeusTokenPath = "/v1/security/oauth2/token"

// AmadeusClient implements FlightSearcher on the flight offers search API.
type AmadeusClient struct {
	http *HTTPClient
}

// NewAmadeusClient creates a client authenticating with a bearer token.
func NewAmadeusClient(baseURL, token string, timeout time.Duration, opts ...ClientOption) *AmadeusClient {
	if token != "" {
		opts = append([]ClientOption{WithHeader("Authorization", "Bearer "+token)}, opts...)
	}
	return &AmadeusClient{http: NewHTTPClient("amadeus", baseURL, timeout, opts...)}
}

// AmadeusHTTPClient returns an *http.Client that obtains and refreshes an
// access token from the API key and secret. Pass it with WithHTTPClient.
func AmadeusHTTPClient(ctx context.Context, baseURL, apiKey, apiSecret string, timeout time.Duration) *http.Client {
	cfg := clientcredentials.Config{
		ClientID:     apiKey,
		ClientSecret: apiSecret,
		TokenURL:     strings.TrimRight(baseURL, "/") + amadeusTokenPath,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})
	hc := cfg.Client(ctx)
	hc.Timeout = timeout
	return hc
}

type flightOffersResponse struct {
	Data []RawFlightOffer `json:"data"`
}

// SearchFlights returns up to max one-way offers for the given day.
func (c *AmadeusClient) SearchFlights(ctx context.Context, origin, destination string, date time.Time, passengers, max int) ([]RawFlightOffer, error) {
	q := url.Values{}
	q.Set("originLocationCode", origin)
	q.Set("destinationLocationCode", destination)
	q.Set("departureDate", date.Format("2006-01-02"))
	q.Set("adults", strconv.Itoa(passengers))
	if max > 0 {
		q.Set("max", strconv.Itoa(max))
	}

	var resp flightOffersResponse
	if err := c.http.GetJSON(ctx, "/v2/shopping/flight-offers", q, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no flight offers %s-%s on %s: %w", origin, destination, q.Get("departureDate"), ErrNotFound)
	}
	return resp.Data, nil
}
