package providers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alex-user-go/tripplan/internal/trip"
)

const (
	detailFields     = "name,formatted_address,rating,photos,website,opening_hours,formatted_phone_number"
	photoMaxWidth    = 400
	detailsFanOut    = 4
	attractionType   = "tourist_attraction"
	attractionRankBy = "prominence"
)

// PlacesClient implements AttractionFinder on the Google Places web service.
type PlacesClient struct {
	http    *HTTPClient
	baseURL string
	apiKey  string
}

// NewPlacesClient creates a new PlacesClient.
func NewPlacesClient(baseURL, apiKey string, timeout time.Duration, opts ...ClientOption) *PlacesClient {
	return &PlacesClient{
		http:    NewHTTPClient("places", baseURL, timeout, opts...),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location trip.LatLng `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type nearbyResponse struct {
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message"`
	Results      []RawPlace `json:"results"`
}

type detailsResponse struct {
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message"`
	Result       RawPlace `json:"result"`
}

// FindAttractions geocodes loc when needed, searches tourist attractions
// around it and enriches up to maxResults of them with place details.
func (c *PlacesClient) FindAttractions(ctx context.Context, loc Location, radius, maxResults int) ([]RawPlace, error) {
	center := loc.Coords
	if center == nil {
		ll, err := c.geocode(ctx, loc.Name)
		if err != nil {
			return nil, err
		}
		center = &ll
	}

	q := c.query()
	q.Set("location", fmt.Sprintf("%f,%f", center.Lat, center.Lng))
	q.Set("radius", strconv.Itoa(radius))
	q.Set("type", attractionType)
	q.Set("rankby", attractionRankBy)

	var nearby nearbyResponse
	if err := c.http.GetJSON(ctx, "/maps/api/place/nearbysearch/json", q, &nearby); err != nil {
		return nil, err
	}
	if err := googleStatus("nearby search", nearby.Status, nearby.ErrorMessage); err != nil {
		return nil, err
	}

	places := nearby.Results
	if maxResults > 0 && len(places) > maxResults {
		places = places[:maxResults]
	}

	out := make([]RawPlace, len(places))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailsFanOut)
	for i, p := range places {
		g.Go(func() error {
			details, err := c.details(gctx, p.PlaceID, detailFields)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				// Keep the summary record from the nearby search.
				out[i] = p
				return nil
			}
			if details.PlaceID == "" {
				details.PlaceID = p.PlaceID
			}
			out[i] = details
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPhotos returns up to maxPhotos photo references with fetchable URLs.
func (c *PlacesClient) GetPhotos(ctx context.Context, placeID string, maxPhotos int) ([]RawPhotoRef, error) {
	details, err := c.details(ctx, placeID, "photos")
	if err != nil {
		return nil, err
	}
	photos := details.Photos
	if maxPhotos >= 0 && len(photos) > maxPhotos {
		photos = photos[:maxPhotos]
	}
	out := make([]RawPhotoRef, 0, len(photos))
	for _, p := range photos {
		if p.Reference == "" {
			continue
		}
		p.URL = c.PhotoURL(p.Reference)
		out = append(out, p)
	}
	return out, nil
}

// PhotoURL builds the photo download link for a reference.
func (c *PlacesClient) PhotoURL(reference string) string {
	q := c.query()
	q.Set("maxwidth", strconv.Itoa(photoMaxWidth))
	q.Set("photoreference", reference)
	return c.baseURL + "/maps/api/place/photo?" + q.Encode()
}

func (c *PlacesClient) geocode(ctx context.Context, address string) (trip.LatLng, error) {
	q := c.query()
	q.Set("address", address)

	var resp geocodeResponse
	if err := c.http.GetJSON(ctx, "/maps/api/geocode/json", q, &resp); err != nil {
		return trip.LatLng{}, err
	}
	if err := googleStatus("geocode", resp.Status, resp.ErrorMessage); err != nil {
		return trip.LatLng{}, err
	}
	if len(resp.Results) == 0 {
		return trip.LatLng{}, fmt.Errorf("could not find coordinates for location %q: %w", address, ErrNotFound)
	}
	return resp.Results[0].Geometry.Location, nil
}

func (c *PlacesClient) details(ctx context.Context, placeID, fields string) (RawPlace, error) {
	if placeID == "" {
		return RawPlace{}, errors.New("place details: empty place id")
	}
	q := c.query()
	q.Set("place_id", placeID)
	q.Set("fields", fields)

	var resp detailsResponse
	if err := c.http.GetJSON(ctx, "/maps/api/place/details/json", q, &resp); err != nil {
		return RawPlace{}, err
	}
	if err := googleStatus("place details", resp.Status, resp.ErrorMessage); err != nil {
		return RawPlace{}, err
	}
	return resp.Result, nil
}

func (c *PlacesClient) query() url.Values {
	q := url.Values{}
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	return q
}
