package providers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HotelClient implements LodgingSearcher against a hotel provider exposing
// GET /search?city=&checkin=&nights=&adults=.
type HotelClient struct {
	http   *HTTPClient
	nights int
}

// NewHotelClient creates a new HotelClient. Stays are priced for nights
// nights starting on the trip date.
func NewHotelClient(name, baseURL string, nights int, timeout time.Duration, opts ...ClientOption) *HotelClient {
	if nights <= 0 {
		nights = 1
	}
	return &HotelClient{
		http:   NewHTTPClient(name, baseURL, timeout, opts...),
		nights: nights,
	}
}

// SearchLodging searches listings in destination.
func (c *HotelClient) SearchLodging(ctx context.Context, destination string, date time.Time, guests int) ([]RawLodging, error) {
	q := url.Values{}
	q.Set("city", destination)
	q.Set("checkin", date.Format("2006-01-02"))
	q.Set("nights", strconv.Itoa(c.nights))
	q.Set("adults", strconv.Itoa(guests))

	var listings []RawLodging
	if err := c.http.GetJSON(ctx, "/search", q, &listings); err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, fmt.Errorf("no lodging in %s: %w", destination, ErrNotFound)
	}
	return listings, nil
}

// LodgingFanOut queries several lodging providers concurrently and merges
// their listings. It fails only when every provider fails.
type LodgingFanOut struct {
	searchers []LodgingSearcher
	logger    *zap.Logger
}

// NewLodgingFanOut creates a new LodgingFanOut.
func NewLodgingFanOut(logger *zap.Logger, searchers ...LodgingSearcher) *LodgingFanOut {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LodgingFanOut{searchers: searchers, logger: logger}
}

// SearchLodging implements LodgingSearcher. Listings keep provider order;
// duplicates are resolved by normalization.
func (f *LodgingFanOut) SearchLodging(ctx context.Context, destination string, date time.Time, guests int) ([]RawLodging, error) {
	results := make([][]RawLodging, len(f.searchers))
	errs := make([]error, len(f.searchers))

	var wg sync.WaitGroup
	for i, s := range f.searchers {
		wg.Go(func() {
			results[i], errs[i] = s.SearchLodging(ctx, destination, date, guests)
		})
	}
	wg.Wait()

	var (
		listings []RawLodging
		failed   []error
	)
	for i := range f.searchers {
		switch {
		case errs[i] == nil:
			listings = append(listings, results[i]...)
		case errors.Is(errs[i], ErrNotFound):
		default:
			failed = append(failed, errs[i])
		}
	}

	if len(failed) > 0 {
		f.logger.Warn("lodging provider errors",
			zap.String("city", destination),
			zap.Int("failed_count", len(failed)),
			zap.Errors("errors", failed))
	}

	if len(listings) > 0 {
		return listings, nil
	}
	if len(failed) > 0 {
		return nil, failed[0]
	}
	return nil, fmt.Errorf("no lodging in %s: %w", destination, ErrNotFound)
}
