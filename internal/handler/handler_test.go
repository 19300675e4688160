package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alex-user-go/tripplan/internal/handler"
	"github.com/alex-user-go/tripplan/internal/obs"
	"github.com/alex-user-go/tripplan/internal/planner"
	"github.com/alex-user-go/tripplan/internal/planner/cache"
	"github.com/alex-user-go/tripplan/internal/planner/ratelimit"
	"github.com/alex-user-go/tripplan/internal/trip"
)

// mockPlanner records the last query and answers with fn.
type mockPlanner struct {
	fn    func(ctx context.Context, q trip.Query, cats []trip.Category) (*trip.Plan, error)
	calls atomic.Int32
	last  atomic.Pointer[call]
}

type call struct {
	query trip.Query
	cats  []trip.Category
}

func (m *mockPlanner) PlanTrip(ctx context.Context, q trip.Query, cats ...trip.Category) (*trip.Plan, error) {
	m.calls.Add(1)
	m.last.Store(&call{query: q, cats: cats})
	if m.fn != nil {
		return m.fn(ctx, q, cats)
	}
	return flightsPlan(q), nil
}

func flightsPlan(q trip.Query) *trip.Plan {
	offers := []trip.FlightOffer{{
		AirlineCode:  "NH",
		FlightNumber: "9",
		Departure:    trip.FlightPoint{Airport: "JFK", At: "2025-06-01T10:00:00"},
		Arrival:      trip.FlightPoint{Airport: "NRT", At: "2025-06-02T13:00:00"},
		Price:        trip.Money{Amount: "812.40", Currency: "USD"},
	}}
	return &trip.Plan{
		ID:          "plan-1",
		Origin:      q.Origin,
		Destination: q.Destination,
		Date:        q.DateString(),
		Flights:     trip.NewSlot(trip.CategoryFlights, trip.Success(offers), 1, 20*time.Millisecond),
		Lodging:     trip.NotAttemptedSlot[[]trip.LodgingOption](trip.CategoryLodging),
		Attractions: trip.NotAttemptedSlot[[]trip.Attraction](trip.CategoryAttractions),
		Culture:     trip.NotAttemptedSlot[trip.CulturalSummary](trip.CategoryCulture),
		Transport:   trip.NotAttemptedSlot[trip.TransportRoute](trip.CategoryTransport),
	}
}

func failedPlan(q trip.Query) *trip.Plan {
	p := flightsPlan(q)
	p.Flights = trip.NewSlot(trip.CategoryFlights, trip.Failure[[]trip.FlightOffer](trip.NotFound("no offers")), 1, time.Millisecond)
	return p
}

func newHandler(t *testing.T, p handler.Planner, withCache bool, rate int) (*handler.Handler, *obs.Metrics) {
	t.Helper()
	metrics := obs.NewMetrics()

	var c *cache.Cache
	if withCache {
		store := cache.NewMemoryStore(time.Minute)
		t.Cleanup(func() { _ = store.Close() })
		c = cache.New(store, time.Minute, cache.WithMetrics(metrics))
	}

	var limiter *ratelimit.Limiter
	if rate > 0 {
		limiter = ratelimit.New(rate, time.Minute)
		t.Cleanup(limiter.Close)
	}
	return handler.New(p, c, limiter, metrics, zap.NewNop()), metrics
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestHandler_GetPlan(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantField  string
	}{
		{
			name:       "successful plan",
			query:      "origin=JFK&destination=NRT&date=2025-06-01",
			wantStatus: http.StatusOK,
		},
		{
			name:       "all options",
			query:      "origin=JFK&destination=NRT&date=2025-06-01&categories=flights,culture&passengers=2&guests=3&city=Tokyo&country=Japan&lat=35.68&lng=139.76&radius=2000&mode=walking&departure=2025-06-02T09:00:00Z",
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing origin",
			query:      "destination=NRT&date=2025-06-01",
			wantStatus: http.StatusBadRequest,
			wantField:  "origin",
		},
		{
			name:       "missing destination",
			query:      "origin=JFK&date=2025-06-01",
			wantStatus: http.StatusBadRequest,
			wantField:  "destination",
		},
		{
			name:       "missing date",
			query:      "origin=JFK&destination=NRT",
			wantStatus: http.StatusBadRequest,
			wantField:  "date",
		},
		{
			name:       "invalid date format",
			query:      "origin=JFK&destination=NRT&date=2025/06/01",
			wantStatus: http.StatusBadRequest,
			wantField:  "date",
		},
		{
			name:       "unknown category",
			query:      "origin=JFK&destination=NRT&date=2025-06-01&categories=flights,cruises",
			wantStatus: http.StatusBadRequest,
			wantField:  "categories",
		},
		{
			name:       "invalid passengers",
			query:      "origin=JFK&destination=NRT&date=2025-06-01&passengers=zero",
			wantStatus: http.StatusBadRequest,
			wantField:  "passengers",
		},
		{
			name:       "lat without lng",
			query:      "origin=JFK&destination=NRT&date=2025-06-01&lat=35.6",
			wantStatus: http.StatusBadRequest,
			wantField:  "coordinates",
		},
		{
			name:       "coordinates out of range",
			query:      "origin=JFK&destination=NRT&date=2025-06-01&lat=95&lng=10",
			wantStatus: http.StatusBadRequest,
			wantField:  "coordinates",
		},
		{
			name:       "bad departure",
			query:      "origin=JFK&destination=NRT&date=2025-06-01&departure=tomorrow",
			wantStatus: http.StatusBadRequest,
			wantField:  "departure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mp := &mockPlanner{}
			h, _ := newHandler(t, mp, false, 0)

			req := httptest.NewRequest(http.MethodGet, "/v1/plan?"+tt.query, nil)
			w := httptest.NewRecorder()
			h.GetPlan(w, req)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			if tt.wantStatus != http.StatusOK {
				assert.Equal(t, tt.wantField, decodeError(t, w).Field)
				assert.Zero(t, mp.calls.Load(), "planner must not run for invalid input")
				return
			}

			var got map[string]json.RawMessage
			require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
			for _, c := range trip.AllCategories() {
				assert.Contains(t, got, c.String())
			}
			assert.Equal(t, "off", w.Header().Get("X-Cache"))
		})
	}
}

func TestHandler_GetPlan_QueryMapping(t *testing.T) {
	mp := &mockPlanner{}
	h, _ := newHandler(t, mp, false, 0)

	req := httptest.NewRequest(http.MethodGet, "/v1/plan?origin=JFK&destination=NRT&date=2025-06-01&categories=culture,flights&passengers=2&city=Tokyo&country=Japan&lat=35.5&lng=139.5&mode=Walking", nil)
	w := httptest.NewRecorder()
	h.GetPlan(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	last := mp.last.Load()
	require.NotNil(t, last)
	q := last.query
	assert.Equal(t, "JFK", q.Origin)
	assert.Equal(t, "NRT", q.Destination)
	assert.Equal(t, "2025-06-01", q.DateString())
	assert.Equal(t, 2, q.Passengers)
	assert.Equal(t, 2, q.Guests)
	assert.Equal(t, "Tokyo", q.City)
	assert.Equal(t, "Japan", q.Country)
	assert.Equal(t, trip.ModeWalking, q.TravelMode)
	require.NotNil(t, q.Coordinates)
	assert.InDelta(t, 35.5, q.Coordinates.Lat, 1e-9)
	assert.Equal(t, []trip.Category{trip.CategoryCulture, trip.CategoryFlights}, last.cats)
}

func TestHandler_PostPlan(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantDetails bool
	}{
		{
			name:       "valid body",
			body:       `{"origin":"JFK","destination":"NRT","date":"2025-06-01","categories":["flights"],"coordinates":{"lat":35.6,"lng":139.7},"travel_mode":"transit"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:        "missing date",
			body:        `{"origin":"JFK","destination":"NRT"}`,
			wantStatus:  http.StatusBadRequest,
			wantDetails: true,
		},
		{
			name:        "unknown property",
			body:        `{"origin":"JFK","destination":"NRT","date":"2025-06-01","hotel":"ritz"}`,
			wantStatus:  http.StatusBadRequest,
			wantDetails: true,
		},
		{
			name:        "unknown category",
			body:        `{"origin":"JFK","destination":"NRT","date":"2025-06-01","categories":["cruises"]}`,
			wantStatus:  http.StatusBadRequest,
			wantDetails: true,
		},
		{
			name:        "zero passengers",
			body:        `{"origin":"JFK","destination":"NRT","date":"2025-06-01","passengers":0}`,
			wantStatus:  http.StatusBadRequest,
			wantDetails: true,
		},
		{
			name:        "not json",
			body:        `origin=JFK`,
			wantStatus:  http.StatusBadRequest,
			wantDetails: true,
		},
		{
			name:        "empty body",
			body:        ``,
			wantStatus:  http.StatusBadRequest,
			wantDetails: true,
		},
		{
			name:       "impossible calendar date",
			body:       `{"origin":"JFK","destination":"NRT","date":"2025-13-45"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mp := &mockPlanner{}
			h, _ := newHandler(t, mp, false, 0)

			req := httptest.NewRequest(http.MethodPost, "/v1/plan", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			h.PostPlan(w, req)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus == http.StatusOK {
				assert.EqualValues(t, 1, mp.calls.Load())
				return
			}
			resp := decodeError(t, w)
			assert.NotEmpty(t, resp.Error)
			if tt.wantDetails {
				assert.NotEmpty(t, resp.Details)
			}
			assert.Zero(t, mp.calls.Load())
		})
	}
}

func TestHandler_PostPlan_BodyTooLarge(t *testing.T) {
	h, _ := newHandler(t, &mockPlanner{}, false, 0)

	body := `{"origin":"JFK","destination":"NRT","date":"2025-06-01","city":"` + strings.Repeat("x", 70<<10) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/plan", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.PostPlan(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_AllCategoriesFailed(t *testing.T) {
	mp := &mockPlanner{fn: func(_ context.Context, q trip.Query, _ []trip.Category) (*trip.Plan, error) {
		return failedPlan(q), planner.ErrAllCategoriesFailed
	}}
	h, _ := newHandler(t, mp, true, 0)

	req := httptest.NewRequest(http.MethodGet, "/v1/plan?origin=JFK&destination=NRT&date=2025-06-01", nil)
	w := httptest.NewRecorder()
	h.GetPlan(w, req)

	require.Equal(t, http.StatusBadGateway, w.Code)
	var p trip.Plan
	require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
	assert.Equal(t, trip.StatusUnavailable, p.Flights.Status)
	assert.Equal(t, trip.ReasonNotFound, p.Flights.Reason)
}

func TestHandler_PlannerErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "caller cancelled", err: context.Canceled, wantStatus: handler.StatusClientClosedRequest},
		{name: "deadline", err: context.DeadlineExceeded, wantStatus: http.StatusGatewayTimeout},
		{name: "query error", err: &trip.QueryError{Field: "categories", Message: "bad"}, wantStatus: http.StatusBadRequest},
		{name: "unexpected", err: assert.AnError, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mp := &mockPlanner{fn: func(context.Context, trip.Query, []trip.Category) (*trip.Plan, error) {
				return nil, tt.err
			}}
			h, _ := newHandler(t, mp, false, 0)

			req := httptest.NewRequest(http.MethodGet, "/v1/plan?origin=JFK&destination=NRT&date=2025-06-01", nil)
			w := httptest.NewRecorder()
			h.GetPlan(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestHandler_Cache(t *testing.T) {
	mp := &mockPlanner{}
	h, metrics := newHandler(t, mp, true, 0)

	get := func(query string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/plan?"+query, nil)
		w := httptest.NewRecorder()
		h.GetPlan(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		return w
	}

	assert.Equal(t, "miss", get("origin=JFK&destination=NRT&date=2025-06-01").Header().Get("X-Cache"))
	assert.Equal(t, "hit", get("origin=jfk&destination=nrt&date=2025-06-01").Header().Get("X-Cache"))
	assert.Equal(t, "miss", get("origin=JFK&destination=NRT&date=2025-06-02").Header().Get("X-Cache"))

	assert.EqualValues(t, 2, mp.calls.Load())
	require.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(`
# HELP tripplan_cache_hits_total Plans served from cache
# TYPE tripplan_cache_hits_total counter
tripplan_cache_hits_total 1
`), "tripplan_cache_hits_total"))
}

func TestHandler_RateLimit(t *testing.T) {
	mp := &mockPlanner{}
	h, metrics := newHandler(t, mp, false, 2)

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/plan?origin=JFK&destination=NRT&date=2025-06-01", nil)
		req.RemoteAddr = ip + ":12345"
		w := httptest.NewRecorder()
		h.GetPlan(w, req)
		return w
	}

	w := do("192.168.1.1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, do("192.168.1.1").Code)

	w = do("192.168.1.1")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "rate limit exceeded", decodeError(t, w).Error)

	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code, "other clients are unaffected")
	assert.EqualValues(t, 3, mp.calls.Load())
	require.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(`
# HELP tripplan_rate_limited_total Requests rejected by the rate limiter
# TYPE tripplan_rate_limited_total counter
tripplan_rate_limited_total 1
`), "tripplan_rate_limited_total"))
}

func TestHandler_RequestMetrics(t *testing.T) {
	h, metrics := newHandler(t, &mockPlanner{}, false, 0)

	h.GetPlan(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/plan?origin=JFK&destination=NRT&date=2025-06-01", nil))
	h.GetPlan(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/plan?origin=JFK", nil))

	n, err := testutil.GatherAndCount(metrics.Registry(), "tripplan_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{name: "remote addr", remoteAddr: "192.168.1.1:12345", want: "192.168.1.1"},
		{name: "remote addr without port", remoteAddr: "192.168.1.1", want: "192.168.1.1"},
		{
			name:       "forwarded for",
			remoteAddr: "10.0.0.1:1",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"},
			want:       "203.0.113.7",
		},
		{
			name:       "real ip",
			remoteAddr: "10.0.0.1:1",
			headers:    map[string]string{"X-Real-IP": " 203.0.113.9 "},
			want:       "203.0.113.9",
		},
		{
			name:       "forwarded for wins over real ip",
			remoteAddr: "10.0.0.1:1",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7", "X-Real-IP": "203.0.113.9"},
			want:       "203.0.113.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, handler.ExtractIP(req))
		})
	}
}
