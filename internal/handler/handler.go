package handler

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alex-user-go/tripplan/internal/middleware"
	"github.com/alex-user-go/tripplan/internal/obs"
	"github.com/alex-user-go/tripplan/internal/planner"
	"github.com/alex-user-go/tripplan/internal/planner/cache"
	"github.com/alex-user-go/tripplan/internal/planner/ratelimit"
	"github.com/alex-user-go/tripplan/internal/trip"
)

// StatusClientClosedRequest is reported when the caller went away before
// the plan was ready.
const StatusClientClosedRequest = 499

const route = "/v1/plan"

// Planner builds trip plans.
type Planner interface {
	PlanTrip(ctx context.Context, q trip.Query, categories ...trip.Category) (*trip.Plan, error)
}

// Handler serves trip plan requests.
type Handler struct {
	planner     Planner
	cache       *cache.Cache
	rateLimiter *ratelimit.Limiter
	metrics     *obs.Metrics
	logger      *zap.Logger
}

// New creates a Handler. planCache and rateLimiter may be nil to disable
// caching or rate limiting.
func New(
	p Planner,
	planCache *cache.Cache,
	rateLimiter *ratelimit.Limiter,
	metrics *obs.Metrics,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		planner:     p,
		cache:       planCache,
		rateLimiter: rateLimiter,
		metrics:     metrics,
		logger:      logger,
	}
}

// ErrorResponse is the body of every non-plan response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Field   string   `json:"field,omitempty"`
	Details []string `json:"details,omitempty"`
}

// GetPlan handles GET /v1/plan.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r) {
		return
	}
	req, err := ParseQueryParams(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	h.plan(w, r, req)
}

// PostPlan handles POST /v1/plan with a JSON body.
func (h *Handler) PostPlan(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	req, err := DecodeBody(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	h.plan(w, r, req)
}

func (h *Handler) plan(w http.ResponseWriter, r *http.Request, req PlanRequest) {
	requestID := middleware.RequestID(r.Context())

	q, cats, err := req.Query()
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	// Reject early so that invalid queries never reach the cache.
	if err := q.Validate(); err != nil {
		h.badRequest(w, r, err)
		return
	}

	run := func(ctx context.Context) (*trip.Plan, error) {
		return h.planner.PlanTrip(ctx, q, cats...)
	}

	var (
		p   *trip.Plan
		hit bool
	)
	if h.cache != nil {
		p, hit, err = h.cache.GetOrPlan(r.Context(), cache.Key(q, cats), run)
	} else {
		p, err = run(r.Context())
	}

	switch {
	case err == nil:
		w.Header().Set("X-Cache", cacheStatus(h.cache != nil, hit))
		h.writeJSON(w, r, http.StatusOK, p)

	case errors.Is(err, planner.ErrAllCategoriesFailed) && p != nil:
		h.logger.Warn("no category produced data",
			zap.String("request_id", requestID),
			zap.String("plan_id", p.ID))
		w.Header().Set("X-Cache", cacheStatus(h.cache != nil, false))
		h.writeJSON(w, r, http.StatusBadGateway, p)

	case isQueryError(err):
		h.badRequest(w, r, err)

	case errors.Is(err, context.Canceled):
		h.logger.Info("client went away before the plan was ready",
			zap.String("request_id", requestID))
		h.writeJSON(w, r, StatusClientClosedRequest, ErrorResponse{Error: "request cancelled"})

	case errors.Is(err, context.DeadlineExceeded):
		h.writeJSON(w, r, http.StatusGatewayTimeout, ErrorResponse{Error: "planning timed out"})

	default:
		h.logger.Error("planning failed",
			zap.String("request_id", requestID),
			zap.String("origin", q.Origin),
			zap.String("destination", q.Destination),
			zap.Error(err))
		h.writeJSON(w, r, http.StatusInternalServerError, ErrorResponse{Error: "planning failed"})
	}
}

// allow applies the per-IP rate limit and sets the X-RateLimit headers.
func (h *Handler) allow(w http.ResponseWriter, r *http.Request) bool {
	if h.rateLimiter == nil {
		return true
	}
	ip := ExtractIP(r)
	d := h.rateLimiter.Decide(ip)
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	if d.Allowed {
		return true
	}

	h.metrics.IncRateLimited()
	h.logger.Warn("rate limit exceeded",
		zap.String("request_id", middleware.RequestID(r.Context())),
		zap.String("ip", ip))
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(d.RetryAfter)))
	h.writeJSON(w, r, http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
	return false
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Debug("invalid request",
		zap.String("request_id", middleware.RequestID(r.Context())),
		zap.Error(err))

	resp := ErrorResponse{Error: err.Error()}
	var qerr *trip.QueryError
	var serr *SchemaError
	switch {
	case errors.As(err, &qerr):
		resp.Field = qerr.Field
	case errors.As(err, &serr):
		resp.Error = "request body does not match schema"
		resp.Details = serr.Details
	}
	h.writeJSON(w, r, http.StatusBadRequest, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	h.metrics.ObserveRequest(r.Method+" "+route, strconv.Itoa(status))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Can't change status after WriteHeader, just log
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func isQueryError(err error) bool {
	var qerr *trip.QueryError
	return errors.As(err, &qerr)
}

func cacheStatus(enabled, hit bool) string {
	switch {
	case !enabled:
		return "off"
	case hit:
		return "hit"
	default:
		return "miss"
	}
}

func retryAfterSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

// ExtractIP extracts the client IP from the request.
// Checks X-Forwarded-For, X-Real-IP, then falls back to RemoteAddr.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
