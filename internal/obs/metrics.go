package obs

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "tripplan"

// Metrics holds the Prometheus collectors of the service. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests         *prometheus.CounterVec
	plans            *prometheus.CounterVec
	categoryOutcomes *prometheus.CounterVec
	attempts         *prometheus.CounterVec
	categoryLatency  *prometheus.HistogramVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	rateLimited      prometheus.Counter
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		plans: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_total",
			Help:      "Total number of assembled plans by result",
		}, []string{"result"}),
		categoryOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "category_outcomes_total",
			Help:      "Terminal slot outcomes by category",
		}, []string{"category", "outcome"}),
		attempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_attempts_total",
			Help:      "Adapter invocations by category",
		}, []string{"category"}),
		categoryLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "category_duration_seconds",
			Help:      "Time from fan-out to terminal slot per category",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2, 5, 10},
		}, []string{"category"}),
		cacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Plans served from cache",
		}),
		cacheMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Plans assembled because the cache had no entry",
		}),
		rateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}
}

// Registry exposes the registry for additional collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRequest counts one HTTP request.
func (m *Metrics) ObserveRequest(route, code string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, code).Inc()
}

// ObservePlan counts one plan by result ("complete", "partial", "failed",
// "cancelled").
func (m *Metrics) ObservePlan(result string) {
	if m == nil {
		return
	}
	m.plans.WithLabelValues(result).Inc()
}

// ObserveCategory records the terminal outcome of one category.
func (m *Metrics) ObserveCategory(category, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.categoryOutcomes.WithLabelValues(category, outcome).Inc()
	m.categoryLatency.WithLabelValues(category).Observe(elapsed.Seconds())
}

// IncAttempts counts one adapter invocation.
func (m *Metrics) IncAttempts(category string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(category).Inc()
}

// IncCacheHits increments the cache hits counter.
func (m *Metrics) IncCacheHits() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// IncCacheMisses increments the cache misses counter.
func (m *Metrics) IncCacheMisses() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

// IncRateLimited increments the rejected requests counter.
func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler(logger *zap.Logger) http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      zap.NewStdLog(logger),
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// HealthHandler returns a handler for /healthz requests.
func HealthHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health response", zap.Error(err))
		}
	}
}
