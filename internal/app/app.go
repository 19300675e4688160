// Package app wires configuration, providers, the planner and the HTTP
// surface together.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/alex-user-go/tripplan/internal/config"
	"github.com/alex-user-go/tripplan/internal/handler"
	"github.com/alex-user-go/tripplan/internal/logger"
	"github.com/alex-user-go/tripplan/internal/middleware"
	"github.com/alex-user-go/tripplan/internal/obs"
	"github.com/alex-user-go/tripplan/internal/planner"
	"github.com/alex-user-go/tripplan/internal/planner/cache"
	"github.com/alex-user-go/tripplan/internal/planner/ratelimit"
	"github.com/alex-user-go/tripplan/internal/providers"
)

// App holds the long-lived components of the service.
type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *obs.Metrics
	Telemetry   *obs.Telemetry
	Coordinator *planner.Coordinator
	Cache       *cache.Cache
	Limiter     *ratelimit.Limiter

	closers []func() error
}

// New builds every component from cfg. Call Close when done.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	a.Metrics = obs.NewMetrics()
	tel, err := obs.NewTelemetry(obs.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		SampleRatio: cfg.Tracing.SampleRatio,
		LogSpans:    cfg.Tracing.LogSpans,
	}, a.Metrics, logger)
	if err != nil {
		return nil, err
	}
	a.Telemetry = tel

	adapters := NewAdapters(ctx, cfg, logger)
	a.Coordinator = planner.NewCoordinator(adapters, cfg.Planner.Coordinator(),
		planner.WithLogger(logger.Named("planner")),
		planner.WithMetrics(a.Metrics),
		planner.WithTracerProvider(tel.TracerProvider),
		planner.WithMeterProvider(tel.MeterProvider),
	)

	store, err := a.newStore(ctx)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	if store != nil {
		a.Cache = cache.New(store, cfg.Cache.TTL,
			cache.WithLogger(logger.Named("cache")),
			cache.WithMetrics(a.Metrics),
		)
	}

	if cfg.RateLimit.Enabled {
		a.Limiter = ratelimit.New(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		a.closers = append(a.closers, func() error {
			a.Limiter.Close()
			return nil
		})
	}

	logger.Info("application initialized",
		zap.String("cache", cfg.Cache.Backend),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Bool("tracing", cfg.Tracing.Enabled),
		zap.Strings("categories", enabledNames(adapters)))
	return a, nil
}

func (a *App) newStore(ctx context.Context) (cache.Store, error) {
	switch a.Config.Cache.Backend {
	case config.CacheRedis:
		s, err := cache.NewRedisStore(ctx, a.Config.Redis.Store())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case config.CacheMemory:
		s := cache.NewMemoryStore(time.Minute)
		a.closers = append(a.closers, s.Close)
		return s, nil
	default:
		return nil, nil
	}
}

// Handler returns the HTTP routes wrapped in middleware.
func (a *App) Handler() http.Handler {
	h := handler.New(a.Coordinator, a.Cache, a.Limiter, a.Metrics, a.Logger.Named("http"))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/plan", h.GetPlan)
	mux.HandleFunc("POST /v1/plan", h.PostPlan)
	mux.HandleFunc("GET /healthz", obs.HealthHandler(a.Logger))
	mux.Handle("GET /metrics", a.Metrics.Handler(a.Logger))

	return middleware.Logging(a.Logger)(middleware.Recover(a.Logger)(mux))
}

// Close releases stores, the rate limiter and telemetry.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	if a.Telemetry != nil {
		errs = append(errs, a.Telemetry.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func (a *App) Serve(ctx context.Context) error {
	sc := a.Config.Server
	srv := &http.Server{
		Addr:         sc.Addr,
		Handler:      a.Handler(),
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		IdleTimeout:  sc.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sc.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("server shutdown error", zap.Error(err))
		return err
	}
	a.Logger.Info("server stopped")
	return nil
}

// NewAdapters builds one adapter per category from the provider section.
// Categories whose provider has no credentials are left nil and reported
// as not implemented.
func NewAdapters(ctx context.Context, cfg *config.Config, logger *zap.Logger) planner.Adapters {
	pc := cfg.Providers
	timeout := pc.HTTPTimeout
	opts := cfg.Planner.Adapters()
	opts.Logger = logger.Named("providers")

	var adapters planner.Adapters

	switch {
	case pc.Amadeus.APIKey != "":
		hc := providers.AmadeusHTTPClient(ctx, pc.Amadeus.BaseURL, pc.Amadeus.APIKey, pc.Amadeus.APISecret, timeout)
		client := providers.NewAmadeusClient(pc.Amadeus.BaseURL, "", timeout, providers.WithHTTPClient(hc))
		adapters.Flights = providers.NewFlightAdapter(client, opts)
	case pc.Amadeus.Token != "":
		client := providers.NewAmadeusClient(pc.Amadeus.BaseURL, pc.Amadeus.Token, timeout)
		adapters.Flights = providers.NewFlightAdapter(client, opts)
	default:
		logger.Warn("flights disabled: no amadeus credentials")
	}

	if len(pc.Hotels.BaseURLs) > 0 {
		searchers := make([]providers.LodgingSearcher, len(pc.Hotels.BaseURLs))
		for i, u := range pc.Hotels.BaseURLs {
			searchers[i] = providers.NewHotelClient(fmt.Sprintf("hotels%d", i+1), u, pc.Hotels.Nights, timeout)
		}
		var searcher providers.LodgingSearcher = searchers[0]
		if len(searchers) > 1 {
			searcher = providers.NewLodgingFanOut(opts.Logger, searchers...)
		}
		adapters.Lodging = providers.NewLodgingAdapter(searcher, opts)
	} else {
		logger.Warn("lodging disabled: no hotel providers configured")
	}

	if pc.Places.APIKey != "" {
		client := providers.NewPlacesClient(pc.Places.BaseURL, pc.Places.APIKey, timeout)
		adapters.Attractions = providers.NewAttractionAdapter(client, opts)
	} else {
		logger.Warn("attractions disabled: no places api key")
	}

	adapters.Culture = providers.NewCultureAdapter(providers.NewWikipediaClient(pc.Wikipedia.BaseURL, timeout))

	if pc.Directions.APIKey != "" {
		client := providers.NewDirectionsClient(pc.Directions.BaseURL, pc.Directions.APIKey, timeout)
		adapters.Transport = providers.NewTransportAdapter(client)
	} else {
		logger.Warn("transport disabled: no directions api key")
	}

	return adapters
}

func enabledNames(a planner.Adapters) []string {
	var names []string
	if a.Flights != nil {
		names = append(names, "flights")
	}
	if a.Lodging != nil {
		names = append(names, "lodging")
	}
	if a.Attractions != nil {
		names = append(names, "attractions")
	}
	if a.Culture != nil {
		names = append(names, "culture")
	}
	if a.Transport != nil {
		names = append(names, "transport")
	}
	return names
}

// Run loads configuration from configPath (empty for the default lookup),
// serves until ctx is cancelled and releases every component.
func Run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	a, err := New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			log.Warn("release failed", zap.Error(err))
		}
	}()

	return a.Serve(ctx)
}
