// Package config loads service configuration from a YAML file, a .env file
// and TRIPPLAN_ prefixed environment variables, in increasing precedence.
package config

import (
	"time"

	"github.com/alex-user-go/tripplan/internal/normalize"
	"github.com/alex-user-go/tripplan/internal/planner"
	"github.com/alex-user-go/tripplan/internal/planner/cache"
	"github.com/alex-user-go/tripplan/internal/providers"
	"github.com/alex-user-go/tripplan/internal/trip"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Planner   PlannerConfig   `mapstructure:"planner"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig selects the log level and encoding.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
	LogSpans    bool    `mapstructure:"log_spans"`
}

// PlannerConfig holds coordinator and normalization knobs. Durations are in
// milliseconds.
type PlannerConfig struct {
	TimeoutMs          int            `mapstructure:"timeout_ms"`
	GlobalTimeoutMs    int            `mapstructure:"global_timeout_ms"`
	CategoryTimeoutsMs map[string]int `mapstructure:"category_timeouts_ms"`
	RetryCount         int            `mapstructure:"retry_count"`
	BackoffBaseMs      int            `mapstructure:"backoff_base_ms"`
	BackoffMaxMs       int            `mapstructure:"backoff_max_ms"`
	MaxResults         int            `mapstructure:"max_results"`
	PhotoCap           int            `mapstructure:"photo_cap"`
	PhotoFanOut        int            `mapstructure:"photo_fanout"`
	OpeningHoursCap    int            `mapstructure:"opening_hours_cap"`
	StepCap            int            `mapstructure:"step_cap"`
	SummarySentences   int            `mapstructure:"summary_sentences"`
}

// ProvidersConfig holds the upstream endpoints and credentials.
type ProvidersConfig struct {
	HTTPTimeout time.Duration   `mapstructure:"http_timeout"`
	Amadeus     AmadeusConfig   `mapstructure:"amadeus"`
	Hotels      HotelsConfig    `mapstructure:"hotels"`
	Places      GoogleConfig    `mapstructure:"places"`
	Directions  GoogleConfig    `mapstructure:"directions"`
	Wikipedia   WikipediaConfig `mapstructure:"wikipedia"`
}

// AmadeusConfig authenticates either with a static token or with an API
// key and secret exchanged for tokens.
type AmadeusConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	Token     string `mapstructure:"token"`
}

// HotelsConfig lists the lodging providers.
type HotelsConfig struct {
	BaseURLs []string `mapstructure:"base_urls"`
	Nights   int      `mapstructure:"nights"`
}

// GoogleConfig configures a Google Maps web service.
type GoogleConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// WikipediaConfig configures the encyclopedia lookup.
type WikipediaConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// CacheConfig selects the plan cache backend.
type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// RedisConfig configures the Redis cache backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// RateLimitConfig configures the per-client rate limiter.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// Coordinator converts the planner section. Category keys were checked by
// Validate; unknown ones are skipped.
func (p PlannerConfig) Coordinator() planner.Config {
	overrides := make(map[trip.Category]time.Duration, len(p.CategoryTimeoutsMs))
	for name, v := range p.CategoryTimeoutsMs {
		if c, err := trip.ParseCategory(name); err == nil && v > 0 {
			overrides[c] = ms(v)
		}
	}
	return planner.Config{
		Timeout:          ms(p.TimeoutMs),
		CategoryTimeouts: overrides,
		GlobalTimeout:    ms(p.GlobalTimeoutMs),
		RetryCount:       p.RetryCount,
		BackoffBase:      ms(p.BackoffBaseMs),
		BackoffMax:       ms(p.BackoffMaxMs),
		Limits: normalize.Limits{
			Results:          p.MaxResults,
			Photos:           p.PhotoCap,
			OpeningHours:     p.OpeningHoursCap,
			Steps:            p.StepCap,
			SummarySentences: p.SummarySentences,
		},
	}
}

// Adapters converts the planner section into adapter options.
func (p PlannerConfig) Adapters() providers.Options {
	return providers.Options{
		MaxResults:  p.MaxResults,
		PhotoCap:    p.PhotoCap,
		PhotoFanOut: p.PhotoFanOut,
	}
}

// Store converts the redis section.
func (r RedisConfig) Store() cache.RedisConfig {
	return cache.RedisConfig{
		Addr:     r.Addr,
		Password: r.Password,
		DB:       r.DB,
		Prefix:   r.Prefix,
	}
}
