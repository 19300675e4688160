package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g.
// TRIPPLAN_PLANNER_TIMEOUT_MS.
const EnvPrefix = "TRIPPLAN"

// Load reads configuration. path names an explicit config file; when empty
// config.yaml is looked up in the working directory and ./configs. A .env
// file in the working directory is loaded into the environment first
// without overriding variables that are already set.
func Load(path string) (*Config, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.inheritKeys()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// bindLegacyEnv accepts the provider credential variable names commonly
// used for these APIs next to the prefixed ones.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"providers.amadeus.api_key":    {"TRIPPLAN_PROVIDERS_AMADEUS_API_KEY", "AMADEUS_API_KEY"},
		"providers.amadeus.api_secret": {"TRIPPLAN_PROVIDERS_AMADEUS_API_SECRET", "AMADEUS_API_SECRET"},
		"providers.places.api_key":     {"TRIPPLAN_PROVIDERS_PLACES_API_KEY", "GOOGLE_MAPS_API_KEY"},
		"providers.directions.api_key": {"TRIPPLAN_PROVIDERS_DIRECTIONS_API_KEY", "GOOGLE_MAPS_API_KEY"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "tripplan")
	v.SetDefault("tracing.sample_ratio", 1.0)
	v.SetDefault("tracing.log_spans", false)

	v.SetDefault("planner.timeout_ms", 10000)
	v.SetDefault("planner.global_timeout_ms", 10000)
	v.SetDefault("planner.category_timeouts_ms", map[string]int{})
	v.SetDefault("planner.retry_count", 2)
	v.SetDefault("planner.backoff_base_ms", 500)
	v.SetDefault("planner.backoff_max_ms", 0)
	v.SetDefault("planner.max_results", 10)
	v.SetDefault("planner.photo_cap", 3)
	v.SetDefault("planner.photo_fanout", 4)
	v.SetDefault("planner.opening_hours_cap", 7)
	v.SetDefault("planner.step_cap", 25)
	v.SetDefault("planner.summary_sentences", 3)

	v.SetDefault("providers.http_timeout", "8s")
	v.SetDefault("providers.amadeus.base_url", "https://test.api.amadeus.com")
	v.SetDefault("providers.amadeus.api_key", "")
	v.SetDefault("providers.amadeus.api_secret", "")
	v.SetDefault("providers.amadeus.token", "")
	v.SetDefault("providers.hotels.base_urls", []string{})
	v.SetDefault("providers.hotels.nights", 1)
	v.SetDefault("providers.places.base_url", "https://maps.googleapis.com")
	v.SetDefault("providers.places.api_key", "")
	v.SetDefault("providers.directions.base_url", "https://maps.googleapis.com")
	v.SetDefault("providers.directions.api_key", "")
	v.SetDefault("providers.wikipedia.base_url", "https://en.wikipedia.org")

	v.SetDefault("cache.backend", CacheMemory)
	v.SetDefault("cache.ttl", "5m")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "tripplan:plan:")

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requests", 10)
	v.SetDefault("ratelimit.window", "1m")
}

// inheritKeys lets directions reuse the places key, both being Google
// Maps Platform APIs.
func (c *Config) inheritKeys() {
	if c.Providers.Directions.APIKey == "" {
		c.Providers.Directions.APIKey = c.Providers.Places.APIKey
	}
}
