package config

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/alex-user-go/tripplan/internal/logger"
	"github.com/alex-user-go/tripplan/internal/trip"
)

// Validate checks every section.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Server),
		validation.Field(&c.Logging),
		validation.Field(&c.Tracing),
		validation.Field(&c.Planner),
		validation.Field(&c.Providers),
		validation.Field(&c.Cache),
		validation.Field(&c.Redis, validation.Skip.When(c.Cache.Backend != CacheRedis)),
		validation.Field(&c.RateLimit),
	)
}

func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Addr, validation.Required),
		validation.Field(&s.ReadTimeout, validation.Min(0)),
		validation.Field(&s.WriteTimeout, validation.Min(0)),
		validation.Field(&s.ShutdownTimeout, validation.Required),
	)
}

func (l LoggingConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.By(func(any) error {
			_, err := logger.ParseLevel(l.Level)
			return err
		})),
		validation.Field(&l.Format, validation.In("json", "console", "text")),
	)
}

func (t TracingConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.ServiceName, validation.When(t.Enabled, validation.Required)),
		validation.Field(&t.SampleRatio, validation.Min(0.0), validation.Max(1.0)),
	)
}

func (p PlannerConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.TimeoutMs, validation.Required, validation.Min(1)),
		validation.Field(&p.GlobalTimeoutMs, validation.Required, validation.Min(1)),
		validation.Field(&p.CategoryTimeoutsMs, validation.By(categoryTimeouts)),
		validation.Field(&p.RetryCount, validation.Min(0), validation.Max(10)),
		validation.Field(&p.BackoffBaseMs, validation.Min(0)),
		validation.Field(&p.BackoffMaxMs, validation.Min(0)),
		validation.Field(&p.MaxResults, validation.Required, validation.Min(1), validation.Max(250)),
		validation.Field(&p.PhotoCap, validation.Min(0)),
		validation.Field(&p.PhotoFanOut, validation.Min(0)),
		validation.Field(&p.OpeningHoursCap, validation.Min(0)),
		validation.Field(&p.StepCap, validation.Min(0)),
		validation.Field(&p.SummarySentences, validation.Min(0)),
	)
}

func categoryTimeouts(value any) error {
	m, _ := value.(map[string]int)
	var errs []error
	for name, v := range m {
		if _, err := trip.ParseCategory(name); err != nil {
			errs = append(errs, err)
			continue
		}
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s: must not be negative", name))
		}
	}
	return errors.Join(errs...)
}

func (p ProvidersConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.HTTPTimeout, validation.Required),
		validation.Field(&p.Amadeus),
		validation.Field(&p.Hotels),
		validation.Field(&p.Places),
		validation.Field(&p.Directions),
		validation.Field(&p.Wikipedia),
	)
}

func (a AmadeusConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.BaseURL, is.URL),
		validation.Field(&a.APISecret, validation.When(a.APIKey != "", validation.Required)),
	)
}

func (h HotelsConfig) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.BaseURLs, validation.Each(is.URL)),
		validation.Field(&h.Nights, validation.Min(1)),
	)
}

func (g GoogleConfig) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.BaseURL, is.URL),
	)
}

func (w WikipediaConfig) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.BaseURL, is.URL),
	)
}

func (c CacheConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(CacheMemory, CacheRedis, CacheNone)),
		validation.Field(&c.TTL, validation.When(c.Backend != CacheNone, validation.Required)),
	)
}

func (r RedisConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Addr, validation.Required),
		validation.Field(&r.DB, validation.Min(0)),
	)
}

func (r RateLimitConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Requests, validation.When(r.Enabled, validation.Required, validation.Min(1))),
		validation.Field(&r.Window, validation.When(r.Enabled, validation.Required)),
	)
}
