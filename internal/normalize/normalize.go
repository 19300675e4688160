// Package normalize maps raw provider payloads into the trip schema.
//
// Every function is pure and total: a missing upstream key never panics.
// Optional fields that were not provided become nil; fields that were
// provided but empty stay empty. List fields are capped by Limits.
package normalize

import (
	"strings"
)

// Limits caps list-valued fields.
type Limits struct {
	Results          int
	Photos           int
	OpeningHours     int
	Steps            int
	SummarySentences int
}

// DefaultLimits returns the caps used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		Results:          10,
		Photos:           3,
		OpeningHours:     7,
		Steps:            25,
		SummarySentences: 3,
	}
}

// WithDefaults fills zero caps from DefaultLimits.
func (l Limits) WithDefaults() Limits {
	def := DefaultLimits()
	if l.Results <= 0 {
		l.Results = def.Results
	}
	if l.Photos <= 0 {
		l.Photos = def.Photos
	}
	if l.OpeningHours <= 0 {
		l.OpeningHours = def.OpeningHours
	}
	if l.Steps <= 0 {
		l.Steps = def.Steps
	}
	if l.SummarySentences <= 0 {
		l.SummarySentences = def.SummarySentences
	}
	return l
}

// optional keeps the distinction between absent (nil) and provided.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func capped[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func currency(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
