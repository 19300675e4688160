package normalize

import (
	"strings"

	"github.com/alex-user-go/tripplan/internal/providers"
	"github.com/alex-user-go/tripplan/internal/trip"
)

const maxRating = 5

// Attractions normalizes places. Places without a name are dropped.
func Attractions(places []providers.RawPlace, lim Limits) []trip.Attraction {
	lim = lim.WithDefaults()
	out := make([]trip.Attraction, 0, min(len(places), lim.Results))

	for _, p := range places {
		if len(out) == lim.Results {
			break
		}
		name := value(p.Name)
		if name == "" {
			continue
		}
		out = append(out, trip.Attraction{
			Name:         name,
			Address:      optional(p.FormattedAddress),
			Rating:       rating(p.Rating),
			Website:      optional(p.Website),
			Phone:        optional(p.Phone),
			OpeningHours: openingHours(p.OpeningHours, lim.OpeningHours),
			Photos:       photoURLs(p.Photos, lim.Photos),
		})
	}
	return out
}

// rating keeps values on the 0-5 scale; anything else is treated as absent.
func rating(r *float64) *float64 {
	if r == nil || *r < 0 || *r > maxRating {
		return nil
	}
	v := *r
	return &v
}

// openingHours returns nil when the upstream sent no opening hours and an
// empty list when it sent an empty one.
func openingHours(h *providers.RawOpeningHours, n int) []string {
	if h == nil {
		return nil
	}
	out := []string{}
	for _, day := range h.WeekdayText {
		if len(out) == n {
			break
		}
		if d := strings.TrimSpace(day); d != "" {
			out = append(out, d)
		}
	}
	return out
}

func photoURLs(refs []providers.RawPhotoRef, n int) []string {
	out := []string{}
	for _, r := range refs {
		if len(out) == n {
			break
		}
		if u := strings.TrimSpace(r.URL); u != "" {
			out = append(out, u)
		}
	}
	return out
}
