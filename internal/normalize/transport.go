package normalize

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/alex-user-go/tripplan/internal/providers"
	"github.com/alex-user-go/tripplan/internal/trip"
)

// Transport normalizes the first leg of a route into step-by-step legs.
func Transport(route providers.RawRoute, lim Limits) trip.TransportRoute {
	lim = lim.WithDefaults()

	out := trip.TransportRoute{
		Summary: optional(route.Summary),
		Legs:    []trip.TransportLeg{},
	}
	if len(route.Legs) == 0 {
		return out
	}

	leg := route.Legs[0]
	out.Distance = rawText(leg.Distance)
	out.Duration = rawText(leg.Duration)

	for _, s := range capped(leg.Steps, lim.Steps) {
		out.Legs = append(out.Legs, trip.TransportLeg{
			Instruction: StripHTML(value(s.HTMLInstructions)),
			Distance:    rawText(s.Distance),
			Duration:    rawText(s.Duration),
			Mode:        strings.ToLower(value(s.TravelMode)),
			Transit:     transit(s.TransitDetails),
		})
	}
	return out
}

func rawText(t *providers.RawText) *string {
	if t == nil {
		return nil
	}
	s := strings.TrimSpace(t.Text)
	return &s
}

func transit(d *providers.RawTransitDetails) *trip.TransitDetail {
	if d == nil {
		return nil
	}
	td := &trip.TransitDetail{}
	if d.Line != nil {
		td.Line = optional(d.Line.Name)
		if td.Line == nil || *td.Line == "" {
			td.Line = optional(d.Line.ShortName)
		}
		if d.Line.Vehicle != nil {
			td.Vehicle = optional(d.Line.Vehicle.Name)
		}
	}
	if d.DepartureStop != nil {
		td.DepartureStop = optional(d.DepartureStop.Name)
	}
	if d.ArrivalStop != nil {
		td.ArrivalStop = optional(d.ArrivalStop.Name)
	}
	return td
}

// StripHTML returns the text content of an HTML fragment with entities
// decoded and whitespace collapsed. Block elements become word breaks.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "div", "br", "p", "li":
				b.WriteByte(' ')
			}
		}
	}
}
