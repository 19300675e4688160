package providers

import (
	"context"

	"github.com/alex-user-go/tripplan/internal/trip"
)

// CultureAdapter fetches a cultural summary of the destination country.
type CultureAdapter struct {
	summarizer CultureSummarizer
}

// NewCultureAdapter creates a new CultureAdapter.
func NewCultureAdapter(summarizer CultureSummarizer) *CultureAdapter {
	return &CultureAdapter{summarizer: summarizer}
}

// Fetch looks up the country. Several matching topics yield an ambiguous
// failure; the adapter never picks one.
func (a *CultureAdapter) Fetch(ctx context.Context, q trip.Query) trip.Result[RawCultureSummary] {
	if q.Country == "" {
		return trip.Failure[RawCultureSummary](trip.InvalidInput("country is required for the cultural lookup"))
	}
	if a.summarizer == nil {
		return trip.Failure[RawCultureSummary](trip.NotImplemented("no culture provider configured"))
	}

	summary, err := a.summarizer.SummarizeCulture(ctx, q.Country)
	if err != nil {
		return trip.Failure[RawCultureSummary](classify(err, "culture lookup"))
	}
	if summary.Extract == nil || *summary.Extract == "" {
		return trip.Failure[RawCultureSummary](trip.NotFound("no cultural summary for %s", q.Country))
	}
	return trip.Success(summary)
}
