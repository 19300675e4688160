package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alex-user-go/tripplan/internal/config"
	"github.com/alex-user-go/tripplan/internal/handler"
	"github.com/alex-user-go/tripplan/internal/planner"
	"github.com/alex-user-go/tripplan/internal/trip"
)

type fakePlanner struct {
	err   error
	query trip.Query
	cats  []trip.Category
}

func (f *fakePlanner) PlanTrip(_ context.Context, q trip.Query, cats ...trip.Category) (*trip.Plan, error) {
	f.query, f.cats = q, cats
	summary := trip.CulturalSummary{Topic: "Culture of Japan", Summary: "Diverse.", Source: "Wikipedia: Culture of Japan"}
	return &trip.Plan{
		ID:          "plan-1",
		Origin:      q.Origin,
		Destination: q.Destination,
		Date:        q.DateString(),
		Flights:     trip.NotAttemptedSlot[[]trip.FlightOffer](trip.CategoryFlights),
		Lodging:     trip.NotAttemptedSlot[[]trip.LodgingOption](trip.CategoryLodging),
		Attractions: trip.NotAttemptedSlot[[]trip.Attraction](trip.CategoryAttractions),
		Culture:     trip.NewSlot(trip.CategoryCulture, trip.Success(summary), 1, time.Millisecond),
		Transport:   trip.NotAttemptedSlot[trip.TransportRoute](trip.CategoryTransport),
	}, f.err
}

func runPlan(t *testing.T, fp *fakePlanner, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("TRIPPLAN_LOGGING_LEVEL", "error")

	configPath := ""
	cmd := newPlanCmd(&configPath, func(context.Context, *config.Config, *zap.Logger) handler.Planner {
		return fp
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPlanCmd(t *testing.T) {
	fp := &fakePlanner{}
	out, err := runPlan(t, fp,
		"--origin", "JFK", "--destination", "NRT", "--date", "2025-06-01",
		"--categories", "culture,flights", "--country", "Japan", "--passengers", "2",
		"--lat", "35.6", "--lng", "139.7")
	require.NoError(t, err)

	var p trip.Plan
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "plan-1", p.ID)
	assert.Equal(t, trip.StatusOK, p.Culture.Status)

	assert.Equal(t, "Japan", fp.query.Country)
	assert.Equal(t, 2, fp.query.Passengers)
	require.NotNil(t, fp.query.Coordinates)
	assert.InDelta(t, 139.7, fp.query.Coordinates.Lng, 1e-9)
	assert.Equal(t, []trip.Category{trip.CategoryCulture, trip.CategoryFlights}, fp.cats)
}

func TestPlanCmd_AllFailedStillPrints(t *testing.T) {
	out, err := runPlan(t, &fakePlanner{err: planner.ErrAllCategoriesFailed},
		"--origin", "JFK", "--destination", "NRT", "--date", "2025-06-01", "--compact")
	assert.ErrorIs(t, err, planner.ErrAllCategoriesFailed)
	assert.Contains(t, out, `"id":"plan-1"`)
}

func TestPlanCmd_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing required flag", args: []string{"--origin", "JFK", "--date", "2025-06-01"}},
		{name: "bad date", args: []string{"--origin", "JFK", "--destination", "NRT", "--date", "June 1"}},
		{name: "unknown category", args: []string{"--origin", "JFK", "--destination", "NRT", "--date", "2025-06-01", "--categories", "cruises"}},
		{name: "lat without lng", args: []string{"--origin", "JFK", "--destination", "NRT", "--date", "2025-06-01", "--lat", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runPlan(t, &fakePlanner{}, tt.args...)
			assert.Error(t, err)
			assert.Empty(t, out)
		})
	}
}

func TestRoot_Commands(t *testing.T) {
	root := NewRoot()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"plan", "serve"}, names)
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}
