package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-user-go/tripplan/internal/trip"
)

func date() time.Time {
	return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
}

func okPlan(id string) *trip.Plan {
	summary := trip.CulturalSummary{Topic: "Culture of Japan", Summary: "Rich.", Source: "Wikipedia"}
	return &trip.Plan{
		ID:          id,
		Origin:      "JFK",
		Destination: "NRT",
		Date:        "2025-06-01",
		Flights:     trip.NotAttemptedSlot[[]trip.FlightOffer](trip.CategoryFlights),
		Lodging:     trip.NotAttemptedSlot[[]trip.LodgingOption](trip.CategoryLodging),
		Attractions: trip.NotAttemptedSlot[[]trip.Attraction](trip.CategoryAttractions),
		Culture:     trip.NewSlot(trip.CategoryCulture, trip.Success(summary), 1, time.Millisecond),
		Transport:   trip.NotAttemptedSlot[trip.TransportRoute](trip.CategoryTransport),
	}
}

func newMemoryCache(t *testing.T) (*Cache, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	return New(store, time.Minute), store
}

func TestKey(t *testing.T) {
	base := trip.NewQuery("JFK", "NRT", date(), trip.WithCity("Tokyo"), trip.WithCountry("Japan"))

	tests := []struct {
		name  string
		a, b  trip.Query
		catsA []trip.Category
		catsB []trip.Category
		same  bool
	}{
		{
			name: "identical queries",
			a:    base,
			b:    base,
			same: true,
		},
		{
			name:  "category order and duplicates do not matter",
			a:     base,
			b:     base,
			catsA: []trip.Category{trip.CategoryCulture, trip.CategoryFlights},
			catsB: []trip.Category{trip.CategoryFlights, trip.CategoryCulture, trip.CategoryFlights},
			same:  true,
		},
		{
			name:  "no categories means all",
			a:     base,
			b:     base,
			catsB: trip.AllCategories(),
			same:  true,
		},
		{
			name: "case insensitive",
			a:    base,
			b:    trip.NewQuery("jfk", "nrt", date(), trip.WithCity("TOKYO"), trip.WithCountry("japan")),
			same: true,
		},
		{
			name: "different date",
			a:    base,
			b:    trip.NewQuery("JFK", "NRT", date().AddDate(0, 0, 1), trip.WithCity("Tokyo"), trip.WithCountry("Japan")),
			same: false,
		},
		{
			name: "different passengers",
			a:    base,
			b:    trip.NewQuery("JFK", "NRT", date(), trip.WithCity("Tokyo"), trip.WithCountry("Japan"), trip.WithPassengers(2)),
			same: false,
		},
		{
			name:  "different categories",
			a:     base,
			b:     base,
			catsA: []trip.Category{trip.CategoryFlights},
			same:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka := Key(tt.a, tt.catsA)
			kb := Key(tt.b, tt.catsB)
			if tt.same {
				assert.Equal(t, ka, kb)
			} else {
				assert.NotEqual(t, ka, kb)
			}
		})
	}
}

func TestCache_GetOrPlan(t *testing.T) {
	timedOut := okPlan("timeout")
	timedOut.Transport = trip.NewSlot(trip.CategoryTransport, trip.Timeout[trip.TransportRoute](), 1, time.Second)

	tests := []struct {
		name      string
		plan      *trip.Plan
		err       error
		wantErr   bool
		wantStore int
	}{
		{
			name:      "successful plan is cached",
			plan:      okPlan("p1"),
			wantStore: 1,
		},
		{
			name:      "plan with error is not cached",
			plan:      okPlan("p2"),
			err:       errors.New("all categories failed"),
			wantErr:   true,
			wantStore: 0,
		},
		{
			name:      "plan with timed out slot is not cached",
			plan:      timedOut,
			wantStore: 0,
		},
		{
			name:      "nil plan is not cached",
			plan:      nil,
			wantStore: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, store := newMemoryCache(t)

			got, hit, err := c.GetOrPlan(context.Background(), "key", func(context.Context) (*trip.Plan, error) {
				return tt.plan, tt.err
			})

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.False(t, hit)
			assert.Equal(t, tt.plan, got)
			assert.Equal(t, tt.wantStore, store.Len())
		})
	}
}

func TestCache_GetOrPlan_Hit(t *testing.T) {
	c, _ := newMemoryCache(t)

	_, _, err := c.GetOrPlan(context.Background(), "key", func(context.Context) (*trip.Plan, error) {
		return okPlan("p1"), nil
	})
	require.NoError(t, err)

	got, hit, err := c.GetOrPlan(context.Background(), "key", func(context.Context) (*trip.Plan, error) {
		t.Error("plan should not be called for cached entry")
		return nil, nil
	})
	require.NoError(t, err)
	assert.True(t, hit)
	require.NotNil(t, got)
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, trip.CategoryTransport, got.Transport.Category)
	require.NotNil(t, got.Culture.Data)
	assert.Equal(t, "Rich.", got.Culture.Data.Summary)
}

func TestCache_GetOrPlan_Expired(t *testing.T) {
	c, store := newMemoryCache(t)
	now := time.Now()
	store.now = func() time.Time { return now }

	_, _, err := c.GetOrPlan(context.Background(), "key", func(context.Context) (*trip.Plan, error) {
		return okPlan("old"), nil
	})
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	got, hit, err := c.GetOrPlan(context.Background(), "key", func(context.Context) (*trip.Plan, error) {
		return okPlan("new"), nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "new", got.ID)
}

func TestCache_GetOrPlan_ContextCancellation(t *testing.T) {
	c, _ := newMemoryCache(t)

	ctx, cancel := context.WithCancel(context.Background())

	planStarted := make(chan struct{})
	planDone := make(chan struct{})

	go func() {
		_, _, _ = c.GetOrPlan(context.Background(), "slow-key", func(context.Context) (*trip.Plan, error) {
			close(planStarted)
			<-planDone
			return okPlan("slow"), nil
		})
	}()

	<-planStarted
	cancel()

	_, _, err := c.GetOrPlan(ctx, "slow-key", func(context.Context) (*trip.Plan, error) {
		t.Error("plan should not be called, should wait for in-flight run")
		return nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	close(planDone)
}

func TestCache_GetOrPlan_RunSurvivesCallerCancellation(t *testing.T) {
	c, store := newMemoryCache(t)

	ctx, cancel := context.WithCancel(context.Background())
	runCtx := make(chan context.Context, 1)
	release := make(chan struct{})

	go func() {
		_, _, _ = c.GetOrPlan(ctx, "key", func(ctx context.Context) (*trip.Plan, error) {
			runCtx <- ctx
			<-release
			return okPlan("p1"), nil
		})
	}()

	inner := <-runCtx
	cancel()
	assert.NoError(t, inner.Err())
	close(release)

	assert.Eventually(t, func() bool { return store.Len() == 1 }, time.Second, 5*time.Millisecond)
}

func TestCache_GetOrPlan_Singleflight(t *testing.T) {
	c, _ := newMemoryCache(t)

	var planCount atomic.Int32
	planStarted := make(chan struct{})
	planContinue := make(chan struct{})

	var wg sync.WaitGroup
	const numGoroutines = 10

	for range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _, err := c.GetOrPlan(context.Background(), "shared-key", func(context.Context) (*trip.Plan, error) {
				if planCount.Add(1) == 1 {
					close(planStarted)
					<-planContinue
				}
				return okPlan("shared"), nil
			})
			assert.NoError(t, err)
			if assert.NotNil(t, got) {
				assert.Equal(t, "shared", got.ID)
			}
		}()
	}

	<-planStarted
	// Give the waiters time to join the in-flight run.
	time.Sleep(20 * time.Millisecond)
	close(planContinue)
	wg.Wait()

	assert.Equal(t, int32(1), planCount.Load())
}

func TestCache_Invalidate(t *testing.T) {
	c, store := newMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", []byte("{}"), time.Minute))
	require.NoError(t, store.Set(ctx, "b", []byte("{}"), time.Minute))

	require.NoError(t, c.Invalidate(ctx, "a"))
	require.NoError(t, c.Invalidate(ctx, "missing"))

	_, ok, _ := store.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, "b")
	assert.True(t, ok)
}

func TestCache_UndecodableEntryIsDropped(t *testing.T) {
	c, store := newMemoryCache(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "key", []byte("not json"), time.Minute))

	got, hit, err := c.GetOrPlan(ctx, "key", func(context.Context) (*trip.Plan, error) {
		return okPlan("fresh"), nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "fresh", got.ID)
}

func TestMemoryStore_Sweep(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }
	require.NoError(t, store.Set(ctx, "short", []byte("x"), time.Second))
	require.NoError(t, store.Set(ctx, "long", []byte("y"), time.Hour))

	now = now.Add(time.Minute)
	store.sweep()

	assert.Equal(t, 1, store.Len())
	_, ok, _ := store.Get(ctx, "long")
	assert.True(t, ok)
}
