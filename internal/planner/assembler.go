package planner

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/alex-user-go/tripplan/internal/trip"
)

// assembler collects category slots without locks. Each category goroutine
// owns one index of fills and publishes it by closing its done channel;
// the coordinator reads an index only after observing the close.
type assembler struct {
	enabled  [trip.NumCategories]bool
	fills    [trip.NumCategories]func(*trip.Plan)
	done     [trip.NumCategories]chan struct{}
	attempts [trip.NumCategories]atomic.Int32
}

func newAssembler(categories []trip.Category) *assembler {
	a := &assembler{}
	for _, c := range categories {
		a.enabled[c] = true
		a.done[c] = make(chan struct{})
	}
	return a
}

func (a *assembler) deliver(c trip.Category, fill func(*trip.Plan)) {
	a.fills[c] = fill
	close(a.done[c])
}

// wait blocks until every enabled category delivered or ctx is done and
// reports which categories delivered in time.
func (a *assembler) wait(ctx context.Context) [trip.NumCategories]bool {
	var delivered [trip.NumCategories]bool
	expired := false
	for c, done := range a.done {
		if done == nil {
			continue
		}
		if !expired {
			select {
			case <-done:
				delivered[c] = true
				continue
			case <-ctx.Done():
				expired = true
			}
		}
		select {
		case <-done:
			delivered[c] = true
		default:
		}
	}
	return delivered
}

// build fills every slot of p in plan order. Enabled categories that did
// not deliver are reported as timed out.
func (a *assembler) build(p *trip.Plan, delivered [trip.NumCategories]bool, elapsed time.Duration) {
	for _, c := range trip.AllCategories() {
		switch {
		case !a.enabled[c]:
			placeholder(p, c, notAttempted)
		case delivered[c]:
			a.fills[c](p)
		default:
			placeholder(p, c, timedOut(int(a.attempts[c].Load()), elapsed))
		}
	}
}

type placeholderKind struct {
	timeout  bool
	attempts int
	elapsed  time.Duration
}

var notAttempted = placeholderKind{}

func timedOut(attempts int, elapsed time.Duration) placeholderKind {
	return placeholderKind{timeout: true, attempts: attempts, elapsed: elapsed}
}

func placeholder(p *trip.Plan, c trip.Category, k placeholderKind) {
	switch c {
	case trip.CategoryFlights:
		p.Flights = placeholderSlot[[]trip.FlightOffer](c, k)
	case trip.CategoryLodging:
		p.Lodging = placeholderSlot[[]trip.LodgingOption](c, k)
	case trip.CategoryAttractions:
		p.Attractions = placeholderSlot[[]trip.Attraction](c, k)
	case trip.CategoryCulture:
		p.Culture = placeholderSlot[trip.CulturalSummary](c, k)
	case trip.CategoryTransport:
		p.Transport = placeholderSlot[trip.TransportRoute](c, k)
	}
}

func placeholderSlot[T any](c trip.Category, k placeholderKind) trip.Slot[T] {
	if !k.timeout {
		return trip.NotAttemptedSlot[T](c)
	}
	return trip.NewSlot(c, trip.Timeout[T](), k.attempts, k.elapsed)
}
