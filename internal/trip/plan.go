package trip

import (
	"encoding/json"
	"time"
)

// Status is the coarse state of a slot.
type Status string

const (
	StatusOK          Status = "ok"
	StatusUnavailable Status = "unavailable"
	StatusAmbiguous   Status = "ambiguous"
)

// Reason explains an unavailable slot.
type Reason string

const (
	ReasonNotFound       Reason = "not-found"
	ReasonError          Reason = "error"
	ReasonTimeout        Reason = "timeout"
	ReasonInvalidInput   Reason = "invalid-input"
	ReasonNotImplemented Reason = "not-implemented"
	ReasonNotAttempted   Reason = "not-attempted"
)

// SlotMeta is the category independent part of a slot.
type SlotMeta struct {
	Category   Category `json:"-"`
	Status     Status   `json:"status"`
	Reason     Reason   `json:"reason,omitempty"`
	Message    string   `json:"message,omitempty"`
	Candidates []string `json:"candidates,omitempty"`
	Attempts   int      `json:"attempts"`
	DurationMs int64    `json:"duration_ms"`
}

// Outcome returns the combined tag, e.g. "ok", "ambiguous" or
// "unavailable-timeout".
func (m SlotMeta) Outcome() string {
	if m.Status == StatusUnavailable {
		return string(m.Status) + "-" + string(m.Reason)
	}
	return string(m.Status)
}

// Attempted reports whether an adapter was invoked for the slot.
func (m SlotMeta) Attempted() bool {
	return m.Reason != ReasonNotAttempted
}

// Slot holds one category of a plan. Data is set only when Status is ok.
type Slot[T any] struct {
	SlotMeta
	Data *T `json:"data,omitempty"`
}

// NewSlot converts a terminal result into a slot.
func NewSlot[T any](c Category, r Result[T], attempts int, elapsed time.Duration) Slot[T] {
	s := Slot[T]{SlotMeta: SlotMeta{
		Category:   c,
		Attempts:   attempts,
		DurationMs: elapsed.Milliseconds(),
	}}

	switch r.Outcome() {
	case OutcomeSuccess:
		data, _ := r.Payload()
		s.Status = StatusOK
		s.Data = &data
	case OutcomeTimeout:
		s.Status = StatusUnavailable
		s.Reason = ReasonTimeout
		s.Message = c.String() + " lookup timed out"
	case OutcomeFailure:
		perr := r.Err()
		s.Message = perr.Message
		if perr.Kind == KindAmbiguous {
			s.Status = StatusAmbiguous
			s.Candidates = append([]string(nil), perr.Candidates...)
			break
		}
		s.Status = StatusUnavailable
		s.Reason = reasonFor(perr.Kind)
	default:
		s.Status = StatusUnavailable
		s.Reason = ReasonError
		s.Message = "no result recorded"
	}
	return s
}

// NotAttemptedSlot marks a category that was not requested.
func NotAttemptedSlot[T any](c Category) Slot[T] {
	return Slot[T]{SlotMeta: SlotMeta{
		Category: c,
		Status:   StatusUnavailable,
		Reason:   ReasonNotAttempted,
		Message:  c.String() + " was not requested",
	}}
}

func reasonFor(k ErrorKind) Reason {
	switch k {
	case KindInvalidInput:
		return ReasonInvalidInput
	case KindNotFound:
		return ReasonNotFound
	case KindNotImplemented:
		return ReasonNotImplemented
	default:
		return ReasonError
	}
}

// Plan is the aggregate answer. Every slot is always present; JSON keys
// follow the fixed category order.
type Plan struct {
	ID          string `json:"id"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Date        string `json:"date"`

	Flights     Slot[[]FlightOffer]   `json:"flights"`
	Lodging     Slot[[]LodgingOption] `json:"lodging"`
	Attractions Slot[[]Attraction]    `json:"attractions"`
	Culture     Slot[CulturalSummary] `json:"culture"`
	Transport   Slot[TransportRoute]  `json:"transport"`

	GeneratedAt time.Time `json:"generated_at"`
	DurationMs  int64     `json:"duration_ms"`
}

// UnmarshalJSON decodes a plan and restores the slot categories, which
// are implied by the keys and not serialized.
func (p *Plan) UnmarshalJSON(b []byte) error {
	type plain Plan
	if err := json.Unmarshal(b, (*plain)(p)); err != nil {
		return err
	}
	p.Flights.Category = CategoryFlights
	p.Lodging.Category = CategoryLodging
	p.Attractions.Category = CategoryAttractions
	p.Culture.Category = CategoryCulture
	p.Transport.Category = CategoryTransport
	return nil
}

// Slots returns slot metadata in plan order.
func (p *Plan) Slots() []SlotMeta {
	return []SlotMeta{
		p.Flights.SlotMeta,
		p.Lodging.SlotMeta,
		p.Attractions.SlotMeta,
		p.Culture.SlotMeta,
		p.Transport.SlotMeta,
	}
}

// Slot returns the metadata of one category.
func (p *Plan) Slot(c Category) SlotMeta {
	switch c {
	case CategoryFlights:
		return p.Flights.SlotMeta
	case CategoryLodging:
		return p.Lodging.SlotMeta
	case CategoryAttractions:
		return p.Attractions.SlotMeta
	case CategoryCulture:
		return p.Culture.SlotMeta
	case CategoryTransport:
		return p.Transport.SlotMeta
	default:
		return SlotMeta{Category: c, Status: StatusUnavailable, Reason: ReasonNotAttempted}
	}
}

// Succeeded counts slots with data.
func (p *Plan) Succeeded() int {
	n := 0
	for _, s := range p.Slots() {
		if s.Status == StatusOK {
			n++
		}
	}
	return n
}

// Attempted counts slots for which an adapter was invoked.
func (p *Plan) Attempted() int {
	n := 0
	for _, s := range p.Slots() {
		if s.Attempted() {
			n++
		}
	}
	return n
}
