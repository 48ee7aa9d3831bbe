package village

import (
	"math/rand/v2"
	"time"
)

// Holder reports which items are under the user's pointer. The simulation
// consults it on every tick: held dolls are left untouched, fish only while
// they are grabbed on their own.
type Holder interface {
	// Holds reports whether id is being dragged alone or as part of a
	// multi-drag.
	Holds(id string) bool
	// Grabs reports whether id is the single dragged item.
	Grabs(id string) bool
}

// holdNone holds nothing.
type holdNone struct{}

func (holdNone) Holds(string) bool { return false }
func (holdNone) Grabs(string) bool { return false }

// Simulation advances dolls and fish. It is not safe for concurrent use; the
// owning loop calls Step once per tick.
type Simulation struct {
	Tuning Tuning

	rng   *rand.Rand
	sink  EventSink
	debug bool
	stats tickStats
}

// NewSimulation creates a simulation. A nil rng uses a randomly seeded PCG.
func NewSimulation(t Tuning, rng *rand.Rand) *Simulation {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Simulation{Tuning: t, rng: rng}
}

// SetEventSink sets where walk and chat events go.
func (s *Simulation) SetEventSink(sink EventSink) {
	s.sink = sink
}

// SetDebugMode enables per-tick stats logging at trace level.
func (s *Simulation) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// Step evaluates every item against the pre-tick slice items and returns the
// post-tick slice. When nothing changed, items itself is returned with
// changed=false so callers can skip publishing. items is never modified.
func (s *Simulation) Step(items []Item, held Holder, geo Geometry, now time.Time) (next []Item, changed bool) {
	if held == nil {
		held = holdNone{}
	}
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
		s.stats = tickStats{}
	}
	nowMs := now.UnixMilli()

	var out []Item
	for i := range items {
		it := &items[i]
		var (
			updated Item
			ok      bool
		)
		switch it.Type {
		case TypeFish:
			if held.Grabs(it.ID) {
				continue
			}
			updated, ok = s.stepFish(items, it)
		case TypeDoll:
			if held.Holds(it.ID) {
				continue
			}
			updated, ok = s.stepDoll(items, it, geo, nowMs)
		default:
			continue
		}
		if !ok {
			continue
		}
		if out == nil {
			out = make([]Item, len(items))
			copy(out, items)
		}
		out[i] = updated
	}

	if s.debug {
		s.stats.items = len(items)
		s.stats.elapsed = time.Since(t0)
		s.debugLog(out)
	}
	if out == nil {
		return items, false
	}
	return out, true
}

// millis converts a duration to float milliseconds.
func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
