package village

import (
	"testing"
	"time"
)

const tick = 50 * time.Millisecond

// holdSet is a Holder over a fixed set of ids, each grabbed on its own.
type holdSet map[string]bool

func (h holdSet) Holds(id string) bool { return h[id] }
func (h holdSet) Grabs(id string) bool { return h[id] }

// multiHold holds its ids as a multi-drag selection.
type multiHold map[string]bool

func (h multiHold) Holds(id string) bool { return h[id] }
func (multiHold) Grabs(string) bool      { return false }

func newTestSim(mod func(*Tuning)) *Simulation {
	tu := DefaultTuning()
	if mod != nil {
		mod(&tu)
	}
	return NewSimulation(tu, testRand())
}

// runTicks steps items n times starting one tick after start and returns the
// result and the time of the last tick.
func runTicks(s *Simulation, items []Item, held Holder, n int, start time.Time, each func([]Item, time.Time)) ([]Item, time.Time) {
	now := start
	for i := 0; i < n; i++ {
		now = now.Add(tick)
		items, _ = s.Step(items, held, testGeo(), now)
		if each != nil {
			each(items, now)
		}
	}
	return items, now
}

func doll(id string, x, y float64, anim AnimationType) Item {
	it := NewItem(id, TypeDoll, x, y)
	it.Data.Doll.AnimationType = anim
	return it
}

func TestStepStationaryItemsUnchanged(t *testing.T) {
	items := []Item{
		NewItem("t1", TypeTreeOak, 0, 300),
		NewItem("t2", TypeTreePine, 100, 300),
		NewItem("t3", TypeTreeSakura, 200, 300),
	}
	next, changed := newTestSim(nil).Step(items, nil, testGeo(), t0)
	if changed {
		t.Error("changed = true for a store without dolls or fish")
	}
	if &next[0] != &items[0] || len(next) != len(items) {
		t.Error("expected the identical slice back")
	}
}

func TestStepDoesNotModifyInput(t *testing.T) {
	items := []Item{doll("d", 100, 400, AnimWalking)}
	next, changed := newTestSim(nil).Step(items, nil, testGeo(), t0)
	if !changed {
		t.Fatal("expected a change")
	}
	if items[0].NPC != nil {
		t.Error("input item was modified")
	}
	if next[0].NPC == nil {
		t.Error("output item has no npc state")
	}
}

func TestWalkingDollStartsWalkOnFirstTick(t *testing.T) {
	items := []Item{doll("d", 50, 370, AnimWalking)}
	var walks []Event
	s := newTestSim(nil)
	s.SetEventSink(EventSinkFunc(func(e Event) { walks = append(walks, e) }))

	next, _ := s.Step(items, nil, testGeo(), t0)
	npc := next[0].NPC
	if npc == nil || npc.Action != ActionWalking {
		t.Fatalf("npc = %+v, want walking", npc)
	}
	if npc.StartX != 50 || npc.StartY != 370 || npc.StartTime != t0.UnixMilli() {
		t.Errorf("walk start = (%v, %v) at %d", npc.StartX, npc.StartY, npc.StartTime)
	}
	if npc.TargetY < 340 || npc.TargetY > 620 {
		t.Errorf("TargetY = %v, want within [340, 620]", npc.TargetY)
	}
	if npc.TargetX < 0 || npc.TargetX > 3740 {
		t.Errorf("TargetX = %v, want within [0, 3740]", npc.TargetX)
	}
	if len(walks) != 1 || walks[0].Type != EventWalkStarted {
		t.Errorf("events = %+v", walks)
	}
}

func TestIdleDollStaysPut(t *testing.T) {
	items := []Item{doll("d", 500, 400, AnimIdle)}
	s := newTestSim(nil)
	next, now := runTicks(s, items, nil, 100, t0, nil)
	if next[0].X != 500 || next[0].Y != 400 || next[0].Action() != ActionIdle {
		t.Errorf("idle doll = %+v at %v", next[0], now)
	}
	// With the npc initialised, further ticks publish nothing.
	again, changed := s.Step(next, nil, testGeo(), now.Add(tick))
	if changed || &again[0] != &next[0] {
		t.Error("settled idle doll should not change")
	}
}

func TestDollsStayOnGround(t *testing.T) {
	items := []Item{
		doll("a", 100, 345, AnimWalking),
		doll("b", 2000, 600, AnimWalking),
		doll("c", 3800, 400, AnimWalking),
	}
	s := newTestSim(nil)
	groundY := testGeo().GroundY(&s.Tuning)
	runTicks(s, items, nil, 2000, t0, func(items []Item, now time.Time) {
		for _, it := range items {
			if it.Y < groundY-epsilon {
				t.Fatalf("%s at y=%v above the ground line %v at %v", it.ID, it.Y, groundY, now)
			}
			if it.Y > testGeo().WalkFloor(&s.Tuning)+epsilon && it.Action() == ActionWalking {
				t.Fatalf("%s walked below the floor: %v", it.ID, it.Y)
			}
		}
	})
}

func TestActionsStayValidAndReturnToIdle(t *testing.T) {
	items := []Item{doll("a", 100, 400, AnimWalking)}
	s := newTestSim(nil)
	var walkingSince time.Time
	runTicks(s, items, nil, 1000, t0, func(items []Item, now time.Time) {
		it := items[0]
		if !it.Action().Valid() {
			t.Fatalf("invalid action %q", it.Action())
		}
		switch it.Action() {
		case ActionWalking:
			if walkingSince.IsZero() {
				walkingSince = now
			}
			if now.Sub(walkingSince) > 4100*time.Millisecond {
				t.Fatalf("walking for %v, longer than the longest segment", now.Sub(walkingSince))
			}
		default:
			walkingSince = time.Time{}
		}
	})
}

func TestWalkInterpolatesAndFinishes(t *testing.T) {
	d := doll("d", 100, 400, AnimWalking)
	d.NPC = &NPCState{
		Action: ActionWalking, StartX: 100, StartY: 400, TargetX: 200, TargetY: 450,
		StartTime: t0.UnixMilli(), Duration: 1000, LastUpdate: t0.UnixMilli(),
	}
	s := newTestSim(nil)
	mid, _ := s.Step([]Item{d}, nil, testGeo(), t0.Add(500*time.Millisecond))
	assertNear(t, "mid x", mid[0].X, 150)
	assertNear(t, "mid y", mid[0].Y, 425)

	end, _ := s.Step(mid, nil, testGeo(), t0.Add(1000*time.Millisecond))
	if end[0].X != 200 || end[0].Y != 450 || end[0].Action() != ActionIdle {
		t.Errorf("end = (%v, %v) %q", end[0].X, end[0].Y, end[0].Action())
	}
	if end[0].NPC.LastUpdate != t0.Add(1000*time.Millisecond).UnixMilli() {
		t.Errorf("LastUpdate = %d", end[0].NPC.LastUpdate)
	}
}

func TestIntentChangeStopsWalk(t *testing.T) {
	d := doll("d", 100, 400, AnimIdle)
	d.NPC = &NPCState{
		Action: ActionWalking, StartX: 100, StartY: 400, TargetX: 300, TargetY: 400,
		StartTime: t0.UnixMilli(), Duration: 4000, LastUpdate: t0.UnixMilli(),
	}
	now := t0.Add(time.Second)
	next, _ := newTestSim(nil).Step([]Item{d}, nil, testGeo(), now)
	if next[0].Action() != ActionIdle || next[0].X != 100 {
		t.Errorf("doll = %+v, want idle in place", next[0])
	}
	if next[0].NPC.LastUpdate != now.UnixMilli() {
		t.Errorf("LastUpdate = %d, want %d", next[0].NPC.LastUpdate, now.UnixMilli())
	}
}

func TestSkyRescue(t *testing.T) {
	items := []Item{doll("d", 300, 100, AnimWaving)}
	s := newTestSim(nil)
	next, _ := s.Step(items, nil, testGeo(), t0)
	npc := next[0].NPC
	if npc.Action != ActionWalking || !npc.Rescue {
		t.Fatalf("npc = %+v, want rescue walk", npc)
	}
	if npc.TargetX != 300 || npc.TargetY < 340 || npc.TargetY > 440 {
		t.Errorf("target = (%v, %v)", npc.TargetX, npc.TargetY)
	}

	// The rescue walk is not cancelled by the non-walking intent.
	next, _ = runTicks(s, next, nil, 1, t0, nil)
	if next[0].Action() != ActionWalking {
		t.Fatal("rescue walk was cancelled")
	}

	next, _ = runTicks(s, next, nil, 200, t0.Add(tick), nil)
	it := next[0]
	if it.Action() != ActionIdle || it.NPC.Rescue {
		t.Errorf("after rescue npc = %+v", it.NPC)
	}
	if it.Y < 340 || it.X != 300 {
		t.Errorf("after rescue pos = (%v, %v)", it.X, it.Y)
	}
}

func TestHeldItemsSkipped(t *testing.T) {
	d := doll("d", 100, 100, AnimWalking)
	f := NewItem("f", TypeFish, 250, 490)
	f.Fish = &FishState{DX: 0.5}
	items := []Item{NewItem("p", TypePond, 200, 450), d, f}

	next, changed := newTestSim(nil).Step(items, holdSet{"d": true, "f": true}, testGeo(), t0)
	if changed || &next[0] != &items[0] {
		t.Errorf("held items changed the store: %+v", next)
	}
}

func TestMultiDragHoldsDollsOnly(t *testing.T) {
	d := doll("d", 100, 100, AnimWalking)
	f := NewItem("f", TypeFish, 250, 490)
	f.Fish = &FishState{DX: 0.5}
	items := []Item{NewItem("p", TypePond, 200, 450), d, f}

	next, changed := newTestSim(nil).Step(items, multiHold{"d": true, "f": true}, testGeo(), t0)
	if !changed {
		t.Fatal("selected fish should keep swimming during a multi drag")
	}
	if next[1].X != 100 || next[1].Y != 100 || next[1].Action() != ActionWalking {
		t.Errorf("held doll moved: %+v", next[1])
	}
	if next[2].X == 250 {
		t.Errorf("fish x = %v, want it to have swum", next[2].X)
	}
}

func TestNearbyDollsChat(t *testing.T) {
	items := []Item{doll("a", 100, 400, AnimIdle), doll("b", 130, 400, AnimIdle)}
	var chats int
	s := newTestSim(nil)
	s.SetEventSink(EventSinkFunc(func(e Event) {
		if e.Type == EventChatStarted {
			chats++
		}
	}))
	next, _ := s.Step(items, nil, testGeo(), t0)
	talking := 0
	for i := range next {
		if next[i].Action() == ActionTalking {
			talking++
			if next[i].NPC.Duration != 4000 {
				t.Errorf("talk duration = %v", next[i].NPC.Duration)
			}
		}
	}
	if talking == 0 || chats != talking {
		t.Fatalf("talking = %d, chat events = %d", talking, chats)
	}
	if Caption(&next[0]) != "Hello!" {
		t.Errorf("caption = %q", Caption(&next[0]))
	}

	// The chat ends once the talk duration has passed.
	ended, _ := s.Step(next, nil, testGeo(), t0.Add(4001*time.Millisecond))
	for i := range ended {
		if ended[i].Action() != ActionIdle {
			t.Errorf("%s still %q after the talk duration", ended[i].ID, ended[i].Action())
		}
	}
}

func TestFarDollsDoNotChat(t *testing.T) {
	items := []Item{doll("a", 100, 400, AnimIdle), doll("b", 200, 400, AnimIdle)}
	next, _ := newTestSim(nil).Step(items, nil, testGeo(), t0)
	for i := range next {
		if next[i].Action() != ActionIdle {
			t.Errorf("%s = %q, want idle", next[i].ID, next[i].Action())
		}
	}
}

func TestTalkingDollIsNotAPartner(t *testing.T) {
	busy := doll("b", 130, 400, AnimIdle)
	busy.NPC = &NPCState{Action: ActionTalking, LastUpdate: t0.UnixMilli(), Duration: 4000}
	items := []Item{doll("a", 100, 400, AnimIdle), busy}
	next, _ := newTestSim(nil).Step(items, nil, testGeo(), t0.Add(tick))
	if next[0].Action() != ActionIdle {
		t.Errorf("a = %q, want idle", next[0].Action())
	}
}

func TestFishBounceFlipsFacing(t *testing.T) {
	pond := NewItem("p", TypePond, 200, 450)
	f := NewItem("f", TypeFish, 260, 500)
	f.Data.Transform = Transform{ScaleX: 0.4, ScaleY: 0.4}
	f.Fish = &FishState{DX: 0.6}
	s := newTestSim(func(tu *Tuning) { tu.FishWanderProb = 0 })

	items, _ := s.Step([]Item{pond, f}, nil, testGeo(), t0)
	if got := items[1].Data.Transform.ScaleX; got != -0.4 {
		t.Fatalf("scaleX moving right = %v, want -0.4", got)
	}

	flipped := false
	runTicks(s, items, nil, 200, t0, func(items []Item, _ time.Time) {
		fish := items[1]
		if fish.X > 310+epsilon {
			t.Fatalf("fish x = %v beyond the swim bounds", fish.X)
		}
		if !flipped && fish.Fish.DX < 0 {
			flipped = true
			if fish.Fish.DX != -0.6 {
				t.Errorf("dx = %v, want -0.6", fish.Fish.DX)
			}
			if fish.Data.Transform.ScaleX != 0.4 {
				t.Errorf("scaleX after bounce = %v, want 0.4", fish.Data.Transform.ScaleX)
			}
		}
	})
	if !flipped {
		t.Error("fish never bounced")
	}
}

func TestFishStayInWater(t *testing.T) {
	pond := NewItem("p", TypePond, 200, 450)
	pond.Data.Transform = Transform{ScaleX: 1.5, ScaleY: 1.5}
	items := []Item{pond}
	for i, x := range []float64{200, 260, 320} {
		f := NewItem(string(rune('a'+i)), TypeFish, x, 500)
		items = append(items, f)
	}
	s := newTestSim(nil)
	bounds, _ := WaterBounds(&pond)
	swim := bounds.Inset(s.Tuning.FishPadding)

	runTicks(s, items, nil, 500, t0, func(items []Item, now time.Time) {
		for _, it := range items[1:] {
			if !swim.Contains(it.X, it.Y) {
				t.Fatalf("%s at (%v, %v) outside %v at %v", it.ID, it.X, it.Y, swim, now)
			}
			if m := it.Fish; m != nil && (m.DX > 0.8+epsilon || m.DX < -0.8-epsilon) {
				t.Fatalf("dx = %v exceeds the cap", m.DX)
			}
		}
	})
}

func TestBeachedFishStaysPut(t *testing.T) {
	f := NewItem("f", TypeFish, 900, 500)
	items := []Item{NewItem("p", TypePond, 200, 450), f}
	next, changed := newTestSim(nil).Step(items, nil, testGeo(), t0)
	if changed || next[1].X != 900 {
		t.Errorf("beached fish moved: %+v", next[1])
	}
}
