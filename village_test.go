package village

import (
	"io"
	"math"
	"math/rand/v2"
	"os"
	"testing"
	"time"
)

const epsilon = 1e-9

func TestMain(m *testing.M) {
	SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// t0 is a fixed wall-clock origin for tick and pointer timestamps.
var t0 = time.UnixMilli(1_700_000_000_000)

// testGeo is a 1280x720 viewport with the horizon at 50%: horizon line 360,
// ground line 340, walk floor 620, drag floor 540, world width 3840.
func testGeo() Geometry {
	return Geometry{ViewW: 1280, ViewH: 720, Horizon: 50}
}

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func newTestWorld() *World {
	return NewWorld(WorldConfig{Width: 1280, Height: 720, Rand: testRand()})
}

// --- Rect ---

func TestRectContains(t *testing.T) {
	r := Rect{10, 20, 100, 50}
	tests := []struct {
		name   string
		x, y   float64
		expect bool
	}{
		{"inside", 50, 40, true},
		{"top-left corner", 10, 20, true},
		{"bottom-right corner", 110, 70, true},
		{"outside left", 9, 40, false},
		{"outside right", 111, 40, false},
		{"outside above", 50, 19, false},
		{"outside below", 50, 71, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Contains(tt.x, tt.y)
			if got != tt.expect {
				t.Errorf("Rect%v.Contains(%v, %v) = %v, want %v", r, tt.x, tt.y, got, tt.expect)
			}
		})
	}
}

func TestRectIntersects(t *testing.T) {
	r := Rect{0, 0, 100, 100}
	tests := []struct {
		name   string
		other  Rect
		expect bool
	}{
		{"overlap", Rect{50, 50, 100, 100}, true},
		{"contained", Rect{10, 10, 10, 10}, true},
		{"shared edge", Rect{100, 0, 10, 10}, true},
		{"left of", Rect{-20, 0, 10, 10}, false},
		{"below", Rect{0, 101, 10, 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Intersects(tt.other); got != tt.expect {
				t.Errorf("Intersects(%v) = %v, want %v", tt.other, got, tt.expect)
			}
		})
	}
}

func TestRectInset(t *testing.T) {
	r := Rect{10, 10, 100, 50}.Inset(5)
	if r != (Rect{15, 15, 90, 40}) {
		t.Errorf("Inset(5) = %v", r)
	}
	g := Rect{10, 10, 100, 50}.Inset(-5)
	if g != (Rect{5, 5, 110, 60}) {
		t.Errorf("Inset(-5) = %v", g)
	}
	if g.MaxX() != 115 || g.MaxY() != 65 {
		t.Errorf("MaxX, MaxY = %v, %v", g.MaxX(), g.MaxY())
	}
}

func TestRangeLerp(t *testing.T) {
	r := Range{Min: 50, Max: 200}
	assertNear(t, "Lerp(0)", r.Lerp(0), 50)
	assertNear(t, "Lerp(0.5)", r.Lerp(0.5), 125)
	assertNear(t, "Lerp(1)", r.Lerp(1), 200)
}

func TestVec2Dist(t *testing.T) {
	assertNear(t, "Dist", Vec2{0, 0}.Dist(Vec2{3, 4}), 5)
}

func TestActionValid(t *testing.T) {
	for _, a := range []Action{ActionIdle, ActionWalking, ActionTalking} {
		if !a.Valid() {
			t.Errorf("%q should be valid", a)
		}
	}
	for _, a := range []Action{"", "running", "IDLE"} {
		if a.Valid() {
			t.Errorf("%q should be invalid", a)
		}
	}
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{SourceMouse.String(), "mouse"},
		{SourceTouch.String(), "touch"},
		{DragNone.String(), "none"},
		{DragBackground.String(), "background"},
		{DragItem.String(), "item"},
		{DragMulti.String(), "multi"},
		{EventEditRequested.String(), "edit_requested"},
		{EventItemPlaced.String(), "item_placed"},
		{EventItemRemoved.String(), "item_removed"},
		{EventChatStarted.String(), "chat_started"},
		{EventWalkStarted.String(), "walk_started"},
		{EventSelectionChanged.String(), "selection_changed"},
		{EventType(99).String(), "unknown"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestCatalog(t *testing.T) {
	if len(Catalog) != 22 {
		t.Errorf("catalog has %d types, want 22", len(Catalog))
	}
	tests := []struct {
		typ                     ItemType
		known, water, house, tr bool
	}{
		{TypePond, true, true, false, false},
		{TypeRiverH, true, true, false, false},
		{TypeHousePagoda, true, false, true, false},
		{TypeTreeSakura, true, false, false, true},
		{TypeRock, true, false, false, false},
		{"castle", false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			if got := tt.typ.Known(); got != tt.known {
				t.Errorf("Known = %v", got)
			}
			if got := tt.typ.IsWater(); got != tt.water {
				t.Errorf("IsWater = %v", got)
			}
			if got := tt.typ.IsHouse(); got != tt.house {
				t.Errorf("IsHouse = %v", got)
			}
			if got := tt.typ.IsTree(); got != tt.tr {
				t.Errorf("IsTree = %v", got)
			}
		})
	}
	if sz := TypeDoll.Size(); sz != (Vec2{60, 110}) {
		t.Errorf("doll size = %v", sz)
	}
}

func TestJoinSinks(t *testing.T) {
	if JoinSinks() != nil || JoinSinks(nil, nil) != nil {
		t.Error("JoinSinks of nothing should be nil")
	}
	var a, b int
	sa := EventSinkFunc(func(Event) { a++ })
	sb := EventSinkFunc(func(Event) { b++ })
	JoinSinks(sa, nil, sb).EmitEvent(Event{})
	if a != 1 || b != 1 {
		t.Errorf("fan-out counts = %d, %d, want 1, 1", a, b)
	}
}

func TestConfigureLogging(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	defer func() {
		Log.SetLevel(newLogger().Level)
		Log.SetFormatter(newLogger().Formatter)
	}()
	ConfigureLogging()
	if Log.GetLevel().String() != "debug" {
		t.Errorf("level = %v, want debug", Log.GetLevel())
	}
}
