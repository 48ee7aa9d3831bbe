package village

import "math"

// Vec2 is a 2D vector used for positions, offsets and pointer coordinates.
type Vec2 struct {
	X, Y float64
}

// Dist returns the Euclidean distance between v and o.
func (v Vec2) Dist(o Vec2) float64 {
	return math.Hypot(o.X-v.X, o.Y-v.Y)
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Inset returns r shrunk by d on every side. A negative d grows it.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
}

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Range is a general-purpose min/max range.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Lerp returns the value at t in [0, 1] between Min and Max.
func (r Range) Lerp(t float64) float64 {
	return r.Min + (r.Max-r.Min)*t
}

// Action is the live NPC state of a doll.
type Action string

const (
	ActionIdle    Action = "idle"    // standing, idle timer running
	ActionWalking Action = "walking" // interpolating toward a target
	ActionTalking Action = "talking" // chatting with a nearby doll
)

// Valid reports whether a is one of the three NPC actions.
func (a Action) Valid() bool {
	switch a {
	case ActionIdle, ActionWalking, ActionTalking:
		return true
	}
	return false
}

// AnimationType is the animation intent saved by the doll editor. It is the
// source of truth for whether a doll wanders.
type AnimationType string

const (
	AnimIdle    AnimationType = "idle"    // stand still
	AnimWalking AnimationType = "walking" // wander around the village
	AnimWaving  AnimationType = "waving"  // stand still and wave
)

// InputSource identifies where a pointer event came from.
type InputSource uint8

const (
	SourceMouse InputSource = iota // mouse or pen; fine-grained tap threshold
	SourceTouch                    // finger; coarse tap threshold
)

func (s InputSource) String() string {
	if s == SourceTouch {
		return "touch"
	}
	return "mouse"
}

// DragKind is the subject of the current pointer interaction.
type DragKind uint8

const (
	DragNone       DragKind = iota // no pointer held
	DragBackground                 // panning the world horizontally
	DragItem                       // dragging one item
	DragMulti                      // dragging every selected item
)

func (k DragKind) String() string {
	switch k {
	case DragBackground:
		return "background"
	case DragItem:
		return "item"
	case DragMulti:
		return "multi"
	default:
		return "none"
	}
}

// EventType identifies a kind of village event delivered to an EventSink.
type EventType uint8

const (
	EventEditRequested EventType = iota // a tap on an item asked for its editor
	EventItemPlaced                     // a new item joined the store
	EventItemRemoved                    // an item was deleted
	EventChatStarted                    // a doll began talking
	EventWalkStarted                    // a doll began a walk segment
	EventSelectionChanged               // the selection set changed
)

func (e EventType) String() string {
	switch e {
	case EventEditRequested:
		return "edit_requested"
	case EventItemPlaced:
		return "item_placed"
	case EventItemRemoved:
		return "item_removed"
	case EventChatStarted:
		return "chat_started"
	case EventWalkStarted:
		return "walk_started"
	case EventSelectionChanged:
		return "selection_changed"
	default:
		return "unknown"
	}
}
