package village

import (
	"math"
	"strconv"
	"strings"
)

// DefaultHorizon is the horizon percentage used when none can be parsed.
const DefaultHorizon = 50.0

// Viewport is the host's window onto the world. The world scrolls
// horizontally only; ScrollX is the world X at the viewport's left edge.
type Viewport interface {
	Size() (w, h float64)
	ScrollX() float64
	SetScrollX(x float64)
}

// Geometry is a snapshot of the ambient measurements that the simulation and
// the controller derive their lines from. Build a fresh one for every tick and
// every pointer event; nothing here is cached across them.
type Geometry struct {
	ViewW, ViewH float64
	ScrollX      float64
	// Horizon is the sky/ground boundary as a percentage of ViewH.
	Horizon float64
}

// MeasureGeometry reads vp and the horizon into a Geometry.
func MeasureGeometry(vp Viewport, horizon float64) Geometry {
	w, h := vp.Size()
	return Geometry{ViewW: w, ViewH: h, ScrollX: vp.ScrollX(), Horizon: SanitizeHorizon(horizon)}
}

// HorizonY is the horizon in pixels from the top.
func (g Geometry) HorizonY() float64 {
	return g.ViewH * SanitizeHorizon(g.Horizon) / 100
}

// GroundY is the highest Y a doll may stand at: the horizon minus the buffer.
func (g Geometry) GroundY(t *Tuning) float64 {
	return g.HorizonY() - t.HorizonBuffer
}

// WalkFloor is the lowest Y an NPC walks to.
func (g Geometry) WalkFloor(t *Tuning) float64 {
	return g.ViewH - t.DockSafeZone
}

// DragFloor is the lowest Y any item may be dragged to.
func (g Geometry) DragFloor(t *Tuning) float64 {
	return g.ViewH - t.DockLine
}

// WorldWidth is the scrollable world width.
func (g Geometry) WorldWidth(t *Tuning) float64 {
	return g.ViewW * t.WorldWidthScale
}

// InSky reports whether y is far enough above the ground line to count as
// stuck in the sky.
func (g Geometry) InSky(y float64, t *Tuning) bool {
	return y < g.GroundY(t)-t.SkyTolerance
}

// ParseHorizon parses a horizon percentage as typed by a user or stored by an
// older save. Leading integer digits are used; anything unparseable, zero or
// negative yields DefaultHorizon. Values above 100 are capped.
func ParseHorizon(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && (s[0] == '-' || s[0] == '+')) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return DefaultHorizon
	}
	return SanitizeHorizon(float64(n))
}

// SanitizeHorizon maps a numeric horizon into (0, 100], falling back to
// DefaultHorizon for zero, negative and NaN values.
func SanitizeHorizon(h float64) float64 {
	if math.IsNaN(h) || h <= 0 {
		return DefaultHorizon
	}
	return math.Min(h, 100)
}

// WaterBounds returns the physics rectangle of a water item: the base
// footprint centred on the item's box, with half extents scaled by the
// absolute transform scale. Rotation and skew are ignored. ok is false for
// non-water items.
func WaterBounds(w *Item) (r Rect, ok bool) {
	base, ok := waterBase[w.Type]
	if !ok {
		return Rect{}, false
	}
	sx := scaleMagnitude(w.Data.Transform.ScaleX)
	sy := scaleMagnitude(w.Data.Transform.ScaleY)
	cx := w.X + base.X/2
	cy := w.Y + base.Y/2
	hw := base.X / 2 * sx
	hh := base.Y / 2 * sy
	return Rect{X: cx - hw, Y: cy - hh, Width: 2 * hw, Height: 2 * hh}, true
}

// scaleMagnitude returns |s|, treating an unset scale as 1.
func scaleMagnitude(s float64) float64 {
	if s == 0 || math.IsNaN(s) {
		return 1
	}
	return math.Abs(s)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
