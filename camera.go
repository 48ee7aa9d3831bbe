package village

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Camera is the horizontally scrolling window onto the village. It
// implements Viewport.
type Camera struct {
	// X is the world X at the left edge of the viewport.
	X float64
	// Width and Height are the viewport size in pixels.
	Width, Height float64

	// BoundsEnabled clamps X to [0, WorldWidth-Width], the way a scroll
	// container clamps its scroll offset.
	BoundsEnabled bool
	// WorldWidth is the scrollable width.
	WorldWidth float64

	scrollTween *gween.Tween
}

// NewCamera creates a camera for a w×h viewport over a world worldScale
// viewports wide, scrolled to the left edge.
func NewCamera(w, h, worldScale float64) *Camera {
	return &Camera{Width: w, Height: h, WorldWidth: w * worldScale, BoundsEnabled: true}
}

// Size implements Viewport.
func (c *Camera) Size() (w, h float64) { return c.Width, c.Height }

// ScrollX implements Viewport.
func (c *Camera) ScrollX() float64 { return c.X }

// SetScrollX implements Viewport. It cancels a running ScrollTo.
func (c *Camera) SetScrollX(x float64) {
	c.scrollTween = nil
	c.X = x
	c.ClampToBounds()
}

// Resize changes the viewport size and keeps the world worldScale viewports
// wide.
func (c *Camera) Resize(w, h, worldScale float64) {
	c.Width, c.Height = w, h
	c.WorldWidth = w * worldScale
	c.ClampToBounds()
}

// ScrollTo animates X to x over duration seconds.
func (c *Camera) ScrollTo(x float64, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.OutQuad
	}
	c.scrollTween = gween.New(float32(c.X), float32(x), duration, easeFn)
}

// Scrolling reports whether a ScrollTo animation is running.
func (c *Camera) Scrolling() bool { return c.scrollTween != nil }

// ClampToBounds clamps X immediately. No-op if BoundsEnabled is false.
func (c *Camera) ClampToBounds() {
	if !c.BoundsEnabled {
		return
	}
	maxX := math.Max(0, c.WorldWidth-c.Width)
	c.X = clamp(c.X, 0, maxX)
}

// Update advances a running ScrollTo by dt seconds.
func (c *Camera) Update(dt float32) {
	if c.scrollTween == nil {
		return
	}
	val, done := c.scrollTween.Update(dt)
	c.X = float64(val)
	if done {
		c.scrollTween = nil
	}
	c.ClampToBounds()
}

// WorldToScreen converts world coordinates to viewport coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return wx - c.X, wy
}

// ScreenToWorld converts viewport coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	return sx + c.X, sy
}

// VisibleBounds returns the world rectangle currently in view.
func (c *Camera) VisibleBounds() Rect {
	return Rect{X: c.X, Y: 0, Width: c.Width, Height: c.Height}
}

// Visible reports whether an item's nominal box intersects the view.
func (c *Camera) Visible(it *Item) bool {
	return ItemBounds(it).Intersects(c.VisibleBounds())
}
