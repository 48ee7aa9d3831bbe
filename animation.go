package village

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	// HighlightScale is the extra scale of a newly placed item.
	HighlightScale = 1.5
	// DragScale is the extra scale of the item being dragged.
	DragScale = 1.1

	settleSeconds = 0.3
)

// Highlight tracks the single newly placed item that is drawn enlarged and on
// top of everything else. It holds HighlightScale for the highlight duration
// and then eases back to 1. There is no global animation manager; the owner
// calls Update every frame.
type Highlight struct {
	id     string
	hold   *gween.Tween
	settle *gween.Tween
	scale  float64
}

// Start highlights id for duration seconds, replacing any earlier highlight.
func (h *Highlight) Start(id string, duration float32) {
	h.id = id
	h.scale = HighlightScale
	h.hold = gween.New(HighlightScale, HighlightScale, duration, ease.Linear)
	h.settle = nil
}

// Update advances the animation by dt seconds.
func (h *Highlight) Update(dt float32) {
	if h.id == "" {
		return
	}
	if h.hold != nil {
		if _, done := h.hold.Update(dt); !done {
			return
		}
		h.hold = nil
		h.settle = gween.New(HighlightScale, 1, settleSeconds, ease.OutBack)
		return
	}
	if h.settle != nil {
		val, done := h.settle.Update(dt)
		h.scale = float64(val)
		if done {
			h.Clear()
		}
	}
}

// ID returns the id that paints on top, or "" once the hold phase is over.
func (h *Highlight) ID() string {
	if h.hold == nil {
		return ""
	}
	return h.id
}

// Scale returns the extra scale of id.
func (h *Highlight) Scale(id string) float64 {
	if id == "" || id != h.id {
		return 1
	}
	return h.scale
}

// Clear drops the highlight.
func (h *Highlight) Clear() {
	*h = Highlight{}
}
