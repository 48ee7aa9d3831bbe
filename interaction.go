package village

import (
	"math"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
)

// EditFunc receives the item record when a tap asks for its editor.
type EditFunc func(Item)

// HorizonFunc returns the current horizon percentage. It is called afresh for
// every pointer event and every tick.
type HorizonFunc func() float64

// PointerEvent is one pointer sample in viewport (screen) coordinates.
type PointerEvent struct {
	// Pointer identifies the finger or mouse; 0 is the mouse, touches use
	// 1 and up. Only the pointer that started a drag can move or end it.
	Pointer int
	Source  InputSource
	X, Y    float64
	Time    time.Time
}

// dragState is the interaction in progress, if any.
type dragState struct {
	kind        DragKind
	itemID      string // DragItem only
	pointer     int
	source      InputSource
	startX      float64 // press position, viewport coordinates
	startY      float64
	startScroll float64
	offset      Vec2            // DragItem: press point minus item anchor, world X
	offsets     map[string]Vec2 // DragMulti: same, per selected item
}

// touchMark remembers the last touch start so the mouse events a browser or
// OS synthesizes from it can be dropped.
type touchMark struct {
	target string
	at     time.Time
	set    bool
}

// Controller turns pointer events into selection changes, item drags and
// background pans. All methods must be called from the goroutine that owns
// the store.
type Controller struct {
	store   ItemStore
	view    Viewport
	horizon HorizonFunc
	tuning  *Tuning

	onEdit EditFunc
	sink   EventSink

	selectionMode bool
	selected      []string
	drag          dragState
	lastTouch     touchMark
}

// NewController creates a controller over store. A nil horizon uses
// DefaultHorizon.
func NewController(store ItemStore, view Viewport, horizon HorizonFunc, t *Tuning) *Controller {
	if horizon == nil {
		horizon = func() float64 { return DefaultHorizon }
	}
	return &Controller{store: store, view: view, horizon: horizon, tuning: t}
}

// OnEdit sets the edit-request callback.
func (c *Controller) OnEdit(fn EditFunc) { c.onEdit = fn }

// SetEventSink sets where edit and selection events go.
func (c *Controller) SetEventSink(sink EventSink) { c.sink = sink }

// SetSelectionMode switches between drag mode and selection mode. The
// selection set is kept across switches.
func (c *Controller) SetSelectionMode(on bool) { c.selectionMode = on }

// SelectionMode reports whether selection mode is on.
func (c *Controller) SelectionMode() bool { return c.selectionMode }

// Selection returns the selected ids in selection order.
func (c *Controller) Selection() []string { return slices.Clone(c.selected) }

// IsSelected reports whether id is in the selection set.
func (c *Controller) IsSelected(id string) bool { return slices.Contains(c.selected, id) }

// Dragging returns the kind of interaction in progress and, for single
// drags, the dragged item id.
func (c *Controller) Dragging() (DragKind, string) { return c.drag.kind, c.drag.itemID }

// Holds reports whether id is under the pointer: the single-dragged item, or
// any selected item while a multi-drag is in progress.
func (c *Controller) Holds(id string) bool {
	switch c.drag.kind {
	case DragItem:
		return id == c.drag.itemID
	case DragMulti:
		return c.IsSelected(id)
	}
	return false
}

// Grabs reports whether id is the item of a single drag.
func (c *Controller) Grabs(id string) bool {
	return c.drag.kind == DragItem && id == c.drag.itemID
}

// Held returns the controller as a Holder.
func (c *Controller) Held() Holder { return c }

// Forget drops id from the selection and ends a drag of it. Hosts call it
// when an item is deleted.
func (c *Controller) Forget(id string) {
	if i := slices.Index(c.selected, id); i >= 0 {
		c.selected = slices.Delete(c.selected, i, i+1)
		c.selectionChanged(time.Now())
	}
	if c.drag.kind == DragItem && c.drag.itemID == id {
		c.drag = dragState{}
	}
}

// ClearSelection empties the selection set.
func (c *Controller) ClearSelection() {
	if len(c.selected) == 0 {
		return
	}
	c.selected = nil
	c.selectionChanged(time.Now())
}

// PointerDown handles a press. targetID is the item under the pointer, or ""
// for the background.
func (c *Controller) PointerDown(ev PointerEvent, targetID string) {
	if c.suppressed(ev, targetID) {
		Log.WithFields(logrus.Fields{"target": targetID}).Trace("ignoring emulated mouse press")
		return
	}
	if c.drag.kind != DragNone && ev.Pointer != c.drag.pointer {
		return
	}

	if targetID == "" {
		if c.selectionMode {
			return
		}
		c.ClearSelection()
		c.drag = dragState{
			kind:        DragBackground,
			pointer:     ev.Pointer,
			source:      ev.Source,
			startX:      ev.X,
			startY:      ev.Y,
			startScroll: c.view.ScrollX(),
		}
		return
	}

	if c.selectionMode {
		if i := slices.Index(c.selected, targetID); i >= 0 {
			c.selected = slices.Delete(c.selected, i, i+1)
		} else {
			c.selected = append(c.selected, targetID)
		}
		c.selectionChanged(ev.Time)
		return
	}

	scrollX := c.view.ScrollX()
	items := c.store.Items()
	// Stop set is taken before a single drag clears the selection.
	stop := append(slices.Clone(c.selected), targetID)

	if c.IsSelected(targetID) {
		offsets := make(map[string]Vec2, len(c.selected))
		for i := range items {
			if c.IsSelected(items[i].ID) {
				offsets[items[i].ID] = Vec2{X: ev.X + scrollX - items[i].X, Y: ev.Y - items[i].Y}
			}
		}
		c.drag = dragState{kind: DragMulti, offsets: offsets}
	} else {
		idx := Find(items, targetID)
		if idx < 0 {
			Log.WithFields(logrus.Fields{"target": targetID}).Warn("press on unknown item")
			return
		}
		c.ClearSelection()
		it := &items[idx]
		c.drag = dragState{
			kind:   DragItem,
			itemID: targetID,
			offset: Vec2{X: ev.X + scrollX - it.X, Y: ev.Y - it.Y},
		}
	}
	c.drag.pointer = ev.Pointer
	c.drag.source = ev.Source
	c.drag.startX, c.drag.startY = ev.X, ev.Y

	now := ev.Time.UnixMilli()
	c.store.Replace(func(prev []Item) []Item {
		return mapItems(prev, func(it Item) (Item, bool) {
			if !slices.Contains(stop, it.ID) {
				return it, false
			}
			return StopWalking(it, now)
		})
	})
}

// PointerMove handles pointer motion while pressed.
func (c *Controller) PointerMove(ev PointerEvent) {
	if c.drag.kind == DragNone || ev.Pointer != c.drag.pointer {
		return
	}
	if c.drag.kind == DragBackground {
		c.view.SetScrollX(c.drag.startScroll - (ev.X - c.drag.startX))
		return
	}

	geo := MeasureGeometry(c.view, c.horizon())
	groundY := geo.GroundY(c.tuning)
	floor := geo.DragFloor(c.tuning)
	place := func(it Item, off Vec2) Item {
		it.X = ev.X - off.X + geo.ScrollX
		it.Y = ev.Y - off.Y
		if it.Type == TypeDoll && it.Y < groundY {
			it.Y = groundY
		}
		if it.Y > floor {
			it.Y = floor
		}
		return it
	}

	c.store.Replace(func(prev []Item) []Item {
		return mapItems(prev, func(it Item) (Item, bool) {
			switch c.drag.kind {
			case DragItem:
				if it.ID == c.drag.itemID {
					return place(it, c.drag.offset), true
				}
			case DragMulti:
				if c.IsSelected(it.ID) {
					return place(it, c.drag.offsets[it.ID]), true
				}
			}
			return it, false
		})
	})
}

// PointerUp handles a release. A single-item press that travelled less than
// the tap distance for its input source requests the item's editor.
func (c *Controller) PointerUp(ev PointerEvent) {
	if c.drag.kind == DragNone {
		return
	}
	if ev.Pointer != c.drag.pointer {
		return
	}
	drag := c.drag
	c.drag = dragState{}
	if c.selectionMode || drag.kind != DragItem {
		return
	}

	limit := c.tuning.MouseTapDistance
	if drag.source == SourceTouch {
		limit = c.tuning.TouchTapDistance
	}
	d := math.Hypot(ev.X-drag.startX, ev.Y-drag.startY)
	if d >= limit {
		return
	}
	items := c.store.Items()
	idx := Find(items, drag.itemID)
	if idx < 0 {
		return
	}
	it := items[idx]
	Log.WithFields(logrus.Fields{"item": it.ID, "type": it.Type}).Debug("edit requested")
	if c.onEdit != nil {
		c.onEdit(it)
	}
	emit(c.sink, Event{Type: EventEditRequested, ItemID: it.ID, Item: it, X: it.X, Y: it.Y, Time: ev.Time.UnixMilli()})
}

// PointerCancel ends any interaction without a tap, as when the pointer
// leaves the surface.
func (c *Controller) PointerCancel() {
	c.drag = dragState{}
}

// suppressed records touch starts and reports whether a mouse press is the
// emulated twin of a recent one on the same target.
func (c *Controller) suppressed(ev PointerEvent, targetID string) bool {
	if ev.Source == SourceTouch {
		c.lastTouch = touchMark{target: targetID, at: ev.Time, set: true}
		return false
	}
	if !c.lastTouch.set || c.lastTouch.target != targetID {
		return false
	}
	since := ev.Time.Sub(c.lastTouch.at)
	return since >= 0 && since < c.tuning.SyntheticMouseWin
}

func (c *Controller) selectionChanged(at time.Time) {
	emit(c.sink, Event{Type: EventSelectionChanged, Selection: c.Selection(), Time: at.UnixMilli()})
}
