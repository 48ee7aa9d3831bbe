package village

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
)

// maxCatchUpTicks bounds how many fixed steps one Update may run after a
// stall.
const maxCatchUpTicks = 5

// WorldConfig configures NewWorld.
type WorldConfig struct {
	// Tuning defaults to DefaultTuning().
	Tuning *Tuning
	// Width and Height are the initial viewport size.
	Width, Height float64
	// Store defaults to an empty MemStore.
	Store ItemStore
	// Rand seeds placement and simulation. Nil uses a random seed.
	Rand *rand.Rand
}

// World is the top-level object that owns the item store, the simulation,
// the interaction controller, the camera and the scene settings. It is not
// safe for concurrent use; hosts drive it from one goroutine.
type World struct {
	Tuning Tuning

	store     ItemStore
	sim       *Simulation
	ctrl      *Controller
	cam       *Camera
	placer    *Placer
	highlight Highlight
	sink      EventSink
	debug     bool

	horizon     float64
	skyColor    string
	groundColor string

	lastUpdate time.Time
	acc        time.Duration
	ticks      uint64

	injectQueue []syntheticPointerEvent
	injectDown  bool
	script      *ScriptRunner
	screenshot  func(label string)
}

// NewWorld creates a world with an empty store unless cfg provides one.
func NewWorld(cfg WorldConfig) *World {
	t := DefaultTuning()
	if cfg.Tuning != nil {
		t = *cfg.Tuning
	}
	store := cfg.Store
	if store == nil {
		store = NewMemStore(nil)
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	w := &World{
		Tuning:      t,
		store:       store,
		horizon:     DefaultHorizon,
		skyColor:    DefaultSkyColor,
		groundColor: DefaultGroundColor,
	}
	w.cam = NewCamera(cfg.Width, cfg.Height, t.WorldWidthScale)
	w.sim = NewSimulation(t, rng)
	w.placer = NewPlacer(&w.Tuning, rng)
	w.ctrl = NewController(store, w.cam, w.Horizon, &w.Tuning)
	return w
}

// Store returns the item store.
func (w *World) Store() ItemStore { return w.store }

// Items returns the current items.
func (w *World) Items() []Item { return w.store.Items() }

// Item returns the item with id.
func (w *World) Item(id string) (Item, bool) {
	items := w.store.Items()
	if i := Find(items, id); i >= 0 {
		return items[i], true
	}
	return Item{}, false
}

// Camera returns the viewport camera.
func (w *World) Camera() *Camera { return w.cam }

// Controller returns the interaction controller.
func (w *World) Controller() *Controller { return w.ctrl }

// Simulation returns the simulation.
func (w *World) Simulation() *Simulation { return w.sim }

// Highlight returns the spawn highlight.
func (w *World) Highlight() *Highlight { return &w.highlight }

// Ticks returns the number of simulation steps run so far.
func (w *World) Ticks() uint64 { return w.ticks }

// SetEventSink sets the sink that receives every village event.
func (w *World) SetEventSink(sink EventSink) {
	w.sink = sink
	w.sim.SetEventSink(sink)
	w.ctrl.SetEventSink(sink)
}

// OnEdit sets the edit-request callback.
func (w *World) OnEdit(fn EditFunc) { w.ctrl.OnEdit(fn) }

// SetDebugMode enables per-tick stats at trace level.
func (w *World) SetDebugMode(enabled bool) {
	w.debug = enabled
	w.sim.SetDebugMode(enabled)
}

// Horizon returns the horizon percentage.
func (w *World) Horizon() float64 { return w.horizon }

// SetHorizon sets the horizon percentage.
func (w *World) SetHorizon(h float64) { w.horizon = SanitizeHorizon(h) }

// Colors returns the sky and ground colors.
func (w *World) Colors() (sky, ground string) { return w.skyColor, w.groundColor }

// SetColors sets the sky and ground colors. Empty values are left alone.
func (w *World) SetColors(sky, ground string) {
	if sky != "" {
		w.skyColor = sky
	}
	if ground != "" {
		w.groundColor = ground
	}
}

// Resize changes the viewport size.
func (w *World) Resize(width, height float64) {
	w.cam.Resize(width, height, w.Tuning.WorldWidthScale)
}

// Geometry measures the current viewport and horizon.
func (w *World) Geometry() Geometry {
	return MeasureGeometry(w.cam, w.horizon)
}

// Update advances animations, feeds one injected pointer event and runs as
// many fixed simulation steps as the time since the previous Update covers.
func (w *World) Update(now time.Time) {
	if w.lastUpdate.IsZero() {
		w.lastUpdate = now
	}
	elapsed := now.Sub(w.lastUpdate)
	w.lastUpdate = now
	if elapsed < 0 {
		elapsed = 0
	}
	dt := float32(elapsed.Seconds())
	w.cam.Update(dt)
	w.highlight.Update(dt)

	if w.script != nil {
		w.script.step(w)
	}
	w.processInjectedInput(now)

	interval := w.Tuning.TickInterval
	if interval <= 0 {
		return
	}
	w.acc += elapsed
	steps := 0
	for w.acc >= interval {
		w.acc -= interval
		if steps == maxCatchUpTicks {
			w.acc = 0
			break
		}
		w.Tick(now.Add(-w.acc))
		steps++
	}
}

// Tick runs one simulation step at now.
func (w *World) Tick(now time.Time) {
	geo := w.Geometry()
	w.store.Replace(func(prev []Item) []Item {
		next, _ := w.sim.Step(prev, w.ctrl.Held(), geo, now)
		return next
	})
	w.ticks++
}

// AddItem places a new item of type typ from the dock. A new doll
// immediately requests its editor.
func (w *World) AddItem(typ ItemType) (Item, error) {
	it, err := w.placer.Place(w.store.Items(), typ, w.Geometry())
	if err != nil {
		return Item{}, fmt.Errorf("add %s: %w", typ, err)
	}
	w.insert(it)
	if typ == TypeDoll {
		w.requestEdit(it)
	}
	return it, nil
}

// SpawnFish adds a fish inside the water item waterID, the way the water
// editor's "add fish" button does.
func (w *World) SpawnFish(waterID string, attrs FishAttrs) (Item, error) {
	water, ok := w.Item(waterID)
	if !ok {
		return Item{}, fmt.Errorf("spawn fish in %s: %w", waterID, ErrUnknownItem)
	}
	if !water.Type.IsWater() {
		return Item{}, fmt.Errorf("spawn fish in %s: %w", waterID, ErrNoWater)
	}
	if attrs == (FishAttrs{}) && water.Data.Water != nil {
		attrs = FishAttrs{Color: water.Data.Water.FishColor, Scale: water.Data.Water.FishScale}
	}
	fish := w.placer.SpawnFish(&water, attrs)
	w.store.Replace(func(prev []Item) []Item {
		return append(slices.Clip(prev), fish)
	})
	Log.WithFields(logrus.Fields{"item": fish.ID, "water": waterID}).Debug("fish spawned")
	emit(w.sink, Event{Type: EventItemPlaced, ItemID: fish.ID, Item: fish, X: fish.X, Y: fish.Y, Time: time.Now().UnixMilli()})
	return fish, nil
}

// Insert adds an externally built item, for example one received from a
// network client. An empty id is filled in; a used one is rejected.
func (w *World) Insert(it Item) (Item, error) {
	if !it.Type.Known() {
		return Item{}, fmt.Errorf("insert %q: %w", it.Type, ErrUnknownType)
	}
	if it.ID == "" {
		it.ID = NewItemID(it.Type)
	}
	if _, exists := w.Item(it.ID); exists {
		return Item{}, fmt.Errorf("insert: duplicate item id %q", it.ID)
	}
	w.insert(it)
	return it, nil
}

func (w *World) insert(it Item) {
	w.store.Replace(func(prev []Item) []Item {
		return append(slices.Clip(prev), it)
	})
	w.highlight.Start(it.ID, float32(w.Tuning.Highlight.Seconds()))
	if w.debug {
		debugCheckUniqueIDs(w.store.Items())
	}
	Log.WithFields(logrus.Fields{"item": it.ID, "type": it.Type}).Debug("item placed")
	emit(w.sink, Event{Type: EventItemPlaced, ItemID: it.ID, Item: it, X: it.X, Y: it.Y, Time: time.Now().UnixMilli()})
}

// DeleteItem removes the item with id.
func (w *World) DeleteItem(id string) error {
	it, ok := w.Item(id)
	if !ok {
		return fmt.Errorf("delete %s: %w", id, ErrUnknownItem)
	}
	w.store.Replace(func(prev []Item) []Item {
		return slices.DeleteFunc(slices.Clone(prev), func(it Item) bool { return it.ID == id })
	})
	w.ctrl.Forget(id)
	if w.highlight.id == id {
		w.highlight.Clear()
	}
	Log.WithFields(logrus.Fields{"item": id}).Debug("item removed")
	emit(w.sink, Event{Type: EventItemRemoved, ItemID: id, Item: it, X: it.X, Y: it.Y, Time: time.Now().UnixMilli()})
	return nil
}

// ApplyEdit merges an editor result into the item with id. patch is a JSON
// object in the flattened "data" form; its keys replace the item's keys. A
// "type" key naming a house variant changes the item's type.
func (w *World) ApplyEdit(id string, patch []byte) error {
	var head struct {
		Type ItemType `json:"type"`
	}
	if err := json.Unmarshal(patch, &head); err != nil {
		return fmt.Errorf("edit %s: %w", id, err)
	}
	cur, ok := w.Item(id)
	if !ok {
		return fmt.Errorf("edit %s: %w", id, ErrUnknownItem)
	}
	typ := cur.Type
	if head.Type.IsHouse() && head.Type.Known() {
		typ = head.Type
	}
	data, err := MergeAttributes(typ, cur.Data, patch)
	if err != nil {
		return fmt.Errorf("edit %s: %w", id, err)
	}
	w.store.Replace(func(prev []Item) []Item {
		return mapItems(prev, func(it Item) (Item, bool) {
			if it.ID != id {
				return it, false
			}
			it.Type = typ
			it.Data = data
			return it, true
		})
	})
	Log.WithFields(logrus.Fields{"item": id, "type": typ}).Debug("item edited")
	return nil
}

// Move places the item with id at (x, y) without any clamping.
func (w *World) Move(id string, x, y float64) error {
	if _, ok := w.Item(id); !ok {
		return fmt.Errorf("move %s: %w", id, ErrUnknownItem)
	}
	w.store.Replace(func(prev []Item) []Item {
		return mapItems(prev, func(it Item) (Item, bool) {
			if it.ID != id {
				return it, false
			}
			it.X, it.Y = x, y
			return it, true
		})
	})
	return nil
}

// Snapshot returns the savable state.
func (w *World) Snapshot() Snapshot {
	return Snapshot{
		Items:       w.store.Items(),
		SkyColor:    w.skyColor,
		GroundColor: w.groundColor,
		HorizonPos:  Horizon(w.horizon),
	}
}

// Load replaces the whole village with snap. Interaction state is reset.
func (w *World) Load(snap Snapshot) {
	snap = snap.withDefaults()
	items := snap.Items
	w.store.Replace(func([]Item) []Item { return slices.Clone(items) })
	w.skyColor, w.groundColor = snap.SkyColor, snap.GroundColor
	w.horizon = snap.HorizonPos.Value()
	w.ctrl.PointerCancel()
	w.ctrl.ClearSelection()
	w.highlight.Clear()
	if w.debug {
		debugCheckUniqueIDs(items)
	}
	Log.WithFields(logrus.Fields{"items": len(items), "horizon": w.horizon}).Info("village loaded")
}

// Reset replaces the village with the starter village and default colors.
func (w *World) Reset() {
	w.Load(Snapshot{Items: DefaultVillage(&w.Tuning, w.cam.Width)})
}

// requestEdit asks the host to open the editor for it.
func (w *World) requestEdit(it Item) {
	if w.ctrl.onEdit != nil {
		w.ctrl.onEdit(it)
	}
	emit(w.sink, Event{Type: EventEditRequested, ItemID: it.ID, Item: it, X: it.X, Y: it.Y, Time: time.Now().UnixMilli()})
}

// --- Pointer input ---

// Press hit-tests ev against the items and forwards it to the controller.
func (w *World) Press(ev PointerEvent) {
	wx, wy := w.cam.ScreenToWorld(ev.X, ev.Y)
	target := HitTest(w.store.Items(), wx, wy, w.highlight.ID())
	w.ctrl.PointerDown(ev, target)
}

// Drag forwards a pointer move to the controller.
func (w *World) Drag(ev PointerEvent) { w.ctrl.PointerMove(ev) }

// Release forwards a pointer release to the controller.
func (w *World) Release(ev PointerEvent) { w.ctrl.PointerUp(ev) }

// Cancel ends any pointer interaction without a tap.
func (w *World) Cancel() { w.ctrl.PointerCancel() }

// DrawScale returns the extra scale an item is drawn with: lifted while
// dragged, enlarged while highlighted.
func (w *World) DrawScale(id string) float64 {
	if kind, dragged := w.ctrl.Dragging(); kind == DragItem && dragged == id {
		return DragScale
	}
	return w.highlight.Scale(id)
}
