package village

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Transform is the cosmetic transform shared by every item. Rotation and skew
// are in degrees. Only the scale magnitudes take part in physics.
type Transform struct {
	Rotate float64 `json:"rotate"`
	ScaleX float64 `json:"scaleX"`
	ScaleY float64 `json:"scaleY"`
	SkewX  float64 `json:"skewX"`
	SkewY  float64 `json:"skewY"`
}

// UnmarshalJSON accepts numbers or numeric strings for every field; editors
// historically stored slider values as strings. Unparseable values become 0.
func (t *Transform) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	t.Rotate = looseFloat(raw["rotate"])
	t.ScaleX = looseFloat(raw["scaleX"])
	t.ScaleY = looseFloat(raw["scaleY"])
	t.SkewX = looseFloat(raw["skewX"])
	t.SkewY = looseFloat(raw["skewY"])
	return nil
}

// Index is a style or grid index that tolerates string encodings.
type Index int

// UnmarshalJSON implements json.Unmarshaler.
func (i *Index) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*i = Index(looseFloat(v))
	return nil
}

func looseFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	case bool:
		if n {
			return 1
		}
	}
	return 0
}

// DollAttrs are the user-authored attributes of a doll.
type DollAttrs struct {
	Name          string        `json:"name,omitempty"`
	Story         string        `json:"story,omitempty"`
	HairColor     string        `json:"hairColor,omitempty"`
	SkinColor     string        `json:"skinColor,omitempty"`
	OutfitColor   string        `json:"outfitColor,omitempty"`
	HairStyle     Index         `json:"hairStyle"`
	OutfitStyle   Index         `json:"outfitStyle"`
	EyeType       Index         `json:"eyeType"`
	AnimationType AnimationType `json:"animationType,omitempty"`
}

// Intent returns the saved animation intent, defaulting to idle.
func (d *DollAttrs) Intent() AnimationType {
	if d == nil || d.AnimationType == "" {
		return AnimIdle
	}
	return d.AnimationType
}

// HouseAttrs are the colors of a house.
type HouseAttrs struct {
	Color     string `json:"color,omitempty"`
	RoofColor string `json:"roofColor,omitempty"`
}

// GardenAttrs describe a garden patch grid.
type GardenAttrs struct {
	Rows       Index  `json:"rows,omitempty"`
	Cols       Index  `json:"cols,omitempty"`
	FlowerType string `json:"flowerType,omitempty"`
}

// FishAttrs are the attributes of a fish.
type FishAttrs struct {
	Color string  `json:"color,omitempty"`
	Scale float64 `json:"scale,omitempty"`
}

// WaterAttrs hold the water editor's defaults for newly spawned fish.
type WaterAttrs struct {
	FishColor string  `json:"fishColor,omitempty"`
	FishScale float64 `json:"fishScale,omitempty"`
}

// DecorAttrs cover every other decoration.
type DecorAttrs struct {
	Color string `json:"color,omitempty"`
}

// Attributes is the type-dependent attribute bag of an item. Exactly one
// variant pointer matching the item's Type is set; Transform is shared.
type Attributes struct {
	Transform Transform

	Doll   *DollAttrs
	House  *HouseAttrs
	Garden *GardenAttrs
	Fish   *FishAttrs
	Water  *WaterAttrs
	Decor  *DecorAttrs
}

// variant returns the active variant as an untyped pointer, or nil.
func (a *Attributes) variant() any {
	switch {
	case a.Doll != nil:
		return a.Doll
	case a.House != nil:
		return a.House
	case a.Garden != nil:
		return a.Garden
	case a.Fish != nil:
		return a.Fish
	case a.Water != nil:
		return a.Water
	case a.Decor != nil:
		return a.Decor
	}
	return nil
}

// newAttributes returns attributes with the zero variant for t.
func newAttributes(t ItemType) Attributes {
	var a Attributes
	switch {
	case t == TypeDoll:
		a.Doll = &DollAttrs{}
	case t.IsHouse():
		a.House = &HouseAttrs{}
	case t == TypeGarden:
		a.Garden = &GardenAttrs{}
	case t == TypeFish:
		a.Fish = &FishAttrs{}
	case t.IsWater():
		a.Water = &WaterAttrs{}
	default:
		a.Decor = &DecorAttrs{}
	}
	return a
}

// clone returns a deep copy of a.
func (a Attributes) clone() Attributes {
	out := Attributes{Transform: a.Transform}
	if a.Doll != nil {
		d := *a.Doll
		out.Doll = &d
	}
	if a.House != nil {
		h := *a.House
		out.House = &h
	}
	if a.Garden != nil {
		g := *a.Garden
		out.Garden = &g
	}
	if a.Fish != nil {
		f := *a.Fish
		out.Fish = &f
	}
	if a.Water != nil {
		w := *a.Water
		out.Water = &w
	}
	if a.Decor != nil {
		d := *a.Decor
		out.Decor = &d
	}
	return out
}

// NPCState is the transient simulation state of a doll. Times are Unix
// milliseconds, durations are milliseconds.
type NPCState struct {
	Action     Action  `json:"action"`
	TargetX    float64 `json:"targetX"`
	TargetY    float64 `json:"targetY"`
	StartX     float64 `json:"startX,omitempty"`
	StartY     float64 `json:"startY,omitempty"`
	StartTime  int64   `json:"startTime,omitempty"`
	Duration   float64 `json:"duration,omitempty"`
	LastUpdate int64   `json:"lastUpdate"`
	// Rescue marks a one-shot walk that brings a non-walking doll down
	// from the sky.
	Rescue bool `json:"rescue,omitempty"`
}

// FishState is the transient velocity of a fish in pixels per tick.
type FishState struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Item is a placed entity. Items are values: the simulation and the
// controller never mutate an Item reachable from a published store slice,
// they copy it and install a new slice.
type Item struct {
	ID   string
	Type ItemType
	X, Y float64
	Data Attributes

	// NPC is set for dolls once the simulation has seen them.
	NPC *NPCState
	// Fish is set for fish once the simulation has moved them.
	Fish *FishState
	// ContainerID is the water item a fish was spawned into. Advisory only.
	ContainerID string
}

// NewItem returns an item of type t at (x, y) with empty attributes.
func NewItem(id string, t ItemType, x, y float64) Item {
	return Item{ID: id, Type: t, X: x, Y: y, Data: newAttributes(t)}
}

// Pos returns the anchor position.
func (it *Item) Pos() Vec2 {
	return Vec2{it.X, it.Y}
}

// Action returns the live NPC action, or idle when there is no NPC state.
func (it *Item) Action() Action {
	if it.NPC == nil {
		return ActionIdle
	}
	return it.NPC.Action
}

// Clone returns a deep copy of it.
func (it Item) Clone() Item {
	out := it
	out.Data = it.Data.clone()
	if it.NPC != nil {
		n := *it.NPC
		out.NPC = &n
	}
	if it.Fish != nil {
		f := *it.Fish
		out.Fish = &f
	}
	return out
}

// WithoutSimState returns a copy of it with NPC and fish state removed.
func (it Item) WithoutSimState() Item {
	it.NPC = nil
	it.Fish = nil
	return it
}

// --- JSON ---

type itemJSON struct {
	ID          string          `json:"id"`
	Type        ItemType        `json:"type"`
	X           float64         `json:"x"`
	Y           float64         `json:"y"`
	Data        json.RawMessage `json:"data,omitempty"`
	NPC         *NPCState       `json:"npc,omitempty"`
	Fish        *FishState      `json:"fish,omitempty"`
	ContainerID string          `json:"containerId,omitempty"`
}

// MarshalJSON writes the item with its attribute variant flattened into one
// "data" object, matching the browser save format.
func (it Item) MarshalJSON() ([]byte, error) {
	data, err := it.Data.marshalFlat()
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", it.ID, err)
	}
	return json.Marshal(itemJSON{
		ID: it.ID, Type: it.Type, X: it.X, Y: it.Y,
		Data: data, NPC: it.NPC, Fish: it.Fish, ContainerID: it.ContainerID,
	})
}

// UnmarshalJSON reads an item, choosing the attribute variant from "type".
// Unknown keys inside "data" are ignored.
// Malformed "npc" or "fish" state is dropped; the tick reinitializes it.
func (it *Item) UnmarshalJSON(b []byte) error {
	var raw struct {
		itemJSON
		NPC  json.RawMessage `json:"npc,omitempty"`
		Fish json.RawMessage `json:"fish,omitempty"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*it = Item{
		ID: raw.ID, Type: raw.Type, X: raw.X, Y: raw.Y,
		Data:        newAttributes(raw.Type),
		ContainerID: raw.ContainerID,
	}
	if s := new(NPCState); decodeSimState(raw.ID, "npc", raw.NPC, s) {
		it.NPC = s
	}
	if s := new(FishState); decodeSimState(raw.ID, "fish", raw.Fish, s) {
		it.Fish = s
	}
	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return nil
	}
	var common struct {
		Transform *Transform `json:"transform"`
	}
	if err := json.Unmarshal(raw.Data, &common); err != nil {
		return fmt.Errorf("item %s data: %w", raw.ID, err)
	}
	if common.Transform != nil {
		it.Data.Transform = *common.Transform
	}
	if v := it.Data.variant(); v != nil {
		if err := json.Unmarshal(raw.Data, v); err != nil {
			return fmt.Errorf("item %s data: %w", raw.ID, err)
		}
	}
	return nil
}

func decodeSimState(id, key string, b json.RawMessage, v any) bool {
	if len(b) == 0 || string(b) == "null" {
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		Log.WithFields(logrus.Fields{"item": id, "key": key}).WithError(err).Debug("dropping malformed sim state")
		return false
	}
	return true
}

func (a Attributes) marshalFlat() ([]byte, error) {
	fields := map[string]any{}
	if v := a.variant(); v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(b, &fields); err != nil {
			return nil, err
		}
	}
	fields["transform"] = a.Transform
	return json.Marshal(fields)
}

// MergeAttributes overlays patch, a JSON object in the flattened "data" form,
// onto a and decodes the result as the attributes of type typ. Keys absent
// from patch keep their values from a.
func MergeAttributes(typ ItemType, a Attributes, patch []byte) (Attributes, error) {
	base, err := a.marshalFlat()
	if err != nil {
		return Attributes{}, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &fields); err != nil {
		return Attributes{}, err
	}
	var over map[string]json.RawMessage
	if err := json.Unmarshal(patch, &over); err != nil {
		return Attributes{}, fmt.Errorf("merge attributes: %w", err)
	}
	for k, v := range over {
		if k == "type" {
			continue
		}
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return Attributes{}, err
	}
	var it Item
	raw, err := json.Marshal(itemJSON{Type: typ, Data: merged})
	if err != nil {
		return Attributes{}, err
	}
	if err := it.UnmarshalJSON(raw); err != nil {
		return Attributes{}, fmt.Errorf("merge attributes: %w", err)
	}
	return it.Data, nil
}
