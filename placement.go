package village

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

var (
	// ErrNoWater is returned when a fish is requested and no pond or river
	// exists.
	ErrNoWater = errors.New("village: place a pond or river first")
	// ErrUnknownItem is returned for an id that is not in the store.
	ErrUnknownItem = errors.New("village: unknown item")
	// ErrUnknownType is returned for an item type outside the catalog.
	ErrUnknownType = errors.New("village: unknown item type")
)

// Default colors for new items.
const (
	DefaultHouseColor  = "#ff9f43"
	DefaultRoofColor   = "#e15f41"
	DefaultFishColor   = "#ff9f43"
	DefaultDollName    = "New Friend"
	DefaultHairColor   = "#6d4c41"
	DefaultSkinColor   = "#f3d2c1"
	DefaultOutfitColor = "#ff6b6b"
)

// Placer decides where new items appear and what they start with.
type Placer struct {
	tuning *Tuning
	rng    *rand.Rand
	newID  func(ItemType) string
}

// NewPlacer creates a placer. A nil rng uses a randomly seeded PCG.
func NewPlacer(t *Tuning, rng *rand.Rand) *Placer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Placer{tuning: t, rng: rng, newID: NewItemID}
}

// NewItemID returns a fresh id of the form "<type>-<uuid>".
func NewItemID(t ItemType) string {
	return fmt.Sprintf("%s-%s", t, uuid.NewString())
}

// InitialScale returns the sprite scale for new items on a viewport w wide.
func InitialScale(t *Tuning, w float64) float64 {
	if w < t.MobileWidth {
		return t.MobileScale
	}
	return t.DefaultScale
}

// DefaultData returns the attributes a freshly added item of type typ
// starts with.
func DefaultData(typ ItemType, scale float64) Attributes {
	a := newAttributes(typ)
	a.Transform = Transform{ScaleX: scale, ScaleY: scale}
	switch {
	case typ.IsHouse():
		a.House.Color = DefaultHouseColor
		a.House.RoofColor = DefaultRoofColor
	case typ == TypeDoll:
		*a.Doll = DollAttrs{
			Name:        DefaultDollName,
			HairColor:   DefaultHairColor,
			SkinColor:   DefaultSkinColor,
			OutfitColor: DefaultOutfitColor,
		}
	}
	return a
}

// Place creates a new item of type typ positioned by the spawn policy:
// suns in the sky, fish inside the first water item in items, everything
// else in the ground band of the visible part of the world.
func (p *Placer) Place(items []Item, typ ItemType, geo Geometry) (Item, error) {
	if !typ.Known() {
		return Item{}, fmt.Errorf("place %q: %w", typ, ErrUnknownType)
	}
	t := p.tuning

	if typ == TypeFish {
		for i := range items {
			if items[i].Type.IsWater() {
				fish := p.SpawnFish(&items[i], FishAttrs{})
				fish.Data.Transform = Transform{
					ScaleX: InitialScale(t, geo.ViewW),
					ScaleY: InitialScale(t, geo.ViewW),
				}
				return fish, nil
			}
		}
		return Item{}, ErrNoWater
	}

	it := Item{
		ID:   p.newID(typ),
		Type: typ,
		X:    geo.ScrollX + 50 + p.rng.Float64()*(geo.ViewW-100),
		Data: DefaultData(typ, InitialScale(t, geo.ViewW)),
	}
	horizon := geo.HorizonY()
	if typ == TypeSun {
		maxSky := max(50, horizon-80)
		it.Y = 20 + p.rng.Float64()*(maxSky-20)
		return it, nil
	}
	minY := horizon - t.HorizonBuffer
	maxY := max(minY+50, geo.ViewH-t.SpawnDockZone-t.SpawnBottomSlack)
	it.Y = minY + p.rng.Float64()*(maxY-minY)
	return it, nil
}

// SpawnFish creates a fish inside water. Zero attributes take the defaults
// (color DefaultFishColor, scale 1). The spawn area uses the unscaled
// per-type spawn size, not the scaled physics bounds.
func (p *Placer) SpawnFish(water *Item, attrs FishAttrs) Item {
	if attrs.Color == "" {
		attrs.Color = DefaultFishColor
	}
	if attrs.Scale == 0 {
		attrs.Scale = 1
	}
	size, ok := waterSpawn[water.Type]
	if !ok {
		size = defaultWaterSpawn
	}
	pad := p.tuning.FishPadding
	it := NewItem(p.newID(TypeFish), TypeFish,
		water.X+pad+p.rng.Float64()*(size.X-2*pad),
		water.Y+pad+p.rng.Float64()*(size.Y-2*pad),
	)
	*it.Data.Fish = attrs
	it.ContainerID = water.ID
	return it
}

// DefaultVillage returns the starter village used when no save exists: one
// cottage and one oak.
func DefaultVillage(t *Tuning, viewW float64) []Item {
	s := InitialScale(t, viewW)
	house := NewItem("house-1", TypeHouseCottage, 100, 500)
	house.Data = DefaultData(TypeHouseCottage, s)
	tree := NewItem("tree-1", TypeTreeOak, 300, 400)
	tree.Data = DefaultData(TypeTreeOak, s)
	return []Item{house, tree}
}
