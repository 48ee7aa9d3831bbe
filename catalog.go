package village

import "strings"

// ItemType is the discriminator of an item.
type ItemType string

const (
	TypeDoll            ItemType = "doll"
	TypeHouseCottage    ItemType = "house_cottage"
	TypeHouseMansion    ItemType = "house_mansion"
	TypeHousePagoda     ItemType = "house_pagoda"
	TypeTreeOak         ItemType = "tree_oak"
	TypeTreePine        ItemType = "tree_pine"
	TypeTreeSakura      ItemType = "tree_sakura"
	TypeBush            ItemType = "bush"
	TypeRock            ItemType = "rock"
	TypeSun             ItemType = "sun"
	TypeFlowerRose      ItemType = "flower_rose"
	TypeFlowerTulip     ItemType = "flower_tulip"
	TypeFlowerSunflower ItemType = "flower_sunflower"
	TypeFlowerDaisy     ItemType = "flower_daisy"
	TypeFlowerLavender  ItemType = "flower_lavender"
	TypeGrass           ItemType = "grass"
	TypeGrassTwo        ItemType = "grass_two"
	TypeRiverH          ItemType = "river_h"
	TypeRiverV          ItemType = "river_v"
	TypePond            ItemType = "pond"
	TypeGarden          ItemType = "garden"
	TypeFish            ItemType = "fish"
)

// Catalog lists every placeable item type in dock order.
var Catalog = []ItemType{
	TypeDoll,
	TypeHouseCottage, TypeHouseMansion, TypeHousePagoda,
	TypeTreeOak, TypeTreePine, TypeTreeSakura,
	TypeBush, TypeRock, TypeSun,
	TypeFlowerRose, TypeFlowerTulip, TypeFlowerSunflower, TypeFlowerDaisy, TypeFlowerLavender,
	TypeGrass, TypeGrassTwo,
	TypeRiverH, TypeRiverV, TypePond, TypeGarden,
	TypeFish,
}

// Known reports whether t is in the Catalog.
func (t ItemType) Known() bool {
	for _, c := range Catalog {
		if c == t {
			return true
		}
	}
	return false
}

// IsWater reports whether t can contain fish.
func (t ItemType) IsWater() bool {
	return t == TypePond || t == TypeRiverH || t == TypeRiverV
}

// IsHouse reports whether t is one of the house variants.
func (t ItemType) IsHouse() bool {
	return strings.HasPrefix(string(t), "house")
}

// IsTree reports whether t is one of the tree variants.
func (t ItemType) IsTree() bool {
	return strings.Contains(string(t), "tree")
}

// IsGrass reports whether t is one of the grass tufts.
func (t ItemType) IsGrass() bool {
	return strings.HasPrefix(string(t), "grass")
}

// waterBase is the unscaled physics footprint of each water type.
var waterBase = map[ItemType]Vec2{
	TypePond:   {120, 100},
	TypeRiverH: {100, 60},
	TypeRiverV: {60, 100},
}

// waterSpawn is the footprint the placement policy uses when dropping a new
// fish into water. It is smaller than waterBase and ignores scale.
var waterSpawn = map[ItemType]Vec2{
	TypePond:   {100, 80},
	TypeRiverH: {90, 50},
	TypeRiverV: {50, 90},
}

// defaultWaterSpawn is used for a water type missing from waterSpawn.
var defaultWaterSpawn = Vec2{80, 60}

// spriteSize is the nominal unscaled size used for hit testing and drawing.
func spriteSize(t ItemType) Vec2 {
	if b, ok := waterBase[t]; ok {
		return b
	}
	switch {
	case t == TypeDoll:
		return Vec2{60, 110}
	case t.IsHouse():
		return Vec2{140, 140}
	case t.IsTree():
		return Vec2{100, 150}
	case t == TypeSun:
		return Vec2{80, 80}
	case t == TypeGarden:
		return Vec2{100, 100}
	case t == TypeFish:
		return Vec2{30, 18}
	case t.IsGrass():
		return Vec2{40, 25}
	default:
		return Vec2{40, 40}
	}
}

// Size is the nominal unscaled sprite box of t.
func (t ItemType) Size() Vec2 {
	return spriteSize(t)
}
