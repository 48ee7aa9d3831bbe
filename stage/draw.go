package stage

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/village"
)

// whitePixel is a 1x1 white image scaled and tinted to draw solid parts.
var whitePixel *ebiten.Image

func pixel() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(color.White)
	}
	return whitePixel
}

var (
	selectColor  = color.RGBA{0x00, 0xb8, 0x94, 0xff}
	captionColor = color.RGBA{0xff, 0xff, 0xff, 0xe0}
)

// part is one solid rectangle of an item sprite in local box coordinates.
type part struct {
	x, y, w, h float64
	c          color.RGBA
}

// drawWorld paints sky, ground and every item in paint order.
func (s *Stage) drawWorld(screen *ebiten.Image) {
	w := s.world
	cam := w.Camera()
	geo := w.Geometry()
	sky, ground := w.Colors()
	vw, vh := float32(geo.ViewW), float32(geo.ViewH)
	horizon := float32(geo.HorizonY())

	vector.DrawFilledRect(screen, 0, 0, vw, horizon, hexColor(sky, color.RGBA{0x81, 0xec, 0xec, 0xff}), false)
	vector.DrawFilledRect(screen, 0, horizon, vw, vh-horizon, hexColor(ground, color.RGBA{0x55, 0xef, 0xc4, 0xff}), false)

	items := w.Items()
	hl := w.Highlight().ID()
	view := cam.VisibleBounds()
	for _, i := range village.DrawOrder(items, hl) {
		it := &items[i]
		if !village.ItemBounds(it).Inset(-40).Intersects(view) {
			continue
		}
		m := village.ItemMatrix(it, w.DrawScale(it.ID))
		var g ebiten.GeoM
		g.SetElement(0, 0, m[0])
		g.SetElement(1, 0, m[1])
		g.SetElement(0, 1, m[2])
		g.SetElement(1, 1, m[3])
		g.SetElement(0, 2, m[4]-cam.X)
		g.SetElement(1, 2, m[5])
		for _, p := range spriteParts(it) {
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(p.w, p.h)
			op.GeoM.Translate(p.x, p.y)
			op.GeoM.Concat(g)
			op.ColorScale.ScaleWithColor(p.c)
			screen.DrawImage(pixel(), op)
		}

		if w.Controller().IsSelected(it.ID) {
			b := village.ItemBounds(it)
			vector.StrokeRect(screen, float32(b.X-cam.X), float32(b.Y), float32(b.Width), float32(b.Height), 2, selectColor, false)
		}
		if txt := village.Caption(it); txt != "" {
			sx, sy := cam.WorldToScreen(it.X, it.Y)
			vector.DrawFilledRect(screen, float32(sx), float32(sy-18), float32(len(txt)*6+8), 16, captionColor, false)
			ebitenutil.DebugPrintAt(screen, txt, int(sx)+4, int(sy)-18)
		}
	}

	if w.Controller().SelectionMode() {
		ebitenutil.DebugPrintAt(screen, "SELECT MODE (S to finish)", 8, 8)
	}
}

// spriteParts returns the flat-shaded parts of an item sprite.
func spriteParts(it *village.Item) []part {
	d := it.Data
	switch {
	case it.Type == village.TypeDoll:
		doll := d.Doll
		if doll == nil {
			doll = &village.DollAttrs{}
		}
		skin := hexColor(doll.SkinColor, color.RGBA{0xf3, 0xd2, 0xc1, 0xff})
		return []part{
			{16, 80, 28, 30, shade(skin, 0.8)},
			{12, 24, 36, 56, hexColor(doll.OutfitColor, color.RGBA{0xff, 0x6b, 0x6b, 0xff})},
			{18, 0, 24, 24, skin},
			{16, 0, 28, 8, hexColor(doll.HairColor, color.RGBA{0x6d, 0x4c, 0x41, 0xff})},
		}
	case it.Type.IsHouse():
		h := d.House
		if h == nil {
			h = &village.HouseAttrs{}
		}
		return []part{
			{10, 60, 120, 80, hexColor(h.Color, color.RGBA{0xff, 0x9f, 0x43, 0xff})},
			{0, 20, 140, 40, hexColor(h.RoofColor, color.RGBA{0xe1, 0x5f, 0x41, 0xff})},
			{60, 100, 20, 40, color.RGBA{0x6d, 0x4c, 0x41, 0xff}},
		}
	case it.Type.IsTree():
		crown := map[village.ItemType]color.RGBA{
			village.TypeTreeOak:    {0x2e, 0xcc, 0x71, 0xff},
			village.TypeTreePine:   {0x1e, 0x84, 0x49, 0xff},
			village.TypeTreeSakura: {0xf8, 0xa5, 0xc2, 0xff},
		}[it.Type]
		return []part{
			{40, 90, 20, 60, color.RGBA{0x8d, 0x6e, 0x63, 0xff}},
			{0, 0, 100, 100, decorColor(d, crown)},
		}
	case it.Type.IsWater():
		return full(it, color.RGBA{0x74, 0xb9, 0xff, 0xff})
	case it.Type == village.TypeFish:
		c := color.RGBA{0xff, 0x9f, 0x43, 0xff}
		if d.Fish != nil {
			c = hexColor(d.Fish.Color, c)
		}
		return []part{{4, 2, 26, 14, c}, {0, 5, 6, 8, shade(c, 0.8)}}
	case it.Type == village.TypeGarden:
		return []part{
			{0, 20, 100, 80, color.RGBA{0xa0, 0x52, 0x2d, 0xff}},
			{10, 30, 80, 10, color.RGBA{0xff, 0x79, 0x79, 0xff}},
			{10, 60, 80, 10, color.RGBA{0xfd, 0xcb, 0x6e, 0xff}},
		}
	}

	base := map[village.ItemType]color.RGBA{
		village.TypeSun:             {0xfd, 0xcb, 0x6e, 0xff},
		village.TypeBush:            {0x2d, 0x8a, 0x4e, 0xff},
		village.TypeRock:            {0x95, 0xa5, 0xa6, 0xff},
		village.TypeGrass:           {0x27, 0xae, 0x60, 0xff},
		village.TypeGrassTwo:        {0x3b, 0xc4, 0x70, 0xff},
		village.TypeFlowerRose:      {0xe8, 0x43, 0x93, 0xff},
		village.TypeFlowerTulip:     {0xff, 0x76, 0x75, 0xff},
		village.TypeFlowerSunflower: {0xfd, 0xcb, 0x6e, 0xff},
		village.TypeFlowerDaisy:     {0xff, 0xff, 0xff, 0xff},
		village.TypeFlowerLavender:  {0xa2, 0x9b, 0xfe, 0xff},
	}[it.Type]
	if base.A == 0 {
		base = color.RGBA{0xb2, 0xbe, 0xc3, 0xff}
	}
	return full(it, decorColor(d, base))
}

func full(it *village.Item, c color.RGBA) []part {
	sz := it.Type.Size()
	return []part{{0, 0, sz.X, sz.Y, c}}
}

func decorColor(d village.Attributes, def color.RGBA) color.RGBA {
	if d.Decor != nil {
		return hexColor(d.Decor.Color, def)
	}
	return def
}

// hexColor parses "#rgb" or "#rrggbb", returning def for anything else.
func hexColor(s string, def color.RGBA) color.RGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return def
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return def
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}
}

func shade(c color.RGBA, f float64) color.RGBA {
	return color.RGBA{uint8(float64(c.R) * f), uint8(float64(c.G) * f), uint8(float64(c.B) * f), c.A}
}
