package stage

import (
	"errors"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sirupsen/logrus"

	"github.com/phanxgames/village"
)

const (
	dockHeight = 120.0
	dockRows   = 2
	dockCell   = 56.0
	dockPad    = 4.0
)

var (
	dockBG   = color.RGBA{0x2d, 0x34, 0x36, 0xd0}
	dockCard = color.RGBA{0xdf, 0xe6, 0xe9, 0xff}
)

// dock is the strip of item buttons along the bottom of the window.
type dock struct {
	types []village.ItemType
	// notice is shown over the dock after a failed placement.
	notice string
	ttl    int
}

func newDock(types []village.ItemType) dock {
	return dock{types: types}
}

// contains reports whether a pointer at y is over the dock in a window h
// pixels tall.
func (d *dock) contains(y, h float64) bool {
	return y >= h-dockHeight
}

// cell returns the index of the button at (x, y), or -1.
func (d *dock) cell(x, y, h float64) int {
	top := h - dockHeight + dockPad
	if x < dockPad || y < top {
		return -1
	}
	col := int((x - dockPad) / dockCell)
	row := int((y - top) / dockCell)
	if row >= dockRows {
		return -1
	}
	cols := (len(d.types) + dockRows - 1) / dockRows
	if col >= cols {
		return -1
	}
	i := row*cols + col
	if i >= len(d.types) {
		return -1
	}
	return i
}

// press adds the item under (x, y) to the world.
func (d *dock) press(w *village.World, x, y float64) {
	_, h := w.Camera().Size()
	i := d.cell(x, y, h)
	if i < 0 {
		return
	}
	typ := d.types[i]
	if _, err := w.AddItem(typ); err != nil {
		if errors.Is(err, village.ErrNoWater) {
			d.show("Add a pond or river first!")
		}
		village.Log.WithFields(logrus.Fields{"type": typ}).WithError(err).Warn("dock add failed")
	}
}

func (d *dock) show(msg string) {
	d.notice = msg
	d.ttl = 180
}

func (d *dock) draw(screen *ebiten.Image, w *village.World) {
	vw, vh := w.Camera().Size()
	top := vh - dockHeight
	vector.DrawFilledRect(screen, 0, float32(top), float32(vw), dockHeight, dockBG, false)

	cols := (len(d.types) + dockRows - 1) / dockRows
	for i, typ := range d.types {
		col, row := i%cols, i/cols
		x := dockPad + float64(col)*dockCell
		y := top + dockPad + float64(row)*dockCell
		vector.DrawFilledRect(screen, float32(x), float32(y), dockCell-dockPad, dockCell-dockPad, dockCard, false)
		ebitenutil.DebugPrintAt(screen, dockLabel(typ), int(x)+2, int(y)+18)
	}

	if d.ttl > 0 {
		d.ttl--
		ebitenutil.DebugPrintAt(screen, d.notice, 8, int(top)-20)
	}
}

// dockLabel shortens a type name to fit a button.
func dockLabel(t village.ItemType) string {
	s := string(t)
	if i := strings.IndexByte(s, '_'); i >= 0 {
		s = s[i+1:]
	}
	if len(s) > 8 {
		s = s[:8]
	}
	return s
}
