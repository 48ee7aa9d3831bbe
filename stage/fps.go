package stage

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// fpsCounter refreshes its FPS/TPS text every half second.
type fpsCounter struct {
	last time.Time
	text string
}

func (f *fpsCounter) update(now time.Time) {
	if now.Sub(f.last) < 500*time.Millisecond {
		return
	}
	f.last = now
	f.text = fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
}

func (f *fpsCounter) draw(screen *ebiten.Image) {
	if f.text == "" {
		return
	}
	x := float32(screen.Bounds().Dx() - 104)
	// Semi-transparent background for readability
	vector.DrawFilledRect(screen, x, 4, 100, 32, color.RGBA{0, 0, 0, 128}, false)
	ebitenutil.DebugPrintAt(screen, f.text, int(x)+2, 4)
}
