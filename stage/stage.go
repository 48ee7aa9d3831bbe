// Package stage runs a village on Ebitengine: window, mouse and touch input,
// drawing, the item dock, an FPS overlay and screenshots.
package stage

import (
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/village"
)

// RunConfig configures Run.
type RunConfig struct {
	Title         string
	Width, Height int
	ShowFPS       bool
	// ScreenshotDir receives PNGs from script "screenshot" steps and F12.
	// Defaults to "screenshots".
	ScreenshotDir string
	// OnEdit replaces the built-in quick editor.
	OnEdit village.EditFunc
	// OnUpdate runs after every world update.
	OnUpdate func(w *village.World, now time.Time)
}

// Stage is an ebiten.Game hosting one village.World.
type Stage struct {
	world *village.World
	cfg   RunConfig

	input inputState
	dock  dock
	fps   fpsCounter
	shots []string
	quit  bool
	clock func() time.Time
}

// errQuit ends the game loop cleanly.
var errQuit = errors.New("stage: quit")

// New creates a stage for w. The world is resized to the window on the
// first Layout call.
func New(w *village.World, cfg RunConfig) *Stage {
	if cfg.ScreenshotDir == "" {
		cfg.ScreenshotDir = "screenshots"
	}
	s := &Stage{world: w, cfg: cfg, clock: time.Now}
	s.dock = newDock(village.Catalog)
	if cfg.OnEdit != nil {
		w.OnEdit(cfg.OnEdit)
	} else {
		w.OnEdit(s.quickEdit)
	}
	w.OnScreenshot(func(label string) { s.Screenshot(label) })
	return s
}

// Run opens a window and runs w until the window is closed.
func Run(w *village.World, cfg RunConfig) error {
	if cfg.Width == 0 {
		cfg.Width = 1280
	}
	if cfg.Height == 0 {
		cfg.Height = 720
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	w.Resize(float64(cfg.Width), float64(cfg.Height))

	s := New(w, cfg)
	village.Log.WithFields(logrus.Fields{"width": cfg.Width, "height": cfg.Height}).Info("stage started")
	err := ebiten.RunGame(s)
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}

// Screenshot queues a labeled screenshot taken at the end of the next Draw.
func (s *Stage) Screenshot(label string) {
	s.shots = append(s.shots, label)
}

// Update implements ebiten.Game.
func (s *Stage) Update() error {
	if s.quit {
		return errQuit
	}
	now := s.clock()
	s.handleKeys()
	s.handlePointers(now)
	s.world.Update(now)
	if s.cfg.OnUpdate != nil {
		s.cfg.OnUpdate(s.world, now)
	}
	s.fps.update(now)
	return nil
}

// Draw implements ebiten.Game.
func (s *Stage) Draw(screen *ebiten.Image) {
	s.drawWorld(screen)
	s.dock.draw(screen, s.world)
	if s.cfg.ShowFPS {
		s.fps.draw(screen)
	}
	s.flushScreenshots(screen)
}

// Layout implements ebiten.Game. The village always fills the window.
func (s *Stage) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := s.world.Camera().Size()
	if float64(outsideWidth) != w || float64(outsideHeight) != h {
		s.world.Resize(float64(outsideWidth), float64(outsideHeight))
	}
	return outsideWidth, outsideHeight
}

// handleKeys maps the keyboard shortcuts.
//
//	S           toggle selection mode
//	Delete      delete the selected items
//	Left/Right  scroll one viewport width
//	R           reset to the starter village
//	F12         screenshot
//	Escape      quit
func (s *Stage) handleKeys() {
	w := s.world
	ctrl := w.Controller()
	switch {
	case keyJustPressed(ebiten.KeyS):
		ctrl.SetSelectionMode(!ctrl.SelectionMode())
	case keyJustPressed(ebiten.KeyDelete), keyJustPressed(ebiten.KeyBackspace):
		for _, id := range ctrl.Selection() {
			if err := w.DeleteItem(id); err != nil {
				village.Log.WithError(err).Warn("delete failed")
			}
		}
	case keyJustPressed(ebiten.KeyArrowLeft):
		cam := w.Camera()
		cam.ScrollTo(cam.X-cam.Width, 0.4, ease.OutQuad)
	case keyJustPressed(ebiten.KeyArrowRight):
		cam := w.Camera()
		cam.ScrollTo(cam.X+cam.Width, 0.4, ease.OutQuad)
	case keyJustPressed(ebiten.KeyR):
		w.Reset()
	case keyJustPressed(ebiten.KeyF12):
		s.Screenshot("manual")
	case keyJustPressed(ebiten.KeyEscape):
		s.quit = true
	}
}

// quickEdit stands in for the editor forms: a tap on a doll cycles its
// animation, a tap on water adds a fish, anything else is logged.
func (s *Stage) quickEdit(it village.Item) {
	w := s.world
	var err error
	switch {
	case it.Type == village.TypeDoll:
		next := nextAnimation(it.Data.Doll.Intent())
		err = w.ApplyEdit(it.ID, []byte(`{"animationType":"`+string(next)+`"}`))
	case it.Type.IsWater():
		_, err = w.SpawnFish(it.ID, village.FishAttrs{})
	default:
		village.Log.WithFields(logrus.Fields{"item": it.ID, "type": it.Type}).Info("edit requested")
	}
	if err != nil {
		village.Log.WithError(err).Warn("quick edit failed")
	}
}

func nextAnimation(a village.AnimationType) village.AnimationType {
	switch a {
	case village.AnimIdle:
		return village.AnimWalking
	case village.AnimWalking:
		return village.AnimWaving
	default:
		return village.AnimIdle
	}
}
