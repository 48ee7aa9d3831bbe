package stage

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/village"
)

const maxPointers = 10 // pointer 0 = mouse, 1-9 = touch

// inputState tracks which pointers are down and where they were last seen.
type inputState struct {
	down      [maxPointers]bool
	onDock    [maxPointers]bool
	lastX     [maxPointers]float64
	lastY     [maxPointers]float64
	touchMap  [maxPointers]ebiten.TouchID
	touchUsed [maxPointers]bool
	touchIDs  []ebiten.TouchID
}

func keyJustPressed(k ebiten.Key) bool {
	return inpututil.IsKeyJustPressed(k)
}

// handlePointers reads the mouse and every touch and feeds them to the world.
func (s *Stage) handlePointers(now time.Time) {
	s.handleMouse(now)
	s.handleTouches(now)
	s.handleWheel()
}

// handleMouse handles pointer 0. Leaving the window while pressed counts as
// a release.
func (s *Stage) handleMouse(now time.Time) {
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)

	w, h := s.world.Camera().Size()
	if s.input.down[0] && (x < 0 || y < 0 || x >= w || y >= h) {
		pressed = false
	}
	s.processPointer(0, village.SourceMouse, x, y, pressed, now)
}

// handleTouches handles pointers 1-9.
func (s *Stage) handleTouches(now time.Time) {
	in := &s.input
	in.touchIDs = ebiten.AppendTouchIDs(in.touchIDs[:0])

	var active [maxPointers]bool
	for _, tid := range in.touchIDs {
		slot := in.touchSlot(tid)
		if slot < 0 {
			continue
		}
		active[slot] = true
		tx, ty := ebiten.TouchPosition(tid)
		s.processPointer(slot, village.SourceTouch, float64(tx), float64(ty), true, now)
	}

	for i := 1; i < maxPointers; i++ {
		if in.touchUsed[i] && !active[i] {
			if in.down[i] {
				s.processPointer(i, village.SourceTouch, in.lastX[i], in.lastY[i], false, now)
			}
			in.touchUsed[i] = false
			in.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9).
// Returns the existing slot or allocates a new one. Returns -1 if full.
func (in *inputState) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if in.touchUsed[i] && in.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !in.touchUsed[i] {
			in.touchUsed[i] = true
			in.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// processPointer runs the press/move/release edge detection for one pointer.
// Presses inside the dock go to the dock and never reach the world.
func (s *Stage) processPointer(id int, src village.InputSource, x, y float64, pressed bool, now time.Time) {
	in := &s.input
	ev := village.PointerEvent{Pointer: id, Source: src, X: x, Y: y, Time: now}
	switch {
	case pressed && !in.down[id]:
		in.down[id] = true
		_, h := s.world.Camera().Size()
		if s.dock.contains(y, h) {
			in.onDock[id] = true
			s.dock.press(s.world, x, y)
		} else {
			s.world.Press(ev)
		}
	case pressed && in.down[id]:
		if (x != in.lastX[id] || y != in.lastY[id]) && !in.onDock[id] {
			s.world.Drag(ev)
		}
	case !pressed && in.down[id]:
		in.down[id] = false
		if in.onDock[id] {
			in.onDock[id] = false
		} else {
			s.world.Release(ev)
		}
	}
	in.lastX[id], in.lastY[id] = x, y
}

// handleWheel scrolls the world horizontally with either wheel axis.
func (s *Stage) handleWheel() {
	dx, dy := ebiten.Wheel()
	if dx == 0 && dy == 0 {
		return
	}
	cam := s.world.Camera()
	cam.SetScrollX(cam.ScrollX() - (dx+dy)*40)
}
