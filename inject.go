package village

import "time"

// syntheticPointerEvent represents a single injected pointer event in
// viewport coordinates. Injected events go through the same hit test and
// controller path as real input.
type syntheticPointerEvent struct {
	screenX, screenY float64
	pressed          bool
	source           InputSource
}

// InjectPress queues a mouse press at the given viewport coordinates. The
// event is consumed on the next Update.
func (w *World) InjectPress(x, y float64) {
	w.inject(x, y, true, SourceMouse)
}

// InjectMove queues a pointer move with the button held down. Use this
// between InjectPress and InjectRelease to simulate a drag.
func (w *World) InjectMove(x, y float64) {
	w.inject(x, y, true, SourceMouse)
}

// InjectRelease queues a pointer release at the given viewport coordinates.
func (w *World) InjectRelease(x, y float64) {
	w.inject(x, y, false, SourceMouse)
}

// InjectTouch queues a one-finger tap at (x, y): a touch press followed by
// a touch release. Consumes two updates.
func (w *World) InjectTouch(x, y float64) {
	w.inject(x, y, true, SourceTouch)
	w.inject(x, y, false, SourceTouch)
}

// InjectClick is a convenience that queues a press followed by a release
// at the same coordinates. Consumes two updates.
func (w *World) InjectClick(x, y float64) {
	w.InjectPress(x, y)
	w.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// frames-2 linearly interpolated moves ending at (toX, toY), and a release
// there. Minimum frames is 2 (press + release), which moves nothing.
func (w *World) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	w.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		w.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	w.InjectRelease(toX, toY)
}

// Pending returns the number of queued injected events.
func (w *World) Pending() int { return len(w.injectQueue) }

func (w *World) inject(x, y float64, pressed bool, src InputSource) {
	w.injectQueue = append(w.injectQueue, syntheticPointerEvent{
		screenX: x, screenY: y, pressed: pressed, source: src,
	})
}

// processInjectedInput pops one event from the queue and runs it as a
// press, move or release depending on the injected button state.
func (w *World) processInjectedInput(now time.Time) bool {
	if len(w.injectQueue) == 0 {
		return false
	}
	evt := w.injectQueue[0]
	copy(w.injectQueue, w.injectQueue[1:])
	w.injectQueue = w.injectQueue[:len(w.injectQueue)-1]

	ev := PointerEvent{Source: evt.source, X: evt.screenX, Y: evt.screenY, Time: now}
	if evt.source == SourceTouch {
		ev.Pointer = 1
	}
	switch {
	case evt.pressed && !w.injectDown:
		w.injectDown = true
		w.Press(ev)
	case evt.pressed:
		w.Drag(ev)
	case w.injectDown:
		w.injectDown = false
		w.Release(ev)
	}
	return true
}
