package village

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
)

// scriptStep represents a single action in an interaction script.
type scriptStep struct {
	Action string   `json:"action"`
	Label  string   `json:"label,omitempty"`
	X      float64  `json:"x,omitempty"`
	Y      float64  `json:"y,omitempty"`
	FromX  float64  `json:"fromX,omitempty"`
	FromY  float64  `json:"fromY,omitempty"`
	ToX    float64  `json:"toX,omitempty"`
	ToY    float64  `json:"toY,omitempty"`
	Frames int      `json:"frames,omitempty"`
	Type   ItemType `json:"type,omitempty"`
	On     bool     `json:"on,omitempty"`
	Value  float64  `json:"value,omitempty"`
}

// script is the top-level JSON structure of an interaction script.
type script struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner sequences injected input, dock actions and screenshots across
// updates for automated testing. Attach to a World via SetScript.
//
// Supported actions: click, tap, drag, wait, add, select, horizon,
// screenshot.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a JSON interaction script.
func LoadScript(jsonData []byte) (*ScriptRunner, error) {
	var sc script
	if err := json.Unmarshal(jsonData, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range sc.Steps {
		switch st.Action {
		case "click", "tap", "drag", "wait", "select", "horizon", "screenshot":
		case "add":
			if !st.Type.Known() {
				return nil, fmt.Errorf("parse script: step %d: %w", i, ErrUnknownType)
			}
		default:
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &ScriptRunner{steps: sc.Steps}, nil
}

// SetScript attaches a runner. It is stepped from Update before injected
// input is processed.
func (w *World) SetScript(r *ScriptRunner) {
	w.script = r
}

// OnScreenshot sets the callback that "screenshot" steps invoke. Hosts that
// cannot capture frames leave it unset and the step is skipped.
func (w *World) OnScreenshot(fn func(label string)) {
	w.screenshot = fn
}

// Done reports whether all steps have been executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// step advances the runner by one update.
func (r *ScriptRunner) step(w *World) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(w.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		if w.screenshot != nil {
			w.screenshot(st.Label)
		}
	case "click":
		w.InjectClick(st.X, st.Y)
	case "tap":
		w.InjectTouch(st.X, st.Y)
	case "drag":
		w.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, max(st.Frames, 2))
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this update counts as one
		}
	case "add":
		if _, err := w.AddItem(st.Type); err != nil {
			Log.WithFields(logrus.Fields{"step": r.cursor - 1, "type": st.Type}).WithError(err).Warn("script add failed")
		}
	case "select":
		w.ctrl.SetSelectionMode(st.On)
	case "horizon":
		w.SetHorizon(st.Value)
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(w.injectQueue) == 0 {
		r.done = true
	}
}
