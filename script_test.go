package village

import (
	"errors"
	"testing"
	"time"
)

func TestLoadScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"invalid json", `{`},
		{"no steps", `{"steps":[]}`},
		{"unknown action", `{"steps":[{"action":"fly"}]}`},
		{"unknown type", `{"steps":[{"action":"add","type":"castle"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadScript([]byte(tt.json)); err == nil {
				t.Error("expected an error")
			}
		})
	}
	if _, err := LoadScript([]byte(`{"steps":[{"action":"add","type":"castle"}]}`)); !errors.Is(err, ErrUnknownType) {
		t.Errorf("err = %v, want ErrUnknownType", err)
	}
}

func runScript(t *testing.T, w *World, r *ScriptRunner) {
	t.Helper()
	w.SetScript(r)
	now := t0
	for i := 0; i < 50 && !r.Done(); i++ {
		now = now.Add(16 * time.Millisecond)
		w.Update(now)
	}
	if !r.Done() {
		t.Fatal("script did not finish")
	}
}

func TestScriptRunsSteps(t *testing.T) {
	r, err := LoadScript([]byte(`{"steps":[
		{"action":"add","type":"rock"},
		{"action":"horizon","value":70},
		{"action":"select","on":true},
		{"action":"screenshot","label":"after-add"},
		{"action":"wait","frames":2}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	w := newTestWorld()
	var shots []string
	w.OnScreenshot(func(label string) { shots = append(shots, label) })
	runScript(t, w, r)

	if len(w.Items()) != 1 || w.Items()[0].Type != TypeRock {
		t.Errorf("items = %+v", w.Items())
	}
	if w.Horizon() != 70 || !w.Controller().SelectionMode() {
		t.Errorf("horizon = %v selection mode = %v", w.Horizon(), w.Controller().SelectionMode())
	}
	if len(shots) != 1 || shots[0] != "after-add" {
		t.Errorf("shots = %v", shots)
	}
}

func TestScriptClickAndDrag(t *testing.T) {
	r, err := LoadScript([]byte(`{"steps":[
		{"action":"click","x":120,"y":420},
		{"action":"drag","fromX":120,"fromY":420,"toX":170,"toY":440,"frames":3}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	w, edits := injectWorld(t)
	runScript(t, w, r)

	if len(*edits) != 1 {
		t.Errorf("edits = %d, want 1 from the click", len(*edits))
	}
	if it, _ := w.Item("r"); it.X != 150 || it.Y != 420 {
		t.Errorf("rock at (%v, %v), want (150, 420)", it.X, it.Y)
	}
}

func TestScriptFailedAddContinues(t *testing.T) {
	r, err := LoadScript([]byte(`{"steps":[{"action":"add","type":"fish"},{"action":"add","type":"pond"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	w := newTestWorld()
	runScript(t, w, r)
	if len(w.Items()) != 1 || w.Items()[0].Type != TypePond {
		t.Errorf("items = %+v", w.Items())
	}
}
