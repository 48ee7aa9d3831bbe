package village

import "testing"

func TestHighlightPhases(t *testing.T) {
	var h Highlight
	h.Start("a", 2)
	if h.ID() != "a" || h.Scale("a") != HighlightScale {
		t.Fatalf("after Start ID = %q scale = %v", h.ID(), h.Scale("a"))
	}
	if h.Scale("b") != 1 || h.Scale("") != 1 {
		t.Error("other ids should have scale 1")
	}

	h.Update(1)
	if h.ID() != "a" {
		t.Error("hold ended early")
	}

	h.Update(1)
	if h.ID() != "" {
		t.Errorf("ID = %q after the hold, want empty", h.ID())
	}
	if h.Scale("a") != HighlightScale {
		t.Errorf("scale = %v at settle start", h.Scale("a"))
	}

	h.Update(0.1)
	if s := h.Scale("a"); s >= HighlightScale || s <= 0.5 {
		t.Errorf("settling scale = %v", s)
	}

	h.Update(0.3)
	if h.Scale("a") != 1 {
		t.Errorf("scale = %v after settling, want 1", h.Scale("a"))
	}
}

func TestHighlightRestart(t *testing.T) {
	var h Highlight
	h.Start("a", 2)
	h.Start("b", 2)
	if h.ID() != "b" || h.Scale("a") != 1 {
		t.Errorf("restart kept the old highlight: %q", h.ID())
	}
	h.Clear()
	h.Update(1)
	if h.ID() != "" || h.Scale("b") != 1 {
		t.Error("Clear left a highlight behind")
	}
}
