package village

import "testing"

func TestGeometryLines(t *testing.T) {
	tu := DefaultTuning()
	g := testGeo()
	assertNear(t, "HorizonY", g.HorizonY(), 360)
	assertNear(t, "GroundY", g.GroundY(&tu), 340)
	assertNear(t, "WalkFloor", g.WalkFloor(&tu), 620)
	assertNear(t, "DragFloor", g.DragFloor(&tu), 540)
	assertNear(t, "WorldWidth", g.WorldWidth(&tu), 3840)

	if !g.InSky(289, &tu) {
		t.Error("y=289 should be in the sky")
	}
	if g.InSky(290, &tu) {
		t.Error("y=290 is within the tolerance")
	}
}

func TestMeasureGeometry(t *testing.T) {
	cam := NewCamera(800, 600, 3)
	cam.SetScrollX(120)
	g := MeasureGeometry(cam, -5)
	if g.ViewW != 800 || g.ViewH != 600 || g.ScrollX != 120 {
		t.Errorf("geometry = %+v", g)
	}
	if g.Horizon != DefaultHorizon {
		t.Errorf("Horizon = %v, want default", g.Horizon)
	}
}

func TestParseHorizon(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"50", 50},
		{"65%", 65},
		{" 30 ", 30},
		{"72.9", 72},
		{"150", 100},
		{"0", DefaultHorizon},
		{"-20", DefaultHorizon},
		{"abc", DefaultHorizon},
		{"", DefaultHorizon},
	}
	for _, tt := range tests {
		if got := ParseHorizon(tt.in); got != tt.want {
			t.Errorf("ParseHorizon(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWaterBounds(t *testing.T) {
	tests := []struct {
		name   string
		typ    ItemType
		sx, sy float64
		want   Rect
	}{
		{"pond unscaled", TypePond, 0, 0, Rect{200, 450, 120, 100}},
		{"pond half", TypePond, 0.5, 0.5, Rect{230, 475, 60, 50}},
		{"mirrored river", TypeRiverH, -2, 1, Rect{150, 450, 200, 60}},
		{"vertical river", TypeRiverV, 1, 1, Rect{200, 450, 60, 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewItem("w", tt.typ, 200, 450)
			w.Data.Transform = Transform{ScaleX: tt.sx, ScaleY: tt.sy}
			got, ok := WaterBounds(&w)
			if !ok {
				t.Fatal("not water")
			}
			if got != tt.want {
				t.Errorf("WaterBounds = %v, want %v", got, tt.want)
			}
		})
	}

	rock := NewItem("r", TypeRock, 0, 0)
	if _, ok := WaterBounds(&rock); ok {
		t.Error("rock has no water bounds")
	}
}
