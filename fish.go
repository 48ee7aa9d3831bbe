package village

// stepFish swims a fish one tick inside whatever water it is in. A fish with
// no enclosing water stays put.
func (s *Simulation) stepFish(snapshot []Item, it *Item) (Item, bool) {
	t := &s.Tuning

	var st FishState
	if it.Fish != nil {
		st = *it.Fish
	} else {
		st = FishState{
			DX: (s.rng.Float64() - 0.5) * t.FishInitSpeed.X,
			DY: (s.rng.Float64() - 0.5) * t.FishInitSpeed.Y,
		}
	}

	bounds, ok := ContainingWater(snapshot, it.X, it.Y, t.FishMargin)
	if !ok {
		s.stats.beached++
		return *it, false
	}
	swim := bounds.Inset(t.FishPadding)

	x := it.X + st.DX
	y := it.Y + st.DY
	if x < swim.X || x > swim.MaxX() {
		st.DX = -st.DX
		x = clamp(x, swim.X, swim.MaxX())
	}
	if y < swim.Y || y > swim.MaxY() {
		st.DY = -st.DY
		y = clamp(y, swim.Y, swim.MaxY())
	}

	if s.rng.Float64() < t.FishWanderProb {
		st.DX += (s.rng.Float64() - 0.5) * t.FishWanderDelta
		st.DY += (s.rng.Float64() - 0.5) * t.FishWanderDelta
		st.DX = clamp(st.DX, -t.FishMaxSpeed.X, t.FishMaxSpeed.X)
		st.DY = clamp(st.DY, -t.FishMaxSpeed.Y, t.FishMaxSpeed.Y)
	}

	next := *it
	next.X, next.Y = x, y
	next.Fish = &st
	next.Data.Transform.ScaleX = FacingScale(it.Data.Transform.ScaleX, st.DX)
	s.stats.swims++
	return next, true
}

// FacingScale returns a horizontal scale with the magnitude of scaleX and the
// sign of the swimming direction. Fish sprites face left, so moving right
// mirrors them.
func FacingScale(scaleX, dx float64) float64 {
	mag := scaleMagnitude(scaleX)
	if dx > 0 {
		return -mag
	}
	return mag
}

// ContainingWater returns the bounds of the first water item in items whose
// bounds, grown by margin, contain (x, y).
func ContainingWater(items []Item, x, y, margin float64) (Rect, bool) {
	for i := range items {
		w := &items[i]
		if !w.Type.IsWater() {
			continue
		}
		b, _ := WaterBounds(w)
		if b.Inset(-margin).Contains(x, y) {
			return b, true
		}
	}
	return Rect{}, false
}
