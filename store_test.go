package village

import "testing"

func TestMemStoreReplace(t *testing.T) {
	s := NewMemStore([]Item{NewItem("a", TypeRock, 0, 0)})
	var calls int
	s.OnChange(func([]Item) { calls++ })

	s.Replace(func(prev []Item) []Item { return prev })
	if s.Version() != 0 || calls != 0 {
		t.Errorf("same-slice replace bumped version to %d (%d calls)", s.Version(), calls)
	}

	s.Replace(func(prev []Item) []Item {
		return append(prev[:len(prev):len(prev)], NewItem("b", TypeRock, 1, 1))
	})
	if s.Version() != 1 || calls != 1 || len(s.Items()) != 2 {
		t.Errorf("version=%d calls=%d len=%d", s.Version(), calls, len(s.Items()))
	}
}

func TestMemStoreEmpty(t *testing.T) {
	s := NewMemStore(nil)
	s.Replace(func(prev []Item) []Item { return prev })
	if s.Version() != 0 {
		t.Error("nil to nil should be a no-op")
	}
	s.Replace(func([]Item) []Item { return []Item{} })
	if s.Version() != 1 {
		t.Error("nil to empty is a change")
	}
}

func TestFind(t *testing.T) {
	items := []Item{NewItem("a", TypeRock, 0, 0), NewItem("b", TypeRock, 0, 0)}
	if Find(items, "b") != 1 || Find(items, "z") != -1 {
		t.Error("Find returned the wrong index")
	}
}

func TestMapItems(t *testing.T) {
	items := []Item{NewItem("a", TypeRock, 0, 0), NewItem("b", TypeRock, 0, 0)}
	same := mapItems(items, func(it Item) (Item, bool) { return it, false })
	if &same[0] != &items[0] {
		t.Error("unchanged map should return the input slice")
	}
	moved := mapItems(items, func(it Item) (Item, bool) {
		if it.ID != "b" {
			return it, false
		}
		it.X = 9
		return it, true
	})
	if &moved[0] == &items[0] {
		t.Error("changed map should copy")
	}
	if moved[1].X != 9 || items[1].X != 0 {
		t.Errorf("moved[1].X=%v items[1].X=%v", moved[1].X, items[1].X)
	}
}
