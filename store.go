package village

// ItemStore is the host-owned collection of placed items. Readers get the
// current slice and must not modify it; writers install a whole replacement
// computed from the previous slice.
type ItemStore interface {
	Items() []Item
	Replace(fn func(prev []Item) []Item)
}

// MemStore is an in-memory ItemStore. Like the rest of the core it is meant
// to be used from a single goroutine.
type MemStore struct {
	items    []Item
	version  uint64
	onChange func([]Item)
}

// NewMemStore returns a store holding items.
func NewMemStore(items []Item) *MemStore {
	return &MemStore{items: items}
}

// Items returns the current slice.
func (m *MemStore) Items() []Item {
	return m.items
}

// Replace installs fn(prev). Returning prev itself (same length and backing
// array) is a no-op and does not bump the version.
func (m *MemStore) Replace(fn func(prev []Item) []Item) {
	next := fn(m.items)
	if sameSlice(next, m.items) {
		return
	}
	m.items = next
	m.version++
	if m.onChange != nil {
		m.onChange(next)
	}
}

// Version counts the replacements installed so far.
func (m *MemStore) Version() uint64 {
	return m.version
}

// OnChange registers fn to run after every effective replacement.
func (m *MemStore) OnChange(fn func([]Item)) {
	m.onChange = fn
}

// sameSlice reports whether a and b are the same slice header contents.
func sameSlice(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return (a == nil) == (b == nil)
	}
	return &a[0] == &b[0]
}

// Find returns the index of the item with id, or -1.
func Find(items []Item, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// mapItems returns a copy of items with fn applied to every item for which
// fn reports a change. When nothing changes items itself is returned.
func mapItems(items []Item, fn func(it Item) (Item, bool)) []Item {
	var out []Item
	for i := range items {
		next, ok := fn(items[i])
		if !ok {
			continue
		}
		if out == nil {
			out = make([]Item, len(items))
			copy(out, items)
		}
		out[i] = next
	}
	if out == nil {
		return items
	}
	return out
}
