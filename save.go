package village

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Default scene colors.
const (
	DefaultSkyColor    = "#81ecec"
	DefaultGroundColor = "#55efc4"
)

// SavePolicy selects whether transient simulation state is written.
type SavePolicy uint8

const (
	// SaveWithSimState writes NPC and fish state so a reload resumes
	// walks and chats where they were.
	SaveWithSimState SavePolicy = iota
	// SaveAuthoredOnly drops NPC and fish state; the simulation rebuilds it
	// lazily after loading.
	SaveAuthoredOnly
)

// Snapshot is everything a save file holds.
type Snapshot struct {
	Items       []Item  `json:"items"`
	SkyColor    string  `json:"skyColor,omitempty"`
	GroundColor string  `json:"groundColor,omitempty"`
	HorizonPos  Horizon `json:"horizonPos,omitempty"`
	// Timestamp is set on exports, in Unix milliseconds.
	Timestamp int64 `json:"timestamp,omitempty"`
}

// Horizon is a horizon percentage that also accepts the string form older
// saves wrote.
type Horizon float64

// UnmarshalJSON implements json.Unmarshaler.
func (h *Horizon) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		*h = Horizon(SanitizeHorizon(x))
	case string:
		*h = Horizon(ParseHorizon(x))
	default:
		*h = 0
	}
	return nil
}

// Value returns the horizon percentage, DefaultHorizon when unset.
func (h Horizon) Value() float64 {
	return SanitizeHorizon(float64(h))
}

// withDefaults fills unset colors and horizon.
func (s Snapshot) withDefaults() Snapshot {
	if s.SkyColor == "" {
		s.SkyColor = DefaultSkyColor
	}
	if s.GroundColor == "" {
		s.GroundColor = DefaultGroundColor
	}
	s.HorizonPos = Horizon(s.HorizonPos.Value())
	return s
}

// Encode writes snap as indented JSON.
func Encode(w io.Writer, snap Snapshot, policy SavePolicy) error {
	if policy == SaveAuthoredOnly {
		items := make([]Item, len(snap.Items))
		for i := range snap.Items {
			items[i] = snap.Items[i].WithoutSimState()
		}
		snap.Items = items
	}
	if snap.Items == nil {
		snap.Items = []Item{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode village: %w", err)
	}
	return nil
}

// Decode reads a save. Both the current object form and the legacy form, a
// bare JSON array of items, are accepted. Missing colors and horizon take
// their defaults.
func Decode(r io.Reader) (Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decode village: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	var snap Snapshot
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &snap.Items); err != nil {
			return Snapshot{}, fmt.Errorf("decode legacy village: %w", err)
		}
	} else if err := json.Unmarshal(trimmed, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode village: %w", err)
	}
	if err := checkItems(snap.Items); err != nil {
		return Snapshot{}, fmt.Errorf("decode village: %w", err)
	}
	return snap.withDefaults(), nil
}

// checkItems rejects saves with missing or duplicate ids.
func checkItems(items []Item) error {
	seen := make(map[string]struct{}, len(items))
	for i := range items {
		id := items[i].ID
		if id == "" {
			return fmt.Errorf("item %d has no id", i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate item id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// SaveFile writes snap to path, replacing any previous file atomically.
func SaveFile(path string, snap Snapshot, policy SavePolicy) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("save village: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, snap, policy); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save village: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save village: %w", err)
	}
	return nil
}

// LoadFile reads a save from path. A missing file yields an error matching
// os.ErrNotExist.
func LoadFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load village: %w", err)
	}
	defer f.Close()
	snap, err := Decode(f)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load village %s: %w", path, err)
	}
	return snap, nil
}

// RemoveSave deletes the save at path. A missing file is not an error.
func RemoveSave(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove village save: %w", err)
	}
	return nil
}

// ExportName returns the download name the browser host used for exports,
// for a date formatted as YYYY-MM-DD.
func ExportName(date string) string {
	return "village-save-" + strings.TrimSpace(date) + ".json"
}
