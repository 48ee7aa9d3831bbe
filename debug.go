package village

import (
	"time"

	"github.com/sirupsen/logrus"
)

// tickStats holds per-tick simulation metrics.
// Only populated when the simulation's debug mode is on.
type tickStats struct {
	elapsed time.Duration
	items   int
	swims   int
	beached int
	walks   int
	chats   int
}

// debugLog writes the stats of the last tick at trace level.
func (s *Simulation) debugLog(out []Item) {
	if !s.debug {
		return
	}
	Log.WithFields(logrus.Fields{
		"elapsed":   s.stats.elapsed,
		"items":     s.stats.items,
		"published": out != nil,
		"swims":     s.stats.swims,
		"beached":   s.stats.beached,
		"walks":     s.stats.walks,
		"chats":     s.stats.chats,
	}).Trace("tick")
}

// debugCheckUniqueIDs warns when the store holds duplicate ids. Called by the
// world after every structural change in debug mode.
func debugCheckUniqueIDs(items []Item) {
	seen := make(map[string]struct{}, len(items))
	for i := range items {
		if _, dup := seen[items[i].ID]; dup {
			Log.WithField("item", items[i].ID).Warn("duplicate item id in store")
		}
		seen[items[i].ID] = struct{}{}
	}
}
