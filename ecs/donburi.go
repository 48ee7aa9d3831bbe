package ecs

import (
	"github.com/phanxgames/village"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// VillageEventType is the Donburi event type for village events.
var VillageEventType = events.NewEventType[village.Event]()

// ItemComponent holds a copy of one village item.
var ItemComponent = donburi.NewComponentType[village.Item]()

// Items matches every mirrored item entity.
var Items = donburi.NewQuery(filter.Contains(ItemComponent))

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EventSink backed by a Donburi world. Events
// are queued on VillageEventType and delivered by ProcessEvents.
func NewDonburiStore(world donburi.World) village.EventSink {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event village.Event) {
	VillageEventType.Publish(s.world, event)
}

// Mirror keeps one Donburi entity per item id in sync with a village store.
type Mirror struct {
	world    donburi.World
	entities map[string]donburi.Entity
}

// NewMirror creates an empty mirror over world.
func NewMirror(world donburi.World) *Mirror {
	return &Mirror{world: world, entities: make(map[string]donburi.Entity)}
}

// Sync creates, updates and removes entities so that they match items.
func (m *Mirror) Sync(items []village.Item) {
	live := make(map[string]struct{}, len(items))
	for i := range items {
		it := items[i]
		live[it.ID] = struct{}{}
		e, ok := m.entities[it.ID]
		if !ok || !m.world.Valid(e) {
			e = m.world.Create(ItemComponent)
			m.entities[it.ID] = e
		}
		ItemComponent.SetValue(m.world.Entry(e), it)
	}
	for id, e := range m.entities {
		if _, ok := live[id]; ok {
			continue
		}
		if m.world.Valid(e) {
			m.world.Remove(e)
		}
		delete(m.entities, id)
	}
}

// Entity returns the entity mirroring id.
func (m *Mirror) Entity(id string) (donburi.Entity, bool) {
	e, ok := m.entities[id]
	return e, ok
}

// Len returns the number of mirrored items.
func (m *Mirror) Len() int { return len(m.entities) }
