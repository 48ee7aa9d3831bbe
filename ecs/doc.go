// Package ecs provides ECS adapters for village.
//
// [NewDonburiStore] bridges village events (edit requests, placements,
// removals, chats, walks, selection changes) into a [Donburi] world as typed
// events. Subscribe to [VillageEventType] in your ECS systems to receive
// them. [Mirror] keeps one entity per item so systems can query the village
// like any other ECS data.
//
// Usage:
//
//	world := donburi.NewWorld()
//	v.SetEventSink(ecs.NewDonburiStore(world))
//	mirror := ecs.NewMirror(world)
//	// each frame
//	mirror.Sync(v.Items())
//	events.ProcessAllEvents(world)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
