// Package village is the simulation and interaction core of a village
// decoration sandbox: users place houses, trees, dolls, ponds and rivers on a
// horizontally scrolling 2D canvas; dolls wander and chat, fish swim inside
// water, and the user selects and drags items around.
//
// # Quick start
//
// A [World] owns everything. Hosts feed it pointer events and call
// [World.Update] once per frame; the world runs fixed 50ms simulation steps
// from the elapsed time:
//
//	w := village.NewWorld(village.WorldConfig{Width: 1280, Height: 720})
//	w.Reset() // starter village
//	w.OnEdit(func(it village.Item) { openEditor(it) })
//
//	// every frame
//	w.Update(time.Now())
//
// The desktop host in village/stage does exactly this on Ebitengine. Hosts
// without a frame loop use [Loop], which ticks on its own goroutine and
// accepts work through [Loop.Do]; village/server serves a world over HTTP
// and WebSocket that way.
//
// # Items
//
// An [Item] is a value: id, [ItemType], top-left anchor, type-specific
// [Attributes] and optional simulation state ([NPCState] for dolls,
// [FishState] for fish). The [ItemStore] is replaced as a whole on every
// change; readers never see a partially updated slice.
//
// # Simulation
//
// [Simulation.Step] evaluates every item against the same pre-tick slice.
// Dolls follow the animation intent saved by their editor: walking dolls
// alternate idle pauses with random walk segments, idle and waving dolls
// stand still, and any doll left in the sky is walked down to the ground.
// Idle dolls near each other chat for a few seconds. Fish swim and bounce
// inside the pond or river they are in and mirror to face their heading.
// Items held by the pointer are skipped.
//
// # Interaction
//
// The [Controller] implements select, single drag, multi drag and background
// pan. A press that barely moves is a tap and asks the host for the item's
// editor; touch gets a larger tap distance than the mouse, and mouse events
// emulated from a touch are dropped.
//
// # Configuration and logging
//
// Every constant lives in [Tuning], loadable from YAML with [LoadTuning].
// The package logs through the logrus logger [Log]; [ConfigureLogging]
// applies LOG_LEVEL and LOG_FORMAT.
//
// Events ([EventSink]) can be bridged into a Donburi ECS with village/ecs.
package village
