package village

import (
	"math"

	"github.com/sirupsen/logrus"
)

// stepDoll runs one tick of a doll's state machine. snapshot is the pre-tick
// store; every read of other dolls goes through it.
//
// The saved animation intent decides what the doll may do:
//
//	idle, waving  stand still; chat when a neighbour is close; walk only to
//	              get down from the sky
//	walking       alternate idle pauses with random walk segments; chat
//	              during pauses
func (s *Simulation) stepDoll(snapshot []Item, it *Item, geo Geometry, now int64) (Item, bool) {
	t := &s.Tuning
	intent := it.Data.Doll.Intent()

	fresh := it.NPC == nil || !it.NPC.Action.Valid()
	var npc NPCState
	if fresh {
		npc = NPCState{
			Action:     ActionIdle,
			TargetX:    it.X,
			TargetY:    it.Y,
			LastUpdate: now - int64(millis(t.InitialIdleAge)),
		}
	} else {
		npc = *it.NPC
	}

	if intent != AnimWalking {
		if npc.Action == ActionWalking && !npc.Rescue {
			// The editor took the doll out of walking mode mid-walk.
			npc.Action = ActionIdle
			npc.LastUpdate = now
			return withNPC(*it, npc), true
		}
		if npc.Action == ActionWalking {
			return s.advanceWalk(*it, npc, now), true
		}
		if geo.InSky(it.Y, t) {
			return s.startRescue(*it, npc, geo, now), true
		}
		return s.socialize(snapshot, it, npc, fresh, now)
	}

	if npc.Action == ActionIdle && float64(now-npc.LastUpdate) > millis(t.IdleThreshold) {
		return s.startWalk(*it, npc, geo, now), true
	}
	if npc.Action == ActionWalking {
		return s.advanceWalk(*it, npc, now), true
	}
	return s.socialize(snapshot, it, npc, fresh, now)
}

// socialize handles chat start and end for an idle or talking doll.
func (s *Simulation) socialize(snapshot []Item, it *Item, npc NPCState, fresh bool, now int64) (Item, bool) {
	t := &s.Tuning
	if npc.Action == ActionIdle {
		if partner := findChatPartner(snapshot, it, t.ChatRadius); partner != nil {
			npc.Action = ActionTalking
			npc.LastUpdate = now
			npc.Duration = millis(t.TalkDuration)
			s.stats.chats++
			Log.WithFields(logrus.Fields{"item": it.ID, "partner": partner.ID}).Debug("doll started chatting")
			emit(s.sink, Event{Type: EventChatStarted, ItemID: it.ID, Item: *it, X: it.X, Y: it.Y, Time: now})
			return withNPC(*it, npc), true
		}
	}
	if npc.Action == ActionTalking && float64(now-npc.LastUpdate) > npc.Duration {
		npc.Action = ActionIdle
		npc.LastUpdate = now
		return withNPC(*it, npc), true
	}
	if fresh {
		return withNPC(*it, npc), true
	}
	return *it, false
}

// findChatPartner returns the first other doll in snapshot order that is not
// talking and stands closer than radius.
func findChatPartner(snapshot []Item, it *Item, radius float64) *Item {
	for i := range snapshot {
		other := &snapshot[i]
		if other.ID == it.ID || other.Type != TypeDoll {
			continue
		}
		if other.Action() == ActionTalking {
			continue
		}
		if it.Pos().Dist(other.Pos()) < radius {
			return other
		}
	}
	return nil
}

// startWalk picks a random heading and distance and begins a walk segment.
func (s *Simulation) startWalk(it Item, npc NPCState, geo Geometry, now int64) Item {
	t := &s.Tuning
	angle := s.rng.Float64() * 2 * math.Pi
	dist := t.WalkDistance.Lerp(s.rng.Float64())
	groundY := geo.GroundY(t)

	targetX := clamp(it.X+math.Cos(angle)*dist, 0, geo.WorldWidth(t)-t.WorldEdgeMargin)
	potentialY := it.Y + math.Sin(angle)*dist
	if geo.InSky(it.Y, t) {
		potentialY = groundY + s.rng.Float64()*t.GroundBand
	}
	targetY := clamp(potentialY, groundY, geo.WalkFloor(t))

	npc = NPCState{
		Action:     ActionWalking,
		TargetX:    targetX,
		TargetY:    targetY,
		StartX:     it.X,
		StartY:     it.Y,
		StartTime:  now,
		Duration:   dist * t.WalkMsPerPixel,
		LastUpdate: now,
	}
	s.stats.walks++
	emit(s.sink, Event{Type: EventWalkStarted, ItemID: it.ID, Item: it, X: targetX, Y: targetY, Time: now})
	return withNPC(it, npc)
}

// startRescue sends a non-walking doll straight down from the sky to a random
// point in the ground band.
func (s *Simulation) startRescue(it Item, npc NPCState, geo Geometry, now int64) Item {
	t := &s.Tuning
	targetY := math.Min(geo.GroundY(t)+s.rng.Float64()*t.GroundBand, geo.WalkFloor(t))
	npc = NPCState{
		Action:     ActionWalking,
		TargetX:    it.X,
		TargetY:    targetY,
		StartX:     it.X,
		StartY:     it.Y,
		StartTime:  now,
		Duration:   math.Abs(it.Y-targetY) * t.WalkMsPerPixel,
		LastUpdate: now,
		Rescue:     true,
	}
	Log.WithFields(logrus.Fields{"item": it.ID, "y": it.Y, "targetY": targetY}).Debug("doll stuck in sky, walking down")
	return withNPC(it, npc)
}

// advanceWalk moves a walking doll along its segment and returns it to idle
// once the segment is complete.
func (s *Simulation) advanceWalk(it Item, npc NPCState, now int64) Item {
	progress := 1.0
	if npc.Duration > 0 {
		progress = math.Min(1, float64(now-npc.StartTime)/npc.Duration)
	}
	if progress < 0 {
		progress = 0
	}
	if progress >= 1 {
		it.X, it.Y = npc.TargetX, npc.TargetY
		npc.Action = ActionIdle
		npc.LastUpdate = now
		npc.Rescue = false
	} else {
		it.X = npc.StartX + (npc.TargetX-npc.StartX)*progress
		it.Y = npc.StartY + (npc.TargetY-npc.StartY)*progress
	}
	return withNPC(it, npc)
}

// withNPC returns it carrying a fresh copy of npc.
func withNPC(it Item, npc NPCState) Item {
	it.NPC = &npc
	return it
}

// StopWalking returns it with a walking NPC forced to idle and its idle timer
// restarted at now. Other items are returned unchanged with ok=false.
func StopWalking(it Item, now int64) (Item, bool) {
	if it.NPC == nil || it.NPC.Action != ActionWalking {
		return it, false
	}
	npc := *it.NPC
	npc.Action = ActionIdle
	npc.LastUpdate = now
	npc.Rescue = false
	return withNPC(it, npc), true
}

// Caption returns the speech bubble text of a talking doll: the first 40
// characters of its story, or a greeting when it has none. Other items have
// no caption.
func Caption(it *Item) string {
	if it.Type != TypeDoll || it.Action() != ActionTalking {
		return ""
	}
	if it.Data.Doll == nil || it.Data.Doll.Story == "" {
		return "Hello!"
	}
	r := []rune(it.Data.Doll.Story)
	if len(r) > 40 {
		r = r[:40]
	}
	return string(r)
}
