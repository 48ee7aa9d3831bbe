package village

// EventSink is the interface for optional event consumers such as the ECS
// bridge in village/ecs or the network host. Events are delivered
// synchronously on the loop that produced them.
type EventSink interface {
	EmitEvent(event Event)
}

// Event carries one village event.
type Event struct {
	Type   EventType
	ItemID string
	// Item is a copy of the item record when the event concerns one item.
	Item Item
	X, Y float64
	// Time is the Unix millisecond timestamp of the tick or pointer event.
	Time int64
	// Selection is set for EventSelectionChanged.
	Selection []string
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(Event)

// EmitEvent implements EventSink.
func (f EventSinkFunc) EmitEvent(e Event) { f(e) }

// multiSink fans one event out to several sinks in order.
type multiSink []EventSink

func (m multiSink) EmitEvent(e Event) {
	for _, s := range m {
		s.EmitEvent(e)
	}
}

// JoinSinks returns a sink that forwards to every non-nil sink.
func JoinSinks(sinks ...EventSink) EventSink {
	var m multiSink
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	switch len(m) {
	case 0:
		return nil
	case 1:
		return m[0]
	}
	return m
}

func emit(sink EventSink, e Event) {
	if sink != nil {
		sink.EmitEvent(e)
	}
}
