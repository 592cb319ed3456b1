package ecs

// EventType names a one-shot simulation event.
type EventType string

const (
	EventStateChanged EventType = "state_changed"
	EventJumped       EventType = "jumped"
	EventWallJumped   EventType = "wall_jumped"
	EventLanded       EventType = "landed"
	EventDashed       EventType = "dashed"
	EventDashEnded    EventType = "dash_ended"
	EventTurnedAround EventType = "turned_around"
	EventHit          EventType = "hit"
	EventDied         EventType = "died"
	EventRespawned    EventType = "respawned"
	EventShot         EventType = "shot"
	EventCheckpoint   EventType = "checkpoint"
)

// Event is a one-shot payload raised by a system for an entity.
type Event struct {
	Entity Entity
	Type   EventType
	Data   any
}

// EventQueue is a simple FIFO queue drained once per frame.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Len reports the number of queued events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Drain hands over the queued events in push order and leaves the queue
// empty. Events pushed while the caller handles the batch land in the next one.
func (q *EventQueue) Drain() (batch []Event) {
	if q != nil {
		batch, q.items = q.items, nil
	}
	return batch
}
