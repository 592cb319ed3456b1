// Package locomotion turns commands and sensed contact into actuation of a
// composite character body.
package locomotion

// State is the locomotion state of a controllable character.
type State int

const (
	StateNone State = iota
	StateIdle
	StateRunning
	StateJumping
	StateWallJumping
	StateFalling
	StateDashing
)

var stateNames = [...]string{
	StateNone:        "none",
	StateIdle:        "idle",
	StateRunning:     "running",
	StateJumping:     "jumping",
	StateWallJumping: "wall_jumping",
	StateFalling:     "falling",
	StateDashing:     "dashing",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// EventKind identifies a one-shot locomotion event.
type EventKind int

const (
	EventStateChanged EventKind = iota
	EventJumped
	EventWallJumped
	EventLanded
	EventDashed
	EventDashEnded
	EventTurnedAround
)

func (k EventKind) String() string {
	switch k {
	case EventStateChanged:
		return "state_changed"
	case EventJumped:
		return "jumped"
	case EventWallJumped:
		return "wall_jumped"
	case EventLanded:
		return "landed"
	case EventDashed:
		return "dashed"
	case EventDashEnded:
		return "dash_ended"
	case EventTurnedAround:
		return "turned_around"
	}
	return "unknown"
}

// Event is emitted once per occurrence. From and To are only meaningful for
// EventStateChanged.
type Event struct {
	Kind EventKind
	From State
	To   State
}

// Observer receives events as they happen. It must not call back into the
// emitting policy.
type Observer func(Event)
