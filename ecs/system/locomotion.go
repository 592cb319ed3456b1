package system

import (
	"github.com/milk9111/stfu/ecs"
	"github.com/milk9111/stfu/ecs/component"
	"github.com/milk9111/stfu/locomotion"
)

// LocomotionSystem runs the per-tick sense and resolve pass of every live
// player.
type LocomotionSystem struct{}

func NewLocomotionSystem() *LocomotionSystem {
	return &LocomotionSystem{}
}

func (s *LocomotionSystem) Update(w *ecs.World, dt float64) {
	ecs.ForEach(w, component.LocomotionComponent.Kind(), func(e ecs.Entity, loc *component.Locomotion) {
		if loc.Player == nil || !Controllable(w, e) {
			return
		}
		loc.Player.Update(dt)
	})
}

// EnemySystem advances every live enemy after its script has acted.
type EnemySystem struct{}

func NewEnemySystem() *EnemySystem {
	return &EnemySystem{}
}

func (s *EnemySystem) Update(w *ecs.World, dt float64) {
	ecs.ForEach(w, component.EnemyComponent.Kind(), func(e ecs.Entity, en *component.Enemy) {
		if en.Policy == nil || !Controllable(w, e) {
			return
		}
		en.Policy.Update(dt)
	})
}

// Observe forwards locomotion events for e into the world queue.
func Observe(w *ecs.World, e ecs.Entity) locomotion.Observer {
	return func(ev locomotion.Event) {
		ecs.Emit(w, e, eventType(ev.Kind), ev)
	}
}

func eventType(k locomotion.EventKind) ecs.EventType {
	switch k {
	case locomotion.EventJumped:
		return ecs.EventJumped
	case locomotion.EventWallJumped:
		return ecs.EventWallJumped
	case locomotion.EventLanded:
		return ecs.EventLanded
	case locomotion.EventDashed:
		return ecs.EventDashed
	case locomotion.EventDashEnded:
		return ecs.EventDashEnded
	case locomotion.EventTurnedAround:
		return ecs.EventTurnedAround
	default:
		return ecs.EventStateChanged
	}
}
