package system

import (
	"github.com/milk9111/stfu/ecs"
	"github.com/milk9111/stfu/ecs/component"
	"github.com/milk9111/stfu/physics"
)

// CheckpointContacts is added to a player's contact filter. Touching a
// checkpoint sensor stages it for the checkpoint system.
func CheckpointContacts(w *ecs.World) physics.ContactListener {
	return physics.ContactFuncs{
		Begin: func(c physics.Contact) bool {
			if !c.OtherSensor {
				return true
			}
			e, ok := c.OtherOwner.(ecs.Entity)
			if !ok {
				return true
			}
			if cp, ok := ecs.Get(w, e, component.CheckpointComponent.Kind()); ok && !cp.Activated {
				cp.Reached = true
			}
			return true
		},
	}
}

// CheckpointSystem activates reached checkpoints. Activation is one-shot
// and moves the spawn point of every player.
type CheckpointSystem struct{}

func NewCheckpointSystem() *CheckpointSystem {
	return &CheckpointSystem{}
}

func (s *CheckpointSystem) Update(w *ecs.World, dt float64) {
	ecs.ForEach(w, component.CheckpointComponent.Kind(), func(e ecs.Entity, cp *component.Checkpoint) {
		if !cp.Reached || cp.Activated {
			return
		}
		cp.Activated = true
		cp.Reached = false
		ecs.ForEach2(w, component.PlayerTagComponent.Kind(), component.CharacterComponent.Kind(), func(_ ecs.Entity, _ *component.PlayerTag, ch *component.Character) {
			ch.Spawn = cp.Spawn
		})
		ecs.Emit(w, e, ecs.EventCheckpoint, cp.Spawn)
	})
}
