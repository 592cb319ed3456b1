package sim

import (
	"github.com/milk9111/stfu/ecs"
	"github.com/milk9111/stfu/ecs/component"
)

// CharacterState is a printable summary of one player at the current frame.
type CharacterState struct {
	Index int     `yaml:"index"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	VX    float64 `yaml:"vx"`
	VY    float64 `yaml:"vy"`
	State string  `yaml:"state"`
	HP    int     `yaml:"hp"`
	Dead  bool    `yaml:"dead"`
}

// Snapshot reports every spawned player in index order.
func (s *Simulation) Snapshot() []CharacterState {
	var out []CharacterState
	for i, e := range s.players {
		if !ecs.IsAlive(s.world, e) {
			continue
		}
		st := CharacterState{Index: i + 1}
		if c, ok := ecs.Get(s.world, e, component.CharacterComponent.Kind()); ok {
			p, v := c.Body.Position(), c.Body.Velocity()
			st.X, st.Y, st.VX, st.VY = p.X, p.Y, v.X, v.Y
		}
		if loc, ok := ecs.Get(s.world, e, component.LocomotionComponent.Kind()); ok {
			st.State = loc.Player.State().String()
		}
		if h, ok := ecs.Get(s.world, e, component.HealthComponent.Kind()); ok {
			st.HP, st.Dead = h.HP, h.Dead
		}
		out = append(out, st)
	}
	return out
}
