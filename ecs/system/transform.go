package system

import (
	"github.com/milk9111/stfu/ecs"
	"github.com/milk9111/stfu/ecs/component"
	"github.com/milk9111/stfu/physics"
)

// TransformSystem copies smoothed body poses into Transform so readers
// never touch the physics bodies.
type TransformSystem struct {
	world *physics.World
}

func NewTransformSystem(world *physics.World) *TransformSystem {
	return &TransformSystem{world: world}
}

func (s *TransformSystem) Update(w *ecs.World, _ float64) {
	ecs.ForEach2(w, component.CharacterComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, ch *component.Character, t *component.Transform) {
		if ch.Body == nil || ch.Body.Disabled() || ch.Body.Disposed() {
			return
		}
		p := ch.Body.SmoothedPosition()
		t.X, t.Y = p.X, p.Y
		t.Angle = ch.Body.WheelAngle()
	})

	if s.world == nil {
		return
	}
	ecs.ForEach2(w, component.PlatformComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, p *component.Platform, t *component.Transform) {
		if p.Body == nil {
			return
		}
		if tr, ok := s.world.SmoothedTransform(p.Body.Body()); ok {
			t.X, t.Y, t.Angle = tr.Position.X, tr.Position.Y, tr.Angle
		}
	})
}
