package system

import (
	"github.com/milk9111/stfu/ecs"
	"github.com/milk9111/stfu/ecs/component"
)

type PlatformSystem struct{}

func NewPlatformSystem() *PlatformSystem {
	return &PlatformSystem{}
}

func (s *PlatformSystem) Update(w *ecs.World, dt float64) {
	ecs.ForEach(w, component.PlatformComponent.Kind(), func(_ ecs.Entity, p *component.Platform) {
		if p.Body != nil {
			p.Body.Update(dt)
		}
	})
}
