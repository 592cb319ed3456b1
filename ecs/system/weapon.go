package system

import (
	"log"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/stfu/ecs"
	"github.com/milk9111/stfu/ecs/component"
	"github.com/milk9111/stfu/physics"
)

// WeaponSystem flies every player's bullets and fires new ones on the
// trigger's press edge.
type WeaponSystem struct{}

func NewWeaponSystem() *WeaponSystem {
	return &WeaponSystem{}
}

func (s *WeaponSystem) Update(w *ecs.World, dt float64) {
	ecs.ForEach3(w, component.WeaponComponent.Kind(), component.ControllerComponent.Kind(), component.CharacterComponent.Kind(), func(e ecs.Entity, wp *component.Weapon, in *component.Controller, ch *component.Character) {
		live := wp.Bullets[:0]
		for _, b := range wp.Bullets {
			b.Update(dt)
			if !b.Done() {
				live = append(live, b)
			}
		}
		clear(wp.Bullets[len(live):])
		wp.Bullets = live

		if !Controllable(w, e) || ch.Body.Disabled() {
			wp.Shooting = false
			return
		}
		if in.Shoot && !wp.Shooting && len(wp.Bullets) < wp.MaxBullets {
			if b := fire(w, e, wp, in.Index, ch.Body); b != nil {
				wp.Bullets = append(wp.Bullets, b)
				ecs.Emit(w, e, ecs.EventShot, len(wp.Bullets))
			}
		}
		wp.Shooting = in.Shoot
	})
}

// fire launches a bullet from the body's center in the direction its
// player faces.
func fire(w *ecs.World, e ecs.Entity, wp *component.Weapon, index int, body *physics.Character) *physics.Bullet {
	dir := 1.0
	if loc, ok := ecs.Get(w, e, component.LocomotionComponent.Kind()); ok && loc.Player != nil && !loc.Player.FacingRight() {
		dir = -1
	}
	b, err := physics.NewBullet(body.World(), e, physics.BulletConfig{
		Position:        body.Position().Add(cp.Vector{X: dir * wp.Width / 2}),
		Width:           wp.Width,
		Height:          wp.Height,
		Density:         wp.Density,
		Range:           wp.Range,
		Shooter:         index,
		GoneOnCollision: wp.GoneOnCollision,
	})
	if err != nil {
		log.Printf("weapon: entity=%s fire: %v", e, err)
		return nil
	}
	b.Fly(cp.Vector{X: dir * wp.Speed})
	return b
}
