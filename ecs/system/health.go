package system

import (
	"math"

	"github.com/milk9111/stfu/ecs"
	"github.com/milk9111/stfu/ecs/component"
	"github.com/milk9111/stfu/physics"
)

// HealthSystem resolves hits, deaths and respawns for either the players or
// everything else, so each half can run on its own step.
type HealthSystem struct {
	players bool
	// FallLimit is the Y below which a character's top counts as fallen out
	// of the level.
	FallLimit float64
}

func NewHealthSystem(players bool) *HealthSystem {
	return &HealthSystem{players: players, FallLimit: math.Inf(1)}
}

// Invulnerable reports whether h is inside its hit or recovery window.
func Invulnerable(h *component.Health) bool {
	return h.Hit || h.Recovering
}

// ResetHealth restores full hitpoints and clears every window.
func ResetHealth(h *component.Health) {
	h.HP = h.Max
	h.Hit = false
	h.Recovering = false
	h.Dead = false
	h.HitTimer.Reset()
	h.RecoveryTimer.Reset()
	h.RespawnTimer.Reset()
	h.PendingHits = 0
	h.DeathContacts = 0
	h.KillRequested = false
}

// GotHit removes n hitpoints and opens the hit window.
func GotHit(h *component.Health, n int) {
	h.Hit = true
	h.HitTimer.SetDelay(h.HitDelay)
	h.HP -= n
}

// PlayerContacts is the contact filter for a player body. Touching death
// kills unless invulnerable, in which case the player stands on it. Enemies
// never push the player; they hit it outside the invulnerable window.
func PlayerContacts(h *component.Health) physics.ContactListener {
	return physics.ContactFuncs{
		Begin: func(c physics.Contact) bool {
			switch {
			case c.OtherCategory.Has(physics.CategoryDeath):
				h.DeathContacts++
				if !Invulnerable(h) {
					h.KillRequested = true
					return false
				}
			case c.OtherCategory.Has(physics.CategoryEnemy):
				if !Invulnerable(h) {
					h.PendingHits++
				}
				return false
			}
			return true
		},
		End: func(c physics.Contact) {
			if c.OtherCategory.Has(physics.CategoryDeath) && h.DeathContacts > 0 {
				h.DeathContacts--
			}
		},
	}
}

// EnemyContacts is the contact filter for an enemy body.
func EnemyContacts(h *component.Health) physics.ContactListener {
	return physics.ContactFuncs{
		Begin: func(c physics.Contact) bool {
			switch {
			case c.OtherCategory.Has(physics.CategoryDeath):
				h.KillRequested = true
				return false
			case c.OtherCategory.Has(physics.CategoryPlayerBullet):
				if Invulnerable(h) {
					return false
				}
				h.PendingHits++
			case c.OtherCategory.Has(physics.CategoryPlayer):
				return false
			}
			return true
		},
	}
}

func (s *HealthSystem) Update(w *ecs.World, dt float64) {
	ecs.ForEach2(w, component.HealthComponent.Kind(), component.CharacterComponent.Kind(), func(e ecs.Entity, h *component.Health, ch *component.Character) {
		if ecs.Has(w, e, component.PlayerTagComponent.Kind()) != s.players || ch.Body == nil {
			return
		}

		if !h.Dead {
			s.applyContacts(w, e, h, ch)
			if h.HP <= 0 || s.fellOut(ch.Body) {
				s.die(w, e, h, ch)
			}
		}
		if h.Dead && h.RespawnTimer.IsTimeUp() {
			s.respawn(w, e, h, ch)
		}
		tick(h, dt)
	})
}

func (s *HealthSystem) applyContacts(w *ecs.World, e ecs.Entity, h *component.Health, ch *component.Character) {
	if s.players {
		// spikes are solid while invulnerable
		ch.Body.Sensor().IncludeDeath = Invulnerable(h)
		if !Invulnerable(h) && h.DeathContacts > 0 {
			h.KillRequested = true
		}
	}
	if h.KillRequested {
		h.KillRequested = false
		s.die(w, e, h, ch)
		return
	}
	if h.PendingHits > 0 {
		n := h.PendingHits
		h.PendingHits = 0
		if !Invulnerable(h) {
			GotHit(h, n)
			ecs.Emit(w, e, ecs.EventHit, h.HP)
		}
	}
}

func (s *HealthSystem) fellOut(body *physics.Character) bool {
	if body.Disabled() || body.Disposed() {
		return false
	}
	return body.Position().Y-body.Extents().Y > s.FallLimit
}

func (s *HealthSystem) die(w *ecs.World, e ecs.Entity, h *component.Health, ch *component.Character) {
	if h.Dead {
		return
	}
	h.Dead = true
	h.RespawnTimer.SetDelay(h.RespawnDelay)
	ch.Body.Disable()
	ecs.Emit(w, e, ecs.EventDied, nil)
}

func (s *HealthSystem) respawn(w *ecs.World, e ecs.Entity, h *component.Health, ch *component.Character) {
	ch.Body.Respawn(ch.Spawn)
	ResetHealth(h)
	if loc, ok := ecs.Get(w, e, component.LocomotionComponent.Kind()); ok && loc.Player != nil {
		loc.Player.Reset()
	}
	if en, ok := ecs.Get(w, e, component.EnemyComponent.Kind()); ok && en.Policy != nil {
		en.Policy.Reset()
	}
	ecs.Emit(w, e, ecs.EventRespawned, ch.Spawn)
}

func tick(h *component.Health, dt float64) {
	if h.Hit {
		h.HitTimer.Update(dt)
		if h.HitTimer.IsTimeUp() {
			h.Hit = false
			h.Recovering = true
			h.RecoveryTimer.SetDelay(h.RecoveryDelay)
		}
	}
	if h.Recovering {
		h.RecoveryTimer.Update(dt)
		if h.RecoveryTimer.IsTimeUp() {
			h.Recovering = false
		}
	}
	if h.Dead {
		h.RespawnTimer.Update(dt)
	}
}

// Controllable reports whether commands should reach e's locomotion.
func Controllable(w *ecs.World, e ecs.Entity) bool {
	h, ok := ecs.Get(w, e, component.HealthComponent.Kind())
	return !ok || !h.Dead
}
