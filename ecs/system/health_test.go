package system

import (
	"testing"

	"github.com/milk9111/stfu/ecs/component"
	"github.com/milk9111/stfu/physics"
)

func newHealth() *component.Health {
	h := &component.Health{Max: 3, HitDelay: 0.25, RecoveryDelay: 0.5, RespawnDelay: 1}
	ResetHealth(h)
	return h
}

func TestPlayerContacts(t *testing.T) {
	cases := []struct {
		name       string
		other      physics.Category
		hit        bool
		wantSolid  bool
		wantKill   bool
		wantHits   int
		wantDeaths int
	}{
		{"ground", physics.CategoryGround, false, true, false, 0, 0},
		{"death", physics.CategoryDeath, false, false, true, 0, 1},
		{"death_while_hit", physics.CategoryDeath, true, true, false, 0, 1},
		{"enemy", physics.CategoryEnemy, false, false, false, 1, 0},
		{"enemy_while_hit", physics.CategoryEnemy, true, false, false, 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := newHealth()
			h.Hit = c.hit
			l := PlayerContacts(h)
			solid := l.BeginContact(physics.Contact{OtherCategory: c.other})
			if solid != c.wantSolid || h.KillRequested != c.wantKill || h.PendingHits != c.wantHits || h.DeathContacts != c.wantDeaths {
				t.Fatalf("solid=%v kill=%v hits=%d deaths=%d", solid, h.KillRequested, h.PendingHits, h.DeathContacts)
			}
			l.EndContact(physics.Contact{OtherCategory: c.other})
			if h.DeathContacts != 0 {
				t.Fatalf("end contact should release death contact, got %d", h.DeathContacts)
			}
		})
	}
}

func TestEnemyContacts(t *testing.T) {
	cases := []struct {
		name      string
		other     physics.Category
		wantSolid bool
		wantKill  bool
		wantHits  int
	}{
		{"ground", physics.CategoryGround, true, false, 0},
		{"death", physics.CategoryDeath, false, true, 0},
		{"bullet", physics.CategoryPlayerBullet | physics.CategoryPlayer1Bullet, true, false, 1},
		{"player", physics.CategoryPlayer | physics.CategoryPlayer2, false, false, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := newHealth()
			solid := EnemyContacts(h).BeginContact(physics.Contact{OtherCategory: c.other})
			if solid != c.wantSolid || h.KillRequested != c.wantKill || h.PendingHits != c.wantHits {
				t.Fatalf("solid=%v kill=%v hits=%d", solid, h.KillRequested, h.PendingHits)
			}
		})
	}
}

func TestHitAndRecoveryWindows(t *testing.T) {
	h := newHealth()
	GotHit(h, 1)
	if h.HP != 2 || !Invulnerable(h) {
		t.Fatalf("expected hit with 2 hp, got %+v", h)
	}

	const dt = 0.125
	steps := []struct {
		hit, recovering bool
	}{
		{true, false},  // 0.125
		{false, true},  // 0.25 hit window over
		{false, true},  // 0.375
		{false, true},  // 0.5
		{false, false}, // 0.625 recovered
	}
	for i, s := range steps {
		tick(h, dt)
		if h.Hit != s.hit || h.Recovering != s.recovering {
			t.Fatalf("step %d: hit=%v recovering=%v", i, h.Hit, h.Recovering)
		}
	}
	if Invulnerable(h) {
		t.Fatalf("should be vulnerable again")
	}
}
