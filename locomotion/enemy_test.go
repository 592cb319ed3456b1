package locomotion

import (
	"testing"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/stfu/physics"
)

func TestVisionDebounce(t *testing.T) {
	v := NewVision(0.0625)
	inSight := []bool{true, true, true, false, false, false}
	want := []bool{false, false, true, true, true, false}
	for i := range inSight {
		if got := v.CheckForPlayer(inSight[i]); got != want[i] {
			t.Fatalf("tick %d: expected %v, got %v", i, want[i], got)
		}
		v.Update(0.03125)
	}
	v.Reset()
	if v.SeesPlayer() || v.CheckForPlayer(false) {
		t.Fatalf("expected a fresh vision after reset")
	}
}

func TestMovementTurnAround(t *testing.T) {
	m := NewMovement(0.0625)
	want := []bool{false, false, true}
	for i, w := range want {
		if got := m.TurnAround(); got != w {
			t.Fatalf("call %d: expected %v, got %v", i, w, got)
		}
		m.Update(0.03125)
	}
	if !m.Stopped() {
		t.Fatalf("turning around must stop the enemy")
	}
	m.Move()
	if m.Stopped() {
		t.Fatalf("expected moving")
	}
	if m.CheckTurnAround(false) {
		t.Fatalf("expected no turn")
	}
}

func newEnemyRig(t *testing.T, pos cp.Vector, tuning EnemyTuning) (*physics.World, *Enemy) {
	t.Helper()
	s := physics.DefaultSettings()
	s.FixedStep = 1.0 / 120
	w, err := physics.NewWorld(s)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	w.AddStaticBox(cp.BB{L: -1, B: 0, R: 1, T: 1}, physics.CategoryGround, "ledge")
	w.AddStaticBox(cp.BB{L: 2.75, B: -1, R: 3.25, T: 0}, physics.CategoryPlayer|physics.CategoryPlayer1, "player")
	body, err := physics.NewCharacter(w, "walker", physics.CharacterConfig{
		Position:   pos,
		Width:      0.5,
		Height:     1,
		Density:    1,
		Category:   physics.CategoryEnemy,
		GroundLike: physics.CategoryEnemy,
		Tuning:     physics.DefaultCharacterTuning(),
	})
	if err != nil {
		t.Fatalf("NewCharacter: %v", err)
	}
	return w, NewEnemy(body, tuning, nil)
}

func TestEnemyLedgeAndSight(t *testing.T) {
	tuning := DefaultEnemyTuning()
	tuning.TurnAroundDelay = 0
	tuning.SightDelay = 0
	w, e := newEnemyRig(t, cp.Vector{X: 0.8, Y: -0.55}, tuning)
	for i := 0; i < 60; i++ {
		w.Update(frameDt)
		e.Update(w.SimulatedDelta())
	}
	if !e.OnGround() {
		t.Fatalf("expected the walker to stand on the ledge")
	}

	cases := []struct {
		name        string
		facingRight bool
		wantTurn    bool
		wantPlayer  bool
	}{
		{"facing_the_drop", true, true, true},
		{"facing_the_ledge", false, false, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e.SetFacingRight(c.facingRight)
			if got := e.CheckTurnAround(); got != c.wantTurn {
				t.Fatalf("CheckTurnAround: expected %v, got %v", c.wantTurn, got)
			}
			e.Vision().Reset()
			if got := e.CheckForPlayer(); got != c.wantPlayer {
				t.Fatalf("CheckForPlayer: expected %v, got %v", c.wantPlayer, got)
			}
		})
	}

	e.SetFacingRight(true)
	e.TurnAround()
	if e.FacingRight() {
		t.Fatalf("expected to face left after turning around")
	}
	if !e.Movement().Stopped() {
		t.Fatalf("turning around stops the walker")
	}
	e.Walk()
	if e.Movement().Stopped() || e.State() != StateRunning {
		t.Fatalf("walking should resume movement, state %v", e.State())
	}
}

func TestGlide(t *testing.T) {
	fall := func(fraction float64) float64 {
		w, e := newEnemyRig(t, cp.Vector{X: 10, Y: -5}, DefaultEnemyTuning())
		for i := 0; i < 30; i++ {
			if fraction > 0 {
				e.Glide(fraction)
			}
			w.Update(frameDt)
		}
		return e.Body().Velocity().Y
	}

	free := fall(0)
	if free < 2 {
		t.Fatalf("expected a free fall, vy=%v", free)
	}
	cases := []struct {
		name     string
		fraction float64
		lo, hi   float64
	}{
		{"full_lift", 1, -0.1, 0.1},
		{"clamped", 3, -0.1, 0.1},
		{"half_lift", 0.5, free * 0.4, free * 0.6},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if vy := fall(c.fraction); vy < c.lo || vy > c.hi {
				t.Fatalf("vy %v outside [%v, %v]", vy, c.lo, c.hi)
			}
		})
	}
}
