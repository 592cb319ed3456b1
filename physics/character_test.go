package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/jakecoffman/cp"
)

const frameDt = 1.0 / 60

func characterSettings(gravity float64) Settings {
	s := DefaultSettings()
	s.Gravity = gravity
	s.FixedStep = 1.0 / 120
	return s
}

func playerConfig(pos cp.Vector) CharacterConfig {
	return CharacterConfig{
		Position:   pos,
		Width:      0.5,
		Height:     1,
		Density:    1,
		Category:   CategoryPlayer | CategoryPlayer1,
		GroundLike: CategoryPlayer,
		Tuning:     DefaultCharacterTuning(),
	}
}

func newTestCharacter(t *testing.T, w *World, pos cp.Vector) *Character {
	t.Helper()
	c, err := NewCharacter(w, "player", playerConfig(pos))
	if err != nil {
		t.Fatalf("NewCharacter: %v", err)
	}
	return c
}

func runFrames(w *World, c *Character, frames int, each func(i int)) {
	for i := 0; i < frames; i++ {
		w.Update(frameDt)
		c.Update(w.SimulatedDelta())
		if each != nil {
			each(i)
		}
	}
}

func TestNewCharacterValidation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*CharacterConfig)
		wantErr error
	}{
		{"ok", func(*CharacterConfig) {}, nil},
		{"square", func(c *CharacterConfig) { c.Width, c.Height = 1, 1 }, nil},
		{"wheel_protrudes", func(c *CharacterConfig) { c.Width, c.Height = 1, 0.5 }, ErrWheelProtrudes},
		{"zero_size", func(c *CharacterConfig) { c.Width = 0 }, ErrInvalidCharacter},
		{"zero_density", func(c *CharacterConfig) { c.Density = 0 }, ErrInvalidCharacter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := newTestWorld(t, characterSettings(0))
			cfg := playerConfig(cp.Vector{})
			tc.mutate(&cfg)
			_, err := NewCharacter(w, nil, cfg)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCharacterGeometry(t *testing.T) {
	w := newTestWorld(t, characterSettings(0))
	c := newTestCharacter(t, w, cp.Vector{X: 1, Y: -2})

	if p := c.Position(); math.Abs(p.X-1) > 1e-9 || math.Abs(p.Y+2) > 1e-9 {
		t.Fatalf("expected composite center (1,-2), got %v", p)
	}
	// torso top and wheel bottom bound the composite
	top := c.Torso().Position().Y - c.torsoHeight()/2
	bottom := c.Wheel().Position().Y + c.WheelRadius()
	if math.Abs(top+2.5) > 1e-9 || math.Abs(bottom+1.5) > 1e-9 {
		t.Fatalf("expected span [-2.5,-1.5], got [%v,%v]", top, bottom)
	}
	if c.BrakeEnabled() {
		t.Fatalf("brake should start disabled")
	}
}

func TestCharacterDisposeTwice(t *testing.T) {
	w := newTestWorld(t, characterSettings(0))
	c := newTestCharacter(t, w, cp.Vector{})
	c.Dispose()
	c.Dispose()
	if w.BodyCount() != 0 {
		t.Fatalf("expected no bodies, got %d", w.BodyCount())
	}
	c.Update(frameDt)
	c.Respawn(cp.Vector{X: 2})
	if w.BodyCount() != 2 || c.Disposed() {
		t.Fatalf("respawn should rebuild both bodies")
	}
}

func TestCharacterLandsAndJumps(t *testing.T) {
	w := newTestWorld(t, characterSettings(22))
	w.AddStaticBox(cp.BB{L: -10, B: 0, R: 10, T: 1}, CategoryGround, "ground")
	c := newTestCharacter(t, w, cp.Vector{Y: -0.6})

	runFrames(w, c, 90, nil)
	s := c.Sensor()
	if !s.OnGround() {
		t.Fatalf("expected character on the ground")
	}
	if s.GroundContacts() == 0 {
		t.Fatalf("expected the wheel contact to be tallied")
	}
	if !c.BrakeEnabled() {
		t.Fatalf("expected brake latched at rest on the ground")
	}

	c.Jump()
	runFrames(w, c, 1, nil)
	if s.OnGround() {
		t.Fatalf("jumping must report airborne right away")
	}
	if c.Velocity().Y >= 0 {
		t.Fatalf("expected upward velocity, got %v", c.Velocity().Y)
	}
	if c.BrakeEnabled() {
		t.Fatalf("brake must release in the air")
	}
}

func TestCharacterEdgeCatch(t *testing.T) {
	cases := []struct {
		name  string
		wallL float64
		want  cp.Vector
	}{
		{"teetering_on_wall", 0.27, cp.Vector{X: -edgeCatchPushX, Y: edgeCatchFallY}},
		{"no_wall", 3, cp.Vector{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := newTestWorld(t, characterSettings(0))
			w.AddStaticBox(cp.BB{L: tc.wallL, B: -10, R: tc.wallL + 1, T: 10}, CategoryGround, "wall")
			c := newTestCharacter(t, w, cp.Vector{Y: -3})
			c.SetVelocity(cp.Vector{})

			c.Update(frameDt)
			v := c.Velocity()
			if math.Abs(v.X-tc.want.X) > 1e-9 || math.Abs(v.Y-tc.want.Y) > 1e-9 {
				t.Fatalf("expected velocity %v, got %v", tc.want, v)
			}
		})
	}
}

func TestOneWayPlatform(t *testing.T) {
	t.Run("rising_passes_through", func(t *testing.T) {
		w := newTestWorld(t, characterSettings(0))
		w.AddStaticBox(cp.BB{L: -2, B: -1.6, R: 2, T: -1.5}, CategoryPlatform, "platform")
		c := newTestCharacter(t, w, cp.Vector{Y: -0.5})
		c.SetVelocity(cp.Vector{Y: -4})

		runFrames(w, c, 30, func(i int) {
			if c.Sensor().GroundContacts() != 0 || c.Sensor().OnGround() {
				t.Fatalf("frame %d: platform registered as ground while rising", i)
			}
		})
		if c.Position().Y > -2.1 {
			t.Fatalf("expected character above the platform, at %v", c.Position().Y)
		}
	})

	t.Run("falling_lands", func(t *testing.T) {
		w := newTestWorld(t, characterSettings(22))
		w.AddStaticBox(cp.BB{L: -2, B: -1.6, R: 2, T: -1.5}, CategoryPlatform, "platform")
		c := newTestCharacter(t, w, cp.Vector{Y: -2.2})

		runFrames(w, c, 90, nil)
		if !c.Sensor().OnGround() {
			t.Fatalf("expected to stand on the platform")
		}
		if y := c.Position().Y; y > -2 || y < -2.2 {
			t.Fatalf("expected to rest on top of the platform, at %v", y)
		}
	})
}

func TestLinearPlatform(t *testing.T) {
	w := newTestWorld(t, characterSettings(0))
	if _, err := NewLinearPlatform(w, nil, PlatformConfig{
		Initial: cp.Vector{X: 2}, Final: cp.Vector{X: 1}, Width: 1, Height: 0.2, Speed: 1,
	}); !errors.Is(err, ErrPlatformOrder) {
		t.Fatalf("expected ErrPlatformOrder, got %v", err)
	}

	p, err := NewLinearPlatform(w, "lift", PlatformConfig{
		Initial: cp.Vector{}, Final: cp.Vector{X: 1}, Width: 1, Height: 0.2, Speed: 2,
	})
	if err != nil {
		t.Fatalf("NewLinearPlatform: %v", err)
	}
	sawReverse := false
	for i := 0; i < 120; i++ {
		p.Update(frameDt)
		w.Update(frameDt)
		if !p.MovingTowardFinal() {
			sawReverse = true
		}
		if x := p.Position().X; x < -0.1 || x > 1.1 {
			t.Fatalf("platform left its track: x=%v", x)
		}
	}
	if !sawReverse {
		t.Fatalf("expected the platform to turn around")
	}
	p.Dispose()
	p.Dispose()
}
