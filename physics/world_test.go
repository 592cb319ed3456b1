package physics

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
)

func testSettings() Settings {
	s := DefaultSettings()
	s.Gravity = 0
	s.FixedStep = 1.0 / 128
	s.MaxSteps = 4
	return s
}

func newTestWorld(t *testing.T, s Settings) *World {
	t.Helper()
	w, err := NewWorld(s)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	return w
}

func addBall(w *World, pos cp.Vector, owner any) *cp.Body {
	body := cp.NewBody(1, cp.MomentForCircle(1, 0, 0.25, cp.Vector{}))
	body.SetPosition(pos)
	w.AddBody(body, owner)
	w.AddShape(cp.NewCircle(body, 0.25, cp.Vector{}), CategoryDefault, MaskFor(CategoryDefault), 0)
	return body
}

func TestNewWorldRejectsBadSettings(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero_step", func(s *Settings) { s.FixedStep = 0 }},
		{"zero_max_steps", func(s *Settings) { s.MaxSteps = 0 }},
		{"no_iterations", func(s *Settings) { s.VelocityIterations, s.PositionIterations = 0, 0 }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := DefaultSettings()
			c.mutate(&s)
			if _, err := NewWorld(s); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestWorldForcesLastForTheWholeFrame(t *testing.T) {
	w := newTestWorld(t, testSettings())
	ball := addBall(w, cp.Vector{}, "ball")

	w.ApplyForce(ball, cp.Vector{X: 10})
	if steps := w.Update(4.0 / 128); steps != 4 {
		t.Fatalf("expected 4 steps, got %d", steps)
	}
	// 10 units/s^2 for 4/128 s
	if got := ball.Velocity().X; got != 0.3125 {
		t.Fatalf("expected vx 0.3125, got %v", got)
	}
	if f := w.Force(ball); f != (cp.Vector{}) {
		t.Fatalf("force should be cleared after the frame, got %v", f)
	}

	w.Update(4.0 / 128)
	if got := ball.Velocity().X; got != 0.3125 {
		t.Fatalf("velocity should be unchanged without force, got %v", got)
	}
}

func TestWorldSmoothedTransform(t *testing.T) {
	w := newTestWorld(t, testSettings())
	ball := addBall(w, cp.Vector{}, nil)
	ball.SetVelocity(1, 0)

	w.Update(1.5 / 128)
	if w.Ratio() != 0.5 {
		t.Fatalf("expected ratio 0.5, got %v", w.Ratio())
	}
	tr, ok := w.SmoothedTransform(ball)
	if !ok {
		t.Fatalf("expected smoothed transform")
	}
	want := 0.5 / 128
	if math.Abs(tr.Position.X-want) > 1e-12 {
		t.Fatalf("expected smoothed x %v, got %v", want, tr.Position.X)
	}
	if w.SimulatedDelta() != 1.0/128 {
		t.Fatalf("expected simulated delta 1/128, got %v", w.SimulatedDelta())
	}
}

func TestWorldRemoveTwiceIsNoop(t *testing.T) {
	w := newTestWorld(t, testSettings())
	a := addBall(w, cp.Vector{}, "a")
	b := addBall(w, cp.Vector{X: 2}, "b")
	joint := cp.NewPivotJoint(a, b, cp.Vector{X: 1})
	w.AddConstraint(joint)
	w.AddConstraint(joint)

	w.RemoveConstraint(joint)
	w.RemoveConstraint(joint)
	w.RemoveBody(a)
	w.RemoveBody(a)

	if w.ContainsBody(a) {
		t.Fatalf("a should be gone")
	}
	if !w.ContainsBody(b) {
		t.Fatalf("b should remain")
	}
	if w.BodyCount() != 1 {
		t.Fatalf("expected 1 body, got %d", w.BodyCount())
	}
	if w.Owner(b) != "b" {
		t.Fatalf("expected owner b, got %v", w.Owner(b))
	}
	w.Update(1.0 / 128)
}

func TestRayCastFilters(t *testing.T) {
	w := newTestWorld(t, testSettings())
	w.AddStaticBox(cp.BB{L: -1, B: 0.5, R: 1, T: 0.6}, CategoryPlatform, "platform")
	w.AddStaticBox(cp.BB{L: -1, B: 1, R: 1, T: 2}, CategoryGround, "ground")
	start, end := cp.Vector{}, cp.Vector{Y: 3}

	cases := []struct {
		name      string
		filter    RayFilter
		wantHit   bool
		wantOwner any
	}{
		{"nearest_any", RayFilter{}, true, "platform"},
		{"ground_only", RayFilter{Accept: CategoryGround}, true, "ground"},
		{"predicate_skips_platform", RayFilter{
			Accept:    CategoryGround | CategoryPlatform,
			Predicate: func(h RayHit) bool { return !h.Category.Has(CategoryPlatform) },
		}, true, "ground"},
		{"players_only", RayFilter{Accept: CategoryPlayer}, false, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			hit, ok := w.RayCast(start, end, c.filter)
			if ok != c.wantHit {
				t.Fatalf("expected hit=%v, got %v", c.wantHit, ok)
			}
			if ok && hit.Owner != c.wantOwner {
				t.Fatalf("expected owner %v, got %v", c.wantOwner, hit.Owner)
			}
		})
	}
}

func TestRayCastAnyIgnoresExcludedBlockers(t *testing.T) {
	w := newTestWorld(t, testSettings())
	w.AddStaticBox(cp.BB{L: 1, B: -1, R: 1.5, T: 1}, CategoryGround, "wall")
	target := cp.NewKinematicBody()
	target.SetPosition(cp.Vector{X: 3})
	w.AddBody(target, "player")
	w.AddShape(cp.NewBox(target, 0.5, 0.5, 0), CategoryPlayer, MaskFor(CategoryPlayer), 0)

	start, end := cp.Vector{}, cp.Vector{X: 5}
	if !w.RayCastAny(start, end, RayFilter{Accept: CategoryPlayer}) {
		t.Fatalf("player behind the wall should be seen")
	}
	if w.RayCastAny(start, cp.Vector{X: 2}, RayFilter{Accept: CategoryPlayer}) {
		t.Fatalf("player out of range should not be seen")
	}
	if !w.RayCastAny(start, end, RayFilter{}) {
		t.Fatalf("unfiltered ray should hit the wall")
	}
}
