package physics

import (
	"errors"
	"testing"
)

func TestNewFixedStepSchedulerRejectsBadInput(t *testing.T) {
	cases := []struct {
		name     string
		step     float64
		maxSteps int
	}{
		{"zero_step", 0, 4},
		{"negative_step", -0.1, 4},
		{"zero_max", 0.125, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := NewFixedStepScheduler(c.step, c.maxSteps, nil, nil); !errors.Is(err, ErrInvalidStep) {
				t.Fatalf("expected ErrInvalidStep, got %v", err)
			}
		})
	}
}

func TestFixedStepSchedulerUpdate(t *testing.T) {
	cases := []struct {
		name      string
		step      float64
		maxSteps  int
		frames    []float64
		wantSteps []int
		wantRatio float64
		wantSim   float64
	}{
		{"no_step_below_threshold", 0.125, 4, []float64{0.0625}, []int{0}, 0.5, 0},
		{"carry_over", 0.125, 4, []float64{0.0625, 0.125}, []int{0, 1}, 0.5, 0.125},
		{"several_steps", 0.125, 4, []float64{0.375}, []int{3}, 0, 0.375},
		{"clamped", 0.125, 4, []float64{2}, []int{4}, 0, 0.5},
		{"clamped_drops_backlog", 0.125, 2, []float64{1, 0.125}, []int{2, 1}, 0, 0.125},
		{"negative_dt_ignored", 0.125, 4, []float64{-1, 0.125}, []int{0, 1}, 0, 0.125},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			calls := 0
			posts := 0
			var stepDts []float64
			s, err := NewFixedStepScheduler(c.step, c.maxSteps, func(dt float64) {
				calls++
				stepDts = append(stepDts, dt)
			}, func() { posts++ })
			if err != nil {
				t.Fatal(err)
			}

			total := 0
			for i, dt := range c.frames {
				got := s.Update(dt)
				if got != c.wantSteps[i] {
					t.Fatalf("frame %d: steps = %d, want %d", i, got, c.wantSteps[i])
				}
				if got > c.maxSteps {
					t.Fatalf("frame %d: %d steps exceeds max %d", i, got, c.maxSteps)
				}
				total += got
			}
			if calls != total {
				t.Fatalf("singleStep called %d times, want %d", calls, total)
			}
			if posts != len(c.frames) {
				t.Fatalf("postStepping called %d times, want %d", posts, len(c.frames))
			}
			for _, dt := range stepDts {
				if dt != c.step {
					t.Fatalf("singleStep got dt=%v, want %v", dt, c.step)
				}
			}
			if s.Ratio() != c.wantRatio {
				t.Fatalf("ratio = %v, want %v", s.Ratio(), c.wantRatio)
			}
			if s.SimulatedDelta() != c.wantSim {
				t.Fatalf("simulated delta = %v, want %v", s.SimulatedDelta(), c.wantSim)
			}
		})
	}
}

// pointMass integrates a falling point and smooths it the same way World
// smooths bodies.
type pointMass struct {
	y, vy    float64
	prev     float64
	smoothed float64
}

func runPointMass(frames []float64) []float64 {
	p := &pointMass{}
	var s *FixedStepScheduler
	s, _ = NewFixedStepScheduler(1.0/128, 4, func(dt float64) {
		p.prev = p.y
		p.vy += 22 * dt
		p.y += p.vy * dt
	}, func() {
		r := s.Ratio()
		p.smoothed = r*p.y + (1-r)*p.prev
	})

	out := make([]float64, 0, len(frames))
	for _, dt := range frames {
		s.Update(dt)
		out = append(out, p.smoothed)
	}
	return out
}

func TestFixedStepSchedulerDeterminism(t *testing.T) {
	frames := []float64{1.0 / 60, 1.0 / 144, 0.05, 0.2, 1.0 / 30, 0.001, 1.0 / 60}
	a := runPointMass(frames)
	b := runPointMass(frames)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("frame %d diverged: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestFixedStepSchedulerSmoothingBounds(t *testing.T) {
	frames := []float64{0.01, 0.013, 0.007, 0.02}
	got := runPointMass(frames)
	for i := 1; i < len(got); i++ {
		if got[i] < got[i-1] {
			t.Fatalf("smoothed position moved backwards at frame %d: %v < %v", i, got[i], got[i-1])
		}
	}
}
