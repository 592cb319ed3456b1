package physics

import (
	"errors"
	"math"
)

var ErrInvalidStep = errors.New("physics: fixed step must be positive and max steps at least 1")

// FixedStepScheduler turns variable frame time into a whole number of fixed
// sub-steps. Leftover time carries to the next frame and is exposed as an
// interpolation ratio.
type FixedStepScheduler struct {
	step     float64
	maxSteps int

	accumulator float64
	ratio       float64
	steps       int

	singleStep   func(dt float64)
	postStepping func()
}

func NewFixedStepScheduler(step float64, maxSteps int, singleStep func(dt float64), postStepping func()) (*FixedStepScheduler, error) {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) || maxSteps < 1 {
		return nil, ErrInvalidStep
	}
	return &FixedStepScheduler{
		step:         step,
		maxSteps:     maxSteps,
		singleStep:   singleStep,
		postStepping: postStepping,
	}, nil
}

// Update consumes dt seconds of wall-clock time and returns the number of
// sub-steps executed. When more than maxSteps are owed the excess is dropped
// and the simulation falls behind real time.
func (s *FixedStepScheduler) Update(dt float64) int {
	if s == nil {
		return 0
	}
	if dt > 0 {
		s.accumulator += dt
	}

	n := int(math.Floor(s.accumulator / s.step))
	if n > 0 {
		s.accumulator -= float64(n) * s.step
	}
	s.ratio = s.accumulator / s.step

	s.steps = min(n, s.maxSteps)
	for i := 0; i < s.steps; i++ {
		if s.singleStep != nil {
			s.singleStep(s.step)
		}
	}

	if s.postStepping != nil {
		s.postStepping()
	}
	return s.steps
}

// Ratio is the fraction of a step left in the accumulator after the last
// Update.
func (s *FixedStepScheduler) Ratio() float64 {
	if s == nil {
		return 0
	}
	return s.ratio
}

// Steps is the number of sub-steps executed by the last Update.
func (s *FixedStepScheduler) Steps() int {
	if s == nil {
		return 0
	}
	return s.steps
}

// SimulatedDelta is the simulated time covered by the last Update.
func (s *FixedStepScheduler) SimulatedDelta() float64 {
	if s == nil {
		return 0
	}
	return float64(s.steps) * s.step
}

func (s *FixedStepScheduler) Step() float64 {
	if s == nil {
		return 0
	}
	return s.step
}

func (s *FixedStepScheduler) MaxSteps() int {
	if s == nil {
		return 0
	}
	return s.maxSteps
}
