package system

import (
	"math"

	"github.com/milk9111/stfu/ecs"
	"github.com/milk9111/stfu/ecs/component"
	"github.com/milk9111/stfu/locomotion"
)

const moveDeadzone = 0.2

// ControllerSystem turns each player's intents into locomotion commands.
// Jump and dash are split into press, hold and release edges against the
// previous tick.
type ControllerSystem struct{}

func NewControllerSystem() *ControllerSystem {
	return &ControllerSystem{}
}

func (s *ControllerSystem) Update(w *ecs.World, dt float64) {
	ecs.ForEach2(w, component.ControllerComponent.Kind(), component.LocomotionComponent.Kind(), func(e ecs.Entity, in *component.Controller, loc *component.Locomotion) {
		if loc.Player == nil {
			return
		}
		if !Controllable(w, e) {
			in.JumpHeld = false
			in.DashHeld = false
			return
		}
		drive(loc.Player, in, dt)
		in.JumpHeld = in.Jump
		in.DashHeld = in.Dash
	})
}

func drive(p *locomotion.Player, in *component.Controller, dt float64) {
	switch {
	case in.MoveX > moveDeadzone:
		p.MoveRight(math.Min(in.MoveX, 1), dt)
	case in.MoveX < -moveDeadzone:
		p.MoveLeft(math.Min(-in.MoveX, 1), dt)
	default:
		p.StopMoving(dt)
	}

	switch {
	case in.Jump && !in.JumpHeld:
		p.Jump(dt)
	case in.Jump:
		p.KeepJumping(dt)
	case in.JumpHeld:
		p.StopJumping()
	}

	dir := 0.0
	if math.Abs(in.MoveX) > moveDeadzone {
		dir = math.Copysign(1, in.MoveX)
	}
	switch {
	case in.Dash && !in.DashHeld:
		p.StartDashing(dir)
	case in.Dash:
		p.KeepDashing(dir)
	case in.DashHeld:
		p.StopDashing()
	}
}
