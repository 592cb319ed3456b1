package locomotion

import (
	"github.com/milk9111/stfu/common"
	"github.com/milk9111/stfu/physics"
)

const fallingSpeed = 0.1

// PlayerTuning holds the timing numbers of the player policy.
type PlayerTuning struct {
	// JumpDelay bounds how long KeepJumping keeps applying jump velocity.
	JumpDelay float64
	// StateBuffer suppresses state changes right after a jump.
	StateBuffer    float64
	DashMultiplier float64
	DashDuration   float64
	DashCooldown   float64
}

func DefaultPlayerTuning() PlayerTuning {
	return PlayerTuning{
		JumpDelay:      0.11,
		StateBuffer:    0.1,
		DashMultiplier: 2.5,
		DashDuration:   0.2,
		DashCooldown:   0.6,
	}
}

// Player is the locomotion policy of a player-controlled character.
// Commands may be issued every tick; the ones whose preconditions do not
// hold are ignored.
type Player struct {
	body     *physics.Character
	tuning   PlayerTuning
	observer Observer

	state       State
	facingRight bool

	canJump       bool
	canWallJump   bool
	canDash       bool
	wallJumpSpent bool
	wasOnGround   bool

	jumpTimer    common.Timer
	stateBuffer  common.Timer
	dashTimer    common.Timer
	dashCooldown common.Timer
	dashDir      float64
	dashAirborne bool
}

func NewPlayer(body *physics.Character, tuning PlayerTuning, observer Observer) *Player {
	return &Player{
		body:        body,
		tuning:      tuning,
		observer:    observer,
		state:       StateIdle,
		facingRight: true,
	}
}

func (p *Player) Body() *physics.Character { return p.body }
func (p *Player) State() State             { return p.state }
func (p *Player) FacingRight() bool        { return p.facingRight }
func (p *Player) CanJump() bool            { return p.canJump }
func (p *Player) CanWallJump() bool        { return p.canWallJump }
func (p *Player) CanDash() bool            { return p.canDash }

// SetObserver replaces the event observer.
func (p *Player) SetObserver(o Observer) { p.observer = o }

// Reset returns the policy to its spawn state, e.g. after a respawn.
func (p *Player) Reset() {
	p.state = StateIdle
	p.canJump = false
	p.canWallJump = false
	p.canDash = false
	p.wallJumpSpent = false
	p.wasOnGround = false
	p.jumpTimer.Reset()
	p.stateBuffer.Reset()
	p.dashTimer.Reset()
	p.dashCooldown.Reset()
	p.dashAirborne = false
}

func (p *Player) emit(e Event) {
	if p.observer != nil {
		p.observer(e)
	}
}

// changeState moves to s unless s is current or the state buffer is still
// running.
func (p *Player) changeState(s State) bool {
	if s == p.state || !p.stateBuffer.IsTimeUp() {
		return false
	}
	from := p.state
	p.state = s
	switch s {
	case StateJumping:
		p.jumpTimer.SetDelay(p.tuning.JumpDelay)
		p.stateBuffer.SetDelay(p.tuning.StateBuffer)
	case StateFalling:
		p.canJump = false
	}
	p.emit(Event{Kind: EventStateChanged, From: from, To: s})
	return true
}

func (p *Player) onGround() bool {
	return p.body.Sensor().OnGround()
}

// Update advances timers and the body, then resolves falling, landing and
// the jump/wall-jump/dash gates from the sensed state.
func (p *Player) Update(dt float64) {
	if p.body.Disposed() || p.body.Disabled() {
		return
	}
	p.jumpTimer.Update(dt)
	p.stateBuffer.Update(dt)
	p.dashTimer.Update(dt)
	p.dashCooldown.Update(dt)

	if !p.jumpTimer.IsReset() && p.jumpTimer.IsTimeUp() {
		p.StopJumping()
	}

	p.body.Update(dt)

	s := p.body.Sensor()
	grounded := s.OnGround()

	if p.state == StateDashing {
		p.updateDash(grounded)
	}

	if !grounded && p.body.Velocity().Y > fallingSpeed {
		p.canJump = false
		if p.state != StateDashing {
			p.changeState(StateFalling)
		}
	}

	if grounded {
		if !p.wasOnGround {
			p.emit(Event{Kind: EventLanded})
		}
		switch {
		case p.state == StateJumping:
			p.changeState(StateNone)
		case p.state != StateDashing && p.body.BrakeEnabled():
			p.changeState(StateIdle)
		}
		// still taking off while the state buffer holds Jumping
		if p.state != StateJumping {
			p.canJump = true
		}
		p.canWallJump = false
		p.wallJumpSpent = false
		p.canDash = p.state != StateDashing
	} else {
		p.canWallJump = s.OnWall() && !p.wallJumpSpent
		p.canDash = false
	}
	p.wasOnGround = grounded
}

func (p *Player) MoveRight(intensity, dt float64) {
	p.move(true, intensity, dt)
}

func (p *Player) MoveLeft(intensity, dt float64) {
	p.move(false, intensity, dt)
}

func (p *Player) move(right bool, intensity, dt float64) {
	if p.state == StateDashing {
		return
	}
	if p.onGround() && p.state != StateJumping {
		p.facingRight = right
		p.changeState(StateRunning)
		if right {
			p.body.RunRight(intensity)
		} else {
			p.body.RunLeft(intensity)
		}
		return
	}
	if right {
		p.body.FloatRight(intensity, dt)
	} else {
		p.body.FloatLeft(intensity, dt)
	}
}

func (p *Player) StopMoving(dt float64) {
	if p.state == StateDashing {
		return
	}
	if p.onGround() && p.state != StateJumping {
		p.body.StopRunning()
		return
	}
	p.body.StopFloating(dt)
}

// Jump handles a jump press: a wall jump first when one is available, then
// a regular jump when allowed.
func (p *Player) Jump(dt float64) {
	if p.canWallJump {
		s := p.body.Sensor()
		right := s.OnRightWall()
		if p.body.WallJump() {
			p.canWallJump = false
			p.wallJumpSpent = true
			p.facingRight = !right
			p.changeState(StateWallJumping)
			p.emit(Event{Kind: EventWallJumped})
			p.canJump = true
		}
	}
	p.jump()
}

func (p *Player) jump() {
	if !p.canJump {
		return
	}
	if p.state == StateDashing {
		p.finishDash()
	}
	p.canJump = false
	p.changeState(StateJumping)
	p.body.Jump()
	p.emit(Event{Kind: EventJumped})
}

// KeepJumping keeps applying jump velocity while the jump window is open,
// which makes jump height follow how long the button is held.
func (p *Player) KeepJumping(dt float64) {
	if p.state != StateJumping || p.jumpTimer.IsTimeUp() {
		return
	}
	p.body.Jump()
}

// StopJumping closes the jump window. Once airborne no further jump is
// granted until ground is touched.
func (p *Player) StopJumping() {
	p.jumpTimer.Reset()
	if !p.onGround() {
		p.canJump = false
	}
}

// StartDashing begins a ground dash in dir, or the facing direction when
// dir is zero. It has no effect during the cooldown.
func (p *Player) StartDashing(dir float64) {
	if !p.canDash || p.state == StateDashing || !p.dashCooldown.IsTimeUp() || !p.onGround() {
		return
	}
	p.dashDir = p.direction(dir)
	p.facingRight = p.dashDir > 0
	p.dashAirborne = false
	p.dashTimer.SetDelay(p.tuning.DashDuration)
	p.dashCooldown.SetDelay(p.tuning.DashCooldown)
	p.canDash = false
	from := p.state
	// dashing overrides the state buffer
	p.state = StateDashing
	p.emit(Event{Kind: EventStateChanged, From: from, To: StateDashing})
	p.body.Dash(p.dashDir, p.tuning.DashMultiplier)
	p.emit(Event{Kind: EventDashed})
}

// KeepDashing holds dash velocity for the remainder of the dash.
func (p *Player) KeepDashing(dir float64) {
	if p.state != StateDashing || p.dashTimer.IsTimeUp() {
		return
	}
	if dir != 0 && p.direction(dir) != p.dashDir {
		return
	}
	p.body.Dash(p.dashDir, p.tuning.DashMultiplier)
}

// StopDashing ends a dash early.
func (p *Player) StopDashing() {
	if p.state != StateDashing {
		return
	}
	p.endDash()
}

func (p *Player) direction(dir float64) float64 {
	switch {
	case dir > 0:
		return 1
	case dir < 0:
		return -1
	case p.facingRight:
		return 1
	}
	return -1
}

func (p *Player) updateDash(grounded bool) {
	s := p.body.Sensor()
	switch {
	case p.dashTimer.IsTimeUp():
		p.endDash()
	case !grounded:
		p.dashAirborne = true
		if s.OnWall() {
			p.endDash()
		}
	case p.dashAirborne:
		p.endDash()
	}
}

func (p *Player) finishDash() {
	p.dashTimer.Reset()
	p.dashAirborne = false
	p.emit(Event{Kind: EventDashEnded})
}

func (p *Player) endDash() {
	p.finishDash()
	p.body.StopRunning()
	from := p.state
	p.state = StateIdle
	p.emit(Event{Kind: EventStateChanged, From: from, To: StateIdle})
}
