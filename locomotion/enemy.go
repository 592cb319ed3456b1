package locomotion

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/stfu/common"
	"github.com/milk9111/stfu/physics"
)

// EnemyTuning configures the enemy primitives. Distances are in units,
// speeds in units per second and angles in degrees.
type EnemyTuning struct {
	WalkPercent     float64
	SightForPlayer  float64
	SightForGround  float64
	SightDelay      float64
	TurnAroundDelay float64
	FlySpeed        float64
	DiveAngle       float64
}

func DefaultEnemyTuning() EnemyTuning {
	return EnemyTuning{
		WalkPercent:     0.3,
		SightForPlayer:  4,
		SightForGround:  0.25,
		SightDelay:      0.25,
		TurnAroundDelay: 0.5,
		FlySpeed:        2,
		DiveAngle:       45,
	}
}

// trappedMargin widens the ground-ahead probe when checking for a dead end.
const trappedMargin = 0.1

// Enemy is the reduced locomotion policy used by AI-driven characters. It
// exposes sensed predicates and actuation primitives; the decisions live in
// scripts.
type Enemy struct {
	body     *physics.Character
	tuning   EnemyTuning
	observer Observer

	state       State
	facingRight bool
	running     bool

	vision   *Vision
	movement *Movement
}

func NewEnemy(body *physics.Character, tuning EnemyTuning, observer Observer) *Enemy {
	return &Enemy{
		body:     body,
		tuning:   tuning,
		observer: observer,
		state:    StateIdle,
		vision:   NewVision(tuning.SightDelay),
		movement: NewMovement(tuning.TurnAroundDelay),
	}
}

func (e *Enemy) Body() *physics.Character { return e.body }
func (e *Enemy) State() State             { return e.state }
func (e *Enemy) FacingRight() bool        { return e.facingRight }
func (e *Enemy) Running() bool            { return e.running }
func (e *Enemy) Vision() *Vision          { return e.vision }
func (e *Enemy) Movement() *Movement      { return e.movement }
func (e *Enemy) Tuning() EnemyTuning      { return e.tuning }

func (e *Enemy) SetObserver(o Observer) { e.observer = o }

func (e *Enemy) SetFacingRight(right bool) { e.facingRight = right }

// Reset returns the policy to its spawn state.
func (e *Enemy) Reset() {
	e.state = StateIdle
	e.running = false
	e.vision.Reset()
	e.movement.Reset()
}

func (e *Enemy) emit(ev Event) {
	if e.observer != nil {
		e.observer(ev)
	}
}

func (e *Enemy) changeState(s State) {
	if s == e.state {
		return
	}
	from := e.state
	e.state = s
	e.emit(Event{Kind: EventStateChanged, From: from, To: s})
}

// Update advances the helpers and the body. A stopped enemy idles.
func (e *Enemy) Update(dt float64) {
	if e.body.Disposed() || e.body.Disabled() {
		return
	}
	e.vision.Update(dt)
	e.movement.Update(dt)
	e.body.Update(dt)

	if e.movement.Stopped() {
		e.Idle()
		e.StopMoving()
	}
	if !e.OnGround() && e.body.Velocity().Y > fallingSpeed {
		e.changeState(StateFalling)
	} else if e.state == StateFalling && e.OnGround() {
		e.changeState(StateIdle)
	}
}

func (e *Enemy) OnGround() bool    { return e.body.Sensor().OnGround() }
func (e *Enemy) OnLeftWall() bool  { return e.body.Sensor().OnLeftWall() }
func (e *Enemy) OnRightWall() bool { return e.body.Sensor().OnRightWall() }
func (e *Enemy) IsFalling() bool   { return !e.OnGround() }

// WallAhead reports a wall within dist in the facing direction.
func (e *Enemy) WallAhead(dist float64) bool {
	return e.body.Sensor().CheckForWallAhead(e.facingRight, dist)
}

// GroundAhead reports ground just beyond the leading edge.
func (e *Enemy) GroundAhead(dist float64) bool {
	return e.body.Sensor().CheckForGroundAhead(e.facingRight, dist)
}

// CheckForPlayer reports a debounced horizontal sighting of a player.
func (e *Enemy) CheckForPlayer() bool {
	seen := e.body.Sensor().CheckForPlayerHorizontally(e.facingRight, e.tuning.SightForPlayer)
	return e.vision.CheckForPlayer(seen)
}

// CheckForPlayerDiagonally reports a player along the dive angle.
func (e *Enemy) CheckForPlayerDiagonally() bool {
	return e.body.Sensor().CheckForPlayerDiagonally(e.facingRight, e.tuning.SightForPlayer, e.tuning.DiveAngle)
}

// CheckTrapped reports an enemy that cannot go anywhere: standing still on
// a ledge too small to walk, or boxed in by walls and drops.
func (e *Enemy) CheckTrapped() bool {
	if !e.body.CheckIfStill() {
		return false
	}
	s := e.body.Sensor()
	dist := e.tuning.SightForGround + trappedMargin
	groundRight := s.CheckForGroundAhead(true, dist)
	groundLeft := s.CheckForGroundAhead(false, dist)
	switch {
	case !groundRight && !groundLeft:
		return true
	case s.OnLeftWall() && s.OnRightWall():
		return true
	case !groundRight && s.OnLeftWall():
		return true
	case !groundLeft && s.OnRightWall():
		return true
	}
	return false
}

// Trapped stops the enemy for good.
func (e *Enemy) Trapped() {
	e.movement.Stop()
}

// CheckTurnAround reports whether a grounded enemy reached a ledge or a
// wall in its facing direction.
func (e *Enemy) CheckTurnAround() bool {
	if e.IsFalling() {
		return e.movement.CheckTurnAround(false)
	}
	if e.body.CheckIfNotMovingVertically() {
		if !e.GroundAhead(e.tuning.SightForGround) {
			return e.movement.CheckTurnAround(true)
		}
		if e.facingRight && e.OnRightWall() || !e.facingRight && e.OnLeftWall() {
			return e.movement.CheckTurnAround(true)
		}
	}
	return e.movement.CheckTurnAround(false)
}

// TurnAround stops and flips facing once the turn delay has elapsed.
func (e *Enemy) TurnAround() {
	e.StopMoving()
	if e.movement.TurnAround() {
		e.facingRight = !e.facingRight
		e.emit(Event{Kind: EventTurnedAround})
	}
}

// Walk moves in the facing direction at the walking pace.
func (e *Enemy) Walk() {
	e.running = false
	e.movement.Move()
	e.runFacing(e.tuning.WalkPercent)
}

// Run moves in the facing direction at full speed.
func (e *Enemy) Run() {
	e.running = true
	e.movement.Move()
	e.runFacing(1)
}

func (e *Enemy) runFacing(fraction float64) {
	if !e.OnGround() {
		return
	}
	e.changeState(StateRunning)
	if e.facingRight {
		e.body.RunRight(fraction)
	} else {
		e.body.RunLeft(fraction)
	}
}

// Idle stops the enemy and clears what it has seen.
func (e *Enemy) Idle() {
	e.running = false
	e.movement.Stop()
	e.vision.Reset()
	if e.state != StateFalling {
		e.changeState(StateIdle)
	}
}

func (e *Enemy) StopMoving() {
	if e.OnGround() {
		e.body.StopRunning()
	}
}

func (e *Enemy) flySpeed(fraction float64) float64 {
	return e.tuning.FlySpeed * common.Clamp(fraction, 0, 1)
}

// FlapLeft beats upward and to the left.
func (e *Enemy) FlapLeft(fraction float64) {
	e.flap(-1, fraction)
}

// FlapRight beats upward and to the right.
func (e *Enemy) FlapRight(fraction float64) {
	e.flap(1, fraction)
}

func (e *Enemy) flap(dir, fraction float64) {
	e.body.StopRunning()
	speed := e.flySpeed(fraction)
	e.body.SetVelocity(cp.Vector{X: dir * speed * 0.5, Y: -speed})
}

// DiveLeft dives angle degrees below the horizontal to the left.
func (e *Enemy) DiveLeft(fraction, angle float64) {
	e.body.SetVelocity(common.VectorFromAngle(common.DegreesToRadians(angle), e.flySpeed(fraction), false))
}

// DiveRight dives angle degrees below the horizontal to the right.
func (e *Enemy) DiveRight(fraction, angle float64) {
	e.body.SetVelocity(common.VectorFromAngle(common.DegreesToRadians(angle), e.flySpeed(fraction), true))
}

// Float rises straight up.
func (e *Enemy) Float(fraction float64) {
	e.body.StopRunning()
	e.body.SetVelocity(cp.Vector{Y: -e.flySpeed(fraction)})
}

// Glide holds up fraction of the enemy's weight for the rest of the frame.
func (e *Enemy) Glide(fraction float64) {
	g := e.body.World().Settings().Gravity
	e.body.ApplyForce(cp.Vector{Y: -g * e.body.Mass() * common.Clamp(fraction, 0, 1)})
}

// StopFlying kills horizontal velocity.
func (e *Enemy) StopFlying() {
	v := e.body.Velocity()
	e.body.SetVelocity(cp.Vector{Y: v.Y})
}
