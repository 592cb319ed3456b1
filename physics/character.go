package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/stfu/common"
)

var (
	ErrWheelProtrudes   = errors.New("physics: character width exceeds height")
	ErrInvalidCharacter = errors.New("physics: invalid character config")
)

// CharacterTuning holds every number the composite body acts on. Speeds are
// in units per second, the run speed is a wheel rate in radians per second.
type CharacterTuning struct {
	MaxMotorTorque        float64
	RunSpeed              float64
	AirControlSpeed       float64
	AirControlAbility     float64
	AirStopTime           float64
	JumpSpeed             float64
	WallJumpImpulse       float64
	TerminalVelocity      float64
	SlideTerminalVelocity float64
	BrakeSpeed            float64
	TorsoFriction         float64
	HeadFriction          float64
	WheelFriction         float64
	DebounceDelay         float64
	WallSlide             bool
}

// DefaultCharacterTuning is the player tuning the game ships with.
func DefaultCharacterTuning() CharacterTuning {
	return CharacterTuning{
		MaxMotorTorque:        0.3,
		RunSpeed:              35,
		AirControlSpeed:       3.6,
		AirControlAbility:     30,
		AirStopTime:           0.6,
		JumpSpeed:             6.4,
		WallJumpImpulse:       0.13,
		TerminalVelocity:      10,
		SlideTerminalVelocity: 1.1,
		BrakeSpeed:            0.5,
		TorsoFriction:         0,
		HeadFriction:          0.4,
		WheelFriction:         1,
		DebounceDelay:         0.05,
		WallSlide:             true,
	}
}

// CharacterConfig describes a character at spawn time. Position is the
// composite center and Width/Height the overall size, all in units.
type CharacterConfig struct {
	Position cp.Vector
	Width    float64
	Height   float64
	Density  float64
	Category Category
	// GroundLike lists the extra categories the character may stand on,
	// e.g. other players for players.
	GroundLike Category
	Tuning     CharacterTuning
}

const (
	edgeCatchSpeed  = 0.02
	edgeCatchPushX  = 0.1
	edgeCatchFallY  = 1
	wallSlideNudge  = 0.02
	stillThreshold  = 0.1
	defaultFriction = 0.8
)

// Character is the wheel and torso body pair used by every locomoting
// entity. The torso is held upright and carries hit detection; the wheel is
// driven by a motor so ground movement reads as rolling.
type Character struct {
	world  *World
	owner  any
	cfg    CharacterConfig
	tuning CharacterTuning
	group  uint

	torso      *cp.Body
	wheel      *cp.Body
	torsoShape *cp.Shape
	wheelShape *cp.Shape

	pivot   *cp.Constraint
	motor   *cp.Constraint
	upright *cp.Constraint
	brake   *cp.Constraint

	sensor *Sensor

	disabled bool
	disposed bool
}

func validateCharacterConfig(cfg CharacterConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: size %.3fx%.3f", ErrInvalidCharacter, cfg.Width, cfg.Height)
	}
	if cfg.Density <= 0 {
		return fmt.Errorf("%w: density %.3f", ErrInvalidCharacter, cfg.Density)
	}
	if cfg.Width > cfg.Height {
		return fmt.Errorf("%w: %.3f > %.3f", ErrWheelProtrudes, cfg.Width, cfg.Height)
	}
	return nil
}

// NewCharacter builds the composite body in world. A width greater than
// the height is rejected since the wheel would stick out of the torso.
func NewCharacter(world *World, owner any, cfg CharacterConfig) (*Character, error) {
	if world == nil {
		return nil, ErrNilWorld
	}
	if err := validateCharacterConfig(cfg); err != nil {
		return nil, err
	}
	c := &Character{
		world:  world,
		owner:  owner,
		cfg:    cfg,
		tuning: cfg.Tuning,
		group:  world.NewGroup(),
	}
	c.sensor = newSensor(c)
	c.build(cfg.Position)
	return c, nil
}

func (c *Character) torsoHeight() float64 {
	return c.cfg.Height - c.cfg.Width/2
}

func (c *Character) wheelRadius() float64 {
	return c.cfg.Width / 2
}

func (c *Character) build(center cp.Vector) {
	w := c.cfg.Width
	th := c.torsoHeight()
	r := c.wheelRadius()
	half := c.cfg.Density / 2

	torsoPos := cp.Vector{X: center.X, Y: center.Y - w/4}
	wheelPos := cp.Vector{X: torsoPos.X, Y: torsoPos.Y + th/2}

	torsoMass := half * w * th
	c.torso = cp.NewBody(torsoMass, cp.MomentForBox(torsoMass, w, th))
	c.torso.SetPosition(torsoPos)

	wheelMass := half * math.Pi * r * r
	c.wheel = cp.NewBody(wheelMass, cp.MomentForCircle(wheelMass, 0, r, cp.Vector{}))
	c.wheel.SetPosition(wheelPos)

	c.torsoShape = cp.NewBox(c.torso, w, th, 0)
	c.torsoShape.SetFriction(c.tuning.TorsoFriction)
	c.torsoShape.UserData = c.owner

	c.wheelShape = cp.NewCircle(c.wheel, r, cp.Vector{})
	c.wheelShape.SetFriction(c.tuning.WheelFriction)
	c.wheelShape.UserData = c.owner

	c.pivot = cp.NewPivotJoint(c.torso, c.wheel, wheelPos)
	c.pivot.SetCollideBodies(false)

	c.motor = cp.NewSimpleMotor(c.wheel, c.torso, 0)
	c.motor.SetMaxForce(c.tuning.MaxMotorTorque)

	c.upright = cp.NewRotaryLimitJoint(c.world.space.StaticBody, c.torso, 0, 0)
	c.brake = cp.NewRotaryLimitJoint(c.world.space.StaticBody, c.wheel, 0, 0)

	c.attach()
	c.disposed = false
	c.disabled = false
}

func (c *Character) attach() {
	w := c.world
	w.AddBody(c.torso, c.owner)
	w.AddBody(c.wheel, c.owner)

	mask := MaskFor(c.cfg.Category)
	w.AddShape(c.torsoShape, c.cfg.Category, mask, c.group)
	w.AddShape(c.wheelShape, c.cfg.Category, mask, c.group)
	w.SetContactListener(c.torsoShape, ContactFuncs{Begin: c.sensor.torsoBegin, End: c.sensor.end})
	w.SetContactListener(c.wheelShape, ContactFuncs{Begin: c.sensor.wheelBegin, End: c.sensor.end})

	w.AddConstraint(c.pivot)
	w.AddConstraint(c.motor)
	w.AddConstraint(c.upright)
}

func (c *Character) detach() {
	c.world.RemoveBody(c.wheel)
	c.world.RemoveBody(c.torso)
	c.sensor.resetContacts()
}

// Dispose removes the character from the world. Calling it again is a
// no-op.
func (c *Character) Dispose() {
	if c == nil || c.disposed {
		return
	}
	c.detach()
	c.disposed = true
}

func (c *Character) Disposed() bool {
	return c == nil || c.disposed
}

// Disable takes the bodies out of the simulation without discarding them.
func (c *Character) Disable() {
	if c == nil || c.disposed || c.disabled {
		return
	}
	c.detach()
	c.disabled = true
}

// Enable puts a disabled character back into the simulation.
func (c *Character) Enable() {
	if c == nil || c.disposed || !c.disabled {
		return
	}
	c.attach()
	c.disabled = false
}

func (c *Character) Disabled() bool {
	return c == nil || c.disabled
}

// Respawn rebuilds the bodies at position with a fresh sensor state.
func (c *Character) Respawn(position cp.Vector) {
	if c == nil {
		return
	}
	if !c.disposed {
		c.detach()
	}
	c.sensor.reset()
	c.build(position)
}

func (c *Character) Owner() any                { return c.owner }
func (c *Character) Sensor() *Sensor           { return c.sensor }
func (c *Character) Tuning() CharacterTuning   { return c.tuning }
func (c *Character) Config() CharacterConfig   { return c.cfg }
func (c *Character) Torso() *cp.Body           { return c.torso }
func (c *Character) Wheel() *cp.Body           { return c.wheel }
func (c *Character) Group() uint               { return c.group }
func (c *Character) Category() Category        { return c.cfg.Category }
func (c *Character) World() *World             { return c.world }
func (c *Character) WheelRadius() float64      { return c.wheelRadius() }
func (c *Character) MaxRunVelocity() float64   { return c.tuning.RunSpeed * c.wheelRadius() }
func (c *Character) BrakeEnabled() bool        { return c.world.space.ContainsConstraint(c.brake) }
func (c *Character) MotorRate() float64        { return c.motor.Class.(*cp.SimpleMotor).Rate }
func (c *Character) setMotorRate(rate float64) { c.motor.Class.(*cp.SimpleMotor).Rate = rate }

// Position is the composite center.
func (c *Character) Position() cp.Vector {
	p := c.torso.Position()
	p.Y += c.cfg.Width / 4
	return p
}

// Extents are the half width and half height of the composite.
func (c *Character) Extents() cp.Vector {
	return cp.Vector{X: c.cfg.Width / 2, Y: c.cfg.Height / 2}
}

// SmoothedPosition is the render-facing composite center.
func (c *Character) SmoothedPosition() cp.Vector {
	t, ok := c.world.SmoothedTransform(c.torso)
	if !ok {
		return c.Position()
	}
	p := t.Position
	p.Y += c.cfg.Width / 4
	return p
}

// WheelAngle is the render-facing wheel rotation.
func (c *Character) WheelAngle() float64 {
	t, ok := c.world.SmoothedTransform(c.wheel)
	if !ok {
		return c.wheel.Angle()
	}
	return t.Angle
}

func (c *Character) Velocity() cp.Vector {
	return c.torso.Velocity()
}

// SetVelocity sets the linear velocity of both bodies so the pivot does
// not pull them apart.
func (c *Character) SetVelocity(v cp.Vector) {
	c.torso.SetVelocityVector(v)
	c.wheel.SetVelocityVector(v)
}

func (c *Character) setVelocityX(x float64) {
	v := c.Velocity()
	v.X = x
	c.SetVelocity(v)
}

func (c *Character) setVelocityY(y float64) {
	v := c.Velocity()
	v.Y = y
	c.SetVelocity(v)
}

// JointSpeed is the wheel angular velocity relative to the torso.
func (c *Character) JointSpeed() float64 {
	return c.wheel.AngularVelocity() - c.torso.AngularVelocity()
}

func (c *Character) enableBrake() {
	if c.BrakeEnabled() {
		return
	}
	joint := c.brake.Class.(*cp.RotaryLimitJoint)
	joint.Min = c.wheel.Angle()
	joint.Max = joint.Min
	c.world.AddConstraint(c.brake)
}

func (c *Character) disableBrake() {
	c.world.RemoveConstraint(c.brake)
}

func (c *Character) moveOnGround() {
	c.disableBrake()
}

func (c *Character) moveInAir() {
	c.setMotorRate(0)
}

// RunRight drives the wheel toward fraction of the max run speed.
func (c *Character) RunRight(fraction float64) {
	c.moveOnGround()
	c.setMotorRate(c.tuning.RunSpeed * common.Clamp(fraction, 0, 1))
}

// RunLeft drives the wheel toward fraction of the max run speed.
func (c *Character) RunLeft(fraction float64) {
	c.moveOnGround()
	c.setMotorRate(-c.tuning.RunSpeed * common.Clamp(fraction, 0, 1))
}

// StopRunning zeroes the motor target. The brake latches later once the
// wheel has slowed down on the ground.
func (c *Character) StopRunning() {
	c.setMotorRate(0)
}

// FloatRight nudges horizontal velocity toward the air control cap.
func (c *Character) FloatRight(fraction, dt float64) {
	if c.sensor.OnRightWall() {
		return
	}
	c.float(1, fraction, dt)
}

// FloatLeft nudges horizontal velocity toward the air control cap.
func (c *Character) FloatLeft(fraction, dt float64) {
	if c.sensor.OnLeftWall() {
		return
	}
	c.float(-1, fraction, dt)
}

func (c *Character) float(dir, fraction, dt float64) {
	c.moveInAir()
	fraction = common.Clamp(fraction, 0, 1)
	limit := c.tuning.AirControlSpeed * fraction
	vx := c.Velocity().X * dir
	if vx >= limit {
		return
	}
	vx = math.Min(vx+c.tuning.AirControlAbility*fraction*dt, limit)
	c.setVelocityX(vx * dir)
}

// StopFloating bleeds off horizontal velocity while airborne.
func (c *Character) StopFloating(dt float64) {
	c.moveInAir()
	if c.tuning.AirStopTime <= 0 {
		return
	}
	vx := c.Velocity().X
	vx -= vx / c.tuning.AirStopTime * dt
	c.setVelocityX(vx)
}

// Jump launches the character upward and consumes ground contact so the
// debounce cannot report ground on the way up.
func (c *Character) Jump() {
	c.sensor.ConsumeGround()
	c.disableBrake()
	c.moveInAir()
	c.setVelocityY(-c.tuning.JumpSpeed)
}

// WallJump pushes the character away from the wall it touches. It has no
// effect on the ground or away from walls.
func (c *Character) WallJump() bool {
	s := c.sensor
	if s.OnGround() || !s.OnWall() {
		return false
	}
	dir := 1.0
	if s.OnRightWall() {
		dir = -1
	}
	s.ConsumeWalls()
	c.moveInAir()
	mass := c.torso.Mass() + c.wheel.Mass()
	c.setVelocityX(dir * c.tuning.WallJumpImpulse / mass)
	return true
}

// Dash launches the character along the ground at multiplier times the
// max run velocity. dir is -1 or 1.
func (c *Character) Dash(dir, multiplier float64) {
	c.moveOnGround()
	rate := dir * c.tuning.RunSpeed * multiplier
	c.setMotorRate(rate)
	c.wheel.SetAngularVelocity(rate)
	c.setVelocityX(dir * multiplier * c.MaxRunVelocity())
}

// Mass is the combined mass of torso and wheel.
func (c *Character) Mass() float64 {
	return c.torso.Mass() + c.wheel.Mass()
}

// ApplyForce adds force to both bodies in proportion to their mass for the
// rest of the frame.
func (c *Character) ApplyForce(f cp.Vector) {
	if c == nil || c.disposed || c.disabled {
		return
	}
	mt, mw := c.torso.Mass(), c.wheel.Mass()
	total := mt + mw
	if total <= 0 {
		return
	}
	c.world.ApplyForce(c.torso, f.Mult(mt/total))
	c.world.ApplyForce(c.wheel, f.Mult(mw/total))
}

// Update refreshes the sensor and applies the per-tick corrections: brake
// latching, head friction, terminal velocity, wall slide and edge catch.
func (c *Character) Update(dt float64) {
	if c == nil || c.disposed || c.disabled {
		return
	}
	s := c.sensor
	s.Update(dt)

	if s.OnGround() {
		if c.MotorRate() == 0 && math.Abs(c.JointSpeed()) < c.tuning.BrakeSpeed {
			c.enableBrake()
		}
	} else {
		c.disableBrake()
	}

	if s.CharOnHead() {
		c.torsoShape.SetFriction(c.tuning.HeadFriction)
	} else {
		c.torsoShape.SetFriction(c.tuning.TorsoFriction)
	}

	v := c.Velocity()
	if c.tuning.TerminalVelocity > 0 && v.Y > c.tuning.TerminalVelocity {
		c.setVelocityY(c.tuning.TerminalVelocity)
	}

	if c.edgeCaught() {
		c.catchEdge()
		return
	}
	if c.tuning.WallSlide {
		c.wallSlide()
	}
}

func (c *Character) edgeCaught() bool {
	s := c.sensor
	if s.OnGround() || s.OnLeftWall() == s.OnRightWall() {
		return false
	}
	return math.Abs(c.Velocity().Y) < edgeCatchSpeed
}

func (c *Character) catchEdge() {
	v := c.Velocity()
	if c.sensor.OnLeftWall() {
		v.X += edgeCatchPushX
	} else {
		v.X -= edgeCatchPushX
	}
	v.Y = edgeCatchFallY
	c.SetVelocity(v)
}

func (c *Character) wallSlide() {
	s := c.sensor
	if s.OnGround() || !s.OnWall() {
		return
	}
	v := c.Velocity()
	toward := 1.0
	if s.OnLeftWall() {
		toward = -1
	}
	// moving off the wall, e.g. right after a wall jump
	if v.X*toward < -wallSlideNudge {
		return
	}
	v.X = wallSlideNudge * toward
	if c.tuning.SlideTerminalVelocity > 0 && v.Y > c.tuning.SlideTerminalVelocity {
		v.Y = c.tuning.SlideTerminalVelocity
	}
	c.SetVelocity(v)
}

// CheckIfStill reports whether the character is nearly at rest.
func (c *Character) CheckIfStill() bool {
	v := c.Velocity()
	return math.Abs(v.X) < stillThreshold && math.Abs(v.Y) < stillThreshold
}

// CheckIfNotMovingVertically reports whether vertical speed is nearly zero.
func (c *Character) CheckIfNotMovingVertically() bool {
	return math.Abs(c.Velocity().Y) < stillThreshold
}
