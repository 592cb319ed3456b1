package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

var ErrPlatformOrder = errors.New("physics: platform initial position is after its final position")

// Platform is a kinematic tile driven once per world tick.
type Platform interface {
	Body() *cp.Body
	Position() cp.Vector
	Update(dt float64)
	Dispose()
}

func validPlatformSize(width, height, speed float64) error {
	if width <= 0 || height <= 0 || speed <= 0 {
		return fmt.Errorf("physics: invalid platform size %.3fx%.3f speed %.3f", width, height, speed)
	}
	return nil
}

// addPlatformBody creates a kinematic box at pos and registers it.
func addPlatformBody(world *World, owner any, pos cp.Vector, width, height float64, cat Category) (*cp.Body, *cp.Shape) {
	if cat == CategoryNone {
		cat = CategoryPlatform
	}
	body := cp.NewKinematicBody()
	body.SetPosition(pos)
	world.AddBody(body, owner)

	shape := cp.NewBox(body, width, height, 0)
	shape.SetFriction(defaultFriction)
	shape.UserData = owner
	world.AddShape(shape, cat, MaskFor(cat), 0)
	return body, shape
}

// PlatformConfig describes a platform moving back and forth on a line.
type PlatformConfig struct {
	Initial cp.Vector
	Final   cp.Vector
	Width   float64
	Height  float64
	Speed   float64
	// SlowRadius is the distance from either end inside which the platform
	// eases in and out.
	SlowRadius float64
	// Reverse starts the platform at Final moving toward Initial.
	Reverse  bool
	Category Category
}

// LinearPlatform is a kinematic body that shuttles between two points.
type LinearPlatform struct {
	world *World
	cfg   PlatformConfig
	body  *cp.Body
	shape *cp.Shape

	dir         cp.Vector
	length      float64
	towardFinal bool
	disposed    bool
}

// NewLinearPlatform adds a moving platform to world. Final must not be
// before Initial on either axis.
func NewLinearPlatform(world *World, owner any, cfg PlatformConfig) (*LinearPlatform, error) {
	if world == nil {
		return nil, ErrNilWorld
	}
	d := cfg.Final.Sub(cfg.Initial)
	if d.X < 0 || d.Y < 0 {
		return nil, fmt.Errorf("%w: %v -> %v", ErrPlatformOrder, cfg.Initial, cfg.Final)
	}
	length := d.Length()
	if length == 0 {
		return nil, fmt.Errorf("%w: initial equals final", ErrPlatformOrder)
	}
	if err := validPlatformSize(cfg.Width, cfg.Height, cfg.Speed); err != nil {
		return nil, err
	}

	p := &LinearPlatform{
		world:       world,
		cfg:         cfg,
		dir:         d.Mult(1 / length),
		length:      length,
		towardFinal: !cfg.Reverse,
	}
	start := cfg.Initial
	if cfg.Reverse {
		start = cfg.Final
	}
	p.body, p.shape = addPlatformBody(world, owner, start, cfg.Width, cfg.Height, cfg.Category)
	return p, nil
}

func (p *LinearPlatform) Body() *cp.Body { return p.body }

func (p *LinearPlatform) Position() cp.Vector { return p.body.Position() }

func (p *LinearPlatform) Velocity() cp.Vector { return p.body.Velocity() }

func (p *LinearPlatform) MovingTowardFinal() bool { return p.towardFinal }

// Update sets the platform velocity for the next steps, easing near the
// ends and turning around once past them.
func (p *LinearPlatform) Update(dt float64) {
	if p == nil || p.disposed {
		return
	}
	pos := p.body.Position()
	t := pos.Sub(p.cfg.Initial).Dot(p.dir)
	switch {
	case t <= 0:
		p.towardFinal = true
	case t >= p.length:
		p.towardFinal = false
	}

	speed := p.cfg.Speed
	if r := p.cfg.SlowRadius; r > 0 {
		var dist float64
		switch {
		case t > 0 && t < r:
			dist = t
		case p.length-t > 0 && p.length-t < r:
			dist = p.length - t
		}
		if dist > 0 {
			speed *= math.Sqrt(dist / r)
		}
	}

	v := p.dir.Mult(speed)
	if !p.towardFinal {
		v = v.Neg()
	}
	p.body.SetVelocityVector(v)
}

// Dispose removes the platform. Calling it again is a no-op.
func (p *LinearPlatform) Dispose() {
	if p == nil || p.disposed {
		return
	}
	p.world.RemoveBody(p.body)
	p.disposed = true
}

// CircularConfig describes a platform orbiting the midpoint of Initial and
// Final. The platform itself never rotates.
type CircularConfig struct {
	Initial   cp.Vector
	Final     cp.Vector
	Width     float64
	Height    float64
	Speed     float64
	Clockwise bool
	// Reverse starts the platform at Final.
	Reverse  bool
	Category Category
}

// CircularPlatform moves at a constant speed around a circle whose diameter
// runs from Initial to Final.
type CircularPlatform struct {
	world    *World
	cfg      CircularConfig
	body     *cp.Body
	shape    *cp.Shape
	center   cp.Vector
	radius   float64
	disposed bool
}

func NewCircularPlatform(world *World, owner any, cfg CircularConfig) (*CircularPlatform, error) {
	if world == nil {
		return nil, ErrNilWorld
	}
	if cfg.Initial.Equal(cfg.Final) {
		return nil, fmt.Errorf("%w: circle has no diameter", ErrPlatformOrder)
	}
	if err := validPlatformSize(cfg.Width, cfg.Height, cfg.Speed); err != nil {
		return nil, err
	}
	p := &CircularPlatform{
		world:  world,
		cfg:    cfg,
		center: cfg.Initial.Lerp(cfg.Final, 0.5),
	}
	p.radius = cfg.Initial.Distance(p.center)
	start := cfg.Initial
	if cfg.Reverse {
		start = cfg.Final
	}
	p.body, p.shape = addPlatformBody(world, owner, start, cfg.Width, cfg.Height, cfg.Category)
	return p, nil
}

func (p *CircularPlatform) Body() *cp.Body      { return p.body }
func (p *CircularPlatform) Position() cp.Vector { return p.body.Position() }
func (p *CircularPlatform) Center() cp.Vector   { return p.center }
func (p *CircularPlatform) Radius() float64     { return p.radius }

// Update steers along the tangent. Once outside the circle, half of the
// pull back toward the center is blended in.
func (p *CircularPlatform) Update(dt float64) {
	if p == nil || p.disposed {
		return
	}
	pos := p.body.Position()
	toCenter := p.center.Sub(pos)
	tangent := toCenter.Perp()
	if p.cfg.Clockwise {
		tangent = toCenter.ReversePerp()
	}
	if tangent.LengthSq() == 0 {
		p.body.SetVelocityVector(cp.Vector{})
		return
	}
	v := tangent.Normalize().Mult(p.cfg.Speed)
	if pos.Distance(p.center) > p.radius {
		v = v.Add(toCenter).Mult(0.5)
	}
	p.body.SetVelocityVector(v)
}

func (p *CircularPlatform) Dispose() {
	if p == nil || p.disposed {
		return
	}
	p.world.RemoveBody(p.body)
	p.disposed = true
}
