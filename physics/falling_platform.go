package physics

import (
	"fmt"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/stfu/common"
)

const (
	riderProbe   = 0.05
	landingSlack = 0.02
)

// FallState is the phase of a FallingPlatform.
type FallState int

const (
	FallResting FallState = iota
	FallArmed
	FallFalling
	FallGone
)

func (s FallState) String() string {
	switch s {
	case FallResting:
		return "resting"
	case FallArmed:
		return "armed"
	case FallFalling:
		return "falling"
	case FallGone:
		return "gone"
	}
	return fmt.Sprintf("fall_state(%d)", int(s))
}

// FallingConfig describes a one-way platform that drops once stood on.
type FallingConfig struct {
	Position cp.Vector
	Width    float64
	Height   float64
	// FallDelay runs from the first rider to the drop.
	FallDelay float64
	// ResetDelay runs from the drop to the platform reappearing at
	// Position.
	ResetDelay float64
	Category   Category
}

// FallingPlatform holds still until a character stands on it, then drops
// under gravity after FallDelay. It vanishes on reaching ground and is
// rebuilt in place ResetDelay after the drop.
type FallingPlatform struct {
	world *World
	owner any
	cfg   FallingConfig
	body  *cp.Body
	shape *cp.Shape

	state      FallState
	fallTimer  common.Timer
	resetTimer common.Timer
	disposed   bool
}

func NewFallingPlatform(world *World, owner any, cfg FallingConfig) (*FallingPlatform, error) {
	if world == nil {
		return nil, ErrNilWorld
	}
	if err := validPlatformSize(cfg.Width, cfg.Height, 1); err != nil {
		return nil, err
	}
	if cfg.FallDelay < 0 || cfg.ResetDelay <= 0 {
		return nil, fmt.Errorf("physics: falling platform delays %.3f/%.3f", cfg.FallDelay, cfg.ResetDelay)
	}
	p := &FallingPlatform{world: world, owner: owner, cfg: cfg}
	p.build()
	return p, nil
}

func (p *FallingPlatform) build() {
	p.body, p.shape = addPlatformBody(p.world, p.owner, p.cfg.Position, p.cfg.Width, p.cfg.Height, p.cfg.Category)
	p.state = FallResting
	p.fallTimer.Reset()
	p.resetTimer.Reset()
}

func (p *FallingPlatform) Body() *cp.Body      { return p.body }
func (p *FallingPlatform) Position() cp.Vector { return p.body.Position() }
func (p *FallingPlatform) State() FallState    { return p.state }

func (p *FallingPlatform) Update(dt float64) {
	if p == nil || p.disposed {
		return
	}
	switch p.state {
	case FallResting:
		if p.ridden() {
			p.state = FallArmed
			p.fallTimer.SetDelay(p.cfg.FallDelay)
		}
	case FallArmed:
		p.fallTimer.Update(dt)
		if p.fallTimer.IsTimeUp() {
			p.state = FallFalling
			p.resetTimer.SetDelay(p.cfg.ResetDelay)
		}
	case FallFalling:
		v := p.body.Velocity()
		v.Y += p.world.Settings().Gravity * dt
		p.body.SetVelocityVector(v)
		if p.landing(v.Y * dt) {
			p.world.RemoveBody(p.body)
			p.state = FallGone
		}
	}

	if p.state == FallFalling || p.state == FallGone {
		p.resetTimer.Update(dt)
		if p.resetTimer.IsTimeUp() {
			p.Reset()
		}
	}
}

// Reset puts the platform back at its spawn position, resting.
func (p *FallingPlatform) Reset() {
	if p == nil || p.disposed {
		return
	}
	p.world.RemoveBody(p.body)
	p.build()
}

// ridden reports a character touching the top surface.
func (p *FallingPlatform) ridden() bool {
	pos := p.body.Position()
	y := pos.Y - p.cfg.Height/2 - riderProbe
	half := p.cfg.Width / 2
	f := RayFilter{Self: p.body, Accept: CategoryPlayer | CategoryEnemy}
	return p.world.RayCastAny(cp.Vector{X: pos.X - half, Y: y}, cp.Vector{X: pos.X + half, Y: y}, f)
}

// landing reports ground within the distance the platform is about to fall.
func (p *FallingPlatform) landing(step float64) bool {
	pos := p.body.Position()
	reach := p.cfg.Height/2 + max(step, 0) + landingSlack
	f := RayFilter{Self: p.body, Accept: CategoryGround | CategoryDeath}
	half := p.cfg.Width / 2
	for _, x := range []float64{pos.X - half, pos.X, pos.X + half} {
		if _, ok := p.world.RayCast(cp.Vector{X: x, Y: pos.Y}, cp.Vector{X: x, Y: pos.Y + reach}, f); ok {
			return true
		}
	}
	return false
}

func (p *FallingPlatform) Dispose() {
	if p == nil || p.disposed {
		return
	}
	p.world.RemoveBody(p.body)
	p.disposed = true
}
