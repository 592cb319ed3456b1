package physics

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/stfu/common"
)

// bulletLinger keeps a pass-through bullet alive briefly after it first
// touches something, so it still shoves what it hit.
const bulletLinger = 0.025

// BulletConfig describes one shot. Sizes and Range are in units.
type BulletConfig struct {
	Position cp.Vector
	Width    float64
	Height   float64
	Density  float64
	Angle    float64
	// Range is how far the bullet may travel along either axis.
	Range float64
	// Shooter is the 1-based index of the player firing.
	Shooter int
	// GoneOnCollision removes the bullet on its first solid contact and
	// lets it hit ground. Otherwise it passes through ground and lingers.
	GoneOnCollision bool
}

// Bullet is a gravity-free box fired by a player. It never touches its
// shooter or other bullets.
type Bullet struct {
	world  *World
	cfg    BulletConfig
	body   *cp.Body
	shape  *cp.Shape
	origin cp.Vector

	hit    bool
	linger common.Timer
	done   bool
}

func NewBullet(world *World, owner any, cfg BulletConfig) (*Bullet, error) {
	if world == nil {
		return nil, ErrNilWorld
	}
	cat, err := PlayerBulletCategory(cfg.Shooter)
	if err != nil {
		return nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Density <= 0 || cfg.Range <= 0 {
		return nil, fmt.Errorf("physics: invalid bullet %.3fx%.3f density %.3f range %.3f", cfg.Width, cfg.Height, cfg.Density, cfg.Range)
	}

	b := &Bullet{world: world, cfg: cfg, origin: cfg.Position}
	mass := cfg.Density * cfg.Width * cfg.Height
	b.body = cp.NewBody(mass, math.Inf(1))
	b.body.SetPosition(cfg.Position)
	b.body.SetAngle(cfg.Angle)
	b.body.SetVelocityUpdateFunc(func(body *cp.Body, _ cp.Vector, damping, dt float64) {
		cp.BodyUpdateVelocity(body, cp.Vector{}, damping, dt)
	})
	world.AddBody(b.body, owner)

	b.shape = cp.NewBox(b.body, cfg.Width, cfg.Height, 0)
	b.shape.UserData = owner
	world.AddShape(b.shape, cat, BulletMask(cat, cfg.GoneOnCollision), 0)
	world.SetContactListener(b.shape, ContactFuncs{Begin: b.begin})
	return b, nil
}

func (b *Bullet) Body() *cp.Body      { return b.body }
func (b *Bullet) Position() cp.Vector { return b.body.Position() }
func (b *Bullet) Velocity() cp.Vector { return b.body.Velocity() }
func (b *Bullet) Done() bool          { return b == nil || b.done }

// Fly launches the bullet at velocity v.
func (b *Bullet) Fly(v cp.Vector) {
	b.body.SetVelocityVector(v)
}

func (b *Bullet) begin(c Contact) bool {
	if c.OtherSensor {
		return false
	}
	if b.cfg.GoneOnCollision {
		b.hit = true
		return true
	}
	if c.OtherCategory.Has(CategoryGround | CategoryPlatform) {
		return false
	}
	if b.linger.IsReset() {
		b.linger.SetDelay(bulletLinger)
	}
	return true
}

// Update retires the bullet once it has hit something or flown out of
// range. Removal happens here rather than in the contact callback since
// the space is locked during a step.
func (b *Bullet) Update(dt float64) {
	if b.Done() {
		return
	}
	d := b.body.Position().Sub(b.origin)
	if b.hit || math.Abs(d.X) > b.cfg.Range || math.Abs(d.Y) > b.cfg.Range {
		b.Dispose()
		return
	}
	if !b.linger.IsReset() {
		b.linger.Update(dt)
		if b.linger.IsTimeUp() {
			b.Dispose()
		}
	}
}

func (b *Bullet) Dispose() {
	if b.Done() {
		return
	}
	b.world.RemoveBody(b.body)
	b.done = true
}
