package physics

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
)

const (
	collisionTypeStatic cp.CollisionType = iota + 1
	collisionTypeListener
)

var ErrNilWorld = errors.New("physics: nil world")

// Settings configures a World once at construction.
type Settings struct {
	Gravity            float64
	VelocityIterations int
	PositionIterations int
	CollisionSlop      float64
	FixedStep          float64
	MaxSteps           int
}

// DefaultSettings mirrors the tuning the game ships with: 120Hz stepping,
// at most four sub-steps per frame.
func DefaultSettings() Settings {
	return Settings{
		Gravity:            22,
		VelocityIterations: 8,
		PositionIterations: 2,
		CollisionSlop:      0.005,
		FixedStep:          1.0 / 120,
		MaxSteps:           4,
	}
}

// Transform is a body position and rotation.
type Transform struct {
	Position cp.Vector
	Angle    float64
}

// Lerp blends from t toward o by ratio.
func (t Transform) Lerp(o Transform, ratio float64) Transform {
	return Transform{
		Position: t.Position.Lerp(o.Position, ratio),
		Angle:    t.Angle + (o.Angle-t.Angle)*ratio,
	}
}

type bodyState struct {
	owner    any
	force    cp.Vector
	previous Transform
	smoothed Transform
}

// World owns the chipmunk space and everything the simulation needs on top
// of it: owner lookup, per-frame force accumulation, smoothed transforms and
// contact dispatch.
type World struct {
	space     *cp.Space
	settings  Settings
	scheduler *FixedStepScheduler

	bodies    map[*cp.Body]*bodyState
	order     []*cp.Body
	listeners map[*cp.Shape]ContactListener
	nextGroup uint
}

func NewWorld(settings Settings) (*World, error) {
	if settings.VelocityIterations+settings.PositionIterations < 1 {
		return nil, fmt.Errorf("physics: solver iterations must be positive, got %d+%d", settings.VelocityIterations, settings.PositionIterations)
	}

	space := cp.NewSpace()
	// chipmunk has a single solver loop, so velocity and position
	// iterations share it.
	space.Iterations = uint(settings.VelocityIterations + settings.PositionIterations)
	space.SetGravity(cp.Vector{X: 0, Y: settings.Gravity})
	if settings.CollisionSlop > 0 {
		space.SetCollisionSlop(settings.CollisionSlop)
	}

	w := &World{
		space:     space,
		settings:  settings,
		bodies:    make(map[*cp.Body]*bodyState),
		listeners: make(map[*cp.Shape]ContactListener),
	}

	sched, err := NewFixedStepScheduler(settings.FixedStep, settings.MaxSteps, w.singleStep, w.postStepping)
	if err != nil {
		return nil, err
	}
	w.scheduler = sched
	w.setupHandlers()
	return w, nil
}

// Space returns the underlying chipmunk space.
func (w *World) Space() *cp.Space {
	if w == nil {
		return nil
	}
	return w.space
}

func (w *World) Settings() Settings {
	if w == nil {
		return Settings{}
	}
	return w.settings
}

// Update advances the world by one frame of wall-clock time.
func (w *World) Update(frameDt float64) int {
	if w == nil {
		return 0
	}
	return w.scheduler.Update(frameDt)
}

// SimulatedDelta is the simulated time covered by the last Update.
func (w *World) SimulatedDelta() float64 {
	if w == nil {
		return 0
	}
	return w.scheduler.SimulatedDelta()
}

// Ratio is the interpolation ratio of the last Update.
func (w *World) Ratio() float64 {
	if w == nil {
		return 0
	}
	return w.scheduler.Ratio()
}

func (w *World) singleStep(dt float64) {
	w.SnapshotTransforms()
	w.Step(dt)
}

func (w *World) postStepping() {
	w.SmoothTransforms(w.scheduler.Ratio())
	w.ClearForces()
}

// Step performs exactly one solver step. Accumulated forces are re-applied
// first because chipmunk zeroes body forces after integrating them.
func (w *World) Step(dt float64) {
	if w == nil || w.space == nil {
		return
	}
	for _, b := range w.order {
		st := w.bodies[b]
		if st == nil || b.GetType() != cp.BODY_DYNAMIC {
			continue
		}
		b.SetForce(st.force)
	}
	w.space.Step(dt)
}

// ApplyForce adds a force to body that stays applied for every sub-step of
// the current frame.
func (w *World) ApplyForce(b *cp.Body, f cp.Vector) {
	if w == nil || b == nil {
		return
	}
	st := w.bodies[b]
	if st == nil {
		return
	}
	st.force = st.force.Add(f)
}

// Force returns the force accumulated on body this frame.
func (w *World) Force(b *cp.Body) cp.Vector {
	if w == nil {
		return cp.Vector{}
	}
	if st := w.bodies[b]; st != nil {
		return st.force
	}
	return cp.Vector{}
}

// ClearForces drops all accumulated forces. Called once per frame after all
// sub-steps.
func (w *World) ClearForces() {
	if w == nil {
		return
	}
	for _, b := range w.order {
		if st := w.bodies[b]; st != nil {
			st.force = cp.Vector{}
		}
		b.SetForce(cp.Vector{})
	}
}

// SnapshotTransforms records the current transform of every dynamic body as
// its previous transform and resets the smoothed one to match.
func (w *World) SnapshotTransforms() {
	if w == nil {
		return
	}
	for _, b := range w.order {
		st := w.bodies[b]
		if st == nil || b.GetType() == cp.BODY_STATIC {
			continue
		}
		cur := Transform{Position: b.Position(), Angle: b.Angle()}
		st.previous = cur
		st.smoothed = cur
	}
}

// SmoothTransforms blends previous and current transforms by ratio.
func (w *World) SmoothTransforms(ratio float64) {
	if w == nil {
		return
	}
	for _, b := range w.order {
		st := w.bodies[b]
		if st == nil || b.GetType() == cp.BODY_STATIC {
			continue
		}
		cur := Transform{Position: b.Position(), Angle: b.Angle()}
		st.smoothed = st.previous.Lerp(cur, ratio)
	}
}

// SmoothedTransform returns the render-facing transform of body.
func (w *World) SmoothedTransform(b *cp.Body) (Transform, bool) {
	if w == nil {
		return Transform{}, false
	}
	st := w.bodies[b]
	if st == nil {
		return Transform{}, false
	}
	return st.smoothed, true
}

// AddBody adds body to the space and records its owner.
func (w *World) AddBody(b *cp.Body, owner any) *cp.Body {
	if w == nil || b == nil {
		return b
	}
	if _, ok := w.bodies[b]; ok {
		return b
	}
	b.UserData = owner
	if b != w.space.StaticBody {
		w.space.AddBody(b)
	}
	t := Transform{Position: b.Position(), Angle: b.Angle()}
	w.bodies[b] = &bodyState{owner: owner, previous: t, smoothed: t}
	w.order = append(w.order, b)
	return b
}

// AddShape adds shape with the given category and mask. A non-zero group
// disables collisions between shapes sharing it.
func (w *World) AddShape(s *cp.Shape, category, mask Category, group uint) *cp.Shape {
	if w == nil || s == nil {
		return s
	}
	s.SetFilter(Filter(category, mask, group))
	if s.Body() == w.space.StaticBody || s.Body().GetType() == cp.BODY_STATIC {
		s.SetCollisionType(collisionTypeStatic)
	}
	if !w.space.ContainsShape(s) {
		w.space.AddShape(s)
	}
	return s
}

// AddStaticBox adds an axis-aligned static box owned by owner.
func (w *World) AddStaticBox(bb cp.BB, category Category, owner any) *cp.Shape {
	if w == nil {
		return nil
	}
	shape := cp.NewBox2(w.space.StaticBody, bb, 0)
	shape.SetFriction(defaultFriction)
	shape.UserData = owner
	return w.AddShape(shape, category, MaskFor(category), 0)
}

// AddSensorBox adds a static box that reports contacts with mask without
// blocking anything.
func (w *World) AddSensorBox(bb cp.BB, category, mask Category, owner any) *cp.Shape {
	if w == nil {
		return nil
	}
	shape := cp.NewBox2(w.space.StaticBody, bb, 0)
	shape.SetSensor(true)
	shape.UserData = owner
	return w.AddShape(shape, category, mask, 0)
}

// AddConstraint adds c unless it is already in the space.
func (w *World) AddConstraint(c *cp.Constraint) {
	if w == nil || c == nil || w.space.ContainsConstraint(c) {
		return
	}
	w.space.AddConstraint(c)
}

// RemoveConstraint removes c. Removing a constraint twice is a no-op.
func (w *World) RemoveConstraint(c *cp.Constraint) {
	if w == nil || c == nil || !w.space.ContainsConstraint(c) {
		return
	}
	w.space.RemoveConstraint(c)
}

// RemoveShape removes s and its contact listener. Removing twice is a no-op.
func (w *World) RemoveShape(s *cp.Shape) {
	if w == nil || s == nil {
		return
	}
	delete(w.listeners, s)
	if w.space.ContainsShape(s) {
		w.space.RemoveShape(s)
	}
}

// RemoveBody removes body along with its shapes and constraints. Removing a
// body that is not in the world is a no-op.
func (w *World) RemoveBody(b *cp.Body) {
	if w == nil || b == nil {
		return
	}
	if _, ok := w.bodies[b]; !ok {
		return
	}
	var constraints []*cp.Constraint
	b.EachConstraint(func(c *cp.Constraint) { constraints = append(constraints, c) })
	for _, c := range constraints {
		w.RemoveConstraint(c)
	}
	var shapes []*cp.Shape
	b.EachShape(func(s *cp.Shape) { shapes = append(shapes, s) })
	for _, s := range shapes {
		w.RemoveShape(s)
	}
	if w.space.ContainsBody(b) {
		w.space.RemoveBody(b)
	}
	delete(w.bodies, b)
	for i, ob := range w.order {
		if ob == b {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

// ContainsBody reports whether body is registered with the world.
func (w *World) ContainsBody(b *cp.Body) bool {
	if w == nil {
		return false
	}
	_, ok := w.bodies[b]
	return ok
}

// Owner returns the owner recorded for body.
func (w *World) Owner(b *cp.Body) any {
	if w == nil || b == nil {
		return nil
	}
	if st := w.bodies[b]; st != nil {
		return st.owner
	}
	return b.UserData
}

// NewGroup returns a fresh non-zero shape filter group.
func (w *World) NewGroup() uint {
	if w == nil {
		return 0
	}
	w.nextGroup++
	return w.nextGroup
}

// BodyCount returns the number of registered bodies.
func (w *World) BodyCount() int {
	if w == nil {
		return 0
	}
	return len(w.order)
}

// EachShape calls fn for every shape in the space.
func (w *World) EachShape(fn func(s *cp.Shape)) {
	if w == nil || fn == nil {
		return
	}
	w.space.EachShape(fn)
}
