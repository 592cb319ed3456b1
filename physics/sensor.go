package physics

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/stfu/common"
)

const (
	groundRayPx  = 2.1
	wallRayPx    = 3
	ceilingRayPx = 2
	headRayPx    = 4
	aheadRayPx   = 1
	groundDownPx = 4

	platformRiseTolerance = -0.01
	platformRayRiseLimit  = -1
	wallNormalThreshold   = 0.9
)

// contactLatch keeps a contact reported for a short window after it is
// lost, masking single-tick gaps in contact detection.
type contactLatch struct {
	timer   common.Timer
	delay   float64
	enabled bool
	prev    bool
	next    bool
}

func newContactLatch(delay float64) contactLatch {
	return contactLatch{delay: delay, enabled: true}
}

// observe records this tick's raw contact. The timer arms on a present to
// absent transition when arm is true.
func (l *contactLatch) observe(present, arm bool) {
	l.prev = l.next
	l.next = present
	if present {
		l.enabled = true
		return
	}
	if l.enabled && l.prev && arm {
		l.timer.SetDelay(l.delay)
	}
}

func (l *contactLatch) update(dt float64) {
	l.timer.Update(dt)
}

func (l *contactLatch) active() bool {
	if l.next {
		return true
	}
	return l.enabled && !l.timer.IsReset() && !l.timer.IsTimeUp()
}

// consume stops the latch from reporting stale contact until contact is
// seen again.
func (l *contactLatch) consume() {
	l.enabled = false
	l.timer.Reset()
}

func (l *contactLatch) reset() {
	l.timer.Reset()
	l.enabled = true
	l.prev = false
	l.next = false
}

type contactKey struct {
	self, other *cp.Shape
}

// Sensor answers ground, wall, ceiling and head questions for a character
// by combining contact tallies with short ray casts.
type Sensor struct {
	char *Character

	// IncludeDeath makes death fixtures count as ground for rays and
	// contacts, so an invulnerable character can stand on them.
	IncludeDeath bool
	// ContactFilter sees every contact after the sensor's own bookkeeping.
	ContactFilter ContactListener
	// PlayerAngle is the angle of the last player seen diagonally.
	PlayerAngle float64

	contacts int
	counted  map[contactKey]bool

	groundRay  bool
	leftRay    bool
	rightRay   bool
	onCeiling  bool
	charOnHead bool

	ground contactLatch
	left   contactLatch
	right  contactLatch
}

func newSensor(c *Character) *Sensor {
	delay := c.tuning.DebounceDelay
	return &Sensor{
		char:    c,
		counted: make(map[contactKey]bool),
		ground:  newContactLatch(delay),
		left:    newContactLatch(delay),
		right:   newContactLatch(delay),
	}
}

func (s *Sensor) reset() {
	s.resetContacts()
	s.groundRay = false
	s.leftRay = false
	s.rightRay = false
	s.onCeiling = false
	s.charOnHead = false
	s.ground.reset()
	s.left.reset()
	s.right.reset()
}

func (s *Sensor) resetContacts() {
	s.contacts = 0
	clear(s.counted)
}

// OnGround reports ground contact, debounced.
func (s *Sensor) OnGround() bool { return s.ground.active() }

// OnLeftWall reports left wall contact, debounced.
func (s *Sensor) OnLeftWall() bool { return s.left.active() }

// OnRightWall reports right wall contact, debounced.
func (s *Sensor) OnRightWall() bool { return s.right.active() }

func (s *Sensor) OnWall() bool { return s.OnLeftWall() || s.OnRightWall() }

func (s *Sensor) OnCeiling() bool { return s.onCeiling }

// CharOnHead reports whether another character stands on this one.
func (s *Sensor) CharOnHead() bool { return s.charOnHead }

// GroundContacts is the number of ground contacts currently tallied.
func (s *Sensor) GroundContacts() int { return s.contacts }

// ConsumeGround disables the ground debounce until ground is seen again.
func (s *Sensor) ConsumeGround() { s.ground.consume() }

// ConsumeWalls disables both wall debounces until a wall is seen again.
func (s *Sensor) ConsumeWalls() {
	s.left.consume()
	s.right.consume()
}

// Update re-evaluates every predicate, then advances the debounce timers.
func (s *Sensor) Update(dt float64) {
	s.performChecks()
	s.ground.update(dt)
	s.left.update(dt)
	s.right.update(dt)
}

func (s *Sensor) performChecks() {
	s.checkForGround()
	s.checkForWalls()
	s.checkForCeiling()
	s.checkForCharOnHead()

	vy := s.char.Velocity().Y
	s.ground.observe(s.contacts > 0 || s.groundRay, vy >= 0)
	s.left.observe(s.leftRay, true)
	s.right.observe(s.rightRay, true)
}

// groundLike lists the categories the character may stand on.
func (s *Sensor) groundLike() Category {
	cats := CategoryGround | s.char.cfg.GroundLike
	if s.IncludeDeath {
		cats |= CategoryDeath
	}
	return cats
}

func (s *Sensor) wallLike() Category {
	cats := CategoryGround
	if s.IncludeDeath {
		cats |= CategoryDeath
	}
	return cats
}

func (s *Sensor) filter(accept Category) RayFilter {
	return RayFilter{Self: s.char.torso, Group: s.char.group, Accept: accept}
}

func (s *Sensor) checkForGround() {
	if s.contacts > 0 {
		s.groundRay = false
		return
	}
	c := s.char
	start := c.Position()
	end := start.Add(cp.Vector{X: 0, Y: c.Extents().Y + common.ToUnits(groundRayPx)})
	f := s.filter(s.groundLike() | CategoryPlatform)
	vy := c.Velocity().Y
	f.Predicate = func(hit RayHit) bool {
		if hit.Category.Has(CategoryPlatform) {
			return vy > platformRayRiseLimit
		}
		return true
	}
	_, s.groundRay = c.world.RayCast(start, end, f)
}

func (s *Sensor) checkForWalls() {
	c := s.char
	center := c.Position()
	ext := c.Extents()
	top := cp.Vector{X: center.X, Y: center.Y - ext.Y + common.ToUnits(1)}
	reach := ext.X + common.ToUnits(wallRayPx)
	f := s.filter(s.wallLike())

	s.rightRay = s.anyRay(f, cp.Vector{X: reach}, center, top)
	s.leftRay = s.anyRay(f, cp.Vector{X: -reach}, center, top)
}

func (s *Sensor) checkForCeiling() {
	c := s.char
	center := c.Position()
	ext := c.Extents()
	up := cp.Vector{Y: -(ext.Y + common.ToUnits(ceilingRayPx))}
	edge := cp.Vector{X: ext.X - common.ToUnits(1)}
	s.onCeiling = s.anyRay(s.filter(s.wallLike()), up, center.Sub(edge), center.Add(edge))
}

func (s *Sensor) checkForCharOnHead() {
	c := s.char
	center := c.Position()
	ext := c.Extents()
	up := cp.Vector{Y: -(ext.Y + common.ToUnits(headRayPx))}
	edge := cp.Vector{X: ext.X - common.ToUnits(1)}
	f := s.filter(CategoryPlayer | CategoryEnemy)
	s.charOnHead = s.anyRay(f, up, center, center.Sub(edge), center.Add(edge))
}

func (s *Sensor) anyRay(f RayFilter, delta cp.Vector, starts ...cp.Vector) bool {
	for _, start := range starts {
		if _, ok := s.char.world.RayCast(start, start.Add(delta), f); ok {
			return true
		}
	}
	return false
}

func (s *Sensor) wheelBegin(c Contact) bool {
	if c.OtherSensor {
		s.forwardBegin(c)
		return false
	}
	ch := s.char
	switch {
	case c.OtherCategory.Has(CategoryPlatform):
		bb := c.Other.BB()
		platformY := (bb.B + bb.T) / 2
		if ch.wheel.Position().Y > platformY || ch.Velocity().Y < platformRiseTolerance {
			return false
		}
		s.count(c)
	case c.OtherCategory.Has(s.groundLike()):
		// side hits are left to the torso
		if math.Abs(c.Normal.X) < wallNormalThreshold {
			s.count(c)
		}
	}
	return s.forwardBegin(c)
}

func (s *Sensor) torsoBegin(c Contact) bool {
	if c.OtherCategory.Has(CategoryPlatform) {
		return false
	}
	return s.forwardBegin(c)
}

func (s *Sensor) end(c Contact) {
	key := contactKey{c.Self, c.Other}
	if s.counted[key] {
		delete(s.counted, key)
		if s.contacts > 0 {
			s.contacts--
		}
	}
	if s.ContactFilter != nil {
		s.ContactFilter.EndContact(c)
	}
}

func (s *Sensor) count(c Contact) {
	key := contactKey{c.Self, c.Other}
	if s.counted[key] {
		return
	}
	s.counted[key] = true
	s.contacts++
}

func (s *Sensor) forwardBegin(c Contact) bool {
	if s.ContactFilter == nil {
		return true
	}
	return s.ContactFilter.BeginContact(c)
}

func (s *Sensor) forward(facingRight bool) float64 {
	if facingRight {
		return 1
	}
	return -1
}

// CheckForWallAhead reports ground or an enemy within dist of the leading
// edge.
func (s *Sensor) CheckForWallAhead(facingRight bool, dist float64) bool {
	c := s.char
	dir := s.forward(facingRight)
	start := c.Position().Add(cp.Vector{X: dir * c.Extents().X})
	end := start.Add(cp.Vector{X: dir * (dist + common.ToUnits(aheadRayPx))})
	_, ok := c.world.RayCast(start, end, s.filter(s.wallLike()|CategoryEnemy))
	return ok
}

// CheckForGroundAhead reports whether there is something to stand on just
// beyond the leading edge.
func (s *Sensor) CheckForGroundAhead(facingRight bool, dist float64) bool {
	c := s.char
	dir := s.forward(facingRight)
	ext := c.Extents()
	start := c.Position().Add(cp.Vector{X: dir * ext.X})
	end := start.Add(cp.Vector{X: dir * (dist + common.ToUnits(aheadRayPx)), Y: ext.Y + common.ToUnits(groundDownPx)})
	_, ok := c.world.RayCast(start, end, s.filter(s.groundLike()|CategoryPlatform))
	return ok
}

// CheckForPlayerHorizontally reports a player within dist of the leading
// edge. Other fixtures on the line do not block sight.
func (s *Sensor) CheckForPlayerHorizontally(facingRight bool, dist float64) bool {
	c := s.char
	start := c.Position()
	end := start.Add(cp.Vector{X: s.forward(facingRight) * (dist + c.Extents().X)})
	return c.world.RayCastAny(start, end, s.filter(CategoryPlayer))
}

// CheckForEnemyHorizontally is CheckForPlayerHorizontally for enemies.
func (s *Sensor) CheckForEnemyHorizontally(facingRight bool, dist float64) bool {
	c := s.char
	start := c.Position()
	end := start.Add(cp.Vector{X: s.forward(facingRight) * (dist + c.Extents().X)})
	return c.world.RayCastAny(start, end, s.filter(CategoryEnemy))
}

// CheckForPlayerDiagonally looks for a player along a ray angleDeg below
// the horizontal and records the angle to it in PlayerAngle.
func (s *Sensor) CheckForPlayerDiagonally(facingRight bool, dist, angleDeg float64) bool {
	c := s.char
	ext := c.Extents()
	start := c.Position()
	length := dist + math.Max(ext.X, ext.Y)
	end := start.Add(common.VectorFromAngle(common.DegreesToRadians(angleDeg), length, facingRight))
	hit, ok := c.world.RayCast(start, end, s.filter(CategoryPlayer))
	if !ok {
		return false
	}
	d := hit.Point.Sub(start)
	s.PlayerAngle = math.Atan2(d.Y, math.Abs(d.X))
	return true
}
