package locomotion

import "github.com/milk9111/stfu/common"

// Vision debounces sight so an enemy neither reacts to a single glimpse
// nor forgets a player the instant the ray misses.
type Vision struct {
	delay   float64
	seesNow bool
	timer   common.Timer
}

func NewVision(delay float64) *Vision {
	return &Vision{delay: delay}
}

func (v *Vision) Reset() {
	v.seesNow = false
	v.timer.Reset()
}

func (v *Vision) Update(dt float64) {
	v.timer.Update(dt)
}

// SeesPlayer reports the raw sight state of the last check.
func (v *Vision) SeesPlayer() bool { return v.seesNow }

// CheckForPlayer feeds this tick's raw sight result and returns the
// debounced answer.
func (v *Vision) CheckForPlayer(inSight bool) bool {
	if inSight != v.seesNow {
		v.seesNow = inSight
		v.timer.SetDelay(v.delay)
	}
	if inSight {
		return v.timer.IsTimeUp()
	}
	return !v.timer.IsTimeUp()
}

// Movement tracks whether an enemy is stopped and delays turning around.
type Movement struct {
	delay     float64
	stopped   bool
	turning   bool
	turnTimer common.Timer
}

func NewMovement(turnAroundDelay float64) *Movement {
	return &Movement{delay: turnAroundDelay}
}

func (m *Movement) Reset() {
	m.stopped = false
	m.turning = false
	m.turnTimer.Reset()
}

func (m *Movement) Update(dt float64) {
	m.turnTimer.Update(dt)
}

func (m *Movement) Stopped() bool { return m.stopped }
func (m *Movement) Stop()         { m.stopped = true }
func (m *Movement) Move()         { m.stopped = false }

// CheckTurnAround passes should through and forgets a pending turn when it
// is false.
func (m *Movement) CheckTurnAround(should bool) bool {
	if !should {
		m.turning = false
	}
	return should
}

// TurnAround stops the enemy and reports true once the turn delay has
// elapsed, at which point the caller flips its facing.
func (m *Movement) TurnAround() bool {
	m.Stop()
	if !m.turning {
		m.turning = true
		m.turnTimer.SetDelay(m.delay)
	}
	if m.turnTimer.IsTimeUp() {
		m.turning = false
		return true
	}
	return false
}
