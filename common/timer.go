package common

// Timer counts a delay down to expiry. The zero value is reset: not armed
// and already time-up, so callers can test IsTimeUp without arming first.
type Timer struct {
	delay     float64
	remaining float64
	armed     bool
}

// Reset disarms the timer.
func (t *Timer) Reset() {
	if t == nil {
		return
	}
	t.delay = 0
	t.remaining = 0
	t.armed = false
}

// IsReset reports whether the timer has not been armed since the last Reset.
func (t *Timer) IsReset() bool {
	return t == nil || !t.armed
}

// SetDelay arms the timer to expire after delay seconds.
func (t *Timer) SetDelay(delay float64) {
	if t == nil {
		return
	}
	if delay < 0 {
		delay = 0
	}
	t.delay = delay
	t.remaining = delay
	t.armed = true
}

// IsTimeUp reports whether the armed delay has elapsed. A reset timer is
// always time-up.
func (t *Timer) IsTimeUp() bool {
	return t == nil || !t.armed || t.remaining <= 0
}

// Update advances the timer by dt seconds.
func (t *Timer) Update(dt float64) {
	if t == nil || !t.armed || t.remaining <= 0 {
		return
	}
	t.remaining -= dt
	if t.remaining < 0 {
		t.remaining = 0
	}
}

// Time returns the time elapsed since the timer was armed.
func (t *Timer) Time() float64 {
	if t.IsReset() {
		return 0
	}
	return t.delay - t.remaining
}

// Remaining returns the time left before expiry.
func (t *Timer) Remaining() float64 {
	if t.IsReset() {
		return 0
	}
	return t.remaining
}

// Delay returns the delay the timer was last armed with.
func (t *Timer) Delay() float64 {
	if t == nil {
		return 0
	}
	return t.delay
}

// PercentFromTimeUp returns the fraction of the delay still left: 1 right
// after arming, 0 once expired or reset.
func (t *Timer) PercentFromTimeUp() float64 {
	if t.IsReset() || t.delay <= 0 {
		return 0
	}
	return t.remaining / t.delay
}

// Progress returns the fraction of the delay already elapsed.
func (t *Timer) Progress() float64 {
	if t.IsReset() {
		return 0
	}
	if t.delay <= 0 {
		return 1
	}
	return 1 - t.remaining/t.delay
}
