package physics

import "testing"

func TestContactLatchDebounce(t *testing.T) {
	const (
		delay = 0.0625
		dt    = 0.03125
	)
	cases := []struct {
		name    string
		present []bool
		arm     bool
		consume int // tick index to consume before observing, -1 = never
		want    []bool
	}{
		{"gap_is_masked", []bool{true, false, true}, true, -1, []bool{true, true, true}},
		{"absence_outlasts_window", []bool{true, false, false, false}, true, -1, []bool{true, true, false, false}},
		{"rising_reports_immediately", []bool{true, false}, false, -1, []bool{true, false}},
		{"consumed_reports_immediately", []bool{true, false, false}, true, 1, []bool{true, false, false}},
		{"consumed_reenabled_by_contact", []bool{true, false, true, false}, true, 1, []bool{true, false, true, true}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			l := newContactLatch(delay)
			for i, present := range c.present {
				if i == c.consume {
					l.consume()
				}
				l.observe(present, c.arm)
				l.update(dt)
				if got := l.active(); got != c.want[i] {
					t.Fatalf("tick %d: expected %v, got %v", i, c.want[i], got)
				}
			}
		})
	}
}

func TestContactLatchReset(t *testing.T) {
	l := newContactLatch(0.0625)
	l.observe(true, true)
	l.observe(false, true)
	if !l.active() {
		t.Fatalf("expected latch active inside window")
	}
	l.reset()
	if l.active() {
		t.Fatalf("expected latch inactive after reset")
	}
}
