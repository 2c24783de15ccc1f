package inspector

import (
	"time"
)

// Decision is the outcome of one trigger check.
type Decision int

const (
	// Wait means the cooldown has not elapsed.
	Wait Decision = iota
	// Fire means a capture should be sent now.
	Fire
	// DroppedInFlight means the cooldown elapsed while a capture was
	// still outstanding.
	DroppedInFlight
	// Debounced means the point matches the last dispatched capture.
	Debounced
)

func (d Decision) String() string {
	switch d {
	case Fire:
		return "fire"
	case DroppedInFlight:
		return "dropped-in-flight"
	case Debounced:
		return "debounced"
	default:
		return "wait"
	}
}

// Trigger gates capture requests with a repeating cooldown, an in-flight
// guard and a debounce against the last dispatched point.
//
// The cooldown starts on the first check, so the first capture goes out
// one cooldown after the inspector begins ticking.
type Trigger struct {
	cooldown time.Duration
	armed    bool
	prev     time.Time
	elapsed  time.Duration

	hasLast      bool
	lastX, lastY int
}

// NewTrigger returns a trigger with the given cooldown.
func NewTrigger(cooldown time.Duration) *Trigger {
	return &Trigger{cooldown: cooldown}
}

// Cooldown returns the current cooldown.
func (t *Trigger) Cooldown() time.Duration { return t.cooldown }

// SetCooldown changes the cooldown without resetting progress towards it.
func (t *Trigger) SetCooldown(d time.Duration) { t.cooldown = d }

// Check advances the cooldown to now and decides whether a capture at x,y
// should be sent. A Fire decision records the point as dispatched.
func (t *Trigger) Check(now time.Time, x, y int, inFlight bool) Decision {
	if !t.armed {
		t.armed = true
		t.prev = now
		return Wait
	}
	if delta := now.Sub(t.prev); delta > 0 {
		t.elapsed += delta
	}
	t.prev = now
	if t.elapsed < t.cooldown {
		return Wait
	}
	t.elapsed = 0

	if inFlight {
		return DroppedInFlight
	}
	if t.hasLast && t.lastX == x && t.lastY == y {
		return Debounced
	}
	t.hasLast = true
	t.lastX, t.lastY = x, y
	return Fire
}

// Forget clears the debounce so the next elapsed cooldown fires even at the
// same point.
func (t *Trigger) Forget() {
	t.hasLast = false
}
