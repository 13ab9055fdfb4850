package lockout

import (
	"sync"
	"time"
)

// Config holds lockout policy tuning parameters.
type Config struct {
	Enabled     bool
	MaxAttempts int
	Duration    time.Duration
}

// Tracker counts consecutive failed sign-in attempts and reports whether
// the client is inside a lockout window. The counter decays lazily: once
// Duration has elapsed since the last failure, the next check resets the
// tracker to its zero state. No background timer is involved.
type Tracker struct {
	mu     sync.Mutex
	config Config
	clock  func() time.Time

	failures    int
	lastFailure time.Time
	hasFailure  bool
}

// New creates a Tracker using the given clock. A nil clock falls back to
// time.Now.
func New(cfg Config, clock func() time.Time) *Tracker {
	if clock == nil {
		clock = time.Now
	}
	return &Tracker{config: cfg, clock: clock}
}

// RecordFailure increments the failure counter and stamps the failure time.
func (t *Tracker) RecordFailure() {
	if t == nil || !t.config.Enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.failures++
	t.lastFailure = t.clock()
	t.hasFailure = true
}

// RecordSuccess resets the tracker after a successful sign-in.
func (t *Tracker) RecordSuccess() {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.reset()
}

// IsLocked reports whether the client is currently locked out.
//
// This is deliberately a read with a side effect: when the lockout window
// has elapsed since the last failure, the counters are reset before the
// check is answered. Callers must not assume IsLocked is pure.
func (t *Tracker) IsLocked() bool {
	locked, _ := t.Status()
	return locked
}

// Status returns the lockout state plus the remaining window duration.
// Remaining is zero when not locked. The same lazy reset as [Tracker.IsLocked]
// applies.
func (t *Tracker) Status() (bool, time.Duration) {
	if t == nil || !t.config.Enabled {
		return false, 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.hasFailure {
		return false, 0
	}

	elapsed := t.clock().Sub(t.lastFailure)
	if elapsed >= t.config.Duration {
		t.reset()
		return false, 0
	}

	if t.failures >= t.config.MaxAttempts {
		return true, t.config.Duration - elapsed
	}

	return false, 0
}

// Failures returns the current consecutive-failure count without applying
// the lazy window reset.
func (t *Tracker) Failures() int {
	if t == nil {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.failures
}

func (t *Tracker) reset() {
	t.failures = 0
	t.lastFailure = time.Time{}
	t.hasFailure = false
}
