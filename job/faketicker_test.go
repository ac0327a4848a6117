package job

import (
	"sync"
	"time"
)

// fakeTicker is a deterministic, manually-fired Ticker test double,
// grounded on the teacher's habit of hand-building small test doubles for
// scheduling infrastructure (pulse/schedule/testing.go) rather than
// mocking framework generation. A single fakeTicker only ever backs one
// DelayedJob in tests, so it tracks a single pending firing rather than a
// taskID-keyed map - the dedup-by-key contract of the real Ticker is
// exercised separately against RealTicker.
type fakeTicker struct {
	mu    sync.Mutex
	armed bool
	delay time.Duration
	fn    func()
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{}
}

func (t *fakeTicker) Schedule(taskID string, delay time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armed = true
	t.delay = delay
	t.fn = fn
}

func (t *fakeTicker) Cancel(taskID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armed = false
	t.fn = nil
}

// Fire invokes the pending callback, if any, immediately. It advances no
// clock: the DelayedJob's fire handler still compares the real current
// time with its deadline, so a firing before that deadline (less any
// scheduler slack) is discarded. Returns false if nothing was armed.
func (t *fakeTicker) Fire() bool {
	t.mu.Lock()
	if !t.armed {
		t.mu.Unlock()
		return false
	}
	fn := t.fn
	t.armed = false
	t.fn = nil
	t.mu.Unlock()

	fn()
	return true
}

// Armed reports whether a firing is currently pending.
func (t *fakeTicker) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.armed
}

// LastDelay returns the delay passed to the most recent Schedule call.
func (t *fakeTicker) LastDelay() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.delay
}

var _ Ticker = (*fakeTicker)(nil)
var _ canceler = (*fakeTicker)(nil)
