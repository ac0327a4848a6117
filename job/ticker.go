package job

import (
	"sync"
	"time"
)

// Ticker is the delayed scheduler capability a DelayedJob is built on. It
// is treated as an opaque, injected dependency (see design notes) so a
// deterministic fake can drive tests without wall-clock flakiness.
//
// Schedule arms fn to run after at least delay. A second Schedule call
// with the same taskID supersedes any prior pending arming for that id -
// the ticker guarantees at most one pending firing per taskID.
type Ticker interface {
	Schedule(taskID string, delay time.Duration, fn func())
}

// canceler is an optional capability a Ticker may implement to cancel a
// pending firing before it fires. DelayedJob.Terminate uses it best-effort;
// tickers that can't cancel rely on the fire-handler's state check as a
// correctness backstop (spec section 4.1: a stale firing is discarded, not
// prevented).
type canceler interface {
	Cancel(taskID string)
}

// RealTicker is the production Ticker adapter, backed by time.AfterFunc.
// It is grounded on the debounce-timer idiom the teacher's config file
// watcher uses (cancel any pending timer, then arm a fresh one under a
// mutex) rather than on a polling loop, since a per-key single-pending-
// timer map is a closer match to the "at most one pending submission per
// key" contract than a ticking loop that re-checks a store.
type RealTicker struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewRealTicker creates a Ticker backed by the runtime timer heap.
func NewRealTicker() *RealTicker {
	return &RealTicker{timers: make(map[string]*time.Timer)}
}

// Schedule implements Ticker.
func (t *RealTicker) Schedule(taskID string, delay time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.timers[taskID]; ok {
		existing.Stop()
	}
	t.timers[taskID] = time.AfterFunc(delay, fn)
}

// Cancel stops any pending firing for taskID. Best-effort: if the timer
// already fired, this is a no-op and the fire handler's own state check
// is what actually discards the stale callback.
func (t *RealTicker) Cancel(taskID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.timers[taskID]; ok {
		existing.Stop()
		delete(t.timers, taskID)
	}
}

var _ canceler = (*RealTicker)(nil)
