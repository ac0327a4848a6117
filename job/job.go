// Package job implements DelayedJob, a delayed, deduplicating background
// job coordinator: it collapses any number of TriggerExecution calls
// arriving during an aggregation delay into exactly one future execution
// of a work function, runs that work on an injected Executor, and never
// allows two executions of the same DelayedJob's work to overlap.
//
// DelayedJob owns no I/O and no goroutines of its own; it is driven
// entirely by an injected Ticker (a delayed scheduler with per-key
// dedup) and Executor (a worker pool). This keeps the state machine
// itself deterministic and unit-testable against a fake Ticker.
package job

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/wotpulse/internal/obslog"
)

// Work is the user-supplied side-effecting action a DelayedJob runs. It
// takes a context so it can observe cooperative cancellation when
// Terminate interrupts a running execution - the idiomatic Go stand-in for
// the "thread interrupt" the coordinator design describes.
type Work func(ctx context.Context)

// DelayedJob is one coordinator instance. The zero value is not usable;
// construct with New.
type DelayedJob struct {
	name         string
	work         Work
	defaultDelay time.Duration
	ticker       Ticker
	executor     Executor
	taskID       string
	logger       *zap.SugaredLogger

	mu sync.Mutex

	state State

	// nextDeadline is meaningful only while state == Waiting.
	nextDeadline time.Time

	// rearmAfterRun accumulates the minimum delay requested by triggers
	// that arrive while state == Running; nil means no re-arm requested.
	// Meaningful only while state == Running.
	rearmAfterRun *time.Duration

	// workerCancel cancels the context passed to the currently running
	// work invocation. Meaningful only while state is Running or
	// Terminating. It is a cancellation handle, not ownership of the
	// goroutine running work.
	workerCancel context.CancelFunc

	// terminatedCh is closed exactly once, on the transition to
	// Terminated. WaitForTermination selects on it.
	terminatedCh chan struct{}

	// schedulerSlack tolerates a ticker firing slightly before nextDeadline
	// without discarding it as spurious. Real timers (RealTicker included)
	// can fire a few milliseconds early under scheduler load; a zero slack
	// is strict and matches the fake ticker's exact-time test behavior.
	schedulerSlack time.Duration
}

// Option configures a DelayedJob at construction time.
type Option func(*DelayedJob)

// WithLogger overrides the default component logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(j *DelayedJob) { j.logger = l }
}

// WithSchedulerSlack tolerates a ticker firing up to slack before its
// recorded deadline, rather than discarding it as spurious. Use this to
// absorb the timer imprecision a production Ticker can exhibit under load.
func WithSchedulerSlack(slack time.Duration) Option {
	return func(j *DelayedJob) { j.schedulerSlack = slack }
}

// New constructs a DelayedJob in the Idle state. name is a diagnostic
// label used in logs and as the basis of the ticker dedup key.
// defaultDelay is the aggregation delay TriggerExecution() (no explicit
// delay) uses; it must be non-negative.
func New(name string, work Work, defaultDelay time.Duration, ticker Ticker, executor Executor, opts ...Option) *DelayedJob {
	if defaultDelay < 0 {
		panic("job: defaultDelay must be >= 0")
	}
	j := &DelayedJob{
		name:         name,
		work:         work,
		defaultDelay: defaultDelay,
		ticker:       ticker,
		executor:     executor,
		taskID:       name + "-" + uuid.NewString(),
		logger:       obslog.Named("job"),
		state:        Idle,
		terminatedCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Name returns the diagnostic label the job was constructed with.
func (j *DelayedJob) Name() string { return j.name }

// TriggerExecution requests that work run soon, using the job's
// defaultDelay for aggregation. Equivalent to
// TriggerExecutionDelay(defaultDelay).
func (j *DelayedJob) TriggerExecution() {
	j.TriggerExecutionDelay(j.defaultDelay)
}

// TriggerExecutionDelay requests that work run once delay has elapsed from
// now, or earlier if an already armed firing (or a re-arm already requested
// during a run) is due sooner. Concurrent triggers within an aggregation
// window coalesce into a
// single execution. delay must be >= 0; a negative delay is a programmer
// error and panics rather than being silently clamped.
//
// After TriggerExecutionDelay returns, either work will run at least once,
// or the coordinator was already Terminated - in which case the call is a
// silent no-op, matching spec invariant 4 (Terminated is absorbing).
func (j *DelayedJob) TriggerExecutionDelay(delay time.Duration) {
	if delay < 0 {
		panic("job: TriggerExecutionDelay: delay must be >= 0")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	switch j.state {
	case Idle:
		now := time.Now()
		j.nextDeadline = now.Add(delay)
		j.state = Waiting
		j.arm(delay)

	case Waiting:
		candidate := time.Now().Add(delay)
		if candidate.Before(j.nextDeadline) {
			j.nextDeadline = candidate
			j.arm(delay)
		}
		// candidate >= nextDeadline: the earlier arming already covers
		// this request, so this trigger is a no-op.

	case Running:
		if j.rearmAfterRun == nil || delay < *j.rearmAfterRun {
			d := delay
			j.rearmAfterRun = &d
		}

	case Terminating, Terminated:
		// Absorbing: invariant 3 forbids leaving {Terminating, Terminated}
		// except via the post-run transition, and invariant 4 makes every
		// trigger after Terminated a silent no-op.
	}
}

// arm schedules the ticker fire handler. Caller must hold j.mu.
func (j *DelayedJob) arm(delay time.Duration) {
	j.logger.Debugw("arming ticker",
		obslog.FieldJobName, j.name,
		obslog.FieldDelayMS, delay.Milliseconds(),
		obslog.FieldDeadline, j.nextDeadline)
	j.ticker.Schedule(j.taskID, delay, j.onFire)
}

// onFire runs on whatever goroutine the ticker dispatches on. It must not
// run work synchronously - that would block the ticker and defeat the
// isolation between the scheduling substrate and the worker pool - so it
// only performs the Waiting -> Running transition and hands off to the
// Executor.
func (j *DelayedJob) onFire() {
	j.mu.Lock()

	// Spurious-firing backstop: if the ticker's dedup discipline let a
	// stale firing through (e.g. a Schedule/Cancel race), discard it here
	// rather than trusting the ticker to be perfectly tight. schedulerSlack
	// absorbs the ticker's own timing imprecision so a firing a few
	// milliseconds early isn't mistaken for a stale one.
	if j.state != Waiting || time.Now().Add(j.schedulerSlack).Before(j.nextDeadline) {
		j.mu.Unlock()
		return
	}

	j.nextDeadline = time.Time{}
	ctx, cancel := context.WithCancel(context.Background())

	if err := j.executor.Submit(ctx, j.runOnce); err != nil {
		// Back-pressure: the submission never happened, so no work is in
		// flight. Fail safe to Idle so the next trigger can re-arm from
		// scratch, per the error-handling design (section 7).
		cancel()
		j.state = Idle
		j.mu.Unlock()
		j.logger.Warnw("failed to submit work, returning to idle",
			obslog.FieldJobName, j.name,
			obslog.FieldState, Idle.String(),
			obslog.FieldError, err,
			obslog.FieldErrorType, fmt.Sprintf("%T", err))
		return
	}

	j.state = Running
	j.workerCancel = cancel
	j.mu.Unlock()
}

// runOnce is the bootstrap task handed to the Executor. It runs work,
// catching any panic and logging it as a job failure rather than letting
// it escape and take down the executor's goroutine, then performs the
// post-run transition under the mutex.
func (j *DelayedJob) runOnce(ctx context.Context) {
	start := time.Now()
	j.safeRunWork(ctx)
	j.logger.Debugw("work finished",
		obslog.FieldJobName, j.name,
		obslog.FieldDurationMS, time.Since(start).Milliseconds())
	j.postRun()
}

func (j *DelayedJob) safeRunWork(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			j.logger.Errorw("job work panicked",
				obslog.FieldJobName, j.name,
				obslog.FieldErrorType, fmt.Sprintf("%T", r),
				"panic", r)
		}
	}()
	j.work(ctx)
}

// postRun completes the transition out of Running/Terminating once work
// has returned, per the state table's "work returns" rows.
func (j *DelayedJob) postRun() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.workerCancel = nil

	switch j.state {
	case Running:
		if j.rearmAfterRun != nil {
			d := *j.rearmAfterRun
			j.rearmAfterRun = nil
			j.nextDeadline = time.Now().Add(d)
			j.state = Waiting
			j.arm(d)
		} else {
			j.state = Idle
		}

	case Terminating:
		j.state = Terminated
		close(j.terminatedCh)

	default:
		// Unreachable under the invariants: only Running or Terminating
		// can be the state when work returns.
	}
}

// Terminate idempotently drives the coordinator toward Terminated. From
// Idle or Waiting it terminates immediately. From Running it interrupts
// the worker (cooperative cancellation) and waits for the in-flight
// execution to finish before the state becomes Terminated; Terminate
// itself does not block for that - only WaitForTermination does.
func (j *DelayedJob) Terminate() {
	j.mu.Lock()
	defer j.mu.Unlock()

	switch j.state {
	case Terminating, Terminated:
		return

	case Idle:
		j.state = Terminated
		close(j.terminatedCh)

	case Waiting:
		if c, ok := j.ticker.(canceler); ok {
			c.Cancel(j.taskID)
		}
		j.nextDeadline = time.Time{}
		j.state = Terminated
		close(j.terminatedCh)

	case Running:
		j.state = Terminating
		if j.workerCancel != nil {
			j.workerCancel()
		}
	}
}

// WaitForTermination blocks until the coordinator reaches Terminated or
// timeout elapses, whichever comes first. It returns no status; callers
// re-check IsTerminated. If the coordinator is already Terminated,
// WaitForTermination returns immediately.
func (j *DelayedJob) WaitForTermination(timeout time.Duration) {
	j.mu.Lock()
	ch := j.terminatedCh
	done := j.state == Terminated
	j.mu.Unlock()

	if done {
		return
	}

	select {
	case <-ch:
	case <-time.After(timeout):
	}
}

// IsTerminated reports whether the coordinator has reached Terminated.
func (j *DelayedJob) IsTerminated() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state == Terminated
}

// GetState returns a snapshot of the current state.
func (j *DelayedJob) GetState() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}
