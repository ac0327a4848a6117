package job

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/teranos/wotpulse/internal/oerrors"
	"github.com/teranos/wotpulse/internal/obslog"
)

// Executor is the worker-pool capability a DelayedJob hands its work body
// to once the ticker fires. It is opaque: the coordinator does not know or
// care which thread runs task, only that Submit returns promptly (it must
// not block for the duration of task) and that task eventually runs.
type Executor interface {
	// Submit runs task on some background goroutine, passing it ctx so
	// task can observe cancellation cooperatively. Submit itself must be
	// non-blocking. An error return means the submission was rejected
	// (scheduler back-pressure); the caller has not committed to running
	// task and may retry on the next trigger.
	Submit(ctx context.Context, task func(context.Context)) error
}

// PoolExecutor is a bounded goroutine pool Executor, grounded on the
// teacher's WorkerPool concurrency-limiting design (a fixed worker budget
// shared across submissions) but without its durable queue: a DelayedJob
// never has more than one outstanding submission (invariant: at most one
// execution of work in flight per coordinator), so PoolExecutor's only job
// is to cap how many *different* coordinators sharing one Executor can run
// concurrently, and to make shutdown waitable.
type PoolExecutor struct {
	sem    chan struct{}
	wg     sync.WaitGroup
	logger *zap.SugaredLogger
}

// NewPoolExecutor creates an Executor allowing up to maxConcurrent
// in-flight submissions at once. maxConcurrent <= 0 defaults to 1.
func NewPoolExecutor(maxConcurrent int) *PoolExecutor {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &PoolExecutor{
		sem:    make(chan struct{}, maxConcurrent),
		logger: obslog.Named("job.executor"),
	}
}

// Submit implements Executor. It never blocks: if the pool is already at
// capacity it returns oerrors.ErrSchedulerBackpressure immediately rather
// than queueing, since the ticker fire handler holds a mutex while calling
// Submit and must not stall other coordinators sharing this pool.
func (e *PoolExecutor) Submit(ctx context.Context, task func(context.Context)) error {
	select {
	case e.sem <- struct{}{}:
	default:
		e.logger.Warnw("pool executor at capacity, rejecting submission")
		return oerrors.ErrSchedulerBackpressure
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer func() { <-e.sem }()
		task(ctx)
	}()
	return nil
}

// Wait blocks until every submitted task has returned. Used during
// graceful process shutdown, after every DelayedJob sharing this pool has
// been terminated.
func (e *PoolExecutor) Wait() {
	e.wg.Wait()
}

var _ Executor = (*PoolExecutor)(nil)
