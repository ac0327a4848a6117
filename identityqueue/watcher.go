package identityqueue

import (
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/wotpulse/internal/obslog"
	"github.com/teranos/wotpulse/internal/oerrors"
)

// trigger is the subset of job.DelayedJob's API this package depends on,
// kept as a small interface so tests can drive the watcher without a real
// coordinator - the same opaque-capability shape job.Ticker/job.Executor
// use for the coordinator's own dependencies.
type trigger interface {
	TriggerExecution()
}

// Watcher watches a queue directory and calls TriggerExecution on every
// file creation, the concrete "bursty high-rate event source" a
// DelayedJob exists to coalesce.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	job       trigger
	logger    *zap.SugaredLogger
}

// NewWatcher creates a Watcher observing dir and triggering job on every
// Create event seen there.
func NewWatcher(dir string, job trigger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, oerrors.Wrap(err, "failed to create fsnotify watcher")
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, oerrors.Wrapf(err, "failed to watch queue dir %s", dir)
	}

	logger := obslog.Named("identityqueue.watcher")
	logger.Infow("watching identity queue directory", obslog.FieldQueue, dir)

	return &Watcher{
		fsWatcher: fw,
		job:       job,
		logger:    logger,
	}, nil
}

// Start begins watching on its own goroutine.
func (w *Watcher) Start() {
	go w.watchLoop()
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				w.logger.Debugw("identity file landed", obslog.FieldFile, event.Name)
				w.job.TriggerExecution()
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnw("identity queue watcher error", "error", err)
		}
	}
}

// Stop closes the underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}
