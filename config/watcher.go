package config

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/wotpulse/internal/obslog"
	"github.com/teranos/wotpulse/internal/oerrors"
)

// ReloadCallback is invoked with the freshly reloaded config after a
// debounced file-change event.
type ReloadCallback func(*Config) error

// Watcher watches a TOML config file for changes and debounces rapid
// writes before reloading, the same cancel-then-AfterFunc idiom
// job.RealTicker uses for execution scheduling - here applied to a
// config file rather than a DelayedJob's fire handler.
type Watcher struct {
	configPath string
	fsWatcher  *fsnotify.Watcher
	logger     *zap.SugaredLogger

	mu             sync.Mutex
	callbacks      []ReloadCallback
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
}

// NewWatcher creates a Watcher for configPath. Call Start to begin
// watching; Stop releases the underlying fsnotify watcher.
func NewWatcher(configPath string, debouncePeriod time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, oerrors.Wrap(err, "failed to create fsnotify watcher")
	}
	if err := fw.Add(configPath); err != nil {
		fw.Close()
		return nil, oerrors.Wrapf(err, "failed to watch config file %s", configPath)
	}

	return &Watcher{
		configPath:     configPath,
		fsWatcher:      fw,
		logger:         obslog.Named("config.watcher"),
		debouncePeriod: debouncePeriod,
	}, nil
}

// OnReload registers a callback to run after every debounced reload.
func (w *Watcher) OnReload(cb ReloadCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Start begins watching for file events on its own goroutine.
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
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				w.scheduleReload()
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnw("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, w.reload)
}

func (w *Watcher) reload() {
	Reset()
	cfg, err := LoadFromFile(w.configPath)
	if err != nil {
		w.logger.Errorw("config reload failed", "error", err)
		return
	}

	w.logger.Infow("config reloaded", "path", w.configPath)

	w.mu.Lock()
	callbacks := make([]ReloadCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for _, cb := range callbacks {
		if err := cb(cfg); err != nil {
			w.logger.Warnw("config reload callback failed", "error", err)
		}
	}
}

// Stop closes the underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}
