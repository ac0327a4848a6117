package config

import "github.com/teranos/wotpulse/internal/oerrors"

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Job.Name == "" {
		return oerrors.New("job.name cannot be empty")
	}
	if c.Job.DefaultDelayMS < 0 {
		return oerrors.Newf("job.default_delay_ms must be >= 0, got %d", c.Job.DefaultDelayMS)
	}
	if c.Job.SchedulerSlackMS < 0 {
		return oerrors.Newf("job.scheduler_slack_ms must be >= 0, got %d", c.Job.SchedulerSlackMS)
	}

	if c.Executor.Workers <= 0 {
		return oerrors.Newf("executor.workers must be > 0, got %d", c.Executor.Workers)
	}

	if c.Watch.QueueDir == "" {
		return oerrors.New("watch.queue_dir cannot be empty")
	}
	if c.Watch.DebounceMS < 0 {
		return oerrors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}

	return nil
}
