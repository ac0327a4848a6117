// Package config loads wotpulse's deployment configuration: the job's
// name and aggregation delay, the executor's worker budget, and the
// identity queue watcher's directory and debounce period.
package config

import "fmt"

// Config is the top-level configuration tree, unmarshalled from TOML by
// viper. Field names mirror the on-disk [job]/[executor]/[watch] tables.
type Config struct {
	Job      JobConfig      `mapstructure:"job"`
	Executor ExecutorConfig `mapstructure:"executor"`
	Watch    WatchConfig    `mapstructure:"watch"`
}

// JobConfig configures the DelayedJob coordinator.
type JobConfig struct {
	Name             string `mapstructure:"name"`
	DefaultDelayMS   int    `mapstructure:"default_delay_ms"`
	SchedulerSlackMS int    `mapstructure:"scheduler_slack_ms"`
}

// ExecutorConfig configures the worker pool the coordinator submits to.
type ExecutorConfig struct {
	Workers int `mapstructure:"workers"`
}

// WatchConfig configures the identity queue directory watcher.
type WatchConfig struct {
	QueueDir   string `mapstructure:"queue_dir"`
	DebounceMS int    `mapstructure:"debounce_ms"`
}

// String renders a short diagnostic summary, matching the teacher's
// habit of giving config structs a String() for startup log lines.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Job: %s delay=%dms, Executor: {Workers: %d}, Watch: %s}",
		c.Job.Name, c.Job.DefaultDelayMS, c.Executor.Workers, c.Watch.QueueDir)
}
