package config

import "github.com/spf13/viper"

// SetDefaults configures default values for every configuration option,
// applied before any TOML file or environment variable is read.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("job.name", "identity-rescore")
	v.SetDefault("job.default_delay_ms", 2000)
	v.SetDefault("job.scheduler_slack_ms", 50)

	v.SetDefault("executor.workers", 4)

	v.SetDefault("watch.queue_dir", "./var/identity-queue")
	v.SetDefault("watch.debounce_ms", 500)
}

// BindSensitiveEnvVars binds configuration values that should be
// overridable by environment without appearing in a checked-in TOML file.
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("watch.queue_dir", "WOTPULSE_QUEUE_DIR")
}
