package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/wotpulse/internal/oerrors"
)

var (
	globalConfig  *Config
	viperInstance *viper.Viper
)

// Load reads wotpulse's configuration, merging defaults, any wotpulse.toml
// found by walking up from the working directory, and environment
// variables, in that precedence order (later wins). The result is cached;
// call Reset to force a re-read.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, oerrors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, oerrors.Wrap(err, "invalid config")
	}

	globalConfig = &cfg
	return globalConfig, nil
}

// LoadFromFile loads configuration from a specific TOML file, ignoring
// the working-directory search and environment variables. Used by tests
// and by `wotpulse run --config`.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, oerrors.Wrapf(err, "failed to read config file %s", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, oerrors.Wrapf(err, "failed to unmarshal config from %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, oerrors.Wrap(err, "invalid config")
	}
	return &cfg, nil
}

// Reset clears the cached configuration. Used by config.Watcher on
// reload and by tests that load multiple configs in one process.
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

// GetViper returns the process-wide viper instance for advanced access.
func GetViper() *viper.Viper {
	return initViper()
}

func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()
	v.SetEnvPrefix("WOTPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	BindSensitiveEnvVars(v)
	SetDefaults(v)

	if path := findProjectConfig(); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			// A config file was found but failed to parse; fall back to
			// defaults + env rather than failing process startup here.
			// The parse error is discarded, not reported.
		}
	}

	viperInstance = v
	return v
}

// findProjectConfig walks up from the working directory looking for
// wotpulse.toml, matching the teacher's upward config-file search.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, "wotpulse.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
