// Package obslog wraps go.uber.org/zap with the calm, human-readable
// console format wotpulse uses in development, and a JSON encoder for
// production. Nothing in wotpulse should call the stdlib log package
// directly - every diagnostic goes through here so the injected-logger-sink
// discipline the coordinator design calls for is actually followed.
package obslog

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the process-wide structured logger. Safe to use before
	// Initialize is called - it starts out as a no-op sink so early
	// package init code never panics on a nil logger.
	Logger *zap.SugaredLogger

	// JSONOutput records whether the last Initialize call configured JSON
	// (production) or console (development) output.
	JSONOutput bool
)

func init() {
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger.
func Initialize(jsonOutput bool) error {
	JSONOutput = jsonOutput

	var zapLogger *zap.Logger
	var err error

	if jsonOutput {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		zapLogger, err = cfg.Build()
	} else {
		encoderCfg := zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapLogger = zap.New(
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(encoderCfg),
				zapcore.AddSync(os.Stdout),
				zap.InfoLevel,
			),
		)
	}
	if err != nil {
		return err
	}

	Logger = zapLogger.Sugar()
	return nil
}

// Named returns a child logger scoped to the given component name, for
// packages (job, identityqueue, config) that want their log lines
// consistently tagged.
func Named(component string) *zap.SugaredLogger {
	return Logger.Named(component).With(FieldComponent, component)
}

// Cleanup flushes any buffered log entries. Call it before process exit.
func Cleanup() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}
