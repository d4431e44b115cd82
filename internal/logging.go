package internal

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newDebugLogger builds the logger used by debug runtimes. Diagnostics go to
// stderr at debug level; production runtimes keep a nop logger instead.
func newDebugLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)

	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}

	return log
}
