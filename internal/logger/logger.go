// Package logger holds the process-wide zap logger.
package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu   sync.Mutex
	root *zap.Logger = zap.NewNop()
)

// Init configures the global logger. env selects the encoder profile
// ("production" for JSON, anything else for console output) and level is a
// zap level name such as "debug" or "info".
func Init(env, level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parsing log level %q: %w", level, err)
	}

	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	mu.Lock()
	root = l
	mu.Unlock()
	return nil
}

// L returns the global logger.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return root
}

// Named returns a child of the global logger with the given name.
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// Sync flushes buffered log entries. Call it on shutdown.
func Sync() {
	_ = L().Sync()
}
