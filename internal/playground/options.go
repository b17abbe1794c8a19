package playground

import (
	"time"

	"go.uber.org/zap"
)

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithClock substitutes the time source, for tests.
func WithClock(now func() time.Time) FlowOption {
	return func(f *Flow) { f.now = now }
}

// WithLogger attaches a logger to the flow.
func WithLogger(log *zap.Logger) FlowOption {
	return func(f *Flow) { f.log = log }
}
