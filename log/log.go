// Package log defines the minimal structured logging surface used across pulse.
//
// The library is silent by default: every component that accepts a Logger
// defaults to the no-op implementation. Applications that want visibility wire
// in the zap-backed logger (or their own implementation) through the relevant
// WithLogger option.
package log

// Logger logs structured key-value messages at conventional levels.
// keysAndValues are alternating keys and values, e.g. ("method", "eth_call").
type Logger interface {
	// Debug logs fine-grained diagnostic detail.
	Debug(msg string, keysAndValues ...interface{})

	// Info logs routine operational messages.
	Info(msg string, keysAndValues ...interface{})

	// Warn logs recoverable anomalies.
	Warn(msg string, keysAndValues ...interface{})

	// Error logs failures that need operator attention.
	Error(msg string, keysAndValues ...interface{})

	// With returns a Logger that attaches the given key-value pairs to every message.
	With(keysAndValues ...interface{}) Logger
}
