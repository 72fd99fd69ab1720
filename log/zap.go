package log

import (
	"go.uber.org/zap"
)

// Zap adapts a *zap.Logger to the Logger interface.
type Zap struct {
	lg *zap.SugaredLogger
}

// NewZap wraps an existing zap logger.
func NewZap(lg *zap.Logger) *Zap {
	return &Zap{lg: lg.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

// NewDevelopment returns a zap-backed logger with human-friendly console output.
// It panics if the underlying zap config fails to build, which only happens on
// programmer error.
func NewDevelopment() *Zap {
	lg, err := zap.NewDevelopment()
	if err != nil {
		panic("log: build development logger: " + err.Error())
	}
	return NewZap(lg)
}

// Debug implements Logger.
func (z *Zap) Debug(msg string, keysAndValues ...interface{}) {
	z.lg.Debugw(msg, keysAndValues...)
}

// Info implements Logger.
func (z *Zap) Info(msg string, keysAndValues ...interface{}) {
	z.lg.Infow(msg, keysAndValues...)
}

// Warn implements Logger.
func (z *Zap) Warn(msg string, keysAndValues ...interface{}) {
	z.lg.Warnw(msg, keysAndValues...)
}

// Error implements Logger.
func (z *Zap) Error(msg string, keysAndValues ...interface{}) {
	z.lg.Errorw(msg, keysAndValues...)
}

// With implements Logger.
func (z *Zap) With(keysAndValues ...interface{}) Logger {
	return &Zap{lg: z.lg.With(keysAndValues...)}
}

// Sync flushes buffered log entries. Call before process exit.
func (z *Zap) Sync() error {
	return z.lg.Sync()
}
