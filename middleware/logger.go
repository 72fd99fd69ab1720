package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/hedeqiang/pulse/log"
)

// Logger logs each request that passes through the pipeline, tagging it with
// a unique request id.
type Logger struct {
	logger log.Logger
}

// NewLogger creates a logging middleware.
// If logger is nil, the no-op logger is used.
func NewLogger(l log.Logger) *Logger {
	if l == nil {
		l = log.NewNop()
	}
	return &Logger{logger: l}
}

// Wrap decorates the handler with per-call logging.
func (l *Logger) Wrap(next Handler) Handler {
	return func(ctx context.Context, method string, params any) (json.RawMessage, error) {
		logger := l.logger.With(
			"request_id", uuid.NewString(),
			"method", method,
		)
		logger.Debug("request started")

		start := time.Now()
		result, err := next(ctx, method, params)
		if err != nil {
			logger.Warn("request failed", "err", err, "took", time.Since(start))
			return nil, err
		}
		logger.Debug("request settled", "took", time.Since(start))
		return result, nil
	}
}
