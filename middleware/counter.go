package middleware

import (
	"context"
	"encoding/json"
	"sync/atomic"
)

// Counter collects basic counters for requests flowing through the pipeline.
type Counter struct {
	succeeded atomic.Uint64
	failed    atomic.Uint64
}

// NewCounter creates a counting middleware.
func NewCounter() *Counter {
	return &Counter{}
}

// Wrap decorates the handler with request counting.
func (c *Counter) Wrap(next Handler) Handler {
	return func(ctx context.Context, method string, params any) (json.RawMessage, error) {
		result, err := next(ctx, method, params)
		if err != nil {
			c.failed.Add(1)
			return nil, err
		}
		c.succeeded.Add(1)
		return result, nil
	}
}

// Succeeded returns the number of resolved requests.
func (c *Counter) Succeeded() uint64 {
	return c.succeeded.Load()
}

// Failed returns the number of rejected requests.
func (c *Counter) Failed() uint64 {
	return c.failed.Load()
}
