// Package middleware provides interceptors for the provider's request
// pipeline.
package middleware

import (
	"context"
	"encoding/json"
)

// Handler executes an RPC request and returns its raw result.
type Handler func(ctx context.Context, method string, params any) (json.RawMessage, error)

// Middleware wraps a Handler, adding cross-cutting behavior (logging,
// counting, rate limiting) around each call.
type Middleware interface {
	// Wrap returns a new Handler that decorates the given inner handler.
	Wrap(next Handler) Handler
}

// Chain composes multiple middlewares into a single Handler, applying them
// in the order provided (first middleware is outermost).
func Chain(handler Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i].Wrap(handler)
	}
	return handler
}
