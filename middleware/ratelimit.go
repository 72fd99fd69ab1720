package middleware

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/hedeqiang/pulse/rpcerr"
)

// RateLimit admits at most one request per interval. A limited request is
// rejected with the limit-exceeded code; requests are single-shot, so
// silently dropping them is not an option.
type RateLimit struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewRateLimit creates a rate-limiting middleware that allows at most one
// request per the given interval.
func NewRateLimit(interval time.Duration) *RateLimit {
	return &RateLimit{
		interval: interval,
	}
}

// Wrap decorates the handler with rate limiting.
func (r *RateLimit) Wrap(next Handler) Handler {
	return func(ctx context.Context, method string, params any) (json.RawMessage, error) {
		r.mu.Lock()
		if time.Since(r.last) < r.interval {
			r.mu.Unlock()
			return nil, rpcerr.Newf(rpcerr.CodeLimitExceeded, "rate limited: at most one request per %s", r.interval)
		}
		r.last = time.Now()
		r.mu.Unlock()

		return next(ctx, method, params)
	}
}
