package retry

import (
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// Closed means the circuit is healthy; requests flow normally.
	Closed State = iota
	// Open means too many failures have occurred; requests are rejected.
	Open
	// HalfOpen means the circuit is testing whether the endpoint has recovered.
	HalfOpen
)

// Breaker stops a client from hammering an unhealthy endpoint by rejecting
// requests after a run of consecutive failures.
type Breaker struct {
	mu           sync.Mutex
	state        State
	failures     int
	threshold    int
	resetTimeout time.Duration
	lastFailure  time.Time
	probing      bool
}

// NewBreaker creates a breaker that opens after threshold consecutive
// failures and admits a single probe request once resetTimeout has elapsed.
func NewBreaker(threshold int, resetTimeout time.Duration) *Breaker {
	return &Breaker{
		threshold:    threshold,
		resetTimeout: resetTimeout,
	}
}

// Allow reports whether a request is permitted. In Open state it admits one
// probe after the reset timeout, transitioning to HalfOpen; further requests
// are rejected until the probe settles.
func (cb *Breaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case Closed:
		return true
	case Open:
		if time.Since(cb.lastFailure) > cb.resetTimeout {
			cb.state = HalfOpen
			cb.probing = true
			return true
		}
		return false
	case HalfOpen:
		if cb.probing {
			return false
		}
		cb.probing = true
		return true
	default:
		return false
	}
}

// RecordSuccess records a successful operation, resetting the breaker to Closed.
func (cb *Breaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.probing = false
	cb.state = Closed
}

// RecordFailure records a failed operation. A failed probe re-opens the
// breaker immediately; in Closed state the breaker opens once failures reach
// the threshold.
func (cb *Breaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures++
	cb.lastFailure = time.Now()
	cb.probing = false
	if cb.state == HalfOpen || cb.failures >= cb.threshold {
		cb.state = Open
	}
}

// CurrentState returns the current state of the breaker.
func (cb *Breaker) CurrentState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
