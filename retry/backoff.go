package retry

import (
	"math"
	"math/rand"
	"time"
)

// Backoff implements exponential backoff with optional jitter.
type Backoff struct {
	// MaxAttempts is the maximum number of retry attempts. 0 means no
	// retries; a negative value retries without limit.
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the backoff delay.
	MaxDelay time.Duration

	// Multiplier is the factor by which the delay grows. Defaults to 2.
	Multiplier float64

	// Jitter randomizes each delay by up to the given fraction (0 to 1)
	// in either direction.
	Jitter float64
}

// Exponential creates a Backoff strategy with sensible defaults.
func Exponential(maxAttempts int) *Backoff {
	return &Backoff{
		MaxAttempts:  maxAttempts,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2,
		Jitter:       0.2,
	}
}

// Next returns the delay for the given attempt number.
func (b *Backoff) Next(attempt int) (time.Duration, bool) {
	if b.MaxAttempts >= 0 && attempt > b.MaxAttempts {
		return 0, false
	}

	multiplier := b.Multiplier
	if multiplier == 0 {
		multiplier = 2
	}

	exp := attempt - 1
	if exp > 32 {
		exp = 32
	}
	delay := float64(b.InitialDelay) * math.Pow(multiplier, float64(exp))
	if maxDelay := float64(b.MaxDelay); b.MaxDelay > 0 && delay > maxDelay {
		delay = maxDelay
	}
	if b.Jitter > 0 {
		delay += delay * b.Jitter * (2*rand.Float64() - 1)
	}

	return time.Duration(delay), true
}
