package resilience

import (
	"math"
	"math/rand/v2"
	"slices"
	"time"
)

// Default retry policy values.
const (
	DefaultMaxRetries        = 2
	DefaultInitialDelay      = 500 * time.Millisecond
	DefaultMaxDelay          = 10 * time.Second
	DefaultBackoffMultiplier = 2.0

	// jitterFraction bounds the random adjustment applied to each delay.
	jitterFraction = 0.10
)

// DefaultRetryableStatusCodes are the response statuses retried by default.
var DefaultRetryableStatusCodes = []int{500, 502, 503, 504, 408, 429}

// RetryOptions is the caller-facing retry configuration. Every field is
// optional: nil pointers and nil slices fall back to the defaults.
type RetryOptions struct {
	// MaxRetries is the number of attempts after the first one.
	MaxRetries *int

	// InitialDelay is the delay before the first retry.
	InitialDelay *time.Duration

	// MaxDelay caps the exponential delay before jitter.
	MaxDelay *time.Duration

	// BackoffMultiplier is the exponential growth factor.
	BackoffMultiplier *float64

	// RetryableStatusCodes replaces the default status list when non-nil.
	RetryableStatusCodes []int

	// RetryOnNetworkError enables retries for classified network errors.
	RetryOnNetworkError *bool

	// ShouldRetry is consulted with the zero-based attempt index.
	ShouldRetry func(err error, attempt int) bool

	// OnRetry runs before each backoff sleep with the one-based retry number.
	OnRetry func(err error, attempt int)
}

// RetryPolicy is a fully resolved retry configuration.
type RetryPolicy struct {
	MaxRetries           int
	InitialDelay         time.Duration
	MaxDelay             time.Duration
	BackoffMultiplier    float64
	RetryableStatusCodes []int
	RetryOnNetworkError  bool
	ShouldRetry          func(err error, attempt int) bool
	OnRetry              func(err error, attempt int)
}

// DefaultRetryPolicy returns the default policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:           DefaultMaxRetries,
		InitialDelay:         DefaultInitialDelay,
		MaxDelay:             DefaultMaxDelay,
		BackoffMultiplier:    DefaultBackoffMultiplier,
		RetryableStatusCodes: slices.Clone(DefaultRetryableStatusCodes),
		RetryOnNetworkError:  true,
	}
}

// MergeRetryOptions resolves opts over DefaultRetryPolicy. Explicit fields win.
// A negative MaxRetries is clamped to zero.
func MergeRetryOptions(opts *RetryOptions) RetryPolicy {
	policy := DefaultRetryPolicy()
	if opts == nil {
		return policy
	}

	if opts.MaxRetries != nil {
		policy.MaxRetries = max(*opts.MaxRetries, 0)
	}
	if opts.InitialDelay != nil {
		policy.InitialDelay = *opts.InitialDelay
	}
	if opts.MaxDelay != nil {
		policy.MaxDelay = *opts.MaxDelay
	}
	if opts.BackoffMultiplier != nil {
		policy.BackoffMultiplier = *opts.BackoffMultiplier
	}
	if opts.RetryableStatusCodes != nil {
		policy.RetryableStatusCodes = slices.Clone(opts.RetryableStatusCodes)
	}
	if opts.RetryOnNetworkError != nil {
		policy.RetryOnNetworkError = *opts.RetryOnNetworkError
	}
	policy.ShouldRetry = opts.ShouldRetry
	policy.OnRetry = opts.OnRetry

	return policy
}

// IsRetryableStatus reports whether code is in the policy's status list.
func (p RetryPolicy) IsRetryableStatus(code int) bool {
	return slices.Contains(p.RetryableStatusCodes, code)
}

// CalculateBackoff returns the delay before the retry that follows the
// zero-based attempt: min(initial * multiplier^attempt, max), jittered by ±10%.
func CalculateBackoff(attempt int, initialDelay, maxDelay time.Duration, multiplier float64) time.Duration {
	return backoffWithJitter(attempt, initialDelay, maxDelay, multiplier, rand.Float64())
}

// backoffWithJitter computes the delay with r drawn from [0, 1).
func backoffWithJitter(attempt int, initialDelay, maxDelay time.Duration, multiplier float64, r float64) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := float64(initialDelay) * math.Pow(multiplier, float64(attempt))
	if math.IsNaN(delay) || delay > float64(maxDelay) {
		delay = float64(maxDelay)
	}

	// U is uniform in [-1, 1].
	u := r*2 - 1
	delay += delay * jitterFraction * u
	if delay < 0 {
		delay = 0
	}

	return time.Duration(delay)
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// Duration returns a pointer to v.
func Duration(v time.Duration) *time.Duration { return &v }
