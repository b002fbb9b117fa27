package user

import "time"

// Defaults for the fixed-delay retry policy.
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 100 * time.Millisecond
)

// Option configures a Usecase.
type Option func(*Usecase)

// WithRetryPolicy sets how many retries follow the first attempt and the
// fixed delay between attempts.
func WithRetryPolicy(maxRetries int, delay time.Duration) Option {
	return func(uc *Usecase) {
		if maxRetries >= 0 {
			uc.retry.maxRetries = maxRetries
		}
		if delay >= 0 {
			uc.retry.delay = delay
		}
	}
}

// WithRetryIf restricts retries to failures accepted by fn. By default every
// failure is retried.
func WithRetryIf(fn func(error) bool) Option {
	return func(uc *Usecase) {
		uc.retry.retryIf = fn
	}
}

// WithStatusMapping replaces the status rules used by GetWithErrorMapping.
func WithStatusMapping(rules ...StatusRule) Option {
	return func(uc *Usecase) {
		uc.rules = rules
	}
}
