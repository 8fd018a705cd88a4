package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultAttempts = 1
	defaultDelay    = 500 * time.Millisecond
	defaultMaxDelay = 5 * time.Second
)

// RetryConfig configures retries of one outbound call. Attempts counts the
// first call too, so the default of 1 never retries.
type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"1"`
	Delay    time.Duration `env:"DELAY" envDefault:"500ms"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"5s"`
}

// ToRetryOptions builds retry-go options. Only errors for which retryable
// returns true are retried; a nil retryable retries everything.
func (rc *RetryConfig) ToRetryOptions(ctx context.Context, retryable func(error) bool) []retry.Option {
	attempts := rc.Attempts
	if attempts == 0 {
		attempts = defaultAttempts
	}

	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(rc.Delay),
		retry.MaxDelay(rc.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	}
	if retryable != nil {
		opts = append(opts, retry.RetryIf(retryable))
	}
	return opts
}

// Do runs fn under the configured policy and returns its result.
func Do[T any](ctx context.Context, rc *RetryConfig, retryable func(error) bool, fn func() (T, error)) (T, error) {
	if rc == nil {
		rc = DefaultRetryConfig()
	}
	return retry.DoWithData(fn, rc.ToRetryOptions(ctx, retryable)...)
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
	}
}
