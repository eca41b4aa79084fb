// Package resilience wraps flaky provider calls with bounded exponential
// backoff. Evaluation backends are remote LLM services: transient transport
// errors and occasional malformed completions are expected, and one or two
// retries recover most of them.
//
// All types are safe for concurrent use.
package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig holds tuning knobs for a retry loop. Zero-value fields are
// replaced with defaults.
type RetryConfig struct {
	// MaxRetries is the number of attempts after the first. Default: 2.
	MaxRetries uint64

	// InitialInterval is the delay before the first retry. Default: 500ms.
	InitialInterval time.Duration

	// MaxInterval caps the backoff growth. Default: 5s.
	MaxInterval time.Duration
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxRetries == 0 {
		c.MaxRetries = 2
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = 500 * time.Millisecond
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = 5 * time.Second
	}
	return c
}

// Retry runs op with exponential backoff until it succeeds, returns a
// permanent error, the retry budget is exhausted, or ctx is cancelled. Wrap
// an error with backoff.Permanent inside op to stop retrying immediately.
func Retry[T any](ctx context.Context, cfg RetryConfig, op func() (T, error)) (T, error) {
	cfg = cfg.withDefaults()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialInterval
	b.MaxInterval = cfg.MaxInterval

	return backoff.RetryWithData(op, backoff.WithContext(backoff.WithMaxRetries(b, cfg.MaxRetries), ctx))
}
