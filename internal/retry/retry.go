// internal/retry/retry.go
package retry

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog/log"
)

// Config defines retry behavior with exponential backoff
type Config struct {
	MaxAttempts    int           // Maximum number of attempts (including the first)
	InitialBackoff time.Duration // Backoff after the first failed attempt
	MaxBackoff     time.Duration // Backoff ceiling
	Multiplier     float64       // Backoff multiplier per attempt
}

// DefaultConfig returns the retry budget used for page navigation
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		Multiplier:     2.0,
	}
}

// Classifier decides whether a failed attempt should be retried
type Classifier func(error) bool

// Do executes fn with retry logic. Only errors the classifier accepts are
// retried; everything else surfaces immediately. Returns the number of
// attempts actually made alongside the final error.
func Do(ctx context.Context, cfg Config, retryable Classifier, fn func() error) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if retryable == nil {
		retryable = IsTimeout
	}

	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 1 {
				log.Debug().Int("attempts", attempt).Msg("Retry succeeded")
			}
			return attempt, nil
		}

		lastErr = err

		if !retryable(err) {
			log.Debug().Err(err).Msg("Error is not retryable")
			return attempt, err
		}

		if attempt < cfg.MaxAttempts {
			backoff := Backoff(attempt, cfg)

			log.Debug().
				Int("attempt", attempt).
				Int("max_attempts", cfg.MaxAttempts).
				Dur("backoff", backoff).
				Err(err).
				Msg("Retrying after backoff")

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return attempt, ctx.Err()
			}
		}
	}

	log.Warn().
		Int("attempts", cfg.MaxAttempts).
		Err(lastErr).
		Msg("Max retry attempts exceeded")

	return cfg.MaxAttempts, lastErr
}

// Backoff returns the delay after the given attempt (1-based):
// initialBackoff * multiplier^(attempt-1), capped at MaxBackoff.
func Backoff(attempt int, cfg Config) time.Duration {
	backoff := float64(cfg.InitialBackoff) * math.Pow(cfg.Multiplier, float64(attempt-1))
	if backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}
	return time.Duration(backoff)
}

// IsTimeout reports whether an error is timeout-class. DNS failures,
// malformed URLs and refused connections are not.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) {
		return timeoutErr.Timeout()
	}

	return false
}
