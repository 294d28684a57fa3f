/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package retry retries collaborator round trips that fail with transient
// errors (rate limits, overload, gateway timeouts) using exponential backoff
// with jitter.
package retry

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
)

// Config configures retry behavior. The env tags let it be embedded in
// service configuration processed by go-envconfig.
type Config struct {
	// MaxRetries is the number of retries after the first attempt. 0 disables retries.
	MaxRetries int `env:"RETRY_MAX,default=5"`
	// BaseBackoff is the delay before the first retry; it doubles per attempt.
	BaseBackoff time.Duration `env:"RETRY_BASE_BACKOFF,default=1s"`
	// MaxBackoff caps the exponential delay.
	MaxBackoff time.Duration `env:"RETRY_MAX_BACKOFF,default=60s"`
	// MaxJitter is the upper bound of random delay added to each backoff.
	MaxJitter time.Duration `env:"RETRY_MAX_JITTER,default=500ms"`
}

// Validate checks that the configuration has no negative values.
func (c Config) Validate() error {
	switch {
	case c.MaxRetries < 0:
		return errors.New("max retries cannot be negative")
	case c.BaseBackoff < 0:
		return errors.New("base backoff cannot be negative")
	case c.MaxBackoff < 0:
		return errors.New("max backoff cannot be negative")
	case c.MaxJitter < 0:
		return errors.New("max jitter cannot be negative")
	}
	return nil
}

// DefaultConfig returns the configuration used when none is supplied.
// Quota-based rate limits recover slowly, so the backoffs are long.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  5,
		BaseBackoff: time.Second,
		MaxBackoff:  time.Minute,
		MaxJitter:   500 * time.Millisecond,
	}
}

// Do runs fn until it succeeds, returns an error that isRetryable rejects,
// the retries are exhausted, or ctx is done.
func Do[T any](ctx context.Context, cfg Config, operation string, isRetryable func(error) bool, fn func() (T, error)) (T, error) {
	var (
		result  T
		lastErr error
	)
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, lastErr = fn()
		if lastErr == nil {
			return result, nil
		}
		if !isRetryable(lastErr) {
			return result, lastErr
		}
		if attempt == cfg.MaxRetries {
			break
		}

		wait := backoff(cfg, attempt)
		clog.FromContext(ctx).With("operation", operation).
			With("attempt", attempt+1).
			With("max_retries", cfg.MaxRetries).
			With("backoff", wait).
			With("error", lastErr.Error()).
			Warn("Transient collaborator error, retrying")

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(wait):
		}
	}
	return result, fmt.Errorf("%s failed after %d retries: %w", operation, cfg.MaxRetries, lastErr)
}

// backoff returns BaseBackoff * 2^attempt capped at MaxBackoff, plus jitter.
func backoff(cfg Config, attempt int) time.Duration {
	d := cfg.MaxBackoff
	if attempt < 32 {
		d = min(cfg.BaseBackoff<<attempt, cfg.MaxBackoff)
	}
	if cfg.MaxJitter > 0 {
		if n, err := rand.Int(rand.Reader, big.NewInt(int64(cfg.MaxJitter))); err == nil {
			d += time.Duration(n.Int64())
		}
	}
	return d
}

// Any reports whether any of the classifiers accepts err.
func Any(classifiers ...func(error) bool) func(error) bool {
	return func(err error) bool {
		for _, c := range classifiers {
			if c(err) {
				return true
			}
		}
		return false
	}
}

// OnStatus classifies errors by HTTP status. statusOf extracts the status
// from a provider error and reports false for errors that carry none.
func OnStatus(statusOf func(error) (int, bool), codes ...int) func(error) bool {
	return func(err error) bool {
		if err == nil {
			return false
		}
		code, ok := statusOf(err)
		return ok && slices.Contains(codes, code)
	}
}

// OnMessage classifies errors whose text contains any of markers, ignoring
// case. It serves providers whose errors only expose a message.
func OnMessage(markers ...string) func(error) bool {
	lower := make([]string, len(markers))
	for i, m := range markers {
		lower[i] = strings.ToLower(m)
	}
	return func(err error) bool {
		if err == nil {
			return false
		}
		msg := strings.ToLower(err.Error())
		return slices.ContainsFunc(lower, func(m string) bool { return strings.Contains(msg, m) })
	}
}
