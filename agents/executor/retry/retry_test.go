/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package retry_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"chainguard.dev/duoforge/agents/executor/retry"
)

func testConfig() retry.Config {
	return retry.Config{
		MaxRetries:  3,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  10 * time.Millisecond,
		MaxJitter:   time.Millisecond,
	}
}

func always(err error) bool { return err != nil }

func never(error) bool { return false }

func TestDo(t *testing.T) {
	t.Parallel()
	transient := errors.New("429 RESOURCE_EXHAUSTED")

	tests := []struct {
		name         string
		failures     int32
		isRetryable  func(error) bool
		wantAttempts int32
		wantErr      bool
	}{{
		name:         "first attempt succeeds",
		failures:     0,
		isRetryable:  always,
		wantAttempts: 1,
	}, {
		name:         "recovers after two failures",
		failures:     2,
		isRetryable:  always,
		wantAttempts: 3,
	}, {
		name:         "exhausts retries",
		failures:     10,
		isRetryable:  always,
		wantAttempts: 4,
		wantErr:      true,
	}, {
		name:         "non-retryable fails fast",
		failures:     10,
		isRetryable:  never,
		wantAttempts: 1,
		wantErr:      true,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var attempts atomic.Int32
			got, err := retry.Do(context.Background(), testConfig(), "review", tt.isRetryable, func() (string, error) {
				if attempts.Add(1) <= tt.failures {
					return "", transient
				}
				return "looks good", nil
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Do() error: got = %v, wanted error = %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, transient) {
				t.Errorf("Do() error: got = %v, wanted wrapping %v", err, transient)
			}
			if !tt.wantErr && got != "looks good" {
				t.Errorf("Do() result: got = %q, wanted = %q", got, "looks good")
			}
			if n := attempts.Load(); n != tt.wantAttempts {
				t.Errorf("attempts: got = %d, wanted = %d", n, tt.wantAttempts)
			}
		})
	}
}

func TestDoExhaustedMessage(t *testing.T) {
	t.Parallel()
	_, err := retry.Do(context.Background(), testConfig(), "implement", always, func() (int, error) {
		return 0, errors.New("503 overloaded")
	})
	if err == nil || !strings.HasPrefix(err.Error(), "implement failed after 3 retries") {
		t.Errorf("Do() error: got = %v, wanted operation prefix", err)
	}
}

func TestDoContextCancelled(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.BaseBackoff = time.Hour
	cfg.MaxBackoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	var attempts atomic.Int32
	_, err := retry.Do(ctx, cfg, "draft", always, func() (string, error) {
		attempts.Add(1)
		cancel()
		return "", errors.New("429")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error: got = %v, wanted context.Canceled", err)
	}
	if n := attempts.Load(); n != 1 {
		t.Errorf("attempts: got = %d, wanted = 1", n)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		cfg     retry.Config
		wantErr bool
	}{
		{name: "default", cfg: retry.DefaultConfig()},
		{name: "zero", cfg: retry.Config{}},
		{name: "negative retries", cfg: retry.Config{MaxRetries: -1}, wantErr: true},
		{name: "negative base", cfg: retry.Config{BaseBackoff: -1}, wantErr: true},
		{name: "negative max", cfg: retry.Config{MaxBackoff: -1}, wantErr: true},
		{name: "negative jitter", cfg: retry.Config{MaxJitter: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate(): got = %v, wanted error = %v", err, tt.wantErr)
			}
		})
	}
}

func TestAny(t *testing.T) {
	t.Parallel()
	rateLimited := func(err error) bool { return strings.Contains(err.Error(), "429") }
	overloaded := func(err error) bool { return strings.Contains(err.Error(), "529") }
	isRetryable := retry.Any(rateLimited, overloaded)

	if !isRetryable(errors.New("status 529")) {
		t.Error("Any(529): got = false, wanted = true")
	}
	if isRetryable(errors.New("status 401")) {
		t.Error("Any(401): got = true, wanted = false")
	}
}

type statusError struct{ code int }

func (e *statusError) Error() string { return "status " + http.StatusText(e.code) }

func TestClassifiers(t *testing.T) {
	t.Parallel()

	onStatus := retry.OnStatus(func(err error) (int, bool) {
		var se *statusError
		if errors.As(err, &se) {
			return se.code, true
		}
		return 0, false
	}, http.StatusTooManyRequests, http.StatusServiceUnavailable)
	onMessage := retry.OnMessage("RESOURCE_EXHAUSTED", "quota exceeded")

	tests := []struct {
		name     string
		classify func(error) bool
		err      error
		want     bool
	}{
		{name: "status nil", classify: onStatus, err: nil, want: false},
		{name: "status listed", classify: onStatus, err: &statusError{code: 429}, want: true},
		{name: "status wrapped", classify: onStatus, err: fmt.Errorf("review: %w", &statusError{code: 503}), want: true},
		{name: "status unlisted", classify: onStatus, err: &statusError{code: 400}, want: false},
		{name: "status absent", classify: onStatus, err: errors.New("429"), want: false},
		{name: "message nil", classify: onMessage, err: nil, want: false},
		{name: "message exact", classify: onMessage, err: errors.New("Status: RESOURCE_EXHAUSTED"), want: true},
		{name: "message case folded", classify: onMessage, err: errors.New("Quota Exceeded for project"), want: true},
		{name: "message unrelated", classify: onMessage, err: errors.New("permission denied"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.classify(tt.err); got != tt.want {
				t.Errorf("classify(%v): got = %v, wanted = %v", tt.err, got, tt.want)
			}
		})
	}
}
