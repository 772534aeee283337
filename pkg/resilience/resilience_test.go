// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/aidekit/aide/pkg/errors"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	cfg := DefaultRetryConfig().WithMaxAttempts(3).WithInitialDelay(time.Millisecond)
	err := cfg.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return stderrors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetryStopsAtMaxAttempts(t *testing.T) {
	calls := 0
	cfg := DefaultRetryConfig().WithMaxAttempts(4).WithInitialDelay(time.Millisecond)
	err := cfg.Do(context.Background(), func() error {
		calls++
		return stderrors.New("always")
	})
	if err == nil {
		t.Fatalf("expected error after exhausting attempts")
	}
	if calls != 4 {
		t.Fatalf("expected 4 calls, got %d", calls)
	}
}

func TestRetryHonorsNonRecoverable(t *testing.T) {
	calls := 0
	cfg := DefaultRetryConfig().WithMaxAttempts(5).WithInitialDelay(time.Millisecond)
	fatal := errors.New(errors.CodeNoCapableAgent, "no candidates", nil).WithRecoverable(false)
	err := cfg.Do(context.Background(), func() error {
		calls++
		return fatal
	})
	if err != fatal {
		t.Fatalf("expected the non-recoverable error back, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("non-recoverable errors must not retry, got %d calls", calls)
	}
}

func TestRetryObservesContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := DefaultRetryConfig().WithMaxAttempts(3).WithInitialDelay(time.Second)
	err := cfg.Do(ctx, func() error { return stderrors.New("transient") })
	if !errors.Is(err, errors.CodeCancelled) {
		t.Fatalf("expected cancelled error, got %v", err)
	}
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	cfg := RetryConfig{
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     40 * time.Millisecond,
		Multiplier:   2.0,
	}
	if d := Backoff(1, cfg); d != 10*time.Millisecond {
		t.Fatalf("attempt 1: got %v", d)
	}
	if d := Backoff(2, cfg); d != 20*time.Millisecond {
		t.Fatalf("attempt 2: got %v", d)
	}
	if d := Backoff(5, cfg); d != 40*time.Millisecond {
		t.Fatalf("attempt 5 should cap at MaxDelay, got %v", d)
	}
}

func TestWithTimeout(t *testing.T) {
	err := WithTimeout(context.Background(), 20*time.Millisecond, func(ctx context.Context) error {
		select {
		case <-time.After(time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if !errors.Is(err, errors.CodeTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}

	err = WithTimeout(context.Background(), time.Second, func(context.Context) error { return nil })
	if err != nil {
		t.Fatalf("expected nil for fast fn, got %v", err)
	}

	err = WithTimeout(context.Background(), 0, func(context.Context) error { return nil })
	if err != nil {
		t.Fatalf("zero duration means no limit, got %v", err)
	}
}
