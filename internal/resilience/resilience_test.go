package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

func TestRetryWithBackoff(t *testing.T) {
	cfg := Config{MaxRetries: 3, InitialBackoff: time.Millisecond}

	t.Run("success on first call", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), cfg, func() error {
			calls++
			return nil
		})
		if err != nil || calls != 1 {
			t.Fatalf("err = %v, calls = %d", err, calls)
		}
	})

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), cfg, func() error {
			calls++
			if calls < 3 {
				return errors.New("temporary error")
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Fatalf("err = %v, calls = %d", err, calls)
		}
	})

	t.Run("exhausts retries", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), Config{MaxRetries: 2, InitialBackoff: time.Millisecond}, func() error {
			calls++
			return errors.New("persistent error")
		})
		if err == nil || calls != 3 {
			t.Fatalf("err = %v, calls = %d", err, calls)
		}
	})

	t.Run("permanent error stops", func(t *testing.T) {
		calls := 0
		cause := errors.New("bad request")
		err := RetryWithBackoff(context.Background(), cfg, func() error {
			calls++
			return Permanent(cause)
		})
		if calls != 1 || !errors.Is(err, cause) || !errors.Is(err, ErrPermanent) {
			t.Fatalf("err = %v, calls = %d", err, calls)
		}
	})

	t.Run("respects context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		err := RetryWithBackoff(ctx, cfg, func() error {
			calls++
			return errors.New("error")
		})
		if !errors.Is(err, context.Canceled) || calls != 0 {
			t.Fatalf("err = %v, calls = %d", err, calls)
		}
	})
}

func TestGuardOpensBreaker(t *testing.T) {
	cb := NewCircuitBreaker("test")
	fail := errors.New("sheets down")
	cfg := Config{MaxRetries: 0}

	for i := 0; i < 5; i++ {
		if err := Guard(context.Background(), cb, cfg, func(context.Context) error { return fail }); !errors.Is(err, fail) {
			t.Fatalf("attempt %d: err = %v", i+1, err)
		}
	}
	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}

	calls := 0
	err := Guard(context.Background(), cb, Config{MaxRetries: 3, InitialBackoff: time.Millisecond}, func(context.Context) error {
		calls++
		return nil
	})
	if !errors.Is(err, gobreaker.ErrOpenState) || calls != 0 {
		t.Fatalf("err = %v, calls = %d", err, calls)
	}
}

func TestGuardPermanentErrorsKeepBreakerClosed(t *testing.T) {
	cb := NewCircuitBreaker("test")
	bad := errors.New("invalid period")

	for i := 0; i < 6; i++ {
		err := Guard(context.Background(), cb, Config{MaxRetries: 2}, func(context.Context) error {
			return Permanent(bad)
		})
		if !errors.Is(err, bad) {
			t.Fatalf("attempt %d: err = %v", i+1, err)
		}
	}
	if cb.State() != gobreaker.StateClosed {
		t.Fatalf("state = %v, want closed", cb.State())
	}
}
