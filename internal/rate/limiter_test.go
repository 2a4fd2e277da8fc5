package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, cfg Config) (*miniredis.Miniredis, *Limiter) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, New(client, cfg)
}

func TestLoginLimitEnforced(t *testing.T) {
	_, limiter := newTestLimiter(t, Config{
		MaxLoginAttempts:      3,
		LoginCooldownDuration: time.Minute,
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := limiter.CheckLogin(ctx, "alice", ""); err != nil {
			t.Fatalf("attempt %d: CheckLogin failed: %v", i, err)
		}
		if err := limiter.IncrementLogin(ctx, "alice", ""); err != nil {
			t.Fatalf("attempt %d: IncrementLogin failed: %v", i, err)
		}
	}

	// Fourth increment exceeds the budget.
	if err := limiter.IncrementLogin(ctx, "alice", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if err := limiter.CheckLogin(ctx, "alice", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited from check, got %v", err)
	}

	// A different identifier has its own budget.
	if err := limiter.CheckLogin(ctx, "bob", ""); err != nil {
		t.Fatalf("unrelated identifier should pass, got %v", err)
	}
}

func TestLoginWindowExpires(t *testing.T) {
	mr, limiter := newTestLimiter(t, Config{
		MaxLoginAttempts:      1,
		LoginCooldownDuration: time.Minute,
	})
	ctx := context.Background()

	_ = limiter.IncrementLogin(ctx, "alice", "")
	if err := limiter.IncrementLogin(ctx, "alice", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if err := limiter.CheckLogin(ctx, "alice", ""); err != nil {
		t.Fatalf("expected budget to reset after cooldown, got %v", err)
	}
}

func TestResetLoginClearsCounter(t *testing.T) {
	_, limiter := newTestLimiter(t, Config{
		MaxLoginAttempts:      1,
		LoginCooldownDuration: time.Minute,
	})
	ctx := context.Background()

	_ = limiter.IncrementLogin(ctx, "alice", "")
	_ = limiter.IncrementLogin(ctx, "alice", "")

	if err := limiter.ResetLogin(ctx, "alice", ""); err != nil {
		t.Fatalf("ResetLogin failed: %v", err)
	}

	attempts, err := limiter.LoginAttempts(ctx, "alice")
	if err != nil {
		t.Fatalf("LoginAttempts failed: %v", err)
	}
	if attempts != 0 {
		t.Fatalf("expected 0 attempts after reset, got %d", attempts)
	}
}

func TestIPThrottleSharedAcrossIdentifiers(t *testing.T) {
	_, limiter := newTestLimiter(t, Config{
		EnableIPThrottle:      true,
		MaxLoginAttempts:      2,
		LoginCooldownDuration: time.Minute,
	})
	ctx := context.Background()

	for i, identifier := range []string{"alice", "bob", "carol"} {
		err := limiter.IncrementLogin(ctx, identifier, "10.0.0.1")
		if i < 2 && err != nil {
			t.Fatalf("attempt %d: IncrementLogin failed: %v", i, err)
		}
		if i == 2 && !errors.Is(err, ErrRateLimited) {
			t.Fatalf("expected shared IP budget to trip, got %v", err)
		}
	}

	// Fresh identifier from the same IP is still blocked.
	if err := limiter.CheckLogin(ctx, "dave", "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited via IP counter, got %v", err)
	}
}

func TestRefreshThrottle(t *testing.T) {
	_, limiter := newTestLimiter(t, Config{
		EnableRefreshThrottle:   true,
		MaxRefreshAttempts:      2,
		RefreshCooldownDuration: time.Minute,
	})
	ctx := context.Background()

	if err := limiter.CheckRefresh(ctx, "subject-1"); err != nil {
		t.Fatalf("first refresh should pass: %v", err)
	}
	if err := limiter.CheckRefresh(ctx, "subject-1"); err != nil {
		t.Fatalf("second refresh should pass: %v", err)
	}
	if err := limiter.CheckRefresh(ctx, "subject-1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestRefreshThrottleDisabled(t *testing.T) {
	_, limiter := newTestLimiter(t, Config{
		EnableRefreshThrottle: false,
	})
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		if err := limiter.CheckRefresh(ctx, "subject-1"); err != nil {
			t.Fatalf("disabled throttle must never limit, got %v", err)
		}
	}
}
