package goSession

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// Sixteen goroutines race to rotate the same refresh token. The DeleteActive
// gate admits exactly one; every loser observes ErrTokenNotFound.
func TestConcurrentRefreshSingleWinner(t *testing.T) {
	engine, _ := newTestEngine(t, newTestConfig(t))
	ctx := context.Background()

	pair, err := engine.Login(ctx, "alice@example.com", "correct-password-123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	const workers = 16

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
		losers  int
	)

	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			_, err := engine.Refresh(ctx, pair.RefreshToken)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case errors.Is(err, ErrTokenNotFound):
				losers++
			default:
				t.Errorf("unexpected refresh error: %v", err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if winners != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", winners)
	}
	if losers != workers-1 {
		t.Fatalf("expected %d losers, got %d", workers-1, losers)
	}
}

// Concurrent logouts of the same token all succeed; the token ends up
// revoked exactly as if logged out once.
func TestConcurrentLogoutIdempotent(t *testing.T) {
	engine, _ := newTestEngine(t, newTestConfig(t))
	ctx := context.Background()

	pair, err := engine.Login(ctx, "alice@example.com", "correct-password-123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	const workers = 8

	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- engine.Logout(ctx, pair.RefreshToken)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent logout failed: %v", err)
		}
	}

	revoked, err := engine.IsRefreshRevoked(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("IsRefreshRevoked failed: %v", err)
	}
	if !revoked {
		t.Fatal("token should be revoked")
	}
}
