package goSession

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/revocation"
)

// HealthStatus is an on-demand backend health result.
type HealthStatus struct {
	RedisAvailable bool
	RedisLatency   time.Duration
}

// ValidateAccess describes the validateaccess operation and its observable behavior.
//
// ValidateAccess may return an error when input validation, dependency calls, or security checks fail.
// ValidateAccess does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ValidateAccess(tokenStr string) (*AuthResult, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}
	if tokenStr == "" {
		return nil, ErrMissingInput
	}

	cred, err := e.jwtManager.Decode(tokenStr, jwt.TypeAccess)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		SubjectID: cred.SubjectID,
		Claims:    cred.Claims,
		IssuedAt:  cred.IssuedAt,
		ExpiresAt: cred.ExpiresAt,
	}, nil
}

// IsRefreshActive reports whether a refresh token is currently registered in
// the active namespace. Intended for dashboards and support tooling, not for
// the rotation path (Refresh performs its own checks atomically).
func (e *Engine) IsRefreshActive(ctx context.Context, refreshToken string) (bool, error) {
	if !e.ready() {
		return false, ErrEngineNotReady
	}

	cred, ok := e.jwtManager.DecodeSafe(refreshToken, jwt.TypeRefresh)
	if !ok {
		return false, nil
	}

	if _, err := e.tokenStore.GetActive(ctx, cred.SubjectID, refreshToken); err != nil {
		if errors.Is(err, revocation.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// IsRefreshRevoked reports whether a refresh token has been explicitly
// revoked. Tokens that never decoded report false.
func (e *Engine) IsRefreshRevoked(ctx context.Context, refreshToken string) (bool, error) {
	if !e.ready() {
		return false, ErrEngineNotReady
	}

	cred, ok := e.jwtManager.DecodeSafe(refreshToken, jwt.TypeRefresh)
	if !ok {
		return false, nil
	}

	return e.tokenStore.IsRevoked(ctx, cred.SubjectID, refreshToken)
}

// Health describes the health operation and its observable behavior.
//
// Health may return an error when input validation, dependency calls, or security checks fail.
// Health does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Health(ctx context.Context) HealthStatus {
	if !e.ready() {
		return HealthStatus{}
	}

	latency, err := e.tokenStore.Ping(ctx)
	return HealthStatus{
		RedisAvailable: err == nil,
		RedisLatency:   latency,
	}
}
