package goSession

import "errors"

var (
	// ErrInvalidCredentials is an exported constant or variable used by the session engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingInput is an exported constant or variable used by the session engine.
	ErrMissingInput = errors.New("required input missing")
	// ErrTokenPayloadInvalid is an exported constant or variable used by the session engine.
	ErrTokenPayloadInvalid = errors.New("token payload invalid")
	// ErrTokenRevoked is an exported constant or variable used by the session engine.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrTokenNotFound is an exported constant or variable used by the session engine.
	ErrTokenNotFound = errors.New("refresh token not found")
	// ErrLoginRateLimited is an exported constant or variable used by the session engine.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrRefreshRateLimited is an exported constant or variable used by the session engine.
	ErrRefreshRateLimited = errors.New("refresh rate limited")
	// ErrEngineNotReady is an exported constant or variable used by the session engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
