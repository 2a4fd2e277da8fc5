// Package goSession provides a low-latency session credential engine with JWT
// access tokens, rotating JWT refresh tokens, and a Redis-backed revocation
// store that tracks every refresh token from issuance to retirement.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (TokenPair, AuthResult, MetricsSnapshot, etc.). All internal
// coordination — flow orchestration, rate limiting, audit dispatch — lives
// under internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or key layouts in its public API.
//   - Perform I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
//   - Import any sub-package that re-imports goSession (no import cycles).
//
// # Performance contract
//
// ValidateAccess is the hot path and completes without Redis round-trips.
// Refresh performs a fixed number of Redis operations per call; RevokeAll is
// the only O(n) operation and is intended for admin paths.
package goSession
