// Package revocation provides the Redis-backed refresh-token state store:
// an "active" namespace for live refresh tokens and a "revoked" namespace
// for explicitly invalidated ones, each with independent TTLs.
//
// # Key layout
//
// Active records live under refresh_token:{subject}:{token} and revoked
// records under revoked_token:{subject}:{token}, both holding a small JSON
// payload. A token value never occupies both namespaces: the only move is
// active -> revoked, performed atomically by a Lua script.
//
// # Architecture boundaries
//
// This package owns Redis key construction and record encoding. It does NOT
// interpret token contents, verify signatures, or enforce refresh policy —
// those responsibilities belong to the Engine.
//
// # What this package must NOT do
//
//   - Import goSession or jwt (no upward imports).
//   - Re-derive TTLs from token expiry; callers pass TTLs explicitly.
//   - Mask Redis transport failures as absent records.
package revocation
