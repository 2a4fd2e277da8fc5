// Package middleware exposes HTTP middleware adapters for access-token
// enforcement built on top of goSession.Engine validation.
//
// # Guards
//
//   - [RequireAccess] — stateless access-token verification, no Redis call.
//
// The guard reads the Authorization header, calls Engine.ValidateAccess, and
// injects the validated result into the request context, where handlers
// retrieve it with [AuthResultFromContext].
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT implement
// authentication logic itself — all decisions are delegated to Engine.ValidateAccess.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from Engine.ValidateAccess.
package middleware
