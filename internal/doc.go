// Package internal groups helper packages that are intentionally private to
// goSession.
//
// # Sub-packages
//
//   - flows — pure-function flow orchestrators for every Engine operation
//   - rate — Redis-backed fixed-window rate limit primitives
//
// # What this package must NOT do
//
//   - Export types that appear in the public goSession API.
//   - Be imported by any package outside the goSession module.
package internal
