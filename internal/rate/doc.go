// Package rate provides Redis-backed fixed-window counters used to throttle
// credential verification and refresh rotation.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on the first hit. Key
// prefixes:
//   - rl:login:   — login attempts per identifier
//   - rl:loginip: — login attempts per client IP
//   - rl:refresh: — refresh rotations per subject
//
// # What this package must NOT do
//
//   - Decide which operations are throttled (the Engine owns that policy).
//   - Be imported outside the goSession module.
package rate
