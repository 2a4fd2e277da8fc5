// Package password implements credential hashing and verification with Argon2id defaults.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// The [Hasher] supports transparent parameter upgrades: if a stored hash was
// produced with weaker parameters, [Hasher.NeedsRehash] returns true so the
// caller can re-hash on the next successful verification.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Credential lookup and
// issuance policy belong to the Engine and its SubjectProvider.
//
// # What this package must NOT do
//
//   - Store or retrieve credentials — callers supply plaintext and receive hashes.
//   - Import any other goSession package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
