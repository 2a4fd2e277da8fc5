package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const phcAlgorithm = "argon2id"

var (
	// ErrHashMalformed is an exported constant or variable used by the session engine.
	ErrHashMalformed = errors.New("password hash malformed")
	// ErrHashUnsupported is an exported constant or variable used by the session engine.
	ErrHashUnsupported = errors.New("password hash algorithm unsupported")
)

// Params defines a public type used by goSession APIs.
//
// Params instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Params struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams returns the recommended Argon2id cost parameters
// (64 MiB memory, 3 passes, 2 lanes).
func DefaultParams() Params {
	return Params{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hasher defines a public type used by goSession APIs.
//
// Hasher instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Hasher struct {
	params Params
}

// NewHasher describes the newhasher operation and its observable behavior.
//
// NewHasher may return an error when input validation, dependency calls, or security checks fail.
// NewHasher does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewHasher(p Params) (*Hasher, error) {
	if p.Memory < 8*1024 {
		return nil, errors.New("password memory must be >= 8192 KB")
	}
	if p.Time < 1 {
		return nil, errors.New("password time must be >= 1")
	}
	if p.Parallelism < 1 {
		return nil, errors.New("password parallelism must be >= 1")
	}
	if p.SaltLength < 16 {
		return nil, errors.New("password salt length must be >= 16")
	}
	if p.KeyLength < 16 {
		return nil, errors.New("password key length must be >= 16")
	}
	return &Hasher{params: p}, nil
}

// Hash describes the hash operation and its observable behavior.
//
// Hash may return an error when input validation, dependency calls, or security checks fail.
// Hash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (h *Hasher) Hash(plaintext string) (string, error) {
	// Raw string bytes exactly as provided, no Unicode normalization.
	if plaintext == "" {
		return "", errors.New("password must not be empty")
	}

	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := argon2.IDKey(
		[]byte(plaintext),
		salt,
		h.params.Time,
		h.params.Memory,
		h.params.Parallelism,
		h.params.KeyLength,
	)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		phcAlgorithm,
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify describes the verify operation and its observable behavior.
//
// Verify may return an error when input validation, dependency calls, or security checks fail.
// Verify does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (h *Hasher) Verify(plaintext, encoded string) (bool, error) {
	stored, err := decodePHC(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey(
		[]byte(plaintext),
		stored.salt,
		stored.params.Time,
		stored.params.Memory,
		stored.params.Parallelism,
		uint32(len(stored.key)),
	)

	return subtle.ConstantTimeCompare(computed, stored.key) == 1, nil
}

// NeedsRehash reports whether the stored hash was produced with weaker
// parameters than the Hasher is configured with.
func (h *Hasher) NeedsRehash(encoded string) (bool, error) {
	stored, err := decodePHC(encoded)
	if err != nil {
		return false, err
	}

	if h.params.Memory > stored.params.Memory ||
		h.params.Time > stored.params.Time ||
		h.params.Parallelism > stored.params.Parallelism {
		return true, nil
	}
	if uint32(len(stored.key)) != h.params.KeyLength {
		return true, nil
	}
	return false, nil
}

type storedHash struct {
	params Params
	salt   []byte
	key    []byte
}

func decodePHC(encoded string) (*storedHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, ErrHashMalformed
	}
	if parts[1] != phcAlgorithm {
		return nil, ErrHashUnsupported
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, ErrHashMalformed
	}
	if version != argon2.Version {
		return nil, ErrHashUnsupported
	}

	var stored storedHash
	n, err := fmt.Sscanf(
		parts[3],
		"m=%d,t=%d,p=%d",
		&stored.params.Memory,
		&stored.params.Time,
		&stored.params.Parallelism,
	)
	if err != nil || n != 3 {
		return nil, ErrHashMalformed
	}

	if stored.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(stored.salt) < 8 {
		return nil, ErrHashMalformed
	}
	if stored.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(stored.key) == 0 {
		return nil, ErrHashMalformed
	}

	return &stored, nil
}
