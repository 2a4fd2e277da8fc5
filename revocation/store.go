package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is an exported constant or variable used by the session engine.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrRecordNotFound is returned when no active record exists for the key.
var ErrRecordNotFound = errors.New("active record not found")

// ErrRecordCorrupt is returned when a stored record blob cannot be decoded.
var ErrRecordCorrupt = errors.New("record corrupt")

const (
	// DefaultActivePrefix is an exported constant or variable used by the session engine.
	DefaultActivePrefix = "refresh_token:"
	// DefaultRevokedPrefix is an exported constant or variable used by the session engine.
	DefaultRevokedPrefix = "revoked_token:"

	defaultScanBatch = 512
)

const revokeScript = `
local data = redis.call("GET", KEYS[1])
if not data then
  return 0
end
redis.call("SET", KEYS[2], data, "PX", ARGV[1])
redis.call("DEL", KEYS[1])
return 1
`

var revokeLua = redis.NewScript(revokeScript)

// Store is the Redis-backed revocation store. All methods are safe for
// concurrent use against the same keys; contention is partitioned per
// (subject, token) key, so no process-wide locking is needed.
//
//	Docs: docs/revocation.md
type Store struct {
	redis         redis.UniversalClient
	activePrefix  string
	revokedPrefix string
	scanBatch     int64
}

// NewStore creates a revocation [Store] backed by the given Redis client.
// Empty prefixes fall back to [DefaultActivePrefix] / [DefaultRevokedPrefix];
// scanBatch caps the per-iteration SCAN count used by RevokeAll.
func NewStore(client redis.UniversalClient, activePrefix, revokedPrefix string, scanBatch int) *Store {
	if activePrefix == "" {
		activePrefix = DefaultActivePrefix
	}
	if revokedPrefix == "" {
		revokedPrefix = DefaultRevokedPrefix
	}
	if scanBatch <= 0 {
		scanBatch = defaultScanBatch
	}
	return &Store{
		redis:         client,
		activePrefix:  activePrefix,
		revokedPrefix: revokedPrefix,
		scanBatch:     int64(scanBatch),
	}
}

func (s *Store) activeKey(subjectID, token string) string {
	return s.activePrefix + subjectID + ":" + token
}

func (s *Store) revokedKey(subjectID, token string) string {
	return s.revokedPrefix + subjectID + ":" + token
}

func (s *Store) subjectPattern(subjectID string) string {
	return s.activePrefix + subjectID + ":*"
}

// PutActive stores an active record with the given TTL. Overwrites any
// existing record for the same key (idempotent registration).
//
//	Performance: 1 Redis SET.
func (s *Store) PutActive(ctx context.Context, subjectID, token string, ttl time.Duration) error {
	data, err := Encode(&Record{SubjectID: subjectID, Token: token})
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.activeKey(subjectID, token), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// GetActive retrieves the active record for (subjectID, token). Returns
// [ErrRecordNotFound] when the key is absent: never issued, already rotated
// out, or lapsed via TTL — the store cannot tell these apart.
//
//	Performance: 1 Redis GET.
func (s *Store) GetActive(ctx context.Context, subjectID, token string) (*Record, error) {
	data, err := s.redis.Get(ctx, s.activeKey(subjectID, token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	record, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordCorrupt, err)
	}
	return record, nil
}

// DeleteActive removes the active record if present. The returned bool
// reports whether a record existed and was removed by THIS call; the DEL
// reply count makes this the linearization point for refresh rotation —
// under concurrent rotation of the same token, exactly one caller observes
// true.
//
//	Performance: 1 Redis DEL.
func (s *Store) DeleteActive(ctx context.Context, subjectID, token string) (bool, error) {
	n, err := s.redis.Del(ctx, s.activeKey(subjectID, token)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n > 0, nil
}

// Revoke atomically moves the record from the active to the revoked
// namespace, giving the revoked entry its own TTL. When no active record
// exists this is a silent no-op: revoking an unknown or already-revoked
// token is not an error.
//
//	Performance: 1 Lua EVALSHA (atomic GET+SET+DEL).
func (s *Store) Revoke(ctx context.Context, subjectID, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("revoke requires a positive ttl")
	}

	err := revokeLua.Run(
		ctx,
		s.redis,
		[]string{s.activeKey(subjectID, token), s.revokedKey(subjectID, token)},
		ttl.Milliseconds(),
	).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// IsRevoked reports whether (subjectID, token) is present in the revoked
// namespace. Pure existence check; never inspects the stored value.
//
//	Performance: 1 Redis EXISTS.
func (s *Store) IsRevoked(ctx context.Context, subjectID, token string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.revokedKey(subjectID, token)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n > 0, nil
}

// RevokeAll deletes every active record for the subject and returns the
// number of records removed. This is the coarse security-incident path:
// records are dropped outright, NOT moved to the revoked namespace, so
// IsRevoked stays false for them.
//
// ATOMICITY NOTE: SCAN and DEL are separate phases. A record created
// between them is not captured by this call; it will expire naturally or
// be caught by a follow-up RevokeAll. This is an admin-path O(n) operation
// and must not be used in request hot paths.
func (s *Store) RevokeAll(ctx context.Context, subjectID string) (int, error) {
	pattern := s.subjectPattern(subjectID)

	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, pattern, s.scanBatch).Result()
		if err != nil {
			return deleted, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}

		if len(keys) > 0 {
			n, err := s.redis.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
			}
			deleted += int(n)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
