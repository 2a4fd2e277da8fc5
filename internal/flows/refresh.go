package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/revocation"
)

// RefreshFailureKind classifies refresh flow failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureMissingInput
	RefreshFailureDecode
	RefreshFailurePayload
	RefreshFailureRateLimited
	RefreshFailureRevoked
	RefreshFailureNotFound
	RefreshFailureStore
	RefreshFailureEncode
	RefreshFailurePersist
)

// RefreshResult carries either the rotated token pair or failure metadata.
type RefreshResult struct {
	Failure      RefreshFailureKind
	Err          error
	SubjectID    string
	AccessToken  string
	RefreshToken string
}

type RefreshRateLimiter interface {
	CheckRefresh(ctx context.Context, subjectID string) error
}

// RefreshTokenStore is the slice of the revocation store needed by rotation.
type RefreshTokenStore interface {
	IsRevoked(ctx context.Context, subjectID, token string) (bool, error)
	GetActive(ctx context.Context, subjectID, token string) (*revocation.Record, error)
	DeleteActive(ctx context.Context, subjectID, token string) (bool, error)
	PutActive(ctx context.Context, subjectID, token string, ttl time.Duration) error
}

// RefreshDeps captures refresh rotation dependencies.
type RefreshDeps struct {
	DecodeRefresh  func(string) (*jwt.Credential, error)
	RequiredClaims []string
	EncodeAccess   func(subjectID string, claims map[string]string) (string, error)
	EncodeRefresh  func(subjectID string, claims map[string]string) (string, error)
	RefreshTTL     func() time.Duration
	RecordNotFound error
	RateLimiter    RefreshRateLimiter
	TokenStore     RefreshTokenStore
	Warn           func(string, ...any)
}

// RunRefresh executes refresh rotation: verify the presented token, retire it,
// and mint a replacement pair. The DeleteActive step is the rotation gate —
// of N concurrent calls presenting the same token, the one whose delete
// observes an existing record proceeds; the rest fail with
// RefreshFailureNotFound.
func RunRefresh(ctx context.Context, refreshToken string, deps RefreshDeps) RefreshResult {
	if refreshToken == "" {
		return RefreshResult{
			Failure: RefreshFailureMissingInput,
		}
	}

	cred, err := deps.DecodeRefresh(refreshToken)
	if err != nil {
		return RefreshResult{
			Failure: RefreshFailureDecode,
			Err:     err,
		}
	}

	for _, name := range deps.RequiredClaims {
		if cred.Claims[name] == "" {
			return RefreshResult{
				Failure:   RefreshFailurePayload,
				Err:       errors.New("required claim missing: " + name),
				SubjectID: cred.SubjectID,
			}
		}
	}

	if deps.RateLimiter != nil {
		if err := deps.RateLimiter.CheckRefresh(ctx, cred.SubjectID); err != nil {
			return RefreshResult{
				Failure:   RefreshFailureRateLimited,
				Err:       err,
				SubjectID: cred.SubjectID,
			}
		}
	}

	revoked, err := deps.TokenStore.IsRevoked(ctx, cred.SubjectID, refreshToken)
	if err != nil {
		return RefreshResult{
			Failure:   RefreshFailureStore,
			Err:       err,
			SubjectID: cred.SubjectID,
		}
	}
	if revoked {
		return RefreshResult{
			Failure:   RefreshFailureRevoked,
			SubjectID: cred.SubjectID,
		}
	}

	if _, err := deps.TokenStore.GetActive(ctx, cred.SubjectID, refreshToken); err != nil {
		if deps.RecordNotFound != nil && errors.Is(err, deps.RecordNotFound) {
			return RefreshResult{
				Failure:   RefreshFailureNotFound,
				Err:       err,
				SubjectID: cred.SubjectID,
			}
		}
		return RefreshResult{
			Failure:   RefreshFailureStore,
			Err:       err,
			SubjectID: cred.SubjectID,
		}
	}

	existed, err := deps.TokenStore.DeleteActive(ctx, cred.SubjectID, refreshToken)
	if err != nil {
		return RefreshResult{
			Failure:   RefreshFailureStore,
			Err:       err,
			SubjectID: cred.SubjectID,
		}
	}
	if !existed {
		// Lost the rotation race: a concurrent refresh already consumed the record.
		return RefreshResult{
			Failure:   RefreshFailureNotFound,
			SubjectID: cred.SubjectID,
		}
	}

	access, err := deps.EncodeAccess(cred.SubjectID, cred.Claims)
	if err != nil {
		return RefreshResult{
			Failure:   RefreshFailureEncode,
			Err:       err,
			SubjectID: cred.SubjectID,
		}
	}

	refresh, err := deps.EncodeRefresh(cred.SubjectID, cred.Claims)
	if err != nil {
		return RefreshResult{
			Failure:   RefreshFailureEncode,
			Err:       err,
			SubjectID: cred.SubjectID,
		}
	}

	if err := deps.TokenStore.PutActive(ctx, cred.SubjectID, refresh, deps.RefreshTTL()); err != nil {
		// Fail closed: the old record is gone and the new one never landed,
		// so the subject must re-authenticate.
		if deps.Warn != nil {
			deps.Warn("goSession: refresh registration failed after rotation")
		}
		return RefreshResult{
			Failure:   RefreshFailurePersist,
			Err:       err,
			SubjectID: cred.SubjectID,
		}
	}

	return RefreshResult{
		Failure:      RefreshFailureNone,
		SubjectID:    cred.SubjectID,
		AccessToken:  access,
		RefreshToken: refresh,
	}
}
