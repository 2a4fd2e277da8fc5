package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goSession/jwt"
)

// LogoutTokenStore is the slice of the revocation store needed by logout.
type LogoutTokenStore interface {
	Revoke(ctx context.Context, subjectID, token string, ttl time.Duration) error
	RevokeAll(ctx context.Context, subjectID string) (int, error)
}

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	DecodeRefreshSafe func(string) (*jwt.Credential, bool)
	RevokedTTL        func() time.Duration
	TokenStore        LogoutTokenStore
	Warn              func(string, ...any)
}

// LogoutResult reports what logout actually did. Revoked is false when the
// token never decoded or the revocation write failed; callers treat both as
// success because logout is idempotent by contract.
type LogoutResult struct {
	SubjectID string
	Revoked   bool
}

// RunLogout best-effort revokes the presented refresh token. Undecodable
// tokens are a silent no-op.
func RunLogout(ctx context.Context, refreshToken string, deps LogoutDeps) LogoutResult {
	cred, ok := deps.DecodeRefreshSafe(refreshToken)
	if !ok {
		return LogoutResult{}
	}

	if err := deps.TokenStore.Revoke(ctx, cred.SubjectID, refreshToken, deps.RevokedTTL()); err != nil {
		if deps.Warn != nil {
			deps.Warn("goSession: logout revocation write failed")
		}
		return LogoutResult{SubjectID: cred.SubjectID}
	}

	return LogoutResult{SubjectID: cred.SubjectID, Revoked: true}
}

// RunRevokeAll drops every active refresh token for the subject and returns
// the number of records removed.
func RunRevokeAll(ctx context.Context, subjectID string, deps LogoutDeps) (int, error) {
	return deps.TokenStore.RevokeAll(ctx, subjectID)
}
