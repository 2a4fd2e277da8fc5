package goSession

import (
	"context"
	"log"

	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/jwt"
)

// Logout revokes the presented refresh token. The operation is idempotent:
// tokens that are empty, expired, malformed, already revoked, or never issued
// all produce a nil error, so repeated logouts and stale clients stay quiet.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Logout(ctx context.Context, refreshToken string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	res := flows.RunLogout(ctx, refreshToken, e.logoutDeps())

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, res.SubjectID, nil, func() map[string]string {
		if res.Revoked {
			return map[string]string{"revoked": "true"}
		}
		return map[string]string{"revoked": "false"}
	})

	return nil
}

// RevokeAll drops every active refresh token for the subject and returns the
// number of records removed. Tokens removed this way are gone outright, not
// moved to the revoked namespace.
//
// RevokeAll may return an error when input validation, dependency calls, or security checks fail.
// RevokeAll does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RevokeAll(ctx context.Context, subjectID string) (int, error) {
	if !e.ready() {
		return 0, ErrEngineNotReady
	}
	if subjectID == "" {
		return 0, ErrMissingInput
	}

	removed, err := flows.RunRevokeAll(ctx, subjectID, e.logoutDeps())
	if err != nil {
		e.emitAudit(ctx, auditEventRevokeAll, false, subjectID, err, nil)
		return removed, err
	}

	e.metricInc(MetricRevokeAll)
	e.emitAudit(ctx, auditEventRevokeAll, true, subjectID, nil, nil)
	return removed, nil
}

func (e *Engine) logoutDeps() flows.LogoutDeps {
	return flows.LogoutDeps{
		DecodeRefreshSafe: func(tokenStr string) (*jwt.Credential, bool) {
			return e.jwtManager.DecodeSafe(tokenStr, jwt.TypeRefresh)
		},
		RevokedTTL: e.revokedTTL,
		TokenStore: e.tokenStore,
		Warn: func(msg string, _ ...any) {
			log.Print(msg)
		},
	}
}
