package goSession

import (
	"context"
	"log"
	"time"

	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/revocation"
)

// Refresh describes the refresh operation and its observable behavior.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if e.metrics != nil && e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			e.metrics.Observe(MetricRefreshLatency, time.Since(start))
		}()
	}

	res := flows.RunRefresh(ctx, refreshToken, e.refreshDeps())
	switch res.Failure {
	case flows.RefreshFailureNone:

	case flows.RefreshFailureMissingInput:
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", ErrMissingInput, func() map[string]string {
			return map[string]string{
				"reason": "missing_input",
			}
		})
		return nil, ErrMissingInput

	case flows.RefreshFailureDecode:
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", res.Err, func() map[string]string {
			return map[string]string{
				"reason": "decode_failed",
			}
		})
		return nil, res.Err

	case flows.RefreshFailurePayload:
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, res.SubjectID, ErrTokenPayloadInvalid, func() map[string]string {
			return map[string]string{
				"reason": "payload_invalid",
			}
		})
		return nil, ErrTokenPayloadInvalid

	case flows.RefreshFailureRateLimited:
		e.metricInc(MetricRefreshRateLimited)
		e.emitAudit(ctx, auditEventRefreshRateLimited, false, res.SubjectID, ErrRefreshRateLimited, nil)
		e.emitRateLimit(ctx, "refresh", func() map[string]string {
			return map[string]string{
				"subject_id": res.SubjectID,
			}
		})
		return nil, ErrRefreshRateLimited

	case flows.RefreshFailureRevoked:
		e.metricInc(MetricRefreshRevoked)
		e.emitAudit(ctx, auditEventRefreshRevoked, false, res.SubjectID, ErrTokenRevoked, nil)
		return nil, ErrTokenRevoked

	case flows.RefreshFailureNotFound:
		e.metricInc(MetricRefreshNotFound)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, res.SubjectID, ErrTokenNotFound, func() map[string]string {
			return map[string]string{
				"reason": "token_not_found",
			}
		})
		return nil, ErrTokenNotFound

	default:
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, res.SubjectID, res.Err, func() map[string]string {
			return map[string]string{
				"reason": "store_or_issue_failed",
			}
		})
		return nil, res.Err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, res.SubjectID, nil, nil)

	return &TokenPair{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	}, nil
}

func (e *Engine) refreshDeps() flows.RefreshDeps {
	return flows.RefreshDeps{
		DecodeRefresh: func(tokenStr string) (*jwt.Credential, error) {
			return e.jwtManager.Decode(tokenStr, jwt.TypeRefresh)
		},
		RequiredClaims: e.config.Security.RequiredRefreshClaims,
		EncodeAccess:   e.encodeAccess,
		EncodeRefresh:  e.encodeRefresh,
		RefreshTTL:     e.refreshTTL,
		RecordNotFound: revocation.ErrRecordNotFound,
		RateLimiter:    e.rateLimiter,
		TokenStore:     e.tokenStore,
		Warn: func(msg string, _ ...any) {
			log.Print(msg)
		},
	}
}
