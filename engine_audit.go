package goSession

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/revocation"
)

const (
	auditEventLoginSuccess       = "login_success"
	auditEventLoginFailure       = "login_failure"
	auditEventLoginRateLimited   = "login_rate_limited"
	auditEventTokenPairIssued    = "token_pair_issued"
	auditEventRefreshSuccess     = "refresh_success"
	auditEventRefreshInvalid     = "refresh_invalid"
	auditEventRefreshRevoked     = "refresh_revoked"
	auditEventRefreshRateLimited = "refresh_rate_limited"
	auditEventLogout             = "logout"
	auditEventRevokeAll          = "revoke_all"
	auditEventRateLimitTriggered = "rate_limit_triggered"
)

// AuditErrorCode defines a public type used by goSession APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrMissingInput       AuditErrorCode = "missing_input"
	auditErrRateLimited        AuditErrorCode = "rate_limited"
	auditErrInvalidToken       AuditErrorCode = "invalid_token"
	auditErrExpiredToken       AuditErrorCode = "expired_token"
	auditErrPayloadInvalid     AuditErrorCode = "payload_invalid"
	auditErrTokenRevoked       AuditErrorCode = "token_revoked"
	auditErrTokenNotFound      AuditErrorCode = "token_not_found"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	subjectID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		SubjectID: subjectID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func (e *Engine) emitRateLimit(
	ctx context.Context,
	scope string,
	metadataBuilder func() map[string]string,
) {
	e.metricInc(MetricRateLimitHit)
	e.emitAudit(ctx, auditEventRateLimitTriggered, false, "", nil, func() map[string]string {
		base := map[string]string{
			"scope": scope,
		}
		if metadataBuilder == nil {
			return base
		}
		for k, v := range metadataBuilder() {
			base[k] = v
		}
		return base
	})
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrMissingInput):
		return auditErrMissingInput
	case errors.Is(err, ErrLoginRateLimited),
		errors.Is(err, ErrRefreshRateLimited):
		return auditErrRateLimited
	case errors.Is(err, jwt.ErrExpired):
		return auditErrExpiredToken
	case errors.Is(err, jwt.ErrInvalidSignature),
		errors.Is(err, jwt.ErrTypeMismatch):
		return auditErrInvalidToken
	case errors.Is(err, jwt.ErrMalformedPayload),
		errors.Is(err, ErrTokenPayloadInvalid):
		return auditErrPayloadInvalid
	case errors.Is(err, ErrTokenRevoked):
		return auditErrTokenRevoked
	case errors.Is(err, ErrTokenNotFound):
		return auditErrTokenNotFound
	case errors.Is(err, revocation.ErrRedisUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
