package goSession

import (
	"context"
	"log"

	"github.com/MrEthical07/goSession/internal/flows"
)

// Issue describes the issue operation and its observable behavior.
//
// Issue may return an error when input validation, dependency calls, or security checks fail.
// Issue does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Issue(ctx context.Context, subjectID string, claims map[string]string) (*TokenPair, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	res := flows.RunIssue(ctx, subjectID, claims, e.issueDeps())
	switch res.Failure {
	case flows.IssueFailureNone:
	case flows.IssueFailureMissingInput:
		e.emitAudit(ctx, auditEventTokenPairIssued, false, subjectID, ErrMissingInput, nil)
		return nil, ErrMissingInput
	default:
		e.metricInc(MetricIssueFailure)
		e.emitAudit(ctx, auditEventTokenPairIssued, false, subjectID, res.Err, nil)
		return nil, res.Err
	}

	e.metricInc(MetricIssueSuccess)
	e.emitAudit(ctx, auditEventTokenPairIssued, true, res.SubjectID, nil, nil)

	return &TokenPair{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	}, nil
}

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, identifier, plaintext string) (*TokenPair, error) {
	if !e.ready() || e.passwordHash == nil || e.subjectProvider == nil {
		return nil, ErrEngineNotReady
	}
	if identifier == "" || plaintext == "" {
		e.emitAudit(ctx, auditEventLoginFailure, false, "", ErrMissingInput, func() map[string]string {
			return map[string]string{
				"identifier": identifier,
				"reason":     "empty_credentials",
			}
		})
		return nil, ErrMissingInput
	}

	ip := clientIPFromContext(ctx)

	if e.rateLimiter != nil {
		if err := e.rateLimiter.CheckLogin(ctx, identifier, ip); err != nil {
			e.metricInc(MetricLoginRateLimited)
			e.emitAudit(ctx, auditEventLoginRateLimited, false, "", ErrLoginRateLimited, func() map[string]string {
				return map[string]string{
					"identifier": identifier,
				}
			})
			e.emitRateLimit(ctx, "login", func() map[string]string {
				return map[string]string{
					"identifier": identifier,
				}
			})
			return nil, ErrLoginRateLimited
		}
	}

	subject, err := e.subjectProvider.GetSubjectByIdentifier(ctx, identifier)
	if err != nil {
		return nil, e.failLogin(ctx, identifier, ip, "", "subject_not_found")
	}

	ok, err := e.passwordHash.Verify(plaintext, subject.PasswordHash)
	if err != nil || !ok {
		return nil, e.failLogin(ctx, identifier, ip, subject.SubjectID, "password_mismatch")
	}

	if e.config.Password.UpgradeOnLogin {
		if needsRehash, err := e.passwordHash.NeedsRehash(subject.PasswordHash); err == nil && needsRehash {
			if upgradedHash, err := e.passwordHash.Hash(plaintext); err == nil {
				// Rehash update is best-effort and must not block successful login.
				if err := e.subjectProvider.UpdatePasswordHash(ctx, subject.SubjectID, upgradedHash); err != nil {
					log.Print("goSession: password hash upgrade update failed")
				}
			} else {
				log.Print("goSession: password hash upgrade generation failed")
			}
		}
	}
	plaintext = ""

	res := flows.RunIssue(ctx, subject.SubjectID, subject.Claims, e.issueDeps())
	if res.Failure != flows.IssueFailureNone {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, subject.SubjectID, res.Err, func() map[string]string {
			return map[string]string{
				"identifier": identifier,
				"reason":     "issue_failed",
			}
		})
		return nil, res.Err
	}

	if e.rateLimiter != nil {
		if err := e.rateLimiter.ResetLogin(ctx, identifier, ip); err != nil {
			e.metricInc(MetricLoginRateLimited)
			e.emitAudit(ctx, auditEventLoginRateLimited, false, subject.SubjectID, ErrLoginRateLimited, func() map[string]string {
				return map[string]string{
					"identifier": identifier,
					"reason":     "reset_limiter_failed",
				}
			})
			return nil, ErrLoginRateLimited
		}
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, subject.SubjectID, nil, func() map[string]string {
		return map[string]string{
			"identifier": identifier,
		}
	})

	return &TokenPair{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	}, nil
}

// failLogin records a failed attempt and collapses every credential failure
// into ErrInvalidCredentials so callers cannot probe which part was wrong.
func (e *Engine) failLogin(ctx context.Context, identifier, ip, subjectID, reason string) error {
	if e.rateLimiter != nil {
		if err := e.rateLimiter.IncrementLogin(ctx, identifier, ip); err != nil {
			e.metricInc(MetricLoginRateLimited)
			e.emitAudit(ctx, auditEventLoginRateLimited, false, subjectID, ErrLoginRateLimited, func() map[string]string {
				return map[string]string{
					"identifier": identifier,
				}
			})
			e.emitRateLimit(ctx, "login", func() map[string]string {
				return map[string]string{
					"identifier": identifier,
				}
			})
			return ErrLoginRateLimited
		}
	}
	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventLoginFailure, false, subjectID, ErrInvalidCredentials, func() map[string]string {
		return map[string]string{
			"identifier": identifier,
			"reason":     reason,
		}
	})
	return ErrInvalidCredentials
}

func (e *Engine) issueDeps() flows.IssueDeps {
	return flows.IssueDeps{
		EncodeAccess:  e.encodeAccess,
		EncodeRefresh: e.encodeRefresh,
		RefreshTTL:    e.refreshTTL,
		TokenStore:    e.tokenStore,
	}
}
