package goSession

import "time"

// SecurityReport defines a public type used by goSession APIs.
//
// SecurityReport instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SecurityReport struct {
	SigningAlgorithm      string
	AccessTTL             time.Duration
	RefreshTTL            time.Duration
	RevokedTTL            time.Duration
	Argon2                PasswordConfigReport
	LoginThrottleActive   bool
	IPThrottleActive      bool
	RefreshThrottleActive bool
	AuditEnabled          bool
	MetricsEnabled        bool
}

// PasswordConfigReport defines a public type used by goSession APIs.
//
// PasswordConfigReport instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfigReport struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// SecurityReport describes the securityreport operation and its observable behavior.
//
// SecurityReport may return an error when input validation, dependency calls, or security checks fail.
// SecurityReport does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	loginThrottle := e.config.Security.MaxLoginAttempts > 0 &&
		e.config.Security.LoginCooldownDuration > 0

	return SecurityReport{
		SigningAlgorithm: e.config.JWT.SigningMethod,
		AccessTTL:        e.config.JWT.AccessTTL,
		RefreshTTL:       e.config.JWT.RefreshTTL,
		RevokedTTL:       e.revokedTTL(),
		Argon2: PasswordConfigReport{
			Memory:      e.config.Password.Memory,
			Time:        e.config.Password.Time,
			Parallelism: e.config.Password.Parallelism,
			SaltLength:  e.config.Password.SaltLength,
			KeyLength:   e.config.Password.KeyLength,
		},
		LoginThrottleActive:   loginThrottle,
		IPThrottleActive:      loginThrottle && e.config.Security.EnableIPThrottle,
		RefreshThrottleActive: e.config.Security.EnableRefreshThrottle,
		AuditEnabled:          e.config.Audit.Enabled,
		MetricsEnabled:        e.config.Metrics.Enabled,
	}
}
