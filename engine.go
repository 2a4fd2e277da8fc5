package goSession

import (
	"time"

	"github.com/MrEthical07/goSession/internal/rate"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/password"
	"github.com/MrEthical07/goSession/revocation"
)

// Engine defines a public type used by goSession APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config          Config
	tokenStore      *revocation.Store
	rateLimiter     *rate.Limiter
	audit           *auditDispatcher
	metrics         *Metrics
	passwordHash    *password.Hasher
	jwtManager      *jwt.Manager
	subjectProvider SubjectProvider
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) ready() bool {
	return e != nil &&
		e.jwtManager != nil &&
		e.tokenStore != nil
}

func (e *Engine) refreshTTL() time.Duration {
	return e.config.JWT.RefreshTTL
}

// revokedTTL bounds how long a revoked marker is retained. It defaults to
// the refresh lifetime so the marker outlives any copy of the token still
// in circulation.
func (e *Engine) revokedTTL() time.Duration {
	if e.config.Cache.RevokedTTL > 0 {
		return e.config.Cache.RevokedTTL
	}
	return e.config.JWT.RefreshTTL
}

func (e *Engine) encodeAccess(subjectID string, claims map[string]string) (string, error) {
	return e.jwtManager.Encode(subjectID, claims, jwt.TypeAccess, e.config.JWT.AccessTTL)
}

func (e *Engine) encodeRefresh(subjectID string, claims map[string]string) (string, error) {
	return e.jwtManager.Encode(subjectID, claims, jwt.TypeRefresh, e.config.JWT.RefreshTTL)
}
