package goSession

import (
	"context"
	"time"
)

// SubjectProvider is the primary interface that callers must implement to
// integrate goSession with their subject database. It covers credential
// lookup and password hash updates.
//
//	Docs: docs/engine.md, docs/usage.md
type SubjectProvider interface {
	GetSubjectByIdentifier(ctx context.Context, identifier string) (SubjectRecord, error)
	UpdatePasswordHash(ctx context.Context, subjectID, newHash string) error
}

// SubjectRecord is the account record returned by [SubjectProvider]. Claims
// are copied verbatim into every token issued for the subject.
type SubjectRecord struct {
	SubjectID    string
	Identifier   string
	PasswordHash string
	Claims       map[string]string
}

// TokenPair is returned by [Engine.Login], [Engine.Issue], and
// [Engine.Refresh]. The refresh token is already registered in the active
// namespace when a TokenPair is returned.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult is the verified view of an access token returned by
// [Engine.ValidateAccess].
type AuthResult struct {
	SubjectID string
	Claims    map[string]string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
