package flows

import (
	"context"
	"time"
)

// IssueFailureKind classifies issuance flow failures for root-level mapping.
type IssueFailureKind int

const (
	IssueFailureNone IssueFailureKind = iota
	IssueFailureMissingInput
	IssueFailureEncode
	IssueFailurePersist
)

// IssueResult carries either the issued token pair or failure metadata.
type IssueResult struct {
	Failure      IssueFailureKind
	Err          error
	SubjectID    string
	AccessToken  string
	RefreshToken string
}

// IssueTokenStore is the slice of the revocation store needed by issuance.
type IssueTokenStore interface {
	PutActive(ctx context.Context, subjectID, token string, ttl time.Duration) error
}

// IssueDeps captures issuance flow dependencies.
type IssueDeps struct {
	EncodeAccess  func(subjectID string, claims map[string]string) (string, error)
	EncodeRefresh func(subjectID string, claims map[string]string) (string, error)
	RefreshTTL    func() time.Duration
	TokenStore    IssueTokenStore
}

// RunIssue mints an access/refresh pair for the subject and registers the
// refresh token in the active namespace. The refresh token is unusable until
// registration succeeds, so a persist failure leaves no live credential.
func RunIssue(ctx context.Context, subjectID string, claims map[string]string, deps IssueDeps) IssueResult {
	if subjectID == "" {
		return IssueResult{
			Failure: IssueFailureMissingInput,
		}
	}

	access, err := deps.EncodeAccess(subjectID, claims)
	if err != nil {
		return IssueResult{
			Failure:   IssueFailureEncode,
			Err:       err,
			SubjectID: subjectID,
		}
	}

	refresh, err := deps.EncodeRefresh(subjectID, claims)
	if err != nil {
		return IssueResult{
			Failure:   IssueFailureEncode,
			Err:       err,
			SubjectID: subjectID,
		}
	}

	if err := deps.TokenStore.PutActive(ctx, subjectID, refresh, deps.RefreshTTL()); err != nil {
		return IssueResult{
			Failure:   IssueFailurePersist,
			Err:       err,
			SubjectID: subjectID,
		}
	}

	return IssueResult{
		Failure:      IssueFailureNone,
		SubjectID:    subjectID,
		AccessToken:  access,
		RefreshToken: refresh,
	}
}
