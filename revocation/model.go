package revocation

// Record is the stored unit of refresh-token state, keyed by
// (subject, token) in either the active or the revoked namespace.
//
// Record instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Record struct {
	SubjectID string `json:"subject_id"`
	Token     string `json:"token"`
}
