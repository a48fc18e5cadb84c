// File: internal/common/status.go
package common

import "fmt"

// ReviewStatus is the shared lifecycle for doctor profiles and
// appointments: pending until reviewed, then approved or rejected.
// Approved and rejected are terminal.
type ReviewStatus string

const (
	StatusPending  ReviewStatus = "pending"
	StatusApproved ReviewStatus = "approved"
	StatusRejected ReviewStatus = "rejected"
)

// ParseDecision validates a reviewer-supplied decision. Only the two
// terminal states are acceptable input; pending is never a decision.
func ParseDecision(s string) (ReviewStatus, error) {
	switch ReviewStatus(s) {
	case StatusApproved, StatusRejected:
		return ReviewStatus(s), nil
	default:
		return "", ErrBadRequest.WithDetails(fmt.Sprintf("Invalid status %q: must be 'approved' or 'rejected'.", s))
	}
}

// CanTransition reports whether moving from s to next is a legal
// transition. Only pending->approved and pending->rejected exist.
func (s ReviewStatus) CanTransition(next ReviewStatus) bool {
	if s != StatusPending {
		return false
	}
	return next == StatusApproved || next == StatusRejected
}

// IsTerminal reports whether the status can no longer change.
func (s ReviewStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}
