package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrInvalidProposalID = errors.New("invalid proposal id")
	ErrInvalidOption     = errors.New("invalid option for this proposal")
	ErrClosedForVoting   = errors.New("proposal is not open for voting")
	ErrNotEligible       = errors.New("no governance tokens for this project")
	ErrNotAuthenticated  = errors.New("no connected user")
	ErrNotProjectOwner   = errors.New("user does not own this project")
	ErrInternal          = errors.New("internal server error")
)

// ValidationError reports a malformed proposal input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
