package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vote is a user's current choice on a proposal. At most one vote
// exists per (proposal, user) pair; casting again replaces the old one.
type Vote struct {
	ID          uuid.UUID `json:"id"`
	ProposalID  uuid.UUID `json:"proposal_id"`
	UserID      string    `json:"user_id"`
	Option      string    `json:"option"`
	VotingPower int64     `json:"voting_power"`
	CreatedAt   time.Time `json:"created_at"`
}
