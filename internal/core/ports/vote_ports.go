package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/hivestarter/governance/internal/core/domain"
)

type VoteRepository interface {
	// RecordVote stores the vote, replacing any prior vote by the same
	// user on the same proposal.
	RecordVote(ctx context.Context, vote *domain.Vote) error
	ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]*domain.Vote, error)
	// VotesForUser maps each proposal the user has voted on to the
	// chosen option.
	VotesForUser(ctx context.Context, userID string) (map[uuid.UUID]string, error)
}

type CastVoteInput struct {
	ProposalID uuid.UUID
	Option     string
}
