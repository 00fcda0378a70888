package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hivestarter/governance/internal/core/domain"
)

type ProposalRepository interface {
	Save(ctx context.Context, proposal *domain.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Proposal, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Proposal, error)
	GetAll(ctx context.Context) ([]*domain.Proposal, error)
	UpdateResults(ctx context.Context, id uuid.UUID, results map[string]int64) error
}

type CreateProposalInput struct {
	ProjectID   string
	Title       string
	Description string
	Options     []string
	EndDate     time.Time
}

type ListProposalsInput struct {
	ProjectID string
	State     string // "", "active" or "completed"
}

// ProposalResults carries the tallied outcome of a proposal in its
// option display order.
type ProposalResults struct {
	Options map[string]domain.OptionResult
	Order   []string
	Voters  int
}

type GovernanceService interface {
	CreateProposal(ctx context.Context, userID string, input CreateProposalInput) (*domain.Proposal, error)
	GetProposal(ctx context.Context, id string) (*domain.Proposal, error)
	ListProposals(ctx context.Context, input ListProposalsInput) ([]*domain.Proposal, error)
	CastVote(ctx context.Context, userID string, input CastVoteInput) error
	UserVotes(ctx context.Context, userID string) (map[string]string, error)
	Results(ctx context.Context, proposalID string) (*ProposalResults, error)
}
