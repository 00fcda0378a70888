package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hivestarter/governance/internal/core/domain"
	"github.com/hivestarter/governance/internal/core/ports"
)

type governanceService struct {
	proposals ports.ProposalRepository
	votes     ports.VoteRepository
	ownership ports.OwnershipChecker
	balances  ports.TokenBalanceProvider
	notifier  ports.Notifier
}

func NewGovernanceService(
	proposals ports.ProposalRepository,
	votes ports.VoteRepository,
	ownership ports.OwnershipChecker,
	balances ports.TokenBalanceProvider,
	notifier ports.Notifier,
) ports.GovernanceService {
	return &governanceService{
		proposals: proposals,
		votes:     votes,
		ownership: ownership,
		balances:  balances,
		notifier:  notifier,
	}
}

func (s *governanceService) CreateProposal(ctx context.Context, userID string, input ports.CreateProposalInput) (*domain.Proposal, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	owns, err := s.ownership.UserOwnsProject(ctx, input.ProjectID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check project ownership: %w", err)
	}
	if !owns {
		return nil, domain.ErrNotProjectOwner
	}

	now := time.Now()
	options, err := validateProposalInput(input, now)
	if err != nil {
		return nil, err
	}

	proposal := &domain.Proposal{
		ID:          uuid.New(),
		ProjectID:   input.ProjectID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Options:     options,
		StartDate:   now,
		EndDate:     input.EndDate,
		CreatorID:   userID,
		Status:      domain.ProposalStatusActive,
	}

	if err := s.proposals.Save(ctx, proposal); err != nil {
		s.notifier.Notify(ports.Notification{
			Title:       "Error",
			Description: "Failed to create proposal",
			Severity:    ports.SeverityError,
		})
		return nil, fmt.Errorf("failed to save proposal: %w", err)
	}

	s.notifier.Notify(ports.Notification{
		Title:       "Proposal created",
		Description: fmt.Sprintf("Governance proposal %q is open for voting", proposal.Title),
		Severity:    ports.SeverityInfo,
	})

	return proposal, nil
}

func (s *governanceService) GetProposal(ctx context.Context, id string) (*domain.Proposal, error) {
	proposalID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrInvalidProposalID
	}
	return s.proposals.GetByID(ctx, proposalID)
}

func (s *governanceService) ListProposals(ctx context.Context, input ports.ListProposalsInput) ([]*domain.Proposal, error) {
	proposals, err := s.proposals.ListByProject(ctx, input.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}

	if input.State == "" {
		return proposals, nil
	}

	now := time.Now()
	var filtered []*domain.Proposal
	switch input.State {
	case "active":
		for _, p := range proposals {
			if p.EffectiveState(now) == domain.StateActive {
				filtered = append(filtered, p)
			}
		}
	case "completed":
		// The completed tab also shows expired proposals: anything
		// whose voting window has closed.
		for _, p := range proposals {
			state := p.EffectiveState(now)
			if state == domain.StateCompleted || state == domain.StateExpired {
				filtered = append(filtered, p)
			}
		}
	default:
		return nil, &domain.ValidationError{Field: "state", Reason: "must be active or completed"}
	}
	return filtered, nil
}

func (s *governanceService) CastVote(ctx context.Context, userID string, input ports.CastVoteInput) error {
	if userID == "" {
		return domain.ErrNotAuthenticated
	}

	proposal, err := s.proposals.GetByID(ctx, input.ProposalID)
	if err != nil {
		return err
	}

	power, err := s.balances.GovernanceTokens(ctx, proposal.ProjectID, userID)
	if err != nil {
		return fmt.Errorf("failed to get governance tokens: %w", err)
	}
	if power <= 0 {
		s.notifier.Notify(ports.Notification{
			Title:       "Insufficient tokens",
			Description: "You need governance tokens to vote on this proposal",
			Severity:    ports.SeverityError,
		})
		return domain.ErrNotEligible
	}

	if !proposal.AcceptsVotes(time.Now()) {
		return domain.ErrClosedForVoting
	}

	if !proposal.HasOption(input.Option) {
		return domain.ErrInvalidOption
	}

	vote := &domain.Vote{
		ID:          uuid.New(),
		ProposalID:  proposal.ID,
		UserID:      userID,
		Option:      input.Option,
		VotingPower: power,
		CreatedAt:   time.Now(),
	}

	if err := s.votes.RecordVote(ctx, vote); err != nil {
		s.notifier.Notify(ports.Notification{
			Title:       "Error",
			Description: "Failed to cast vote",
			Severity:    ports.SeverityError,
		})
		return fmt.Errorf("failed to record vote: %w", err)
	}

	if err := s.refreshResults(ctx, proposal); err != nil {
		return err
	}

	s.notifier.Notify(ports.Notification{
		Title:       "Vote cast",
		Description: fmt.Sprintf("You voted for %q with %d tokens", input.Option, power),
		Severity:    ports.SeverityInfo,
	})

	return nil
}

func (s *governanceService) UserVotes(ctx context.Context, userID string) (map[string]string, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	votes, err := s.votes.VotesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user votes: %w", err)
	}

	out := make(map[string]string, len(votes))
	for proposalID, option := range votes {
		out[proposalID.String()] = option
	}
	return out, nil
}

func (s *governanceService) Results(ctx context.Context, proposalID string) (*ports.ProposalResults, error) {
	id, err := uuid.Parse(proposalID)
	if err != nil {
		return nil, domain.ErrInvalidProposalID
	}

	proposal, err := s.proposals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	votes, err := s.votes.ListByProposal(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}

	return &ports.ProposalResults{
		Options: domain.TallyVotes(proposal.Options, votes),
		Order:   proposal.Options,
		Voters:  len(votes),
	}, nil
}

// refreshResults recomputes the cached per-option totals from the
// current vote set and persists them on the proposal.
func (s *governanceService) refreshResults(ctx context.Context, proposal *domain.Proposal) error {
	votes, err := s.votes.ListByProposal(ctx, proposal.ID)
	if err != nil {
		return fmt.Errorf("failed to list votes: %w", err)
	}

	counts := domain.CountByOption(votes)
	if err := s.proposals.UpdateResults(ctx, proposal.ID, counts); err != nil {
		return fmt.Errorf("failed to update results: %w", err)
	}
	return nil
}

func validateProposalInput(input ports.CreateProposalInput, now time.Time) ([]string, error) {
	if len(strings.TrimSpace(input.Title)) < 5 {
		return nil, &domain.ValidationError{Field: "title", Reason: "must be at least 5 characters"}
	}
	if len(strings.TrimSpace(input.Description)) < 20 {
		return nil, &domain.ValidationError{Field: "description", Reason: "must be at least 20 characters"}
	}

	var options []string
	seen := make(map[string]bool)
	for _, opt := range input.Options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		if seen[opt] {
			return nil, &domain.ValidationError{Field: "options", Reason: "options must be distinct"}
		}
		seen[opt] = true
		options = append(options, opt)
	}
	if len(options) < 2 {
		return nil, &domain.ValidationError{Field: "options", Reason: "at least 2 options are required"}
	}

	if !input.EndDate.After(now) {
		return nil, &domain.ValidationError{Field: "end_date", Reason: "must be in the future"}
	}

	return options, nil
}
