package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/hivestarter/governance/internal/core/domain"
	"github.com/hivestarter/governance/internal/core/ports"
)

type tallyService struct {
	proposals ports.ProposalRepository
	votes     ports.VoteRepository
}

func NewTallyService(proposals ports.ProposalRepository, votes ports.VoteRepository) ports.TallyService {
	return &tallyService{
		proposals: proposals,
		votes:     votes,
	}
}

// RecomputeAll rebuilds the cached results of every proposal from its
// votes. Cached totals are already refreshed on each cast; this job
// repairs any drift.
func (s *tallyService) RecomputeAll(ctx context.Context) error {
	proposals, err := s.proposals.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch all proposals: %w", err)
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(proposals))

	for _, proposal := range proposals {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			if err := s.recompute(ctx, id); err != nil {
				errChan <- fmt.Errorf("failed to recompute proposal %s: %w", id, err)
			}
		}(proposal.ID)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *tallyService) recompute(ctx context.Context, id uuid.UUID) error {
	votes, err := s.votes.ListByProposal(ctx, id)
	if err != nil {
		return err
	}
	return s.proposals.UpdateResults(ctx, id, domain.CountByOption(votes))
}
