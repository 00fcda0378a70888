package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/hivestarter/governance/internal/core/domain"
	"github.com/hivestarter/governance/internal/core/ports"
)

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

// RecordVote upserts on the (proposal_id, user_id) unique index so a
// re-vote replaces the old row even under concurrent writers.
func (r *voteRepository) RecordVote(ctx context.Context, vote *domain.Vote) error {
	query := `
		INSERT INTO votes (id, proposal_id, user_id, option, voting_power, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (proposal_id, user_id) DO UPDATE
		SET option = EXCLUDED.option,
		    voting_power = EXCLUDED.voting_power,
		    created_at = EXCLUDED.created_at;
	`
	_, err := r.db.ExecContext(ctx, query,
		vote.ID, vote.ProposalID, vote.UserID, vote.Option, vote.VotingPower, vote.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record vote: %w", err)
	}
	return nil
}

func (r *voteRepository) ListByProposal(ctx context.Context, proposalID uuid.UUID) ([]*domain.Vote, error) {
	query := `
		SELECT id, proposal_id, user_id, option, voting_power, created_at
		FROM votes
		WHERE proposal_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	var votes []*domain.Vote
	for rows.Next() {
		var vote domain.Vote
		err := rows.Scan(&vote.ID, &vote.ProposalID, &vote.UserID, &vote.Option, &vote.VotingPower, &vote.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, &vote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}
	return votes, nil
}

func (r *voteRepository) VotesForUser(ctx context.Context, userID string) (map[uuid.UUID]string, error) {
	query := `
		SELECT proposal_id, option
		FROM votes
		WHERE user_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user votes: %w", err)
	}
	defer rows.Close()

	votes := make(map[uuid.UUID]string)
	for rows.Next() {
		var proposalID uuid.UUID
		var option string
		if err := rows.Scan(&proposalID, &option); err != nil {
			return nil, fmt.Errorf("failed to scan user vote: %w", err)
		}
		votes[proposalID] = option
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user votes: %w", err)
	}
	return votes, nil
}
