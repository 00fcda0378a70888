package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hivestarter/governance/internal/core/domain"
	"github.com/hivestarter/governance/internal/core/ports"
)

type proposalRepository struct {
	db *sql.DB
}

func NewProposalRepository(db *sql.DB) ports.ProposalRepository {
	return &proposalRepository{
		db: db,
	}
}

func (r *proposalRepository) Save(ctx context.Context, proposal *domain.Proposal) error {
	query := `
		INSERT INTO proposals (id, project_id, title, description, options, start_date, end_date, creator_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		proposal.ID, proposal.ProjectID, proposal.Title, proposal.Description,
		pq.Array(proposal.Options), proposal.StartDate, proposal.EndDate,
		proposal.CreatorID, proposal.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert proposal: %w", err)
	}
	return nil
}

func (r *proposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Proposal, error) {
	query := `
		SELECT id, project_id, title, description, options, start_date, end_date, creator_id, status
		FROM proposals
		WHERE id = $1
	`

	var proposal domain.Proposal
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&proposal.ID, &proposal.ProjectID, &proposal.Title, &proposal.Description,
		pq.Array(&proposal.Options), &proposal.StartDate, &proposal.EndDate,
		&proposal.CreatorID, &proposal.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProposalNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}

	results, err := r.fetchResults(ctx, proposal.ID)
	if err != nil {
		return nil, err
	}
	proposal.Results = results

	return &proposal, nil
}

func (r *proposalRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Proposal, error) {
	query := `
		SELECT id, project_id, title, description, options, start_date, end_date, creator_id, status
		FROM proposals
		WHERE project_id = $1
		ORDER BY start_date DESC
	`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	defer rows.Close()

	return r.scanProposals(ctx, rows)
}

func (r *proposalRepository) GetAll(ctx context.Context) ([]*domain.Proposal, error) {
	query := `
		SELECT id, project_id, title, description, options, start_date, end_date, creator_id, status
		FROM proposals
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all proposals: %w", err)
	}
	defer rows.Close()

	return r.scanProposals(ctx, rows)
}

// UpdateResults replaces the cached per-option totals for a proposal.
// Delete-then-insert inside one transaction keeps options that lost
// their last vote from leaving stale rows behind.
func (r *proposalRepository) UpdateResults(ctx context.Context, id uuid.UUID, results map[string]int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM proposal_results WHERE proposal_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to clear results: %w", err)
	}

	queryResult := `
		INSERT INTO proposal_results (proposal_id, option, vote_power, last_updated_at)
		VALUES ($1, $2, $3, NOW())
	`
	stmt, err := tx.PrepareContext(ctx, queryResult)
	if err != nil {
		return fmt.Errorf("failed to prepare result statement: %w", err)
	}
	defer stmt.Close()

	for option, power := range results {
		if _, err := stmt.ExecContext(ctx, id, option, power); err != nil {
			return fmt.Errorf("failed to insert result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *proposalRepository) scanProposals(ctx context.Context, rows *sql.Rows) ([]*domain.Proposal, error) {
	var proposals []*domain.Proposal
	for rows.Next() {
		var proposal domain.Proposal
		err := rows.Scan(
			&proposal.ID, &proposal.ProjectID, &proposal.Title, &proposal.Description,
			pq.Array(&proposal.Options), &proposal.StartDate, &proposal.EndDate,
			&proposal.CreatorID, &proposal.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}

		results, err := r.fetchResults(ctx, proposal.ID)
		if err != nil {
			return nil, err
		}
		proposal.Results = results

		proposals = append(proposals, &proposal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating proposals: %w", err)
	}
	return proposals, nil
}

func (r *proposalRepository) fetchResults(ctx context.Context, proposalID uuid.UUID) (map[string]int64, error) {
	query := `
		SELECT option, vote_power
		FROM proposal_results
		WHERE proposal_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal results: %w", err)
	}
	defer rows.Close()

	results := make(map[string]int64)
	for rows.Next() {
		var option string
		var power int64
		if err := rows.Scan(&option, &power); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results[option] = power
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating results: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results, nil
}
