package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hivestarter/governance/internal/core/ports"
)

// The platform tables mirror ownership and token balances managed by
// the main crowdfunding service; this API only reads them.

type ownershipRepository struct {
	db *sql.DB
}

func NewOwnershipRepository(db *sql.DB) ports.OwnershipChecker {
	return &ownershipRepository{db: db}
}

func (r *ownershipRepository) UserOwnsProject(ctx context.Context, projectID, userID string) (bool, error) {
	query := `SELECT 1 FROM project_owners WHERE project_id = $1 AND username = $2 LIMIT 1`
	var exists int
	err := r.db.QueryRowContext(ctx, query, projectID, userID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check project ownership: %w", err)
	}
	return true, nil
}

type tokenBalanceRepository struct {
	db *sql.DB
}

func NewTokenBalanceRepository(db *sql.DB) ports.TokenBalanceProvider {
	return &tokenBalanceRepository{db: db}
}

func (r *tokenBalanceRepository) GovernanceTokens(ctx context.Context, projectID, userID string) (int64, error) {
	query := `SELECT balance FROM governance_tokens WHERE project_id = $1 AND username = $2`
	var balance int64
	err := r.db.QueryRowContext(ctx, query, projectID, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get token balance: %w", err)
	}
	return balance, nil
}
