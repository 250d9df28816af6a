package repository

import (
	"context"
	"fmt"

	"oracle-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const claimColumns = `
	id, policy_id, on_chain_policy_id, product_type, holder_address,
	amount, trigger_tx_hash, status, incident_date, description, created_at`

type ClaimRepository struct {
	db *sqlx.DB
}

func NewClaimRepository(db *sqlx.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

func (r *ClaimRepository) List(ctx context.Context) ([]models.Claim, error) {
	var claims []models.Claim
	query := `SELECT ` + claimColumns + ` FROM claims ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &claims, query); err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	return claims, nil
}

func (r *ClaimRepository) GetByPolicyID(ctx context.Context, policyID uuid.UUID) ([]models.Claim, error) {
	var claims []models.Claim
	query := `SELECT ` + claimColumns + ` FROM claims WHERE policy_id = $1 ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &claims, query, policyID); err != nil {
		return nil, fmt.Errorf("failed to get claims by policy id: %w", err)
	}
	return claims, nil
}

func (r *ClaimRepository) GetByHolder(ctx context.Context, holderAddress string) ([]models.Claim, error) {
	var claims []models.Claim
	query := `SELECT ` + claimColumns + ` FROM claims WHERE holder_address = $1 ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &claims, query, holderAddress); err != nil {
		return nil, fmt.Errorf("failed to get claims by holder: %w", err)
	}
	return claims, nil
}
