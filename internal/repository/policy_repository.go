package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"oracle-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const policyColumns = `
	id, on_chain_id, application_id, product_type, holder_address, status, premium_paid,
	flight_number, departure_time, coverage_per_person, persons,
	latitude, longitude, period_start, period_end, threshold_mm, condition, coverage,
	payout_amount, created_at, updated_at`

type PolicyRepository struct {
	db *sqlx.DB
}

func NewPolicyRepository(db *sqlx.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

func (r *PolicyRepository) Create(ctx context.Context, policy *models.Policy) error {
	query := `
		INSERT INTO policies (
			id, on_chain_id, application_id, product_type, holder_address, status, premium_paid,
			flight_number, departure_time, coverage_per_person, persons,
			latitude, longitude, period_start, period_end, threshold_mm, condition, coverage,
			created_at, updated_at
		) VALUES (
			:id, :on_chain_id, :application_id, :product_type, :holder_address, :status, :premium_paid,
			:flight_number, :departure_time, :coverage_per_person, :persons,
			:latitude, :longitude, :period_start, :period_end, :threshold_mm, :condition, :coverage,
			:created_at, :updated_at
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, policy); err != nil {
		return fmt.Errorf("failed to create policy mirror: %w", err)
	}
	return nil
}

func (r *PolicyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Policy, error) {
	var policy models.Policy
	query := `SELECT ` + policyColumns + ` FROM policies WHERE id = $1`

	err := r.db.GetContext(ctx, &policy, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("policy %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get policy by id: %w", err)
	}
	return &policy, nil
}

func (r *PolicyRepository) GetByOnChainID(ctx context.Context, product models.ProductType, onChainID int64) (*models.Policy, error) {
	var policy models.Policy
	query := `SELECT ` + policyColumns + ` FROM policies WHERE product_type = $1 AND on_chain_id = $2`

	err := r.db.GetContext(ctx, &policy, query, product, onChainID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("policy %s/%d: %w", product, onChainID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get policy by on-chain id: %w", err)
	}
	return &policy, nil
}

func (r *PolicyRepository) List(ctx context.Context, status *models.PolicyStatus) ([]models.Policy, error) {
	var policies []models.Policy
	query := `SELECT ` + policyColumns + ` FROM policies`
	args := []interface{}{}

	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &policies, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	return policies, nil
}

// MarkExpired moves a mirror row to expired. Only active rows are touched;
// re-running over an already terminal policy is a no-op.
func (r *PolicyRepository) MarkExpired(ctx context.Context, product models.ProductType, onChainID int64) error {
	query := `
		UPDATE policies SET status = $1, updated_at = $2
		WHERE product_type = $3 AND on_chain_id = $4 AND status = $5
	`

	if _, err := r.db.ExecContext(ctx, query,
		models.PolicyExpired, time.Now().UTC(), product, onChainID, models.PolicyActive); err != nil {
		return fmt.Errorf("failed to mark policy expired: %w", err)
	}
	return nil
}

// SettleClaim flips the mirror to claimed and inserts the claim row in one
// transaction, so the mirror can never show a payout without its claim.
func (r *PolicyRepository) SettleClaim(ctx context.Context, policy *models.Policy, claim *models.Claim) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin settle transaction: %w", err)
	}
	defer tx.Rollback()

	updateQuery := `
		UPDATE policies SET status = $1, payout_amount = $2, updated_at = $3
		WHERE id = $4 AND status = $5
	`
	result, err := tx.ExecContext(ctx, updateQuery,
		models.PolicyClaimed, claim.Amount, time.Now().UTC(), policy.ID, models.PolicyActive)
	if err != nil {
		return fmt.Errorf("failed to mark policy claimed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		// Already terminal; nothing to settle twice.
		return nil
	}

	insertQuery := `
		INSERT INTO claims (
			id, policy_id, on_chain_policy_id, product_type, holder_address,
			amount, trigger_tx_hash, status, incident_date, description, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = tx.ExecContext(ctx, insertQuery,
		claim.ID, claim.PolicyID, claim.OnChainPolicyID, claim.ProductType, claim.HolderAddress,
		claim.Amount, claim.TriggerTxHash, claim.Status, claim.IncidentDate, claim.Description, claim.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create claim: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settle transaction: %w", err)
	}
	return nil
}
