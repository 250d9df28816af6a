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

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

const applicationColumns = `
	id, product_type, holder_address, status,
	probability, premium_per_unit, total_premium, risk_breakdown,
	flight_number, airline_code, departure_airport, arrival_airport,
	departure_time, coverage_per_person, persons,
	latitude, longitude, period_start, period_end, threshold_mm, condition, coverage,
	payment_tx_hash, on_chain_policy_id, created_at, updated_at`

type ApplicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	query := `
		INSERT INTO applications (
			id, product_type, holder_address, status,
			probability, premium_per_unit, total_premium, risk_breakdown,
			flight_number, airline_code, departure_airport, arrival_airport,
			departure_time, coverage_per_person, persons,
			latitude, longitude, period_start, period_end, threshold_mm, condition, coverage,
			created_at, updated_at
		) VALUES (
			:id, :product_type, :holder_address, :status,
			:probability, :premium_per_unit, :total_premium, :risk_breakdown,
			:flight_number, :airline_code, :departure_airport, :arrival_airport,
			:departure_time, :coverage_per_person, :persons,
			:latitude, :longitude, :period_start, :period_end, :threshold_mm, :condition, :coverage,
			:created_at, :updated_at
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	err := r.db.GetContext(ctx, &app, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("application %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get application by id: %w", err)
	}

	return &app, nil
}

func (r *ApplicationRepository) List(ctx context.Context, status *models.ApplicationStatus) ([]models.Application, error) {
	var apps []models.Application
	query := `SELECT ` + applicationColumns + ` FROM applications`
	args := []interface{}{}

	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// UpdateStatus persists a status transition. Lifecycle validity is enforced
// by the application service before this is called.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) error {
	query := `UPDATE applications SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("application %s: %w", id, ErrNotFound)
	}
	return nil
}

// MarkPaid records the verified payment transaction and the on-chain policy
// identifier alongside the paid status.
func (r *ApplicationRepository) MarkPaid(ctx context.Context, id uuid.UUID, txHash string, onChainPolicyID int64) error {
	query := `
		UPDATE applications
		SET status = $1, payment_tx_hash = $2, on_chain_policy_id = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.db.ExecContext(ctx, query,
		models.ApplicationPaid, txHash, onChainPolicyID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark application paid: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("application %s: %w", id, ErrNotFound)
	}
	return nil
}
