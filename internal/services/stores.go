package services

import (
	"context"

	"oracle-service/internal/models"

	"github.com/google/uuid"
)

// Record store abstractions consumed by the services. The sqlx repositories
// implement them in production; tests inject in-memory fakes, so no behavior
// depends on process lifetime or a live database.

type ApplicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	List(ctx context.Context, status *models.ApplicationStatus) ([]models.Application, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) error
	MarkPaid(ctx context.Context, id uuid.UUID, txHash string, onChainPolicyID int64) error
}

type PolicyStore interface {
	Create(ctx context.Context, policy *models.Policy) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Policy, error)
	GetByOnChainID(ctx context.Context, product models.ProductType, onChainID int64) (*models.Policy, error)
	List(ctx context.Context, status *models.PolicyStatus) ([]models.Policy, error)
	MarkExpired(ctx context.Context, product models.ProductType, onChainID int64) error
	SettleClaim(ctx context.Context, policy *models.Policy, claim *models.Claim) error
}

type ClaimStore interface {
	List(ctx context.Context) ([]models.Claim, error)
	GetByPolicyID(ctx context.Context, policyID uuid.UUID) ([]models.Claim, error)
	GetByHolder(ctx context.Context, holderAddress string) ([]models.Claim, error)
}
