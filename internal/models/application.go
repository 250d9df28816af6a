package models

import (
	"time"

	"github.com/google/uuid"
)

// Application is a risk assessment plus premium quote awaiting administrative
// approval. The premium is computed once at submission and never recomputed;
// rows are append-only (rejected applications stay for the audit trail).
type Application struct {
	ID            uuid.UUID         `db:"id" json:"id"`
	ProductType   ProductType       `db:"product_type" json:"product_type"`
	HolderAddress string            `db:"holder_address" json:"holder_address"`
	Status        ApplicationStatus `db:"status" json:"status"`

	Probability    float64 `db:"probability" json:"probability"`
	PremiumPerUnit float64 `db:"premium_per_unit" json:"premium_per_unit"`
	TotalPremium   float64 `db:"total_premium" json:"total_premium"`
	RiskBreakdown  JSONMap `db:"risk_breakdown" json:"risk_breakdown,omitempty"`

	// Flight product inputs.
	FlightNumber      *string    `db:"flight_number" json:"flight_number,omitempty"`
	AirlineCode       *string    `db:"airline_code" json:"airline_code,omitempty"`
	DepartureAirport  *string    `db:"departure_airport" json:"departure_airport,omitempty"`
	ArrivalAirport    *string    `db:"arrival_airport" json:"arrival_airport,omitempty"`
	DepartureTime     *time.Time `db:"departure_time" json:"departure_time,omitempty"`
	CoveragePerPerson *float64   `db:"coverage_per_person" json:"coverage_per_person,omitempty"`
	Persons           *int       `db:"persons" json:"persons,omitempty"`

	// Rainfall product inputs.
	Latitude    *float64           `db:"latitude" json:"latitude,omitempty"`
	Longitude   *float64           `db:"longitude" json:"longitude,omitempty"`
	PeriodStart *time.Time         `db:"period_start" json:"period_start,omitempty"`
	PeriodEnd   *time.Time         `db:"period_end" json:"period_end,omitempty"`
	ThresholdMM *float64           `db:"threshold_mm" json:"threshold_mm,omitempty"`
	Condition   *RainfallCondition `db:"condition" json:"condition,omitempty"`
	Coverage    *float64           `db:"coverage" json:"coverage,omitempty"`

	// Payment linkage, set when the on-chain policy creation is verified.
	PaymentTxHash   *string `db:"payment_tx_hash" json:"payment_tx_hash,omitempty"`
	OnChainPolicyID *int64  `db:"on_chain_policy_id" json:"on_chain_policy_id,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
