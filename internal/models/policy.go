package models

import (
	"time"

	"github.com/google/uuid"
)

// Policy is the local mirror of an on-chain coverage contract. The ledger is
// the source of truth for status-significant fields; the mirror exists for
// indexing and dashboard reads and is only mutated by the reconciliation
// worker and the payment confirmation flow.
type Policy struct {
	ID            uuid.UUID    `db:"id" json:"id"`
	OnChainID     int64        `db:"on_chain_id" json:"on_chain_id"`
	ApplicationID uuid.UUID    `db:"application_id" json:"application_id"`
	ProductType   ProductType  `db:"product_type" json:"product_type"`
	HolderAddress string       `db:"holder_address" json:"holder_address"`
	Status        PolicyStatus `db:"status" json:"status"`
	PremiumPaid   float64      `db:"premium_paid" json:"premium_paid"`

	// Flight coverage parameters.
	FlightNumber      *string    `db:"flight_number" json:"flight_number,omitempty"`
	DepartureTime     *time.Time `db:"departure_time" json:"departure_time,omitempty"`
	CoveragePerPerson *float64   `db:"coverage_per_person" json:"coverage_per_person,omitempty"`
	Persons           *int       `db:"persons" json:"persons,omitempty"`

	// Rainfall coverage parameters.
	Latitude    *float64           `db:"latitude" json:"latitude,omitempty"`
	Longitude   *float64           `db:"longitude" json:"longitude,omitempty"`
	PeriodStart *time.Time         `db:"period_start" json:"period_start,omitempty"`
	PeriodEnd   *time.Time         `db:"period_end" json:"period_end,omitempty"`
	ThresholdMM *float64           `db:"threshold_mm" json:"threshold_mm,omitempty"`
	Condition   *RainfallCondition `db:"condition" json:"condition,omitempty"`
	Coverage    *float64           `db:"coverage" json:"coverage,omitempty"`

	PayoutAmount *float64 `db:"payout_amount" json:"payout_amount,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
