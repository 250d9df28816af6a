package models

import (
	"time"

	"github.com/google/uuid"
)

// Claim records a triggered payout. Created exactly once, at the moment the
// policy mirror transitions to claimed, and immutable thereafter. The unique
// (policy_id, trigger_tx_hash) index backs the at-most-one invariant.
type Claim struct {
	ID              uuid.UUID   `db:"id" json:"id"`
	PolicyID        uuid.UUID   `db:"policy_id" json:"policy_id"`
	OnChainPolicyID int64       `db:"on_chain_policy_id" json:"on_chain_policy_id"`
	ProductType     ProductType `db:"product_type" json:"product_type"`
	HolderAddress   string      `db:"holder_address" json:"holder_address"`
	Amount          float64     `db:"amount" json:"amount"`
	TriggerTxHash   string      `db:"trigger_tx_hash" json:"trigger_tx_hash"`
	Status          ClaimStatus `db:"status" json:"status"`
	IncidentDate    time.Time   `db:"incident_date" json:"incident_date"`
	Description     string      `db:"description" json:"description"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
}
