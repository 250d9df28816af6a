package models

import "time"

type FlightApplicationRequest struct {
	HolderAddress     string    `json:"holder_address"`
	FlightNumber      string    `json:"flight_number"`
	AirlineCode       string    `json:"airline_code"`
	DepartureAirport  string    `json:"departure_airport"`
	ArrivalAirport    string    `json:"arrival_airport"`
	DepartureTime     time.Time `json:"departure_time"`
	CoveragePerPerson float64   `json:"coverage_per_person"`
	Persons           int       `json:"persons"`
}

type RainfallApplicationRequest struct {
	HolderAddress string            `json:"holder_address"`
	Latitude      float64           `json:"latitude"`
	Longitude     float64           `json:"longitude"`
	PeriodStart   time.Time         `json:"period_start"`
	PeriodEnd     time.Time         `json:"period_end"`
	ThresholdMM   float64           `json:"threshold_mm"`
	Condition     RainfallCondition `json:"condition"`
	Coverage      float64           `json:"coverage"`
}

type ConfirmPaymentRequest struct {
	TxHash          string `json:"tx_hash"`
	OnChainPolicyID int64  `json:"on_chain_policy_id"`
}

type AuthorizationResponse struct {
	ApplicationID string `json:"application_id"`
	MessageHash   string `json:"message_hash"`
	Signature     string `json:"signature"`
	SignerAddress string `json:"signer_address"`
}
