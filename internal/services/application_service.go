package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"oracle-service/internal/models"

	"github.com/google/uuid"
)

// ApplicationService owns the application lifecycle: submission with an
// embedded quote, administrative approval, and payment confirmation.
type ApplicationService struct {
	appStore     ApplicationStore
	policyStore  PolicyStore
	flightRisk   *FlightRiskService
	rainfallRisk *RainfallRiskService
	payments     *PaymentVerificationService
}

func NewApplicationService(
	appStore ApplicationStore,
	policyStore PolicyStore,
	flightRisk *FlightRiskService,
	rainfallRisk *RainfallRiskService,
	payments *PaymentVerificationService,
) *ApplicationService {
	return &ApplicationService{
		appStore:     appStore,
		policyStore:  policyStore,
		flightRisk:   flightRisk,
		rainfallRisk: rainfallRisk,
		payments:     payments,
	}
}

// SubmitFlightApplication quotes the itinerary and persists the application
// in pending approval. The premium computed here is final; approval never
// re-prices.
func (s *ApplicationService) SubmitFlightApplication(ctx context.Context, req models.FlightApplicationRequest) (*models.Application, error) {
	quote, err := s.flightRisk.EstimatePremium(req)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	app := &models.Application{
		ID:             uuid.New(),
		ProductType:    models.ProductFlight,
		HolderAddress:  req.HolderAddress,
		Status:         models.ApplicationPendingApproval,
		Probability:    quote.Probability,
		PremiumPerUnit: quote.PremiumPerPerson,
		TotalPremium:   quote.TotalPremium,
		RiskBreakdown:  breakdownToJSON(quote.Breakdown),

		FlightNumber:      &req.FlightNumber,
		AirlineCode:       &req.AirlineCode,
		DepartureAirport:  &req.DepartureAirport,
		ArrivalAirport:    &req.ArrivalAirport,
		DepartureTime:     &req.DepartureTime,
		CoveragePerPerson: &req.CoveragePerPerson,
		Persons:           &req.Persons,

		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.appStore.Create(ctx, app); err != nil {
		return nil, err
	}

	slog.Info("Flight application submitted",
		"application_id", app.ID,
		"flight_number", req.FlightNumber,
		"probability", quote.Probability,
		"total_premium", quote.TotalPremium)

	return app, nil
}

// SubmitRainfallApplication quotes the location and period against the
// historical record and persists the application. Data-insufficiency errors
// from the risk service pass through as declarative results.
func (s *ApplicationService) SubmitRainfallApplication(ctx context.Context, req models.RainfallApplicationRequest) (*models.Application, error) {
	quote, err := s.rainfallRisk.EstimatePremium(ctx, req)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	app := &models.Application{
		ID:             uuid.New(),
		ProductType:    models.ProductRainfall,
		HolderAddress:  req.HolderAddress,
		Status:         models.ApplicationPendingApproval,
		Probability:    quote.Probability,
		PremiumPerUnit: quote.Premium,
		TotalPremium:   quote.Premium,
		RiskBreakdown: models.JSONMap{
			"years_analyzed":  quote.YearsAnalyzed,
			"valid_years":     quote.ValidYears,
			"matched_years":   quote.MatchedYears,
			"expected_payout": quote.ExpectedPayout,
		},

		Latitude:    &req.Latitude,
		Longitude:   &req.Longitude,
		PeriodStart: &req.PeriodStart,
		PeriodEnd:   &req.PeriodEnd,
		ThresholdMM: &req.ThresholdMM,
		Condition:   &req.Condition,
		Coverage:    &req.Coverage,

		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.appStore.Create(ctx, app); err != nil {
		return nil, err
	}

	slog.Info("Rainfall application submitted",
		"application_id", app.ID,
		"latitude", req.Latitude,
		"longitude", req.Longitude,
		"probability", quote.Probability,
		"premium", quote.Premium)

	return app, nil
}

func (s *ApplicationService) GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	return s.appStore.GetByID(ctx, id)
}

func (s *ApplicationService) ListApplications(ctx context.Context, status *models.ApplicationStatus) ([]models.Application, error) {
	return s.appStore.List(ctx, status)
}

// Approve transitions pending_approval -> approved.
func (s *ApplicationService) Approve(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	return s.transition(ctx, id, models.ApplicationApproved)
}

// Reject transitions pending_approval -> rejected.
func (s *ApplicationService) Reject(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	return s.transition(ctx, id, models.ApplicationRejected)
}

func (s *ApplicationService) transition(ctx context.Context, id uuid.UUID, to models.ApplicationStatus) (*models.Application, error) {
	app, err := s.appStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !models.IsValidApplicationTransition(app.Status, to) {
		return nil, fmt.Errorf("invalid application transition %s -> %s", app.Status, to)
	}

	if err := s.appStore.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}

	slog.Info("Application status changed",
		"application_id", id,
		"from", app.Status,
		"to", to)

	app.Status = to
	return app, nil
}

// ConfirmPayment verifies the on-chain premium payment and, when it checks
// out, marks the application paid and creates the local policy mirror for
// the newly created on-chain policy.
func (s *ApplicationService) ConfirmPayment(ctx context.Context, id uuid.UUID, req models.ConfirmPaymentRequest) (*VerificationOutcome, error) {
	app, err := s.appStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if app.Status != models.ApplicationApproved {
		return nil, fmt.Errorf("application %s is not awaiting payment (status %s)", id, app.Status)
	}

	outcome, err := s.payments.VerifyPayment(ctx, app, req.TxHash)
	if err != nil {
		return nil, err
	}
	if !outcome.Verified {
		return outcome, nil
	}

	if err := s.appStore.MarkPaid(ctx, id, req.TxHash, req.OnChainPolicyID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	policy := &models.Policy{
		ID:            uuid.New(),
		OnChainID:     req.OnChainPolicyID,
		ApplicationID: app.ID,
		ProductType:   app.ProductType,
		HolderAddress: app.HolderAddress,
		Status:        models.PolicyActive,
		PremiumPaid:   app.TotalPremium,

		FlightNumber:      app.FlightNumber,
		DepartureTime:     app.DepartureTime,
		CoveragePerPerson: app.CoveragePerPerson,
		Persons:           app.Persons,

		Latitude:    app.Latitude,
		Longitude:   app.Longitude,
		PeriodStart: app.PeriodStart,
		PeriodEnd:   app.PeriodEnd,
		ThresholdMM: app.ThresholdMM,
		Condition:   app.Condition,
		Coverage:    app.Coverage,

		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.policyStore.Create(ctx, policy); err != nil {
		return nil, fmt.Errorf("payment verified but policy mirror creation failed: %w", err)
	}

	slog.Info("Payment confirmed and policy mirrored",
		"application_id", app.ID,
		"on_chain_policy_id", req.OnChainPolicyID,
		"tx_hash", req.TxHash)

	return outcome, nil
}

func breakdownToJSON(breakdown map[string]float64) models.JSONMap {
	m := make(models.JSONMap, len(breakdown))
	for k, v := range breakdown {
		m[k] = v
	}
	return m
}
