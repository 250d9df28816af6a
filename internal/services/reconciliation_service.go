package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"oracle-service/internal/chain"
	"oracle-service/internal/climate"
	"oracle-service/internal/event"
	"oracle-service/internal/models"
	"oracle-service/internal/repository"

	"github.com/google/uuid"
)

// ReconciliationService drives every ledger policy through its lifecycle:
// active -> expired past the grace period, or active -> claimed once the
// real-world outcome is processed and the contract reports a payout.
//
// Policies are walked in ascending id order and strictly one at a time.
// Every ledger write is signed by the same custody account, so submissions
// must carry strictly increasing nonces; processing concurrently would race
// them. This is a correctness constraint, not a missed optimization.
type ReconciliationService struct {
	flightLedger   chain.FlightLedger
	rainfallLedger chain.RainfallLedger
	flightOutcomes FlightOutcomeSource
	rainfallSource climate.HistoricalRainfallSource
	policyStore    PolicyStore
	publisher      *event.PolicyEventPublisher
	gracePeriod    time.Duration
	callTimeout    time.Duration
	now            func() time.Time
}

func NewReconciliationService(
	flightLedger chain.FlightLedger,
	rainfallLedger chain.RainfallLedger,
	flightOutcomes FlightOutcomeSource,
	rainfallSource climate.HistoricalRainfallSource,
	policyStore PolicyStore,
	publisher *event.PolicyEventPublisher,
	gracePeriod time.Duration,
	callTimeout time.Duration,
) *ReconciliationService {
	return &ReconciliationService{
		flightLedger:   flightLedger,
		rainfallLedger: rainfallLedger,
		flightOutcomes: flightOutcomes,
		rainfallSource: rainfallSource,
		policyStore:    policyStore,
		publisher:      publisher,
		gracePeriod:    gracePeriod,
		callTimeout:    callTimeout,
		now:            time.Now,
	}
}

// withDeadline bounds one unit of ledger work. The worker runs ticks on a
// background context, so without a per-policy deadline a hung RPC call would
// hold the tick open and the single-flight schedule would drop every
// subsequent tick behind it.
func (s *ReconciliationService) withDeadline(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return fn(ctx)
}

// Reconcile runs one full tick over both product ledgers. Errors never
// escape: a policy that fails is logged and revisited next tick, which
// re-reads current ledger status and is therefore safe to repeat.
func (s *ReconciliationService) Reconcile(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Reconcile: recovered from panic", "panic", r)
		}
	}()

	started := s.now()
	slog.Info("Reconciliation tick started")

	s.reconcileFlight(ctx)
	s.reconcileRainfall(ctx)

	slog.Info("Reconciliation tick finished", "duration", s.now().Sub(started))
}

func (s *ReconciliationService) reconcileFlight(ctx context.Context) {
	var count uint64
	err := s.withDeadline(ctx, func(ctx context.Context) error {
		var err error
		count, err = s.flightLedger.PolicyCount(ctx)
		return err
	})
	if err != nil {
		slog.Error("Failed to read flight policy count", "error", err)
		return
	}

	for id := uint64(0); id < count; id++ {
		err := s.withDeadline(ctx, func(ctx context.Context) error {
			return s.reconcileFlightPolicy(ctx, id)
		})
		if err != nil {
			// One bad policy must never abort the batch.
			slog.Error("Flight policy reconciliation failed",
				"policy_id", id,
				"error", err)
		}
	}
}

func (s *ReconciliationService) reconcileFlightPolicy(ctx context.Context, id uint64) error {
	policy, err := s.flightLedger.GetPolicy(ctx, id)
	if err != nil {
		return err
	}

	// Terminal policies are a no-op: the outcome was computed exactly once.
	if policy.Status != chain.StatusActive {
		return nil
	}

	now := s.now()
	if now.Before(policy.DepartureTime) {
		slog.Debug("Flight policy not yet actionable",
			"policy_id", id,
			"departure_time", policy.DepartureTime)
		return nil
	}

	// Inclusive boundary: exactly at departure + grace counts as expired.
	if !now.Before(policy.DepartureTime.Add(s.gracePeriod)) {
		return s.expireFlightPolicy(ctx, policy)
	}

	delay, err := s.flightOutcomes.FetchDelayMinutes(ctx, policy.FlightNumber, policy.DepartureTime)
	if err != nil {
		return fmt.Errorf("failed to fetch delay outcome: %w", err)
	}

	txHash, err := s.flightLedger.ProcessDelayOutcome(ctx, id, delay)
	if err != nil {
		return err
	}

	slog.Info("Flight delay outcome processed",
		"policy_id", id,
		"flight_number", policy.FlightNumber,
		"delay_minutes", delay,
		"tx_hash", txHash)

	// Payout tiers live in the contract; re-read to learn its decision.
	after, err := s.flightLedger.GetPolicy(ctx, id)
	if err != nil {
		return fmt.Errorf("outcome processed but status re-read failed: %w", err)
	}
	if after.Status != chain.StatusClaimed {
		return nil
	}

	return s.settleClaim(ctx, models.ProductFlight, after.ID, after.Holder.Hex(),
		chain.AmountFromWei(after.PayoutAmount), txHash, policy.DepartureTime,
		fmt.Sprintf("Flight %s delayed %d minutes", policy.FlightNumber, delay))
}

func (s *ReconciliationService) expireFlightPolicy(ctx context.Context, policy *chain.FlightChainPolicy) error {
	txHash, err := s.flightLedger.ExpirePolicy(ctx, policy.ID)
	if err != nil {
		return err
	}

	slog.Info("Flight policy expired",
		"policy_id", policy.ID,
		"flight_number", policy.FlightNumber,
		"tx_hash", txHash)

	return s.markMirrorExpired(ctx, models.ProductFlight, policy.ID, policy.Holder.Hex())
}

func (s *ReconciliationService) reconcileRainfall(ctx context.Context) {
	var count uint64
	err := s.withDeadline(ctx, func(ctx context.Context) error {
		var err error
		count, err = s.rainfallLedger.PolicyCount(ctx)
		return err
	})
	if err != nil {
		slog.Error("Failed to read rainfall policy count", "error", err)
		return
	}

	for id := uint64(0); id < count; id++ {
		err := s.withDeadline(ctx, func(ctx context.Context) error {
			return s.reconcileRainfallPolicy(ctx, id)
		})
		if err != nil {
			slog.Error("Rainfall policy reconciliation failed",
				"policy_id", id,
				"error", err)
		}
	}
}

func (s *ReconciliationService) reconcileRainfallPolicy(ctx context.Context, id uint64) error {
	policy, err := s.rainfallLedger.GetPolicy(ctx, id)
	if err != nil {
		return err
	}

	if policy.Status != chain.StatusActive {
		return nil
	}

	now := s.now()
	if now.Before(policy.PeriodEnd) {
		slog.Debug("Rainfall policy period still open",
			"policy_id", id,
			"period_end", policy.PeriodEnd)
		return nil
	}

	if !now.Before(policy.PeriodEnd.Add(s.gracePeriod)) {
		txHash, err := s.rainfallLedger.ExpirePolicy(ctx, id)
		if err != nil {
			return err
		}
		slog.Info("Rainfall policy expired", "policy_id", id, "tx_hash", txHash)
		return s.markMirrorExpired(ctx, models.ProductRainfall, id, policy.Holder.Hex())
	}

	// Coordinates come back in the same fixed point they were written with.
	lat := chain.UnscaleCoordinate(policy.LatScaled)
	lon := chain.UnscaleCoordinate(policy.LonScaled)

	season, err := s.rainfallSource.FetchSeasonTotal(ctx, lat, lon, policy.PeriodStart, policy.PeriodEnd)
	if err != nil {
		return fmt.Errorf("failed to fetch rainfall outcome: %w", err)
	}
	if !season.Valid {
		return fmt.Errorf("rainfall outcome not yet available for period ending %s", policy.PeriodEnd)
	}

	txHash, err := s.rainfallLedger.ProcessRainfallOutcome(ctx, id, chain.ScaleRainfall(season.TotalMM))
	if err != nil {
		return err
	}

	slog.Info("Rainfall outcome processed",
		"policy_id", id,
		"total_mm", season.TotalMM,
		"tx_hash", txHash)

	after, err := s.rainfallLedger.GetPolicy(ctx, id)
	if err != nil {
		return fmt.Errorf("outcome processed but status re-read failed: %w", err)
	}
	if after.Status != chain.StatusClaimed {
		return nil
	}

	return s.settleClaim(ctx, models.ProductRainfall, after.ID, after.Holder.Hex(),
		chain.AmountFromWei(after.PayoutAmount), txHash, policy.PeriodEnd,
		fmt.Sprintf("Seasonal rainfall of %.1f mm triggered the policy condition", season.TotalMM))
}

func (s *ReconciliationService) markMirrorExpired(ctx context.Context, product models.ProductType, onChainID uint64, holder string) error {
	if err := s.policyStore.MarkExpired(ctx, product, int64(onChainID)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := s.publisher.Publish(ctx, event.PolicyEvent{
		Type:            event.EventPolicyExpired,
		ProductType:     product,
		OnChainPolicyID: int64(onChainID),
		HolderAddress:   holder,
		OccurredAt:      s.now().UTC(),
	}); err != nil {
		slog.Warn("Failed to publish expiry event",
			"product_type", product,
			"on_chain_policy_id", onChainID,
			"error", err)
	}
	return nil
}

// settleClaim updates the local mirror and writes the claim record in one
// atomic store call, then notifies downstream consumers.
func (s *ReconciliationService) settleClaim(ctx context.Context, product models.ProductType, onChainID uint64, holder string, amount float64, triggerTxHash string, incident time.Time, description string) error {
	mirror, err := s.policyStore.GetByOnChainID(ctx, product, int64(onChainID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Warn("Ledger reports payout for a policy with no local mirror",
				"product_type", product,
				"on_chain_policy_id", onChainID)
			return nil
		}
		return err
	}

	claim := &models.Claim{
		ID:              uuid.New(),
		PolicyID:        mirror.ID,
		OnChainPolicyID: int64(onChainID),
		ProductType:     product,
		HolderAddress:   holder,
		Amount:          amount,
		TriggerTxHash:   triggerTxHash,
		Status:          models.ClaimSettled,
		IncidentDate:    incident.UTC(),
		Description:     description,
		CreatedAt:       s.now().UTC(),
	}

	if err := s.policyStore.SettleClaim(ctx, mirror, claim); err != nil {
		return err
	}

	slog.Info("Claim settled",
		"product_type", product,
		"on_chain_policy_id", onChainID,
		"amount", amount,
		"trigger_tx_hash", triggerTxHash)

	if err := s.publisher.Publish(ctx, event.PolicyEvent{
		Type:            event.EventClaimSettled,
		ProductType:     product,
		OnChainPolicyID: int64(onChainID),
		HolderAddress:   holder,
		Amount:          amount,
		TxHash:          triggerTxHash,
		OccurredAt:      s.now().UTC(),
	}); err != nil {
		slog.Warn("Failed to publish claim event",
			"product_type", product,
			"on_chain_policy_id", onChainID,
			"error", err)
	}
	return nil
}
