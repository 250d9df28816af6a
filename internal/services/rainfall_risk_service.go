package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"oracle-service/internal/climate"
	"oracle-service/internal/config"
	"oracle-service/internal/models"

	"github.com/shopspring/decimal"
)

// Declarative underwriting outcomes: the quote request was well-formed but
// the historical record cannot support a premium. Handlers surface these as
// structured payloads, not server errors.
var (
	ErrInsufficientClimateData = errors.New("insufficient historical climate data to underwrite")
	ErrNoHistoricalPrecedent   = errors.New("no historical precedent for the trigger condition")
)

// RainfallQuote is the result of a rainfall premium estimate. The
// probability is empirical: matched years over valid years.
type RainfallQuote struct {
	Probability    float64 `json:"probability"`
	ExpectedPayout float64 `json:"expected_payout"`
	Premium        float64 `json:"premium"`
	YearsAnalyzed  int     `json:"years_analyzed"`
	ValidYears     int     `json:"valid_years"`
	MatchedYears   int     `json:"matched_years"`
}

// RainfallRiskService prices rainfall coverage from historical seasonal
// totals rather than a formula.
type RainfallRiskService struct {
	source  climate.HistoricalRainfallSource
	climCfg config.ClimateConfig
	pricing config.PricingConfig
}

func NewRainfallRiskService(source climate.HistoricalRainfallSource, climCfg config.ClimateConfig, pricing config.PricingConfig) *RainfallRiskService {
	return &RainfallRiskService{
		source:  source,
		climCfg: climCfg,
		pricing: pricing,
	}
}

// EstimatePremium looks back HistoryYears seasons at the same location and
// date range and counts how many satisfied the trigger. A year the archive
// cannot answer for is an invalid year and shrinks the denominator; a fetch
// failure is treated the same way and is not retried, the year is skipped.
func (s *RainfallRiskService) EstimatePremium(ctx context.Context, req models.RainfallApplicationRequest) (*RainfallQuote, error) {
	if req.Coverage <= 0 {
		return nil, fmt.Errorf("coverage must be positive")
	}
	if !models.IsValidRainfallCondition(req.Condition) {
		return nil, fmt.Errorf("condition must be %q or %q", models.RainfallBelow, models.RainfallAbove)
	}
	if !req.PeriodEnd.After(req.PeriodStart) {
		return nil, fmt.Errorf("period end must be after period start")
	}

	valid := 0
	matched := 0
	for year := 1; year <= s.climCfg.HistoryYears; year++ {
		start := req.PeriodStart.AddDate(-year, 0, 0)
		end := req.PeriodEnd.AddDate(-year, 0, 0)

		season, err := s.source.FetchSeasonTotal(ctx, req.Latitude, req.Longitude, start, end)
		if err != nil {
			slog.Warn("Historical rainfall fetch failed, skipping year",
				"years_back", year,
				"latitude", req.Latitude,
				"longitude", req.Longitude,
				"error", err)
			continue
		}
		if !season.Valid {
			continue
		}

		valid++
		if conditionMatches(req.Condition, season.TotalMM, req.ThresholdMM) {
			matched++
		}
	}

	if valid < s.climCfg.MinValidYears {
		return nil, fmt.Errorf("%w: %d valid years of %d analyzed, need %d",
			ErrInsufficientClimateData, valid, s.climCfg.HistoryYears, s.climCfg.MinValidYears)
	}

	probability := float64(matched) / float64(valid)
	if probability == 0 {
		return nil, fmt.Errorf("%w: 0 of %d valid years matched", ErrNoHistoricalPrecedent, valid)
	}

	expectedPayout := probability * req.Coverage
	premium := expectedPayout * (1 + s.pricing.Margin + s.pricing.PlatformFee)
	if premium < s.pricing.MinPremium {
		premium = s.pricing.MinPremium
	}

	roundedProbability, _ := decimal.NewFromFloat(probability).Round(3).Float64()
	roundedPayout, _ := decimal.NewFromFloat(expectedPayout).Round(2).Float64()
	roundedPremium, _ := decimal.NewFromFloat(premium).Round(2).Float64()

	return &RainfallQuote{
		Probability:    roundedProbability,
		ExpectedPayout: roundedPayout,
		Premium:        roundedPremium,
		YearsAnalyzed:  s.climCfg.HistoryYears,
		ValidYears:     valid,
		MatchedYears:   matched,
	}, nil
}

func conditionMatches(condition models.RainfallCondition, totalMM, thresholdMM float64) bool {
	if condition == models.RainfallBelow {
		return totalMM < thresholdMM
	}
	return totalMM > thresholdMM
}
