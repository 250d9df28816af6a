package services

import (
	"testing"
	"time"

	"oracle-service/internal/config"
	"oracle-service/internal/models"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func testPricingConfig() config.PricingConfig {
	return config.PricingConfig{
		RiskLoading: 1.2,
		Margin:      0.15,
		PlatformFee: 0.05,
		MinPremium:  1.0,
	}
}

func createFlightRequest() models.FlightApplicationRequest {
	return models.FlightApplicationRequest{
		HolderAddress:     "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf",
		FlightNumber:      "TG635",
		AirlineCode:       "TG",
		DepartureAirport:  "BKK",
		ArrivalAirport:    "SIN",
		DepartureTime:     time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC),
		CoveragePerPerson: 100,
		Persons:           2,
	}
}

// ============================================================================
// WEIGHT INVARIANT
// ============================================================================

func TestFlightRiskWeights_SumToOne(t *testing.T) {
	sum := 0.0
	for _, w := range FlightRiskWeights() {
		sum += w
	}

	assert.InDelta(t, 1.0, sum, 1e-12, "factor weights must sum to 1.0")
}

// ============================================================================
// PREMIUM ESTIMATION
// ============================================================================

func TestEstimatePremium_KnownRoute(t *testing.T) {
	service := NewFlightRiskService(testPricingConfig())

	quote, err := service.EstimatePremium(createFlightRequest())

	assert.NoError(t, err)
	// TG=0.12, BKK dep=0.18, SIN arr=0.06, 08:00 UTC=0.10,
	// mid-March has no holiday window or monsoon for TH/SG, so 0.10 each:
	// .25*.12 + .25*.18 + .10*.06 + .15*.10 + .10*.10 + .15*.10 = 0.121
	assert.InDelta(t, 0.121, quote.Probability, 1e-9)
	// 100 * 0.121 * 1.2 = 14.52 per person
	assert.InDelta(t, 14.52, quote.PremiumPerPerson, 1e-9)
	assert.InDelta(t, 29.04, quote.TotalPremium, 1e-9)
}

func TestEstimatePremium_TotalIsPerPersonTimesPersons(t *testing.T) {
	service := NewFlightRiskService(testPricingConfig())

	req := createFlightRequest()
	req.Persons = 7
	req.CoveragePerPerson = 333.33

	quote, err := service.EstimatePremium(req)

	assert.NoError(t, err)
	assert.InDelta(t, quote.PremiumPerPerson*7, quote.TotalPremium, 1e-9,
		"total must be derived from the rounded per-person premium")
}

func TestEstimatePremium_ProbabilityBounds(t *testing.T) {
	service := NewFlightRiskService(testPricingConfig())

	requests := []models.FlightApplicationRequest{
		createFlightRequest(),
		{HolderAddress: "0x1", FlightNumber: "VJ901", AirlineCode: "VJ", DepartureAirport: "SGN",
			ArrivalAirport: "DMK", DepartureTime: time.Date(2026, time.September, 15, 23, 0, 0, 0, time.UTC),
			CoveragePerPerson: 500, Persons: 1},
		{HolderAddress: "0x2", FlightNumber: "XX100", AirlineCode: "XX", DepartureAirport: "ZZZ",
			ArrivalAirport: "YYY", DepartureTime: time.Date(2026, time.July, 1, 14, 0, 0, 0, time.UTC),
			CoveragePerPerson: 50, Persons: 3},
	}

	for _, req := range requests {
		quote, err := service.EstimatePremium(req)
		assert.NoError(t, err)
		assert.Greater(t, quote.Probability, 0.0, "flight %s", req.FlightNumber)
		assert.LessOrEqual(t, quote.Probability, 0.4, "factor scores cap at 0.4, flight %s", req.FlightNumber)
	}
}

func TestEstimatePremium_UnknownCodesUseDefaults(t *testing.T) {
	service := NewFlightRiskService(testPricingConfig())

	req := createFlightRequest()
	req.AirlineCode = "ZZ"
	req.DepartureAirport = "XXX"
	req.ArrivalAirport = "YYY"

	quote, err := service.EstimatePremium(req)

	assert.NoError(t, err)
	assert.Equal(t, 0.20, quote.Breakdown["airline"])
	assert.Equal(t, 0.20, quote.Breakdown["departure_airport"])
	assert.Equal(t, 0.15, quote.Breakdown["arrival_airport"])
}

func TestEstimatePremium_HolidayWindowRaisesCalendarRisk(t *testing.T) {
	service := NewFlightRiskService(testPricingConfig())

	req := createFlightRequest()
	req.DepartureTime = time.Date(2026, time.April, 13, 8, 0, 0, 0, time.UTC) // Songkran

	quote, err := service.EstimatePremium(req)

	assert.NoError(t, err)
	assert.Equal(t, 0.40, quote.Breakdown["calendar"])
}

func TestEstimatePremium_MonsoonRaisesWeatherRisk(t *testing.T) {
	service := NewFlightRiskService(testPricingConfig())

	baseline, err := service.EstimatePremium(createFlightRequest())
	assert.NoError(t, err)

	req := createFlightRequest()
	req.DepartureTime = time.Date(2026, time.September, 10, 8, 0, 0, 0, time.UTC)

	monsoon, err := service.EstimatePremium(req)
	assert.NoError(t, err)

	assert.Greater(t, monsoon.Breakdown["seasonal_weather"], baseline.Breakdown["seasonal_weather"])
	assert.Greater(t, monsoon.TotalPremium, baseline.TotalPremium)
}

func TestEstimatePremium_NightDepartureRaisesTimeRisk(t *testing.T) {
	service := NewFlightRiskService(testPricingConfig())

	req := createFlightRequest()
	req.DepartureTime = time.Date(2026, time.March, 10, 23, 30, 0, 0, time.UTC)

	quote, err := service.EstimatePremium(req)

	assert.NoError(t, err)
	assert.Equal(t, 0.25, quote.Breakdown["departure_time"])
}

// ============================================================================
// VALIDATION
// ============================================================================

func TestEstimatePremium_RejectsInvalidInput(t *testing.T) {
	service := NewFlightRiskService(testPricingConfig())

	zeroCoverage := createFlightRequest()
	zeroCoverage.CoveragePerPerson = 0
	_, err := service.EstimatePremium(zeroCoverage)
	assert.Error(t, err)

	zeroPersons := createFlightRequest()
	zeroPersons.Persons = 0
	_, err = service.EstimatePremium(zeroPersons)
	assert.Error(t, err)

	noDeparture := createFlightRequest()
	noDeparture.DepartureTime = time.Time{}
	_, err = service.EstimatePremium(noDeparture)
	assert.Error(t, err)
}
