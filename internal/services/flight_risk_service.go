package services

import (
	"fmt"

	"oracle-service/internal/config"
	"oracle-service/internal/models"

	"github.com/shopspring/decimal"
)

// FlightQuote is the result of a flight-delay premium estimate. Probability
// and premiums are rounded exactly once, here at the boundary; all internal
// arithmetic stays unrounded.
type FlightQuote struct {
	Probability      float64            `json:"probability"`
	PremiumPerPerson float64            `json:"premium_per_person"`
	TotalPremium     float64            `json:"total_premium"`
	Breakdown        map[string]float64 `json:"breakdown"`
}

// FlightRiskService prices flight-delay coverage with a fixed, explainable
// weighted formula over six independently looked-up risk factors.
type FlightRiskService struct {
	pricing config.PricingConfig
}

func NewFlightRiskService(pricing config.PricingConfig) *FlightRiskService {
	return &FlightRiskService{pricing: pricing}
}

// EstimatePremium computes delay probability and premium for one itinerary.
func (s *FlightRiskService) EstimatePremium(req models.FlightApplicationRequest) (*FlightQuote, error) {
	if req.CoveragePerPerson <= 0 {
		return nil, fmt.Errorf("coverage per person must be positive")
	}
	if req.Persons <= 0 {
		return nil, fmt.Errorf("person count must be positive")
	}
	if req.DepartureTime.IsZero() {
		return nil, fmt.Errorf("departure time is required")
	}

	depCountry := lookupAirportCountry(req.DepartureAirport)
	arrCountry := lookupAirportCountry(req.ArrivalAirport)

	airline := lookupAirlineRisk(req.AirlineCode)
	depAirport := lookupDepartureAirportRisk(req.DepartureAirport)
	arrAirport := lookupArrivalAirportRisk(req.ArrivalAirport)
	timeOfDay := departureTimeRisk(req.DepartureTime)
	calendar := max(calendarRisk(req.DepartureTime, depCountry), calendarRisk(req.DepartureTime, arrCountry))
	weather := max(
		lookupSeasonalWeatherRisk(depCountry, req.DepartureTime.UTC().Month()),
		lookupSeasonalWeatherRisk(arrCountry, req.DepartureTime.UTC().Month()),
	)

	probability := weightAirline*airline +
		weightDepartureAirport*depAirport +
		weightArrivalAirport*arrAirport +
		weightDepartureTime*timeOfDay +
		weightCalendar*calendar +
		weightSeasonalWeather*weather

	perPerson := req.CoveragePerPerson * probability * s.pricing.RiskLoading

	// Round once at the boundary, then derive the total from the rounded
	// per-person figure so total == perPerson * persons holds exactly.
	roundedPerPerson := decimal.NewFromFloat(perPerson).Round(2)
	total := roundedPerPerson.Mul(decimal.NewFromInt(int64(req.Persons)))

	premiumPerPerson, _ := roundedPerPerson.Float64()
	totalPremium, _ := total.Float64()
	roundedProbability, _ := decimal.NewFromFloat(probability).Round(3).Float64()

	return &FlightQuote{
		Probability:      roundedProbability,
		PremiumPerPerson: premiumPerPerson,
		TotalPremium:     totalPremium,
		Breakdown: map[string]float64{
			"airline":           airline,
			"departure_airport": depAirport,
			"arrival_airport":   arrAirport,
			"departure_time":    timeOfDay,
			"calendar":          calendar,
			"seasonal_weather":  weather,
		},
	}, nil
}
