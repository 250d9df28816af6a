package services

import "time"

// Lookup tables behind the flight-delay risk formula. Scores are on a 0..0.4
// scale; unknown keys fall back to the documented defaults so a new route
// can always be quoted.

const (
	weightAirline          = 0.25
	weightDepartureAirport = 0.25
	weightArrivalAirport   = 0.10
	weightDepartureTime    = 0.15
	weightCalendar         = 0.10
	weightSeasonalWeather  = 0.15
)

// FlightRiskWeights exposes the factor weights for the invariant test: they
// must always sum to exactly 1.0.
func FlightRiskWeights() map[string]float64 {
	return map[string]float64{
		"airline":           weightAirline,
		"departure_airport": weightDepartureAirport,
		"arrival_airport":   weightArrivalAirport,
		"departure_time":    weightDepartureTime,
		"calendar":          weightCalendar,
		"seasonal_weather":  weightSeasonalWeather,
	}
}

const (
	defaultAirlineRisk          = 0.20
	defaultDepartureAirportRisk = 0.20
	defaultArrivalAirportRisk   = 0.15
	defaultSeasonalWeatherRisk  = 0.10

	calendarHolidayRisk = 0.40
	calendarBaseRisk    = 0.10

	timeRiskNight     = 0.25
	timeRiskAfternoon = 0.15
	timeRiskDefault   = 0.10
)

var airlineRisk = map[string]float64{
	"TG": 0.12,
	"PG": 0.15,
	"SQ": 0.08,
	"CX": 0.10,
	"MH": 0.18,
	"VN": 0.20,
	"FD": 0.25,
	"AK": 0.28,
	"VJ": 0.30,
	"TR": 0.22,
}

type airportInfo struct {
	DepartureRisk float64
	ArrivalRisk   float64
	Country       string
}

var airports = map[string]airportInfo{
	"BKK": {0.18, 0.14, "TH"},
	"DMK": {0.24, 0.20, "TH"},
	"HKT": {0.20, 0.16, "TH"},
	"CNX": {0.15, 0.12, "TH"},
	"SIN": {0.08, 0.06, "SG"},
	"KUL": {0.16, 0.13, "MY"},
	"SGN": {0.22, 0.18, "VN"},
	"HAN": {0.20, 0.16, "VN"},
	"HKG": {0.14, 0.11, "HK"},
	"NRT": {0.10, 0.08, "JP"},
}

// holidayWindow is a month/day range within any year. Windows that cross the
// new year are listed as two entries.
type holidayWindow struct {
	Country    string
	StartMonth time.Month
	StartDay   int
	EndMonth   time.Month
	EndDay     int
}

// Fixed travel-surge windows. Movable festivals (Tet, Chinese New Year, Hari
// Raya) use their typical range rather than per-year dates.
var holidayWindows = []holidayWindow{
	{"TH", time.April, 11, time.April, 17},    // Songkran
	{"TH", time.December, 28, time.December, 31},
	{"TH", time.January, 1, time.January, 2},
	{"VN", time.January, 25, time.February, 10}, // Tet
	{"VN", time.April, 29, time.May, 2},
	{"SG", time.January, 20, time.February, 5}, // Chinese New Year
	{"HK", time.January, 20, time.February, 5},
	{"MY", time.March, 28, time.April, 5}, // Hari Raya Puasa
	{"JP", time.April, 29, time.May, 5},   // Golden Week
	{"JP", time.December, 29, time.December, 31},
	{"JP", time.January, 1, time.January, 3},
}

// Monsoon-season disruption scores by country and month.
var seasonalWeatherRisk = map[string]map[time.Month]float64{
	"TH": {
		time.May:       0.25,
		time.June:      0.25,
		time.July:      0.28,
		time.August:    0.30,
		time.September: 0.35,
		time.October:   0.30,
	},
	"VN": {
		time.June:      0.25,
		time.July:      0.28,
		time.August:    0.30,
		time.September: 0.32,
		time.October:   0.35,
		time.November:  0.28,
	},
	"MY": {
		time.October:  0.25,
		time.November: 0.30,
		time.December: 0.32,
		time.January:  0.28,
	},
	"SG": {
		time.November: 0.25,
		time.December: 0.28,
		time.January:  0.25,
	},
	"HK": {
		time.June:      0.25,
		time.July:      0.30,
		time.August:    0.32,
		time.September: 0.30,
	},
	"JP": {
		time.June:      0.22,
		time.August:    0.28,
		time.September: 0.30,
	},
}

func lookupAirlineRisk(code string) float64 {
	if risk, ok := airlineRisk[code]; ok {
		return risk
	}
	return defaultAirlineRisk
}

func lookupDepartureAirportRisk(code string) float64 {
	if info, ok := airports[code]; ok {
		return info.DepartureRisk
	}
	return defaultDepartureAirportRisk
}

func lookupArrivalAirportRisk(code string) float64 {
	if info, ok := airports[code]; ok {
		return info.ArrivalRisk
	}
	return defaultArrivalAirportRisk
}

func lookupAirportCountry(code string) string {
	if info, ok := airports[code]; ok {
		return info.Country
	}
	return ""
}

// departureTimeRisk bands the UTC hour of departure: late-night departures
// inherit cascading delays from the whole day, afternoons sit mid-band.
func departureTimeRisk(departure time.Time) float64 {
	hour := departure.UTC().Hour()
	switch {
	case hour >= 21 || hour < 5:
		return timeRiskNight
	case hour >= 12 && hour < 18:
		return timeRiskAfternoon
	default:
		return timeRiskDefault
	}
}

// calendarRisk scores a travel date for one country: inside a holiday window
// it is high-congestion, otherwise base.
func calendarRisk(date time.Time, country string) float64 {
	if country == "" {
		return calendarBaseRisk
	}

	month, day := date.UTC().Month(), date.UTC().Day()
	for _, w := range holidayWindows {
		if w.Country != country {
			continue
		}
		afterStart := month > w.StartMonth || (month == w.StartMonth && day >= w.StartDay)
		beforeEnd := month < w.EndMonth || (month == w.EndMonth && day <= w.EndDay)
		if afterStart && beforeEnd {
			return calendarHolidayRisk
		}
	}
	return calendarBaseRisk
}

func lookupSeasonalWeatherRisk(country string, month time.Month) float64 {
	if byMonth, ok := seasonalWeatherRisk[country]; ok {
		if risk, ok := byMonth[month]; ok {
			return risk
		}
	}
	return defaultSeasonalWeatherRisk
}
