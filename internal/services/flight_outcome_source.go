package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// FlightOutcomeSource reports the real-world outcome of a covered flight.
// Injected into the reconciliation loop so tests run against fixtures.
type FlightOutcomeSource interface {
	FetchDelayMinutes(ctx context.Context, flightNumber string, departure time.Time) (uint64, error)
}

// HTTPFlightOutcomeSource queries a flight-status API for arrival delay.
type HTTPFlightOutcomeSource struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPFlightOutcomeSource(baseURL, apiKey string) *HTTPFlightOutcomeSource {
	return &HTTPFlightOutcomeSource{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type flightStatusResponse struct {
	Data []struct {
		Arrival struct {
			Delay *uint64 `json:"delay"`
		} `json:"arrival"`
	} `json:"data"`
}

func (s *HTTPFlightOutcomeSource) FetchDelayMinutes(ctx context.Context, flightNumber string, departure time.Time) (uint64, error) {
	q := url.Values{}
	q.Set("access_key", s.apiKey)
	q.Set("flight_iata", flightNumber)
	q.Set("flight_date", departure.UTC().Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build flight status request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to call flight status API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read flight status response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("flight status API error: status %d", resp.StatusCode)
	}

	var status flightStatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return 0, fmt.Errorf("failed to parse flight status response: %w", err)
	}

	if len(status.Data) == 0 {
		return 0, fmt.Errorf("no flight status recorded for %s on %s",
			flightNumber, departure.UTC().Format("2006-01-02"))
	}

	if status.Data[0].Arrival.Delay == nil {
		// The feed reports null delay for on-time arrivals.
		return 0, nil
	}
	return *status.Data[0].Arrival.Delay, nil
}
