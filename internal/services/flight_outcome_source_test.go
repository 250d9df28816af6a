package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testDeparture = time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)

func flightStatusServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TG635", r.URL.Query().Get("flight_iata"))
		assert.Equal(t, "2026-03-10", r.URL.Query().Get("flight_date"))
		assert.Equal(t, "test-key", r.URL.Query().Get("access_key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestFetchDelayMinutes_ReportedDelay(t *testing.T) {
	server := flightStatusServer(t, `{"data":[{"arrival":{"delay":193}}]}`)
	defer server.Close()

	source := NewHTTPFlightOutcomeSource(server.URL, "test-key")
	delay, err := source.FetchDelayMinutes(context.Background(), "TG635", testDeparture)

	assert.NoError(t, err)
	assert.Equal(t, uint64(193), delay)
}

// The feed reports null delay when the flight arrived on time.
func TestFetchDelayMinutes_NullDelayMeansOnTime(t *testing.T) {
	server := flightStatusServer(t, `{"data":[{"arrival":{"delay":null}}]}`)
	defer server.Close()

	source := NewHTTPFlightOutcomeSource(server.URL, "test-key")
	delay, err := source.FetchDelayMinutes(context.Background(), "TG635", testDeparture)

	assert.NoError(t, err)
	assert.Equal(t, uint64(0), delay)
}

func TestFetchDelayMinutes_NoRecordIsAnError(t *testing.T) {
	server := flightStatusServer(t, `{"data":[]}`)
	defer server.Close()

	source := NewHTTPFlightOutcomeSource(server.URL, "test-key")
	_, err := source.FetchDelayMinutes(context.Background(), "TG635", testDeparture)

	assert.Error(t, err, "an absent record must not read as on-time")
}

func TestFetchDelayMinutes_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	source := NewHTTPFlightOutcomeSource(server.URL, "test-key")
	_, err := source.FetchDelayMinutes(context.Background(), "TG635", testDeparture)

	assert.Error(t, err)
}
