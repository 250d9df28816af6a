package climate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	seasonStart = time.Date(2016, time.June, 1, 0, 0, 0, 0, time.UTC)
	seasonEnd   = time.Date(2016, time.June, 5, 0, 0, 0, 0, time.UTC)
)

func archiveServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "13.7563", r.URL.Query().Get("latitude"))
		assert.Equal(t, "2016-06-01", r.URL.Query().Get("start_date"))
		assert.Equal(t, "precipitation_sum", r.URL.Query().Get("daily"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestFetchSeasonTotal_SumsDailyValues(t *testing.T) {
	server := archiveServer(t, `{"daily":{
		"time":["2016-06-01","2016-06-02","2016-06-03","2016-06-04","2016-06-05"],
		"precipitation_sum":[1.5,0.0,12.25,3.0,0.75]}}`)
	defer server.Close()

	client := NewOpenMeteoClient(server.URL)
	total, err := client.FetchSeasonTotal(context.Background(), 13.7563, 100.5018, seasonStart, seasonEnd)

	assert.NoError(t, err)
	assert.True(t, total.Valid)
	assert.InDelta(t, 17.5, total.TotalMM, 1e-9)
}

func TestFetchSeasonTotal_NullDaysSkipped(t *testing.T) {
	server := archiveServer(t, `{"daily":{
		"time":["2016-06-01","2016-06-02","2016-06-03"],
		"precipitation_sum":[2.0,null,3.0]}}`)
	defer server.Close()

	client := NewOpenMeteoClient(server.URL)
	total, err := client.FetchSeasonTotal(context.Background(), 13.7563, 100.5018, seasonStart, seasonEnd)

	assert.NoError(t, err)
	assert.True(t, total.Valid)
	assert.InDelta(t, 5.0, total.TotalMM, 1e-9)
}

// A range the station has no record for must come back invalid, never as
// zero rainfall: zero is a meaningful drought measurement.
func TestFetchSeasonTotal_AllNullIsInvalid(t *testing.T) {
	server := archiveServer(t, `{"daily":{
		"time":["2016-06-01","2016-06-02"],
		"precipitation_sum":[null,null]}}`)
	defer server.Close()

	client := NewOpenMeteoClient(server.URL)
	total, err := client.FetchSeasonTotal(context.Background(), 13.7563, 100.5018, seasonStart, seasonEnd)

	assert.NoError(t, err)
	assert.False(t, total.Valid)
	assert.Equal(t, 0.0, total.TotalMM)
}

func TestFetchSeasonTotal_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewOpenMeteoClient(server.URL)
	_, err := client.FetchSeasonTotal(context.Background(), 13.7563, 100.5018, seasonStart, seasonEnd)

	assert.Error(t, err)
}

func TestFetchSeasonTotal_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewOpenMeteoClient(server.URL)
	_, err := client.FetchSeasonTotal(context.Background(), 13.7563, 100.5018, seasonStart, seasonEnd)

	assert.Error(t, err)
}
