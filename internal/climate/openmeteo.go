package climate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// SeasonTotal is one location+date-range precipitation query result.
// Valid is false when the archive has no usable data for the range; that is
// a normal response for years outside the station's record, not an error,
// and it must never be read as "zero rainfall".
type SeasonTotal struct {
	TotalMM float64
	Valid   bool
}

// HistoricalRainfallSource answers point queries for total precipitation over
// a date range.
type HistoricalRainfallSource interface {
	FetchSeasonTotal(ctx context.Context, lat, lon float64, start, end time.Time) (SeasonTotal, error)
}

// OpenMeteoClient queries the Open-Meteo archive API for daily precipitation.
type OpenMeteoClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOpenMeteoClient(baseURL string) *OpenMeteoClient {
	return &OpenMeteoClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type archiveResponse struct {
	Daily struct {
		Time             []string   `json:"time"`
		PrecipitationSum []*float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

// FetchSeasonTotal sums daily precipitation over [start, end]. Days the
// archive reports as null are skipped; a range with no non-null days at all
// comes back as invalid.
func (c *OpenMeteoClient) FetchSeasonTotal(ctx context.Context, lat, lon float64, start, end time.Time) (SeasonTotal, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", lat))
	q.Set("longitude", fmt.Sprintf("%.4f", lon))
	q.Set("start_date", start.UTC().Format("2006-01-02"))
	q.Set("end_date", end.UTC().Format("2006-01-02"))
	q.Set("daily", "precipitation_sum")
	q.Set("timezone", "UTC")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return SeasonTotal{}, fmt.Errorf("failed to build climate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SeasonTotal{}, fmt.Errorf("failed to call climate API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return SeasonTotal{}, fmt.Errorf("failed to read climate response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("Climate API returned non-200 status",
			"status", resp.StatusCode,
			"body", string(body))
		return SeasonTotal{}, fmt.Errorf("climate API error: status %d", resp.StatusCode)
	}

	var archive archiveResponse
	if err := json.Unmarshal(body, &archive); err != nil {
		return SeasonTotal{}, fmt.Errorf("failed to parse climate response: %w", err)
	}

	total := 0.0
	validDays := 0
	for _, day := range archive.Daily.PrecipitationSum {
		if day == nil {
			continue
		}
		total += *day
		validDays++
	}

	if validDays == 0 {
		return SeasonTotal{Valid: false}, nil
	}

	return SeasonTotal{TotalMM: total, Valid: true}, nil
}
