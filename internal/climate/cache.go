package climate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedRainfallSource caches season totals in redis. Historical archive
// data never changes once published, so cached entries only expire to bound
// memory, not for freshness. Cache failures degrade to a direct fetch.
type CachedRainfallSource struct {
	source HistoricalRainfallSource
	client *redis.Client
	ttl    time.Duration
}

func NewCachedRainfallSource(source HistoricalRainfallSource, client *redis.Client, ttl time.Duration) *CachedRainfallSource {
	return &CachedRainfallSource{
		source: source,
		client: client,
		ttl:    ttl,
	}
}

func cacheKey(lat, lon float64, start, end time.Time) string {
	return fmt.Sprintf("climate:season:%.4f:%.4f:%s:%s",
		lat, lon,
		start.UTC().Format("2006-01-02"),
		end.UTC().Format("2006-01-02"))
}

func (c *CachedRainfallSource) FetchSeasonTotal(ctx context.Context, lat, lon float64, start, end time.Time) (SeasonTotal, error) {
	key := cacheKey(lat, lon, start, end)

	if cached, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var total SeasonTotal
		if err := json.Unmarshal(cached, &total); err == nil {
			return total, nil
		}
	} else if err != redis.Nil {
		slog.Warn("Climate cache read failed", "key", key, "error", err)
	}

	total, err := c.source.FetchSeasonTotal(ctx, lat, lon, start, end)
	if err != nil {
		return SeasonTotal{}, err
	}

	if payload, err := json.Marshal(total); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			slog.Warn("Climate cache write failed", "key", key, "error", err)
		}
	}

	return total, nil
}
