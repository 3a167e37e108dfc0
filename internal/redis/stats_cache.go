package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"vigia/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

// StatsCache keeps recently computed delivery stats so repeated admin polls
// do not re-aggregate the delivery log. Keyed by window size in minutes.
type StatsCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewStatsCache(r *Redis, ttl time.Duration) *StatsCache {
	return &StatsCache{
		client: r.Client,
		ttl:    ttl,
	}
}

// Get returns the cached stats for the window, or nil on a miss.
func (c *StatsCache) Get(ctx context.Context, minutes int) (*domain.DeliveryStats, error) {
	data, err := c.client.Get(ctx, statsKey(minutes)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats domain.DeliveryStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *StatsCache) Set(ctx context.Context, stats *domain.DeliveryStats) error {
	b, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statsKey(stats.Minutes), b, c.ttl).Err()
}

func statsKey(minutes int) string {
	return "stats:delivery:" + strconv.Itoa(minutes)
}
