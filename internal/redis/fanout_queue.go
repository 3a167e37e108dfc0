package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"vigia/internal/domain"
	"vigia/pkg/e"

	"github.com/redis/go-redis/v9"
)

// FanoutQueue carries alert ids from the intake handler to the fan-out
// worker. LPUSH on intake, BRPOP in the worker loop.
type FanoutQueue struct {
	client *redis.Client
	key    string
}

func NewFanoutQueue(client *redis.Client, key string) *FanoutQueue {
	return &FanoutQueue{client: client, key: key}
}

func (q *FanoutQueue) Enqueue(ctx context.Context, job domain.FanoutJob) error {
	b, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, b).Err()
}

func (q *FanoutQueue) BRPop(ctx context.Context, timeout time.Duration) (domain.FanoutJob, error) {
	var job domain.FanoutJob

	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return job, e.ErrQueueEmpty
		}
		return job, err
	}
	if len(res) < 2 {
		return job, redis.Nil
	}
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return job, err
	}
	return job, nil
}
