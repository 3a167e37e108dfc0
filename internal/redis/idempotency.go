package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ClaimStore implements the fan-out idempotency check. The trigger source
// delivers at-least-once, so the worker claims the alert id atomically
// (SET NX with TTL) before dispatching; a duplicate trigger observes the
// existing claim and exits without re-sending.
type ClaimStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClaimStore(client *redis.Client, ttl time.Duration) *ClaimStore {
	return &ClaimStore{client: client, ttl: ttl}
}

// Claim returns true when this caller won the claim for the alert.
func (s *ClaimStore) Claim(ctx context.Context, alertID uuid.UUID) (bool, error) {
	return s.client.SetNX(ctx, claimKey(alertID), time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
}

// Release drops the claim, allowing a deliberate re-fan-out. Used by tests
// and operational tooling, not by the normal pipeline.
func (s *ClaimStore) Release(ctx context.Context, alertID uuid.UUID) error {
	return s.client.Del(ctx, claimKey(alertID)).Err()
}

func claimKey(alertID uuid.UUID) string {
	return "fanout:claim:" + alertID.String()
}
