package domain

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryLogEntry is one append-only record per fan-out attempt.
// Invariant: Delivered <= Selected.
type DeliveryLogEntry struct {
	ID         uuid.UUID `json:"id"`
	AlertID    uuid.UUID `json:"alertId"`
	Method     string    `json:"method"`
	Selected   int       `json:"selected"`
	Delivered  int       `json:"delivered"`
	RadiusM    float64   `json:"radiusM"`
	CEP        *string   `json:"cep"`
	City       *string   `json:"city"`
	Kind       string    `json:"kind"`
	TTLSeconds *int      `json:"ttlSeconds,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DeliveryStats aggregates delivery log entries over a trailing window.
type DeliveryStats struct {
	Fanouts   int64 `json:"fanouts"`
	Selected  int64 `json:"selected"`
	Delivered int64 `json:"delivered"`
	Minutes   int   `json:"minutes"`
}

type StatsRequest struct {
	Minutes int `query:"minutes" validate:"min=1,max=1440"`
}
