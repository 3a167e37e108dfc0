package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vigia/internal/domain"
	"vigia/pkg/e"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DeliveryLogRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewDeliveryLogRepo(pool *pgxpool.Pool, logger *slog.Logger) *DeliveryLogRepo {
	return &DeliveryLogRepo{pool: pool, logger: logger}
}

// Insert appends one fan-out audit entry. Entries are never updated.
func (r *DeliveryLogRepo) Insert(ctx context.Context, entry *domain.DeliveryLogEntry) error {
	const op = "postgres.DeliveryLog.Insert"

	if entry == nil || entry.AlertID == uuid.Nil {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}
	if entry.Delivered > entry.Selected {
		return fmt.Errorf("%s: delivered %d > selected %d: %w", op, entry.Delivered, entry.Selected, e.ErrInvalidInput)
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	const query = `
INSERT INTO delivery_logs (id, alert_id, method, selected, delivered, radius_m, cep, city, kind, ttl_seconds, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.AlertID, entry.Method, entry.Selected, entry.Delivered,
		entry.RadiusM, entry.CEP, entry.City, entry.Kind, entry.TTLSeconds, entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	return nil
}

func (r *DeliveryLogRepo) ListByAlert(ctx context.Context, alertID uuid.UUID) ([]domain.DeliveryLogEntry, error) {
	const op = "postgres.DeliveryLog.ListByAlert"

	const query = `
SELECT id, alert_id, method, selected, delivered, radius_m, cep, city, kind, ttl_seconds, created_at
FROM delivery_logs
WHERE alert_id = $1
ORDER BY created_at
`

	rows, err := r.pool.Query(ctx, query, alertID)
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	entries := make([]domain.DeliveryLogEntry, 0, 4)
	for rows.Next() {
		var en domain.DeliveryLogEntry
		if err := rows.Scan(
			&en.ID, &en.AlertID, &en.Method, &en.Selected, &en.Delivered,
			&en.RadiusM, &en.CEP, &en.City, &en.Kind, &en.TTLSeconds, &en.CreatedAt,
		); err != nil {
			return nil, e.WrapError(ctx, op, err)
		}
		entries = append(entries, en)
	}
	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return entries, nil
}

func (r *DeliveryLogRepo) Stats(ctx context.Context, minutes int) (*domain.DeliveryStats, error) {
	const op = "postgres.DeliveryLog.Stats"

	const query = `
SELECT count(*), COALESCE(sum(selected), 0), COALESCE(sum(delivered), 0)
FROM delivery_logs
WHERE created_at > now() - make_interval(mins => $1)
`

	stats := &domain.DeliveryStats{Minutes: minutes}
	err := r.pool.QueryRow(ctx, query, minutes).Scan(&stats.Fanouts, &stats.Selected, &stats.Delivered)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	return stats, nil
}
