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

type AlertRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewAlertRepo(pool *pgxpool.Pool, logger *slog.Logger) *AlertRepo {
	return &AlertRepo{pool: pool, logger: logger}
}

func (r *AlertRepo) Create(ctx context.Context, a *domain.PublicAlert) error {
	const op = "postgres.Alert.Create"

	if a == nil {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	const query = `
INSERT INTO public_alerts
  (id, titulo, descricao, endereco, bairro, cidade, uf, cep, lat, lng, radius_m, gravidade, color, image, kind, ttl_seconds, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.Titulo, a.Descricao, a.Endereco, a.Bairro, a.Cidade, a.UF, a.CEP,
		a.Lat, a.Lng, a.RadiusM, a.Gravidade, a.Color, a.Image, a.Kind, a.TTLSeconds, a.CreatedAt,
	)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	return nil
}

func (r *AlertRepo) Get(ctx context.Context, id uuid.UUID) (*domain.PublicAlert, error) {
	const op = "postgres.Alert.Get"

	const query = `
SELECT id, titulo, descricao, endereco, bairro, cidade, uf, cep, lat, lng, radius_m, gravidade, color, image, kind, ttl_seconds, created_at
FROM public_alerts
WHERE id = $1
`

	var a domain.PublicAlert
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.Titulo, &a.Descricao, &a.Endereco, &a.Bairro, &a.Cidade, &a.UF, &a.CEP,
		&a.Lat, &a.Lng, &a.RadiusM, &a.Gravidade, &a.Color, &a.Image, &a.Kind, &a.TTLSeconds, &a.CreatedAt,
	)
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return &a, nil
}

func (r *AlertRepo) List(ctx context.Context, page, limit int) ([]domain.PublicAlert, int64, error) {
	const op = "postgres.Alert.List"

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM public_alerts`).Scan(&total); err != nil {
		return nil, 0, e.WrapError(ctx, op, err)
	}

	const query = `
SELECT id, titulo, descricao, endereco, bairro, cidade, uf, cep, lat, lng, radius_m, gravidade, color, image, kind, ttl_seconds, created_at
FROM public_alerts
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`

	rows, err := r.pool.Query(ctx, query, limit, (page-1)*limit)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, 0, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	alerts := make([]domain.PublicAlert, 0, limit)
	for rows.Next() {
		var a domain.PublicAlert
		if err := rows.Scan(
			&a.ID, &a.Titulo, &a.Descricao, &a.Endereco, &a.Bairro, &a.Cidade, &a.UF, &a.CEP,
			&a.Lat, &a.Lng, &a.RadiusM, &a.Gravidade, &a.Color, &a.Image, &a.Kind, &a.TTLSeconds, &a.CreatedAt,
		); err != nil {
			return nil, 0, e.WrapError(ctx, op, err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, e.WrapError(ctx, op, err)
	}

	return alerts, total, nil
}
