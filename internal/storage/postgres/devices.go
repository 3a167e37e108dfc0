package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"vigia/internal/domain"
	"vigia/pkg/e"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DeviceRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewDeviceRepo(pool *pgxpool.Pool, logger *slog.Logger) *DeviceRepo {
	return &DeviceRepo{pool: pool, logger: logger}
}

// Upsert writes the device keyed by device_id; re-registration overwrites
// tokens, location, tiles and opt-ins with the latest values.
func (r *DeviceRepo) Upsert(ctx context.Context, d *domain.Device) error {
	const op = "postgres.Device.Upsert"

	if d == nil || d.DeviceID == "" || d.UserID == "" {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = time.Now().UTC()
	}

	optIn, err := json.Marshal(d.OptIn)
	if err != nil {
		return e.Wrap(op, err)
	}

	const query = `
INSERT INTO devices (device_id, user_id, platform, fcm_token, expo_token, lat, lng, tiles, active, opt_in, cep, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (device_id) DO UPDATE SET
  user_id = EXCLUDED.user_id,
  platform = EXCLUDED.platform,
  fcm_token = EXCLUDED.fcm_token,
  expo_token = EXCLUDED.expo_token,
  lat = EXCLUDED.lat,
  lng = EXCLUDED.lng,
  tiles = EXCLUDED.tiles,
  active = EXCLUDED.active,
  opt_in = EXCLUDED.opt_in,
  cep = EXCLUDED.cep,
  updated_at = EXCLUDED.updated_at
`

	_, err = r.pool.Exec(ctx, query,
		d.DeviceID,
		d.UserID,
		d.Platform,
		d.FCMToken,
		d.ExpoToken,
		d.Lat,
		d.Lng,
		d.Tiles,
		d.Active,
		optIn,
		d.CEP,
		d.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	return nil
}

func (r *DeviceRepo) Get(ctx context.Context, deviceID string) (*domain.Device, error) {
	const op = "postgres.Device.Get"

	const query = `
SELECT device_id, user_id, platform, fcm_token, expo_token, lat, lng, tiles, active, opt_in, cep, updated_at
FROM devices
WHERE device_id = $1
`

	var d domain.Device
	var optIn []byte
	err := r.pool.QueryRow(ctx, query, deviceID).Scan(
		&d.DeviceID, &d.UserID, &d.Platform, &d.FCMToken, &d.ExpoToken,
		&d.Lat, &d.Lng, &d.Tiles, &d.Active, &optIn, &d.CEP, &d.UpdatedAt,
	)
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	if len(optIn) > 0 {
		if err := json.Unmarshal(optIn, &d.OptIn); err != nil {
			return nil, e.Wrap(op, err)
		}
	}
	return &d, nil
}

// FindByCEP selects active recipients registered with the given postal code
// that opted into the channel and carry at least one usable token.
func (r *DeviceRepo) FindByCEP(ctx context.Context, cep, channel string) ([]domain.Recipient, error) {
	const op = "postgres.Device.FindByCEP"

	if cep == "" {
		return nil, nil
	}

	const query = `
SELECT device_id, fcm_token, expo_token
FROM devices
WHERE active
  AND cep = $1
  AND COALESCE((opt_in ->> $2)::boolean, true)
  AND (fcm_token IS NOT NULL OR expo_token IS NOT NULL)
`

	return r.queryRecipients(ctx, op, query, cep, channel)
}

// FindByTiles selects active recipients whose tile set overlaps the given
// tiles. Same opt-in and token constraints as FindByCEP.
func (r *DeviceRepo) FindByTiles(ctx context.Context, tiles []string, channel string) ([]domain.Recipient, error) {
	const op = "postgres.Device.FindByTiles"

	if len(tiles) == 0 {
		return nil, nil
	}

	const query = `
SELECT device_id, fcm_token, expo_token
FROM devices
WHERE active
  AND tiles && $1
  AND COALESCE((opt_in ->> $2)::boolean, true)
  AND (fcm_token IS NOT NULL OR expo_token IS NOT NULL)
`

	return r.queryRecipients(ctx, op, query, tiles, channel)
}

func (r *DeviceRepo) queryRecipients(ctx context.Context, op, query string, args ...any) ([]domain.Recipient, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	recipients := make([]domain.Recipient, 0, 16)
	for rows.Next() {
		var rec domain.Recipient
		if err := rows.Scan(&rec.DeviceID, &rec.FCMToken, &rec.ExpoToken); err != nil {
			return nil, e.WrapError(ctx, op, err)
		}
		recipients = append(recipients, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return recipients, nil
}
