package postgres

import (
	"context"

	"vigia/internal/domain"

	"github.com/google/uuid"
)

type DeviceRepository interface {
	Upsert(ctx context.Context, d *domain.Device) error
	Get(ctx context.Context, deviceID string) (*domain.Device, error)
	FindByCEP(ctx context.Context, cep, channel string) ([]domain.Recipient, error)
	FindByTiles(ctx context.Context, tiles []string, channel string) ([]domain.Recipient, error)
}

type AlertRepository interface {
	Create(ctx context.Context, a *domain.PublicAlert) error
	Get(ctx context.Context, id uuid.UUID) (*domain.PublicAlert, error)
	List(ctx context.Context, page, limit int) ([]domain.PublicAlert, int64, error)
}

type DeliveryLogRepository interface {
	Insert(ctx context.Context, entry *domain.DeliveryLogEntry) error
	ListByAlert(ctx context.Context, alertID uuid.UUID) ([]domain.DeliveryLogEntry, error)
	Stats(ctx context.Context, minutes int) (*domain.DeliveryStats, error)
}

func (p *Postgres) Devices() DeviceRepository { return p.Device }

func (p *Postgres) Alerts() AlertRepository { return p.Alert }

func (p *Postgres) DeliveryLogs() DeliveryLogRepository { return p.DeliveryLog }
