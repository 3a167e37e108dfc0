package service

import (
	"context"

	"vigia/internal/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go

// DeviceRegistryService owns device upserts and tile-topic membership.
type DeviceRegistryService interface {
	Register(ctx context.Context, req domain.RegisterDeviceRequest) (domain.RegisterDeviceResponse, error)
}

// AlertService is the intake side: persist an alert and enqueue its fan-out.
type AlertService interface {
	Create(ctx context.Context, req domain.CreateAlertRequest) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.PublicAlert, error)
	List(ctx context.Context, page, limit int) ([]domain.PublicAlert, int64, error)
	Deliveries(ctx context.Context, id uuid.UUID) ([]domain.DeliveryLogEntry, error)
}

// StatsService aggregates the delivery log for the admin surface.
type StatsService interface {
	GetStats(ctx context.Context, req domain.StatsRequest) (*domain.DeliveryStats, error)
}

type Service struct {
	Registry DeviceRegistryService
	Alerts   AlertService
	Stats    StatsService
}

func NewService(registry DeviceRegistryService, alerts AlertService, stats StatsService) *Service {
	return &Service{
		Registry: registry,
		Alerts:   alerts,
		Stats:    stats,
	}
}
