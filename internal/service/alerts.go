package service

import (
	"context"
	"log/slog"
	"time"

	"vigia/internal/domain"
	"vigia/pkg/e"
	"vigia/pkg/validator"

	"github.com/google/uuid"
)

type AlertRepository interface {
	Create(ctx context.Context, a *domain.PublicAlert) error
	Get(ctx context.Context, id uuid.UUID) (*domain.PublicAlert, error)
	List(ctx context.Context, page, limit int) ([]domain.PublicAlert, int64, error)
}

type DeliveryReader interface {
	ListByAlert(ctx context.Context, alertID uuid.UUID) ([]domain.DeliveryLogEntry, error)
}

// FanoutEnqueuer hands a created alert to the fan-out worker.
type FanoutEnqueuer interface {
	Enqueue(ctx context.Context, job domain.FanoutJob) error
}

type alertService struct {
	repo       AlertRepository
	deliveries DeliveryReader
	queue      FanoutEnqueuer
	logger     *slog.Logger
}

func NewAlertService(repo AlertRepository, deliveries DeliveryReader, queue FanoutEnqueuer, logger *slog.Logger) AlertService {
	return &alertService{
		repo:       repo,
		deliveries: deliveries,
		queue:      queue,
		logger:     logger,
	}
}

// Create persists the alert and enqueues its fan-out job. An enqueue
// failure does not fail the creation; the alert stays visible and a
// re-trigger can pick it up later.
func (s *alertService) Create(ctx context.Context, req domain.CreateAlertRequest) (uuid.UUID, error) {
	if err := validator.ValidateStruct(&req); err != nil {
		return uuid.Nil, e.Wrap("alert.Create", e.ErrInvalidInput)
	}

	alert := &domain.PublicAlert{
		ID:         uuid.New(),
		Titulo:     req.Titulo,
		Descricao:  req.Descricao,
		Endereco:   req.Endereco,
		Bairro:     req.Bairro,
		Cidade:     req.Cidade,
		UF:         req.UF,
		CEP:        req.CEP,
		Lat:        req.Lat,
		Lng:        req.Lng,
		RadiusM:    req.RadiusM,
		Gravidade:  domain.Severity(req.Gravidade),
		Color:      req.Color,
		Image:      req.Image,
		Kind:       domain.AlertKind(req.Kind),
		TTLSeconds: req.TTLSeconds,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, alert); err != nil {
		return uuid.Nil, err
	}

	job := domain.FanoutJob{AlertID: alert.ID, EnqueuedAt: alert.CreatedAt.Unix()}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.logger.Error("fanout enqueue failed",
			slog.String("alert_id", alert.ID.String()),
			slog.Any("error", err),
		)
	} else {
		s.logger.Info("fanout enqueued", slog.String("alert_id", alert.ID.String()))
	}

	return alert.ID, nil
}

func (s *alertService) Get(ctx context.Context, id uuid.UUID) (*domain.PublicAlert, error) {
	return s.repo.Get(ctx, id)
}

func (s *alertService) List(ctx context.Context, page, limit int) ([]domain.PublicAlert, int64, error) {
	return s.repo.List(ctx, page, limit)
}

func (s *alertService) Deliveries(ctx context.Context, id uuid.UUID) ([]domain.DeliveryLogEntry, error) {
	return s.deliveries.ListByAlert(ctx, id)
}
