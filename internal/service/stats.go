package service

import (
	"context"
	"log/slog"

	"vigia/internal/domain"
)

type StatsRepository interface {
	Stats(ctx context.Context, minutes int) (*domain.DeliveryStats, error)
}

// StatsCache is a short-lived read-through cache in front of the aggregate
// query. Both sides are best-effort; a cache failure falls back to the repo.
type StatsCache interface {
	Get(ctx context.Context, minutes int) (*domain.DeliveryStats, error)
	Set(ctx context.Context, stats *domain.DeliveryStats) error
}

type statsService struct {
	repo   StatsRepository
	cache  StatsCache
	logger *slog.Logger
}

func NewStatsService(repo StatsRepository, cache StatsCache, logger *slog.Logger) StatsService {
	return &statsService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (s *statsService) GetStats(ctx context.Context, req domain.StatsRequest) (*domain.DeliveryStats, error) {
	minutes := req.Minutes
	if minutes == 0 {
		minutes = 60
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, minutes); err != nil {
			s.logger.Warn("stats cache read failed", slog.Any("error", err))
		} else if cached != nil {
			return cached, nil
		}
	}

	stats, err := s.repo.Stats(ctx, minutes)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, stats); err != nil {
			s.logger.Warn("stats cache write failed", slog.Any("error", err))
		}
	}

	return stats, nil
}
