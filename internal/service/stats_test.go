package service_test

import (
	"context"
	"errors"
	"testing"

	"vigia/internal/domain"
	"vigia/internal/service"
)

type fakeStatsRepo struct {
	stats *domain.DeliveryStats
	err   error
	calls int
}

func (f *fakeStatsRepo) Stats(_ context.Context, minutes int) (*domain.DeliveryStats, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := *f.stats
	out.Minutes = minutes
	return &out, nil
}

type fakeStatsCache struct {
	cached *domain.DeliveryStats
	getErr error
	setErr error
	stored *domain.DeliveryStats
}

func (f *fakeStatsCache) Get(_ context.Context, _ int) (*domain.DeliveryStats, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.cached, nil
}

func (f *fakeStatsCache) Set(_ context.Context, stats *domain.DeliveryStats) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.stored = stats
	return nil
}

func TestGetStats_CacheMiss_QueriesAndStores(t *testing.T) {
	t.Parallel()

	repo := &fakeStatsRepo{stats: &domain.DeliveryStats{Fanouts: 3, Selected: 100, Delivered: 90}}
	cache := &fakeStatsCache{}
	svc := service.NewStatsService(repo, cache, newTestLogger())

	got, err := svc.GetStats(context.Background(), domain.StatsRequest{Minutes: 30})
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if got.Delivered != 90 || got.Minutes != 30 {
		t.Fatalf("unexpected stats: %+v", got)
	}
	if repo.calls != 1 {
		t.Fatalf("expected one repo query, got %d", repo.calls)
	}
	if cache.stored == nil || cache.stored.Minutes != 30 {
		t.Fatalf("expected result cached, got %+v", cache.stored)
	}
}

func TestGetStats_CacheHit_SkipsRepo(t *testing.T) {
	t.Parallel()

	repo := &fakeStatsRepo{stats: &domain.DeliveryStats{}}
	cache := &fakeStatsCache{cached: &domain.DeliveryStats{Fanouts: 7, Minutes: 60}}
	svc := service.NewStatsService(repo, cache, newTestLogger())

	got, err := svc.GetStats(context.Background(), domain.StatsRequest{})
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if got.Fanouts != 7 {
		t.Fatalf("expected cached stats, got %+v", got)
	}
	if repo.calls != 0 {
		t.Fatalf("expected repo untouched on cache hit, got %d calls", repo.calls)
	}
}

func TestGetStats_CacheFailure_FallsBackToRepo(t *testing.T) {
	t.Parallel()

	repo := &fakeStatsRepo{stats: &domain.DeliveryStats{Fanouts: 1}}
	cache := &fakeStatsCache{getErr: errors.New("redis down"), setErr: errors.New("redis down")}
	svc := service.NewStatsService(repo, cache, newTestLogger())

	got, err := svc.GetStats(context.Background(), domain.StatsRequest{Minutes: 15})
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if got.Fanouts != 1 || got.Minutes != 15 {
		t.Fatalf("unexpected stats: %+v", got)
	}
}

func TestGetStats_DefaultWindow(t *testing.T) {
	t.Parallel()

	repo := &fakeStatsRepo{stats: &domain.DeliveryStats{}}
	svc := service.NewStatsService(repo, nil, newTestLogger())

	got, err := svc.GetStats(context.Background(), domain.StatsRequest{})
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if got.Minutes != 60 {
		t.Fatalf("expected default 60 minute window, got %d", got.Minutes)
	}
}
