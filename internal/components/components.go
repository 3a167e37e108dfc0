package components

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"vigia/internal/api"
	"vigia/internal/config"
	"vigia/internal/push"
	"vigia/internal/redis"
	"vigia/internal/service"
	"vigia/internal/storage/postgres"
	"vigia/internal/workers"
	"vigia/pkg/logger"
)

type Components struct {
	logger       *slog.Logger
	HttpServer   *api.Server
	FanoutWorker *workers.FanoutWorker
	Postgres     *postgres.Postgres
	Redis        *redis.Redis
	FanoutQ      *redis.FanoutQueue
	Claims       *redis.ClaimStore
}

func InitComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	logger.Info("Initializing Postgres")

	storage, err := postgres.NewPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to init postgres",
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to init postgres: %w", err)
	}

	logger.Info("Initializing Redis")
	redisClient, err := redis.NewRedis(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init redis: %w", err)
	}

	fanoutQueue := redis.NewFanoutQueue(redisClient.Client, cfg.Fanout.QueueKey)
	claims := redis.NewClaimStore(redisClient.Client, cfg.Fanout.ClaimTTL)
	statsCache := redis.NewStatsCache(redisClient, 30*time.Second)

	fcmClient := push.NewFCMClient(logger, cfg.FCM)
	expoClient := push.NewExpoClient(logger, cfg.Expo)

	registrySvc := service.NewRegistryService(storage.Devices(), fcmClient, logger)
	alertSvc := service.NewAlertService(storage.Alerts(), storage.DeliveryLogs(), fanoutQueue, logger)
	statsSvc := service.NewStatsService(storage.DeliveryLogs(), statsCache, logger)

	orchestrator := service.NewFanoutOrchestrator(
		storage.Alerts(),
		storage.Devices(),
		storage.DeliveryLogs(),
		claims,
		fcmClient,
		expoClient,
		logger,
		service.FanoutOptions{
			BatchSize:         cfg.Fanout.BatchSize,
			DefaultTTLSeconds: cfg.Fanout.DefaultTTLSeconds,
			DefaultRadiusM:    cfg.Fanout.DefaultRadiusM,
		},
	)

	srv := service.NewService(registrySvc, alertSvc, statsSvc)

	httpServer := api.NewServer(cfg, logger, srv)
	fanoutWorker := workers.NewFanoutWorker(logger, fanoutQueue, orchestrator)
	logger.Info("Initialized server")

	return &Components{
		logger:       logger,
		HttpServer:   httpServer,
		FanoutWorker: fanoutWorker,
		Postgres:     storage,
		Redis:        redisClient,
		FanoutQ:      fanoutQueue,
		Claims:       claims,
	}, nil
}

func SetupLogger(env string) *slog.Logger {
	switch env {
	case "local":
		return logger.SetupPrettySlog()
	case "dev":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	default:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}
}

func (c *Components) ShutdownAll() {
	start := time.Now()
	c.logger.Info("Shutting down components")

	c.Postgres.Pool.Close()
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Error("Redis close failed", slog.String("err", err.Error()))
		}
	}

	c.logger.Info("All components stopped",
		slog.Duration("latency", time.Since(start)))
}
