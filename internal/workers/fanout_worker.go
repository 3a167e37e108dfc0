package workers

import (
	"context"
	"errors"
	"time"

	"log/slog"

	"vigia/internal/domain"
	"vigia/internal/redis"
	"vigia/internal/service"
	"vigia/pkg/e"
)

// FanoutWorker consumes the alert queue and runs the orchestrator for each
// job. One worker goroutine is enough: the orchestrator already fans out
// concurrently within each batch.
type FanoutWorker struct {
	logger       *slog.Logger
	queue        *redis.FanoutQueue
	orchestrator *service.FanoutOrchestrator
	jobTimeout   time.Duration
}

func NewFanoutWorker(logger *slog.Logger, queue *redis.FanoutQueue, orchestrator *service.FanoutOrchestrator) *FanoutWorker {
	return &FanoutWorker{
		logger:       logger,
		queue:        queue,
		orchestrator: orchestrator,
		jobTimeout:   60 * time.Second,
	}
}

func (w *FanoutWorker) Run(ctx context.Context) {
	w.logger.Info("fanoutWorker STARTED")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("fanoutWorker STOPPED", slog.String("reason", ctx.Err().Error()))
			return
		default:
		}

		job, err := w.queue.BRPop(ctx, 5*time.Second)
		if err != nil {
			if errors.Is(err, e.ErrQueueEmpty) {
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			w.logger.Error("BRPop failed", slog.Any("error", err))
			time.Sleep(500 * time.Millisecond)
			continue
		}

		w.process(ctx, job)
	}
}

// process runs one job under a wall-clock budget. A job that exceeds the
// budget is cut off mid-dispatch; unfinished batches are simply not sent
// and the audit entry may under-report (never corrupt).
func (w *FanoutWorker) process(ctx context.Context, job domain.FanoutJob) {
	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	start := time.Now()
	err := w.orchestrator.Process(jobCtx, job.AlertID)
	switch {
	case err == nil:
		w.logger.Info("fanout processed",
			slog.String("alert_id", job.AlertID.String()),
			slog.Duration("latency", time.Since(start)),
		)
	case errors.Is(err, e.ErrAlreadyClaimed):
		// duplicate trigger, already logged by the orchestrator
	default:
		w.logger.Error("fanout failed",
			slog.String("alert_id", job.AlertID.String()),
			slog.Any("error", err),
		)
	}
}
