package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/courseboard/courseboard/internal/app"
	"github.com/courseboard/courseboard/internal/enrollment"
	"github.com/courseboard/courseboard/internal/observability"
	"github.com/courseboard/courseboard/internal/platform/db"
	"github.com/courseboard/courseboard/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := observability.NewMetrics()
	ledger := enrollment.NewRepository(pool)

	integrityJob := jobs.NewRosterIntegrityJob(ledger, metrics, logger)
	sweepJob := jobs.NewSessionsSweepJob(pool, logger)

	integrityTask, err := jobs.NewRosterIntegrityTask(jobs.RosterIntegrityPayload{})
	if err != nil {
		logger.Error("build integrity task", slog.Any("error", err))
		os.Exit(1)
	}
	sweepTask, err := jobs.NewSessionsSweepTask(jobs.SessionsSweepPayload{Retention: 24 * time.Hour})
	if err != nil {
		logger.Error("build sweep task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskRosterIntegrity, Handler: integrityJob.Handle},
			{Type: jobs.TaskSessionsSweep, Handler: sweepJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 * * * *", Task: integrityTask, Options: []asynq.Option{asynq.Queue(jobs.QueueDefault)}},
			{Spec: "30 3 * * *", Task: sweepTask, Options: []asynq.Option{asynq.Queue(jobs.QueueDefault)}},
		},
	})
	if err != nil {
		logger.Error("configure worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker shut down")
}
