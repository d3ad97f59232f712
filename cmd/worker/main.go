package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/relaycrm/relay/internal/app"
	"github.com/relaycrm/relay/internal/mailer"
	"github.com/relaycrm/relay/internal/plans"
	"github.com/relaycrm/relay/internal/platform/cache"
	"github.com/relaycrm/relay/internal/platform/db"
	"github.com/relaycrm/relay/internal/shared"
	"github.com/relaycrm/relay/internal/subscriptions"
	"github.com/relaycrm/relay/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, plan cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	subRepo := subscriptions.NewRepository(pool)
	planRepo := plans.NewRepository(pool)
	planCatalog := plans.NewCatalog(planRepo, redisClient, cfg.PlanCacheTTL, logger)

	queue, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()

	sender := mailer.NewResendSender(cfg.ResendAPIKey, cfg.MailFrom)
	reminderJob := jobs.NewExpiryReminder(subRepo, planCatalog, queue, logger)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: jobs.NewSendEmailHandler(sender, logger)},
			{Type: jobs.TaskTypeExpiryReminder, Handler: reminderJob.Handle},
			{Type: jobs.TaskTypeIdempotencyCleanup, Handler: jobs.NewIdempotencyCleanupHandler(idempotencyStore, logger)},
		},
		Cron: []jobs.CronRegistration{
			{
				Spec: "0 9 * * *",
				Task: jobs.NewExpiryReminderTask(),
				Options: []asynq.Option{
					asynq.MaxRetry(3),
					asynq.Unique(23 * time.Hour),
				},
			},
			{
				Spec:    "30 3 * * 0",
				Task:    jobs.NewIdempotencyCleanupTask(),
				Options: []asynq.Option{asynq.MaxRetry(1)},
			},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
