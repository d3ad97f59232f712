package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// TaskTypeIdempotencyCleanup prunes processed payment callback keys.
const TaskTypeIdempotencyCleanup = "payments:idempotency_cleanup"

// Keys outlive any plausible gateway retry window before being pruned.
const idempotencyRetention = 30 * 24 * time.Hour

// KeyPruner deletes idempotency keys older than the retention window.
type KeyPruner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

// NewIdempotencyCleanupTask constructs the cleanup task.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeIdempotencyCleanup, nil)
}

// NewIdempotencyCleanupHandler returns the handler pruning old keys.
func NewIdempotencyCleanupHandler(store KeyPruner, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		if err := store.Cleanup(ctx, idempotencyRetention); err != nil {
			logger.Error("idempotency cleanup", slog.Any("error", err))
			return err
		}
		logger.Info("idempotency keys pruned", slog.Duration("older_than", idempotencyRetention))
		return nil
	}
}
