package audit

import (
	"context"
	"log/slog"
)

// recentCap bounds the audit query surface.
const recentCap = 100

// Store is the persistence surface the service needs.
type Store interface {
	Insert(ctx context.Context, entry Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// Service records and retrieves audit entries. Recording is best-effort:
// a failed write never fails the action that produced it.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService constructs the audit service.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Record appends an entry, swallowing and logging any failure.
func (s *Service) Record(ctx context.Context, entry Entry) {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Insert(ctx, entry); err != nil {
		s.logger.Error("audit log write failed",
			slog.String("action", entry.Action),
			slog.String("target_type", entry.TargetType),
			slog.Any("error", err))
	}
}

// Recent returns the newest entries, capped at 100.
func (s *Service) Recent(ctx context.Context) ([]Entry, error) {
	return s.store.Recent(ctx, recentCap)
}
