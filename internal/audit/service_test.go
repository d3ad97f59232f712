package audit

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	entries   []Entry
	insertErr error
}

func (m *memoryStore) Insert(_ context.Context, entry Entry) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memoryStore) Recent(_ context.Context, limit int) ([]Entry, error) {
	if len(m.entries) > limit {
		return m.entries[:limit], nil
	}
	return m.entries, nil
}

func TestRecordAppends(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(store, slog.New(slog.DiscardHandler))

	svc.Record(context.Background(), Entry{Action: ActionCreateDashboard, Message: "Admin a created dashboard x"})
	require.Len(t, store.entries, 1)
	require.Equal(t, ActionCreateDashboard, store.entries[0].Action)
}

func TestRecordSwallowsWriteFailure(t *testing.T) {
	store := &memoryStore{insertErr: errors.New("disk full")}
	svc := NewService(store, slog.New(slog.DiscardHandler))

	// Must not panic or propagate; the caller's action already succeeded.
	svc.Record(context.Background(), Entry{Action: ActionBlockAdmin})
	require.Empty(t, store.entries)
}

func TestRecordNilServiceIsSafe(t *testing.T) {
	var svc *Service
	svc.Record(context.Background(), Entry{Action: ActionCreateStaff})
}

func TestRecentCappedAtHundred(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(store, slog.New(slog.DiscardHandler))
	for i := 0; i < 150; i++ {
		svc.Record(context.Background(), Entry{Action: ActionCreateDashboard})
	}

	entries, err := svc.Recent(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 100)
}
