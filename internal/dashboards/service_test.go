package dashboards

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/relaycrm/relay/internal/audit"
	"github.com/relaycrm/relay/internal/authz"
	"github.com/relaycrm/relay/internal/shared"
)

type memoryStore struct {
	byID map[string]Dashboard
}

func newMemoryStore(items ...Dashboard) *memoryStore {
	s := &memoryStore{byID: make(map[string]Dashboard)}
	for _, d := range items {
		s.byID[d.ID] = d
	}
	return s
}

func (m *memoryStore) Create(_ context.Context, name, tenantID string) (Dashboard, error) {
	d := Dashboard{ID: uuid.NewString(), Name: name, TenantID: tenantID, CreatedAt: time.Now()}
	m.byID[d.ID] = d
	return d, nil
}

func (m *memoryStore) CountByTenant(_ context.Context, tenantID string) (int, error) {
	count := 0
	for _, d := range m.byID {
		if d.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

func (m *memoryStore) ListByTenant(_ context.Context, tenantID string) ([]Dashboard, error) {
	var out []Dashboard
	for _, d := range m.byID {
		if d.TenantID == tenantID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memoryStore) FindByID(_ context.Context, id string) (Dashboard, error) {
	d, ok := m.byID[id]
	if !ok {
		return Dashboard{}, shared.ErrNotFound
	}
	return d, nil
}

type memoryAudit struct {
	entries []audit.Entry
}

func (m *memoryAudit) Insert(_ context.Context, entry audit.Entry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memoryAudit) Recent(_ context.Context, limit int) ([]audit.Entry, error) {
	return m.entries, nil
}

func TestCreateRecordsAudit(t *testing.T) {
	store := newMemoryStore()
	trail := &memoryAudit{}
	svc := NewService(store, audit.NewService(trail, slog.New(slog.DiscardHandler)))
	actor := authz.Actor{ID: "a1", Email: "owner@acme.test", Role: authz.RoleAdmin, TenantID: "tenant_acme"}

	d, err := svc.Create(context.Background(), actor, "Sales")
	require.NoError(t, err)
	require.Equal(t, "tenant_acme", d.TenantID)
	require.Len(t, trail.entries, 1)
	require.Equal(t, audit.ActionCreateDashboard, trail.entries[0].Action)
	require.Equal(t, "Admin owner@acme.test created dashboard Sales", trail.entries[0].Message)
}

func TestVisibleAdminSeesWholeTenant(t *testing.T) {
	store := newMemoryStore(
		Dashboard{ID: "d1", TenantID: "tenant_acme"},
		Dashboard{ID: "d2", TenantID: "tenant_acme"},
		Dashboard{ID: "d9", TenantID: "tenant_other"},
	)
	svc := NewService(store, audit.NewService(&memoryAudit{}, slog.New(slog.DiscardHandler)))
	actor := authz.Actor{ID: "a1", Role: authz.RoleAdmin, TenantID: "tenant_acme"}

	visible, err := svc.Visible(context.Background(), actor)
	require.NoError(t, err)
	require.Len(t, visible, 2)
}

func TestVisibleStaffSeesAssignedOnly(t *testing.T) {
	store := newMemoryStore(
		Dashboard{ID: "d1", Name: "Sales", TenantID: "tenant_acme"},
		Dashboard{ID: "d2", Name: "Ops", TenantID: "tenant_acme"},
	)
	svc := NewService(store, audit.NewService(&memoryAudit{}, slog.New(slog.DiscardHandler)))
	actor := authz.Actor{ID: "u1", Role: authz.RoleStaff, TenantID: "tenant_acme", DashboardID: "d2"}

	visible, err := svc.Visible(context.Background(), actor)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	require.Equal(t, "Ops", visible[0].Name)
}

func TestVisibleUnassignedTeamMember(t *testing.T) {
	svc := NewService(newMemoryStore(), audit.NewService(&memoryAudit{}, slog.New(slog.DiscardHandler)))
	actor := authz.Actor{ID: "u1", Role: authz.RoleManager, TenantID: "tenant_acme"}

	_, err := svc.Visible(context.Background(), actor)
	var denial *authz.Denial
	require.ErrorAs(t, err, &denial)
	require.Equal(t, authz.ReasonNoDashboardAssigned, denial.Reason)
}
