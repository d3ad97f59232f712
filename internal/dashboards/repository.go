package dashboards

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/relaycrm/relay/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a dashboard and returns it with its id.
func (r *Repository) Create(ctx context.Context, name, tenantID string) (Dashboard, error) {
	d := Dashboard{ID: uuid.NewString(), Name: name, TenantID: tenantID, CreatedAt: time.Now().UTC()}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO dashboards (id, name, tenant_id, created_at) VALUES ($1, $2, $3, $4)`,
		d.ID, d.Name, d.TenantID, d.CreatedAt)
	if err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

// CountByTenant counts the tenant's dashboards for plan-limit checks.
func (r *Repository) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM dashboards WHERE tenant_id = $1`, tenantID).Scan(&count)
	return count, err
}

// ListByTenant returns all dashboards of a tenant.
func (r *Repository) ListByTenant(ctx context.Context, tenantID string) ([]Dashboard, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, tenant_id, created_at FROM dashboards WHERE tenant_id = $1 ORDER BY created_at`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Dashboard
	for rows.Next() {
		var d Dashboard
		if err := rows.Scan(&d.ID, &d.Name, &d.TenantID, &d.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// FindByID fetches one dashboard.
func (r *Repository) FindByID(ctx context.Context, id string) (Dashboard, error) {
	var d Dashboard
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, tenant_id, created_at FROM dashboards WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.TenantID, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Dashboard{}, shared.ErrNotFound
	}
	if err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

// FindInTenant fetches a dashboard only when it belongs to the tenant.
func (r *Repository) FindInTenant(ctx context.Context, id, tenantID string) (Dashboard, error) {
	d, err := r.FindByID(ctx, id)
	if err != nil {
		return Dashboard{}, err
	}
	if d.TenantID != tenantID {
		return Dashboard{}, shared.ErrNotFound
	}
	return d, nil
}
