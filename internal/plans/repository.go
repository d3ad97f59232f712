package plans

import (
	"context"
	"errors"

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

// ByID fetches a plan by id.
func (r *Repository) ByID(ctx context.Context, id string) (Plan, error) {
	return r.scanOne(ctx, `SELECT id, name, price, dashboards_allowed FROM plans WHERE id = $1`, id)
}

// ByName fetches a plan by its tier name.
func (r *Repository) ByName(ctx context.Context, name string) (Plan, error) {
	return r.scanOne(ctx, `SELECT id, name, price, dashboards_allowed FROM plans WHERE name = $1`, name)
}

// List returns all plans ordered by price.
func (r *Repository) List(ctx context.Context) ([]Plan, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, price, dashboards_allowed FROM plans ORDER BY price`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Plan
	for rows.Next() {
		var p Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.DashboardsAllowed); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *Repository) scanOne(ctx context.Context, query string, arg any) (Plan, error) {
	var p Plan
	err := r.pool.QueryRow(ctx, query, arg).Scan(&p.ID, &p.Name, &p.Price, &p.DashboardsAllowed)
	if errors.Is(err, pgx.ErrNoRows) {
		return Plan{}, shared.ErrNotFound
	}
	if err != nil {
		return Plan{}, err
	}
	return p, nil
}
