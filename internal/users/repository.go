package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/relaycrm/relay/internal/shared"
)

const columns = `id, name, email, password_hash, role, tenant_id,
	COALESCE(subscription_id, ''), COALESCE(dashboard_id, ''), COALESCE(last_dashboard_id, ''),
	is_blocked, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a user. A duplicate email maps to shared.ErrEmailTaken.
func (r *Repository) Create(ctx context.Context, u User) (User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, tenant_id, subscription_id, dashboard_id, is_blocked, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10, $11)`,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.TenantID, u.SubscriptionID, u.DashboardID, u.IsBlocked, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, shared.ErrEmailTaken
		}
		return User{}, err
	}
	return u, nil
}

// FindByEmail fetches one user by email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM users WHERE email = $1`, email))
}

// FindByID fetches one user by id.
func (r *Repository) FindByID(ctx context.Context, id string) (User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM users WHERE id = $1`, id))
}

// Delete removes a user.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListTeam returns the tenant's managers and staff with their dashboard
// names.
func (r *Repository) ListTeam(ctx context.Context, tenantID string) ([]TeamMember, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.name, u.email, u.role, u.tenant_id, COALESCE(u.dashboard_id, ''), u.is_blocked, u.created_at, COALESCE(d.name, '')
		 FROM users u LEFT JOIN dashboards d ON d.id = u.dashboard_id
		 WHERE u.tenant_id = $1 AND u.role IN ('manager', 'staff')
		 ORDER BY u.created_at`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var team []TeamMember
	for rows.Next() {
		var m TeamMember
		var role string
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &role, &m.TenantID, &m.DashboardID, &m.IsBlocked, &m.CreatedAt, &m.DashboardName); err != nil {
			return nil, err
		}
		m.Role = authzRole(role)
		team = append(team, m)
	}
	return team, rows.Err()
}

// ListAll returns every user, for the superadmin surface.
func (r *Repository) ListAll(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []User
	for rows.Next() {
		u, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// SetBlocked updates the blocked flag.
func (r *Repository) SetBlocked(ctx context.Context, id string, blocked bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_blocked = $2, updated_at = NOW() WHERE id = $1`, id, blocked)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetLastDashboard records the last dashboard the user opened.
func (r *Repository) SetLastDashboard(ctx context.Context, id, dashboardID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET last_dashboard_id = $2, updated_at = NOW() WHERE id = $1`, id, dashboardID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *Repository) scanOne(row pgx.Row) (User, error) {
	u, err := scanUser(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, shared.ErrNotFound
	}
	return u, err
}

func (r *Repository) scanRow(rows pgx.Rows) (User, error) {
	return scanUser(rows.Scan)
}

func scanUser(scan func(...any) error) (User, error) {
	var u User
	var role string
	err := scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.TenantID,
		&u.SubscriptionID, &u.DashboardID, &u.LastDashboardID,
		&u.IsBlocked, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	u.Role = authzRole(role)
	return u, nil
}
