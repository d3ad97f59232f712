package subscriptions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/relaycrm/relay/internal/platform/db"
	"github.com/relaycrm/relay/internal/shared"
)

const columns = `id, email, plan_id, start_date, end_date, active`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new subscription and returns it with its id. The new
// term supersedes any earlier active term for the same email, in one
// transaction so a concurrent gate check never sees two active records.
func (r *Repository) Create(ctx context.Context, sub Subscription) (Subscription, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if sub.Active {
			if _, err := tx.Exec(ctx,
				`UPDATE subscriptions SET active = FALSE WHERE email = $1 AND active`, sub.Email); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO subscriptions (id, email, plan_id, start_date, end_date, active) VALUES ($1, $2, $3, $4, $5, $6)`,
			sub.ID, sub.Email, sub.PlanID, sub.StartDate, sub.EndDate, sub.Active)
		return err
	})
	if err != nil {
		return Subscription{}, err
	}
	return sub, nil
}

// FindByID fetches one subscription.
func (r *Repository) FindByID(ctx context.Context, id string) (Subscription, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM subscriptions WHERE id = $1`, id))
}

// FindByEmail returns the most recent subscription for the billing email,
// regardless of its active flag. The gate distinguishes missing, inactive
// and expired records itself.
func (r *Repository) FindByEmail(ctx context.Context, email string) (Subscription, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT `+columns+` FROM subscriptions WHERE email = $1 ORDER BY end_date DESC LIMIT 1`, email))
}

// FindActiveByEmail returns the active subscription for the email.
func (r *Repository) FindActiveByEmail(ctx context.Context, email string) (Subscription, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT `+columns+` FROM subscriptions WHERE email = $1 AND active ORDER BY end_date DESC LIMIT 1`, email))
}

// SetActive updates the active flag. The write is idempotent: concurrent
// expiry flips converge on the same value.
func (r *Repository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE subscriptions SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetTerm updates the end date and active flag together.
func (r *Repository) SetTerm(ctx context.Context, id string, endDate time.Time, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE subscriptions SET end_date = $2, active = $3 WHERE id = $1`, id, endDate, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListActive returns all active subscriptions, used by the reminder sweep.
func (r *Repository) ListActive(ctx context.Context) ([]Subscription, error) {
	return r.list(ctx, `SELECT `+columns+` FROM subscriptions WHERE active ORDER BY end_date`)
}

// ListAll returns every subscription.
func (r *Repository) ListAll(ctx context.Context) ([]Subscription, error) {
	return r.list(ctx, `SELECT `+columns+` FROM subscriptions ORDER BY start_date DESC`)
}

func (r *Repository) list(ctx context.Context, query string) ([]Subscription, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var subs []Subscription
	for rows.Next() {
		var s Subscription
		if err := rows.Scan(&s.ID, &s.Email, &s.PlanID, &s.StartDate, &s.EndDate, &s.Active); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *Repository) scanOne(row pgx.Row) (Subscription, error) {
	var s Subscription
	err := row.Scan(&s.ID, &s.Email, &s.PlanID, &s.StartDate, &s.EndDate, &s.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return Subscription{}, shared.ErrNotFound
	}
	if err != nil {
		return Subscription{}, err
	}
	return s, nil
}
