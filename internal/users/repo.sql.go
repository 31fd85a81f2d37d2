package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cbmgo/financeiro/internal/platform/db"
	"github.com/cbmgo/financeiro/internal/platform/httpx"
	"github.com/cbmgo/financeiro/internal/shared"
)

const uniqueViolation = "23505"

// Repository provides PostgreSQL backed persistence for user management.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new credential account.
func (r *Repository) Create(ctx context.Context, name, email, passwordHash, status string) (*User, error) {
	var user User
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, now(), now())
		 RETURNING id, name, email, status, created_at, updated_at`,
		name, email, passwordHash, status,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Status, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: email already registered", httpx.ErrConflict)
		}
		return nil, err
	}
	return &user, nil
}

// Get fetches a user by id.
func (r *Repository) Get(ctx context.Context, id int64) (*User, error) {
	var user User
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, status, created_at, updated_at FROM users WHERE id = $1`, id,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Status, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user", httpx.ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// List returns one page of users plus pagination metadata, both read from
// the same transaction.
func (r *Repository) List(ctx context.Context, page, pageSize int) ([]User, shared.Pagination, error) {
	var list []User
	var meta shared.Pagination
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var total int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
			return err
		}
		meta = shared.NewPagination(page, pageSize, total)
		rows, err := tx.Query(ctx,
			`SELECT id, name, email, status, created_at, updated_at
			 FROM users ORDER BY id LIMIT $1 OFFSET $2`,
			meta.PageSize, meta.Offset(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var user User
			if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Status, &user.CreatedAt, &user.UpdatedAt); err != nil {
				return err
			}
			list = append(list, user)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, meta, nil
}

// UpdateStatus sets the account status. Returns ErrNotFound when the user
// does not exist.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET status = $2, updated_at = now() WHERE id = $1`, id, status,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user", httpx.ErrNotFound)
	}
	return nil
}
