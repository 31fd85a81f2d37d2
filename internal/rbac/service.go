package rbac

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cbmgo/financeiro/internal/platform/db"
	"github.com/cbmgo/financeiro/internal/platform/httpx"
)

// Service orchestrates permission storage and lookup.
type Service struct {
	pool *pgxpool.Pool
}

// NewService constructs a Service backed by the provided pool.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// Seed upserts the permission catalog. Safe to run on every startup.
func (s *Service) Seed(ctx context.Context) error {
	for _, perm := range Catalog() {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO permissions (action, description)
			 VALUES ($1, $2)
			 ON CONFLICT (action) DO UPDATE SET description = EXCLUDED.description`,
			perm.Action, perm.Description,
		)
		if err != nil {
			return fmt.Errorf("rbac: seed %s: %w", perm.Action, err)
		}
	}
	return nil
}

// ListPermissions returns all permissions ordered by action.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, action, description FROM permissions ORDER BY action`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		var perm Permission
		if err := rows.Scan(&perm.ID, &perm.Action, &perm.Description); err != nil {
			return nil, err
		}
		perms = append(perms, perm)
	}
	return perms, rows.Err()
}

// PermissionsForUser returns the permission actions currently granted to a
// user. This is consulted once at token-issue time.
func (s *Service) PermissionsForUser(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT p.action
		 FROM user_permissions up
		 JOIN permissions p ON p.id = up.permission_id
		 WHERE up.user_id = $1
		 ORDER BY p.action`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var actions []string
	for rows.Next() {
		var action string
		if err := rows.Scan(&action); err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, rows.Err()
}

// SetUserPermissions replaces the user's grant set with exactly the given
// actions, atomically. Unknown actions fail the whole call.
func (s *Service) SetUserPermissions(ctx context.Context, userID int64, actions []string) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT id, action FROM permissions WHERE action = ANY($1)`, actions)
		if err != nil {
			return err
		}
		found := make(map[string]int64, len(actions))
		for rows.Next() {
			var id int64
			var action string
			if err := rows.Scan(&id, &action); err != nil {
				rows.Close()
				return err
			}
			found[action] = id
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		for _, action := range actions {
			if _, ok := found[action]; !ok {
				return fmt.Errorf("%w: unknown permission %q", httpx.ErrValidation, action)
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM user_permissions WHERE user_id = $1`, userID); err != nil {
			return err
		}
		for _, id := range found {
			if _, err := tx.Exec(ctx,
				`INSERT INTO user_permissions (user_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				userID, id,
			); err != nil {
				return err
			}
		}
		return nil
	})
}
