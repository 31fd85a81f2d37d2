package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cbmgo/financeiro/internal/platform/db"
	"github.com/cbmgo/financeiro/internal/shared"
)

// Service reads the activity log for admin display.
type Service struct {
	pool *pgxpool.Pool
}

// NewService constructs an audit Service.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// List returns a page of activity entries, newest first. Count and page
// slice are read in the same transaction.
func (s *Service) List(ctx context.Context, page, pageSize int) ([]LogEntry, shared.Pagination, error) {
	var entries []LogEntry
	var meta shared.Pagination
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var total int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM activity_logs`).Scan(&total); err != nil {
			return err
		}
		meta = shared.NewPagination(page, pageSize, total)
		rows, err := tx.Query(ctx,
			`SELECT id, user_id, action, details, ip, created_at
			 FROM activity_logs
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1 OFFSET $2`,
			meta.PageSize, meta.Offset(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var entry LogEntry
			if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Action, &entry.Details, &entry.IP, &entry.CreatedAt); err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return entries, meta, nil
}

// DeleteOlderThan removes entries created before the cutoff and reports how
// many were pruned. Used by the retention job, never by the request path.
func (s *Service) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM activity_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
