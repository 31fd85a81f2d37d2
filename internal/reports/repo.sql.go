package reports

import (
	"context"
	"encoding/json"
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

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const reportColumns = `id, title, content, status, creator_id, created_at, updated_at`

func scanReport(row pgx.Row) (*Report, error) {
	var report Report
	err := row.Scan(&report.ID, &report.Title, &report.Content, &report.Status, &report.CreatorID, &report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: report", httpx.ErrNotFound)
		}
		return nil, err
	}
	return &report, nil
}

// Create inserts a new DRAFT report.
func (r *PGRepository) Create(ctx context.Context, creatorID int64, title string, content json.RawMessage) (*Report, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO reports (title, content, status, creator_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, now(), now())
		 RETURNING `+reportColumns,
		title, content, StatusDraft, creatorID,
	)
	return scanReport(row)
}

// Get fetches a report by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Report, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	return scanReport(row)
}

// List returns one page of reports, newest first.
func (r *PGRepository) List(ctx context.Context, page, pageSize int) ([]Report, shared.Pagination, error) {
	var list []Report
	var meta shared.Pagination
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var total int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM reports`).Scan(&total); err != nil {
			return err
		}
		meta = shared.NewPagination(page, pageSize, total)
		rows, err := tx.Query(ctx,
			`SELECT `+reportColumns+` FROM reports ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
			meta.PageSize, meta.Offset(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var report Report
			if err := rows.Scan(&report.ID, &report.Title, &report.Content, &report.Status, &report.CreatorID, &report.CreatedAt, &report.UpdatedAt); err != nil {
				return err
			}
			list = append(list, report)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, meta, nil
}

// UpdateDraft mutates title/content while the report is still a DRAFT.
func (r *PGRepository) UpdateDraft(ctx context.Context, id int64, title string, content json.RawMessage) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE reports SET title = $2, content = $3, updated_at = now()
		 WHERE id = $1 AND status = $4`,
		id, title, content, StatusDraft,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// FinalizeDraft moves DRAFT -> FINALIZED.
func (r *PGRepository) FinalizeDraft(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE reports SET status = $2, updated_at = now()
		 WHERE id = $1 AND status = $3`,
		id, StatusFinalized, StatusDraft,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// errDraftGuard aborts the delete transaction when the report is no longer
// a DRAFT.
var errDraftGuard = errors.New("reports: draft guard failed")

// DeleteDraft removes signatures and the report atomically while it is
// still a DRAFT.
func (r *PGRepository) DeleteDraft(ctx context.Context, id int64) (bool, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM report_signatures WHERE report_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM reports WHERE id = $1 AND status = $2`, id, StatusDraft)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errDraftGuard
		}
		return nil
	})
	if errors.Is(err, errDraftGuard) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Sign inserts the signature and advances FINALIZED -> SIGNED in one
// transaction. The unique index on (report_id, user_id) backs the
// application-level duplicate check.
func (r *PGRepository) Sign(ctx context.Context, reportID, userID int64) (*Signature, error) {
	var sig Signature
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO report_signatures (report_id, user_id, signed_at)
			 VALUES ($1, $2, now())
			 RETURNING id, signed_at`,
			reportID, userID,
		).Scan(&sig.ID, &sig.SignedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return fmt.Errorf("%w: report already signed by this user", httpx.ErrConflict)
			}
			return err
		}
		sig.ReportID = reportID
		sig.UserID = userID

		// First signature advances the status; later ones leave it alone.
		_, err = tx.Exec(ctx,
			`UPDATE reports SET status = $2, updated_at = now()
			 WHERE id = $1 AND status = $3`,
			reportID, StatusSigned, StatusFinalized,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := r.pool.QueryRow(ctx, `SELECT name FROM users WHERE id = $1`, userID).Scan(&sig.UserName); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return &sig, nil
}

// Signatures lists a report's signatures in ascending signing order.
func (r *PGRepository) Signatures(ctx context.Context, reportID int64) ([]Signature, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.report_id, s.user_id, COALESCE(u.name, ''), s.signed_at
		 FROM report_signatures s
		 LEFT JOIN users u ON u.id = s.user_id
		 WHERE s.report_id = $1
		 ORDER BY s.signed_at ASC, s.id ASC`,
		reportID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sigs []Signature
	for rows.Next() {
		var sig Signature
		if err := rows.Scan(&sig.ID, &sig.ReportID, &sig.UserID, &sig.UserName, &sig.SignedAt); err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}
	return sigs, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
