package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cbmgo/financeiro/internal/platform/db"
	"github.com/cbmgo/financeiro/internal/platform/httpx"
	"github.com/cbmgo/financeiro/internal/shared"
)

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const lancamentoColumns = `id, data, historico, valor, tipo, user_id, processo_id, created_at, updated_at`

func scanLancamento(row pgx.Row) (*Lancamento, error) {
	var entry Lancamento
	err := row.Scan(&entry.ID, &entry.Data, &entry.Historico, &entry.Valor, &entry.Tipo, &entry.UserID, &entry.ProcessoID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: lancamento", httpx.ErrNotFound)
		}
		return nil, err
	}
	return &entry, nil
}

// CreateLancamento inserts one entry.
func (r *PGRepository) CreateLancamento(ctx context.Context, entry Lancamento) (*Lancamento, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO lancamentos (data, historico, valor, tipo, user_id, processo_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		 RETURNING `+lancamentoColumns,
		entry.Data, entry.Historico, entry.Valor, entry.Tipo, entry.UserID, entry.ProcessoID,
	)
	return scanLancamento(row)
}

// GetLancamento fetches one entry owned by the user.
func (r *PGRepository) GetLancamento(ctx context.Context, userID, id int64) (*Lancamento, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+lancamentoColumns+` FROM lancamentos WHERE id = $1 AND user_id = $2`, id, userID,
	)
	return scanLancamento(row)
}

func filterClauses(userID int64, filter ListFilter) (string, []any) {
	where := `WHERE user_id = $1`
	args := []any{userID}
	if filter.From != nil {
		args = append(args, *filter.From)
		where += ` AND data >= $` + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where += ` AND data <= $` + strconv.Itoa(len(args))
	}
	if filter.Tipo != "" {
		args = append(args, filter.Tipo)
		where += ` AND tipo = $` + strconv.Itoa(len(args))
	}
	return where, args
}

// ListLancamentos returns one page of entries plus pagination metadata,
// both read from the same transaction.
func (r *PGRepository) ListLancamentos(ctx context.Context, userID int64, filter ListFilter) ([]Lancamento, shared.Pagination, error) {
	where, args := filterClauses(userID, filter)
	var list []Lancamento
	var meta shared.Pagination
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var total int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM lancamentos `+where, args...).Scan(&total); err != nil {
			return err
		}
		meta = shared.NewPagination(filter.Page, filter.PageSize, total)
		pageArgs := append(append([]any(nil), args...), meta.PageSize, meta.Offset())
		rows, err := tx.Query(ctx,
			`SELECT `+lancamentoColumns+` FROM lancamentos `+where+
				` ORDER BY data DESC, id DESC LIMIT $`+strconv.Itoa(len(args)+1)+` OFFSET $`+strconv.Itoa(len(args)+2),
			pageArgs...,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var entry Lancamento
			if err := rows.Scan(&entry.ID, &entry.Data, &entry.Historico, &entry.Valor, &entry.Tipo, &entry.UserID, &entry.ProcessoID, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
				return err
			}
			list = append(list, entry)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, meta, nil
}

// AllLancamentos returns every entry in the window, oldest first, for
// exports.
func (r *PGRepository) AllLancamentos(ctx context.Context, userID int64, from, to *time.Time) ([]Lancamento, error) {
	where, args := filterClauses(userID, ListFilter{From: from, To: to})
	rows, err := r.pool.Query(ctx,
		`SELECT `+lancamentoColumns+` FROM lancamentos `+where+` ORDER BY data ASC, id ASC`, args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Lancamento
	for rows.Next() {
		var entry Lancamento
		if err := rows.Scan(&entry.ID, &entry.Data, &entry.Historico, &entry.Valor, &entry.Tipo, &entry.UserID, &entry.ProcessoID, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, entry)
	}
	return list, rows.Err()
}

// UpdateLancamento mutates an unlinked entry owned by the user.
func (r *PGRepository) UpdateLancamento(ctx context.Context, userID, id int64, data time.Time, historico string, valor float64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE lancamentos SET data = $3, historico = $4, valor = $5, updated_at = now()
		 WHERE id = $1 AND user_id = $2 AND processo_id IS NULL`,
		id, userID, data, historico, valor,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteLancamento removes an unlinked entry owned by the user.
func (r *PGRepository) DeleteLancamento(ctx context.Context, userID, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM lancamentos WHERE id = $1 AND user_id = $2 AND processo_id IS NULL`,
		id, userID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Totals returns the credit and debit sums for the user, zero when no rows
// exist.
func (r *PGRepository) Totals(ctx context.Context, userID int64) (float64, float64, error) {
	var credits, debits float64
	err := r.pool.QueryRow(ctx,
		`SELECT
			COALESCE(SUM(valor) FILTER (WHERE tipo = $2), 0),
			COALESCE(SUM(valor) FILTER (WHERE tipo = $3), 0)
		 FROM lancamentos WHERE user_id = $1`,
		userID, TipoCredito, TipoDebito,
	).Scan(&credits, &debits)
	if err != nil {
		return 0, 0, err
	}
	return credits, debits, nil
}

// TopDespesas sums DEBITO entries grouped by historico within the window.
func (r *PGRepository) TopDespesas(ctx context.Context, userID int64, from, to *time.Time, limit int) ([]ChartSlice, error) {
	where, args := filterClauses(userID, ListFilter{From: from, To: to, Tipo: TipoDebito})
	args = append(args, limit)
	rows, err := r.pool.Query(ctx,
		`SELECT historico, SUM(valor) AS total
		 FROM lancamentos `+where+`
		 GROUP BY historico
		 ORDER BY total DESC
		 LIMIT $`+strconv.Itoa(len(args)),
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var slices []ChartSlice
	for rows.Next() {
		var slice ChartSlice
		if err := rows.Scan(&slice.Historico, &slice.Total); err != nil {
			return nil, err
		}
		slices = append(slices, slice)
	}
	return slices, rows.Err()
}

// MonthlyTotals buckets entries by calendar month within the window.
func (r *PGRepository) MonthlyTotals(ctx context.Context, userID int64, from, to time.Time) ([]MonthlyRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT
			date_trunc('month', data) AS mes,
			COALESCE(SUM(valor) FILTER (WHERE tipo = $4), 0) AS receitas,
			COALESCE(SUM(valor) FILTER (WHERE tipo = $5), 0) AS despesas
		 FROM lancamentos
		 WHERE user_id = $1 AND data >= $2 AND data <= $3
		 GROUP BY mes
		 ORDER BY mes`,
		userID, from, to, TipoCredito, TipoDebito,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []MonthlyRow
	for rows.Next() {
		var row MonthlyRow
		if err := rows.Scan(&row.Month, &row.Receitas, &row.Despesas); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// EntryDateRange reports the user's earliest and latest entry dates.
func (r *PGRepository) EntryDateRange(ctx context.Context, userID int64) (time.Time, time.Time, bool, error) {
	var min, max *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT MIN(data), MAX(data) FROM lancamentos WHERE user_id = $1`, userID,
	).Scan(&min, &max)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if min == nil || max == nil {
		return time.Time{}, time.Time{}, false, nil
	}
	return *min, *max, true, nil
}

var _ Repository = (*PGRepository)(nil)
