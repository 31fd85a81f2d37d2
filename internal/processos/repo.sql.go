package processos

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cbmgo/financeiro/internal/ledger"
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

const processoColumns = `id, numero, credor, numero_empenho, data_empenho, data_pagamento, valor, status, user_id, created_at, updated_at`

func scanProcesso(row pgx.Row) (*Processo, error) {
	var p Processo
	err := row.Scan(&p.ID, &p.Numero, &p.Credor, &p.NumeroEmpenho, &p.DataEmpenho, &p.DataPagamento, &p.Valor, &p.Status, &p.UserID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: processo", httpx.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts the processo and its DEBITO lancamento in one transaction.
func (r *PGRepository) Create(ctx context.Context, p Processo, historico string) (*Processo, error) {
	var created *Processo
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`INSERT INTO processos (numero, credor, numero_empenho, data_empenho, data_pagamento, valor, status, user_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
			 RETURNING `+processoColumns,
			p.Numero, p.Credor, p.NumeroEmpenho, p.DataEmpenho, p.DataPagamento, p.Valor, StatusPending, p.UserID,
		)
		var err error
		created, err = scanProcesso(row)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return fmt.Errorf("%w: numero already registered", httpx.ErrConflict)
			}
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO lancamentos (data, historico, valor, tipo, user_id, processo_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, now(), now())`,
			p.DataPagamento, historico, p.Valor, ledger.TipoDebito, p.UserID, created.ID,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get fetches one processo owned by the user.
func (r *PGRepository) Get(ctx context.Context, userID, id int64) (*Processo, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+processoColumns+` FROM processos WHERE id = $1 AND user_id = $2`, id, userID,
	)
	return scanProcesso(row)
}

// List returns one page of processos plus pagination metadata, both read
// from the same transaction.
func (r *PGRepository) List(ctx context.Context, userID int64, filter ListFilter) ([]Processo, shared.Pagination, error) {
	where := `WHERE user_id = $1`
	args := []any{userID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += ` AND status = $2`
	}
	var list []Processo
	var meta shared.Pagination
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var total int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM processos `+where, args...).Scan(&total); err != nil {
			return err
		}
		meta = shared.NewPagination(filter.Page, filter.PageSize, total)
		pageArgs := append(append([]any(nil), args...), meta.PageSize, meta.Offset())
		rows, err := tx.Query(ctx,
			fmt.Sprintf(`SELECT %s FROM processos %s ORDER BY data_pagamento DESC, id DESC LIMIT $%d OFFSET $%d`,
				processoColumns, where, len(args)+1, len(args)+2),
			pageArgs...,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var p Processo
			if err := rows.Scan(&p.ID, &p.Numero, &p.Credor, &p.NumeroEmpenho, &p.DataEmpenho, &p.DataPagamento, &p.Valor, &p.Status, &p.UserID, &p.CreatedAt, &p.UpdatedAt); err != nil {
				return err
			}
			list = append(list, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, meta, nil
}

// Update rewrites the processo and its linked lancamento in one
// transaction.
func (r *PGRepository) Update(ctx context.Context, userID, id int64, p Processo, historico string) (bool, error) {
	var updated bool
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE processos
			 SET numero = $3, credor = $4, numero_empenho = $5, data_empenho = $6, data_pagamento = $7, valor = $8, updated_at = now()
			 WHERE id = $1 AND user_id = $2`,
			id, userID, p.Numero, p.Credor, p.NumeroEmpenho, p.DataEmpenho, p.DataPagamento, p.Valor,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return fmt.Errorf("%w: numero already registered", httpx.ErrConflict)
			}
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		updated = true
		_, err = tx.Exec(ctx,
			`UPDATE lancamentos SET data = $2, historico = $3, valor = $4, updated_at = now()
			 WHERE processo_id = $1`,
			id, p.DataPagamento, historico, p.Valor,
		)
		return err
	})
	if err != nil {
		return false, err
	}
	return updated, nil
}

// Liquidar flips PENDING to SETTLED, guarded by the current status.
func (r *PGRepository) Liquidar(ctx context.Context, userID, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE processos SET status = $3, updated_at = now()
		 WHERE id = $1 AND user_id = $2 AND status = $4`,
		id, userID, StatusSettled, StatusPending,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes the processo and its lancamentos in one transaction.
func (r *PGRepository) Delete(ctx context.Context, userID, id int64) (bool, error) {
	var deleted bool
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM lancamentos WHERE processo_id = $1 AND user_id = $2`, id, userID,
		); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			`DELETE FROM processos WHERE id = $1 AND user_id = $2`, id, userID,
		)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

var _ Repository = (*PGRepository)(nil)
