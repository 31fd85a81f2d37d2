package ledger

import (
	"context"
	"time"

	"github.com/cbmgo/financeiro/internal/shared"
)

// MonthlyRow is the raw per-month aggregate before zero-filling.
type MonthlyRow struct {
	Month    time.Time
	Receitas float64
	Despesas float64
}

// Repository defines persistence operations for ledger entries. Every query
// is scoped to the owning user.
type Repository interface {
	CreateLancamento(ctx context.Context, entry Lancamento) (*Lancamento, error)
	GetLancamento(ctx context.Context, userID, id int64) (*Lancamento, error)
	ListLancamentos(ctx context.Context, userID int64, filter ListFilter) ([]Lancamento, shared.Pagination, error)
	AllLancamentos(ctx context.Context, userID int64, from, to *time.Time) ([]Lancamento, error)

	// UpdateLancamento mutates an entry iff it is not linked to a processo.
	// Returns false when the guard did not match.
	UpdateLancamento(ctx context.Context, userID, id int64, data time.Time, historico string, valor float64) (bool, error)

	// DeleteLancamento removes an entry iff it is not linked to a processo.
	DeleteLancamento(ctx context.Context, userID, id int64) (bool, error)

	// Totals returns credit and debit sums, zero when no rows exist.
	Totals(ctx context.Context, userID int64) (credits, debits float64, err error)

	// TopDespesas groups DEBITO entries by historico within the optional
	// window, summed and sorted descending.
	TopDespesas(ctx context.Context, userID int64, from, to *time.Time, limit int) ([]ChartSlice, error)

	// MonthlyTotals buckets entries by calendar month within the window.
	// Months without entries are absent; the service zero-fills.
	MonthlyTotals(ctx context.Context, userID int64, from, to time.Time) ([]MonthlyRow, error)

	// EntryDateRange reports the user's earliest and latest entry dates.
	// ok is false when the user has no entries.
	EntryDateRange(ctx context.Context, userID int64) (min, max time.Time, ok bool, err error)
}
