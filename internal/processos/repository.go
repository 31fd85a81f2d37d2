package processos

import (
	"context"

	"github.com/cbmgo/financeiro/internal/shared"
)

// Repository defines persistence operations for processos. The multi-entity
// mutations run the processo and its lancamento inside one transaction.
type Repository interface {
	// Create inserts the processo plus its DEBITO lancamento atomically.
	// A duplicate numero for the user yields httpx.ErrConflict.
	Create(ctx context.Context, p Processo, historico string) (*Processo, error)

	Get(ctx context.Context, userID, id int64) (*Processo, error)
	List(ctx context.Context, userID int64, filter ListFilter) ([]Processo, shared.Pagination, error)

	// Update rewrites the processo and its linked lancamento atomically.
	// Returns false when the processo does not exist for the user.
	Update(ctx context.Context, userID, id int64, p Processo, historico string) (bool, error)

	// Liquidar flips PENDING to SETTLED. Returns false when the row was
	// not PENDING or does not exist.
	Liquidar(ctx context.Context, userID, id int64) (bool, error)

	// Delete removes the processo and its lancamentos atomically.
	Delete(ctx context.Context, userID, id int64) (bool, error)
}
