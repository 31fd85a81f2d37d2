package reports

import (
	"context"
	"encoding/json"

	"github.com/cbmgo/financeiro/internal/shared"
)

// Repository defines persistence operations for the report workflow. Status
// transitions use conditional updates guarded on the expected prior status,
// so two racing callers cannot both win.
type Repository interface {
	Create(ctx context.Context, creatorID int64, title string, content json.RawMessage) (*Report, error)
	Get(ctx context.Context, id int64) (*Report, error)
	List(ctx context.Context, page, pageSize int) ([]Report, shared.Pagination, error)

	// UpdateDraft mutates title/content iff the report is still a DRAFT.
	// Returns false when the guard did not match.
	UpdateDraft(ctx context.Context, id int64, title string, content json.RawMessage) (bool, error)

	// FinalizeDraft moves DRAFT -> FINALIZED. Returns false when the guard
	// did not match.
	FinalizeDraft(ctx context.Context, id int64) (bool, error)

	// DeleteDraft removes the report and its signatures in one transaction,
	// iff the report is still a DRAFT.
	DeleteDraft(ctx context.Context, id int64) (bool, error)

	// Sign inserts a signature and, when the prior status was FINALIZED,
	// advances it to SIGNED, all in one transaction. A duplicate
	// (report, user) pair yields ErrConflict.
	Sign(ctx context.Context, reportID, userID int64) (*Signature, error)

	// Signatures lists a report's signatures in ascending signing order.
	Signatures(ctx context.Context, reportID int64) ([]Signature, error)
}
