package reports

import (
	"encoding/json"
	"time"
)

// Report lifecycle. DRAFT -> FINALIZED -> SIGNED is the only reachable
// path; SIGNED is entered implicitly by the first signature.
const (
	StatusDraft     = "DRAFT"
	StatusFinalized = "FINALIZED"
	StatusSigned    = "SIGNED"
)

// Report is an authored document. Title and content are mutable only while
// the report is a DRAFT.
type Report struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Content   json.RawMessage `json:"content"`
	Status    string          `json:"status"`
	CreatorID int64           `json:"creator_id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Signature is an immutable record of one user signing one report. At most
// one signature exists per (report, user) pair.
type Signature struct {
	ID       int64     `json:"id"`
	ReportID int64     `json:"report_id"`
	UserID   int64     `json:"user_id"`
	UserName string    `json:"user_name"`
	SignedAt time.Time `json:"signed_at"`
}
