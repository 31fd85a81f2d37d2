package audit

import (
	"encoding/json"
	"time"
)

// Activity log actions written by the authentication flows.
const (
	ActionLoginSuccess       = "login:sucesso"
	ActionLoginFailure       = "login:falha"
	ActionOAuthLogin         = "oauth:sucesso"
	ActionOAuthAccountNew    = "oauth:conta_criada"
	ActionOAuthStatusBlocked = "oauth:bloqueado_status"
	ActionOAuthPermsBlocked  = "oauth:bloqueado_permissao"
	ActionOAuthEmailConflict = "oauth:conflito_email"
)

// LogEntry is one append-only activity record. Entries are never updated
// or deleted by the request path; only the retention job prunes them.
type LogEntry struct {
	ID        int64           `json:"id"`
	UserID    *int64          `json:"user_id,omitempty"`
	Action    string          `json:"action"`
	Details   json.RawMessage `json:"details,omitempty"`
	IP        *string         `json:"ip,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
