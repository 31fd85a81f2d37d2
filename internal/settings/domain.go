package settings

import "time"

// Settings is the per-user company profile stamped onto exports. A user
// has at most one row; reads before the first write return empty defaults.
type Settings struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Empresa   string    `json:"empresa"`
	CNPJ      string    `json:"cnpj"`
	Endereco  string    `json:"endereco"`
	LogoPath  string    `json:"logo_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
