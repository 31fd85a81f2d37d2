package auth

import "time"

// Account statuses. Only ACTIVE accounts may authenticate; transitions are
// admin-controlled.
const (
	StatusPending  = "PENDING"
	StatusActive   = "ACTIVE"
	StatusRejected = "REJECTED"
)

// User represents an account as seen by the authentication flows.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	GoogleID     *string   `json:"-"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GoogleProfile is the identity returned by the OAuth code exchange.
type GoogleProfile struct {
	ID    string
	Email string
	Name  string
}
