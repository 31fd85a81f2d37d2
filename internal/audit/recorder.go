package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Recorder appends entries to activity_logs.
type Recorder struct {
	pool *pgxpool.Pool
}

// NewRecorder returns a new Recorder.
func NewRecorder(pool *pgxpool.Pool) *Recorder {
	return &Recorder{pool: pool}
}

// Record persists one activity entry.
func (r *Recorder) Record(ctx context.Context, userID *int64, action, ip string, details map[string]any) error {
	if r == nil || r.pool == nil {
		return errors.New("audit: recorder not initialised")
	}
	var detailsJSON []byte
	if len(details) > 0 {
		data, err := json.Marshal(details)
		if err != nil {
			return err
		}
		detailsJSON = data
	}
	var ipValue *string
	if ip != "" {
		ipValue = &ip
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO activity_logs (user_id, action, details, ip, created_at) VALUES ($1, $2, $3, $4, $5)`,
		userID, action, detailsJSON, ipValue, time.Now().UTC(),
	)
	return err
}
