package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAuditPrune removes activity log rows past the retention window.
	TaskTypeAuditPrune = "audit:prune"
)

// AuditPrunePayload configures one retention sweep.
type AuditPrunePayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewAuditPruneTask constructs an Asynq task.
func NewAuditPruneTask(payload AuditPrunePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAuditPrune, data), nil
}

// AuditPruner deletes activity log rows older than the cutoff.
type AuditPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// HandleAuditPruneTask builds the handler for TaskTypeAuditPrune tasks.
func HandleAuditPruneTask(pruner AuditPruner, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload AuditPrunePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.RetentionDays <= 0 {
			return asynq.SkipRetry
		}
		cutoff := time.Now().AddDate(0, 0, -payload.RetentionDays)
		removed, err := pruner.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			return err
		}
		logger.Info("audit prune",
			slog.Int64("removed", removed),
			slog.Time("cutoff", cutoff),
		)
		return nil
	}
}
