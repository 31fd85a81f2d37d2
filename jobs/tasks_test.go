package jobs

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePruner struct {
	cutoff  time.Time
	removed int64
	calls   int
}

func (f *fakePruner) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	return f.removed, nil
}

func TestHandleAuditPruneTask(t *testing.T) {
	pruner := &fakePruner{removed: 42}
	handler := HandleAuditPruneTask(pruner, slog.Default())

	task, err := NewAuditPruneTask(AuditPrunePayload{RetentionDays: 30})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	assert.Equal(t, 1, pruner.calls)

	expected := time.Now().AddDate(0, 0, -30)
	assert.WithinDuration(t, expected, pruner.cutoff, time.Minute)
}

func TestHandleAuditPruneTaskSkipsBadPayload(t *testing.T) {
	pruner := &fakePruner{}
	handler := HandleAuditPruneTask(pruner, slog.Default())

	err := handler(context.Background(), asynq.NewTask(TaskTypeAuditPrune, []byte("not-json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Zero(t, pruner.calls)
}

func TestHandleAuditPruneTaskSkipsNonPositiveRetention(t *testing.T) {
	pruner := &fakePruner{}
	handler := HandleAuditPruneTask(pruner, slog.Default())

	task, err := NewAuditPruneTask(AuditPrunePayload{RetentionDays: 0})
	require.NoError(t, err)

	assert.ErrorIs(t, handler(context.Background(), task), asynq.SkipRetry)
	assert.Zero(t, pruner.calls)
}
