package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerniceZTT/kpi_funnel/models"
)

func TestMemoryAuditStore(t *testing.T) {
	store := NewMemoryAuditStore(2)
	ctx := context.Background()

	for _, p := range []string{"/a", "/b", "/c"} {
		require.NoError(t, store.Save(ctx, &models.OperationLog{Method: "POST", Path: p}))
	}

	logs, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "/c", logs[0].Path)
	assert.Equal(t, "/b", logs[1].Path)

	logs, err = store.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestExecuteDbOperation(t *testing.T) {
	calls := 0
	_, err := ExecuteDbOperation(func() (interface{}, error) {
		calls++
		return nil, errors.New("duplicate key")
	}, 3)
	assert.Error(t, err)
	assert.Equal(t, 1, calls, "non-retryable errors return immediately")

	calls = 0
	res, err := ExecuteDbOperation(func() (interface{}, error) {
		calls++
		if calls < 2 {
			return nil, errors.New("connection reset by peer")
		}
		return "ok", nil
	}, 3)
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, 2, calls)
}

func TestPurgeExpiredLogs(t *testing.T) {
	store := NewMemoryAuditStore(10)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, store.Save(ctx, &models.OperationLog{Path: "/old", OperationTime: now.Add(-48 * time.Hour)}))
	require.NoError(t, store.Save(ctx, &models.OperationLog{Path: "/new", OperationTime: now}))

	PurgeExpiredLogs(ctx, store, 24*time.Hour)

	logs, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "/new", logs[0].Path)
}

func TestScheduleDailyTaskAt_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ran := make(chan struct{}, 1)
	ScheduleDailyTaskAt(ctx, 3, 0, 0, func(context.Context) { ran <- struct{}{} })
	cancel()

	select {
	case <-ran:
		t.Fatal("task should not run after cancel")
	case <-time.After(20 * time.Millisecond):
	}
}
