package cronjob

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type purgerFunc func(ctx context.Context, before time.Time) (int64, error)

func (f purgerFunc) PurgeDeleted(ctx context.Context, before time.Time) (int64, error) {
	return f(ctx, before)
}

func TestRunOnce(t *testing.T) {
	now := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)

	var got time.Time
	s := NewScheduler(purgerFunc(func(_ context.Context, before time.Time) (int64, error) {
		got = before
		return 3, nil
	}), "0 0 0 * * *", 30*24*time.Hour, nil)
	s.now = func() time.Time { return now }

	n, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestRunOnce_LogsFailure(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewScheduler(purgerFunc(func(context.Context, time.Time) (int64, error) {
		return 0, errors.New("db down")
	}), "0 0 0 * * *", time.Hour, zap.New(core))

	_, err := s.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("purge failed").Len())
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	s := NewScheduler(purgerFunc(func(context.Context, time.Time) (int64, error) { return 0, nil }), "every night", time.Hour, nil)
	assert.Error(t, s.Start())
}
