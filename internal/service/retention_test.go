package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePruner struct {
	mu     sync.Mutex
	before []time.Time
}

func (f *fakePruner) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.before = append(f.before, before)
	return 3, nil
}

func (f *fakePruner) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.before)
}

func TestRetention_CleanupUsesCutoff(t *testing.T) {
	pruner := &fakePruner{}
	svc := NewRetentionService(pruner, 30)
	now := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	deleted, err := svc.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	require.Len(t, pruner.before, 1)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), pruner.before[0])
}

func TestRetention_StartRunsImmediately(t *testing.T) {
	pruner := &fakePruner{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	NewRetentionService(pruner, 7).Start(ctx, time.Hour)

	assert.Eventually(t, func() bool { return pruner.calls() == 1 }, time.Second, 10*time.Millisecond)
}

func TestRetention_ZeroDaysDisabled(t *testing.T) {
	pruner := &fakePruner{}
	NewRetentionService(pruner, 0).Start(context.Background(), time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, pruner.calls())
}
