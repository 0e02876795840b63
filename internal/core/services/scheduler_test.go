package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readfold/readfold/internal/core/domain"
)

// countingSyncer records Sync invocations.
type countingSyncer struct {
	calls atomic.Int64
}

func (c *countingSyncer) Sync(context.Context) *domain.SyncReport {
	c.calls.Add(1)
	return &domain.SyncReport{Success: true}
}

func (c *countingSyncer) ResetCursor() error { return nil }
func (c *countingSyncer) Syncing() bool      { return false }

func TestScheduler_InvalidInterval(t *testing.T) {
	s := NewScheduler(&countingSyncer{})
	assert.Error(t, s.Start(context.Background(), 0))
	assert.Error(t, s.Start(context.Background(), -time.Minute))
}

func TestScheduler_RunsImmediatelyAndOnTicks(t *testing.T) {
	syncer := &countingSyncer{}
	s := NewScheduler(syncer)

	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background(), 5*time.Millisecond) }()

	require.Eventually(t, func() bool {
		return syncer.calls.Load() >= 3
	}, time.Second, time.Millisecond)

	s.Stop()
	assert.NoError(t, <-done)
	assert.False(t, s.Running())
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(&countingSyncer{})

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx, time.Hour) }()

	require.Eventually(t, s.Running, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestScheduler_StopWhenNotRunning(t *testing.T) {
	s := NewScheduler(&countingSyncer{})
	s.Stop() // must not panic
	assert.False(t, s.Running())
}
