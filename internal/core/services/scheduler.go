package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/readfold/readfold/internal/core/ports/driving"
	"github.com/readfold/readfold/internal/logger"
)

// Scheduler runs sync passes on a fixed interval. It is a pure core
// service with no external control API: Start blocks until the context
// is cancelled or Stop is called.
type Scheduler struct {
	syncer driving.Syncer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewScheduler creates a scheduler driving the given syncer.
func NewScheduler(syncer driving.Syncer) *Scheduler {
	return &Scheduler{syncer: syncer}
}

// Start runs one sync immediately and then one per interval. Returns
// nil when stopped, the context error when cancelled. Calling Start on
// a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("invalid sync interval %v", interval)
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	logger.Info("Scheduler started, syncing every %v", interval)
	s.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// Stop ends the scheduler loop. Safe to call when not running.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
}

// Running reports whether the scheduler loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// runOnce performs one scheduled sync pass. Failures are logged, never
// escalated: the next tick tries again.
func (s *Scheduler) runOnce(ctx context.Context) {
	report := s.syncer.Sync(ctx)
	for _, msg := range report.Errors {
		logger.Warn("Scheduled sync: %s", msg)
	}
}
