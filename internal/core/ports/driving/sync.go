package driving

import (
	"context"

	"github.com/readfold/readfold/internal/core/domain"
)

// Syncer drives the synchronisation engine.
type Syncer interface {
	// Sync runs one full synchronisation pass. A run already in progress
	// is reported via domain.ErrSyncInProgress in the report's errors;
	// the report is always non-nil.
	Sync(ctx context.Context) *domain.SyncReport

	// ResetCursor clears the persisted sync position so the next run
	// fetches from the beginning.
	ResetCursor() error

	// Syncing reports whether a run is currently active.
	Syncing() bool
}
