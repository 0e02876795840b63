package driven

import "github.com/readfold/readfold/internal/core/domain"

// StateStore persists user settings and sync progress.
type StateStore interface {
	// Settings returns the current settings with defaults applied.
	Settings() domain.Settings

	// SaveSettings persists settings.
	SaveSettings(s domain.Settings) error

	// SyncState returns the persisted sync progress.
	SyncState() domain.SyncState

	// SaveSyncState persists sync progress.
	SaveSyncState(st domain.SyncState) error
}
