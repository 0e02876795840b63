package domain

import "time"

// SyncState is the persisted progress of the sync engine.
type SyncState struct {
	// LastSync is the completion time of the last run, zero if never run
	// or explicitly reset.
	LastSync time.Time `toml:"last_sync"`
}

// SyncReport summarises one sync run. Per-item failures are collected
// here rather than aborting the run; Created and Skipped count only the
// items that succeeded.
type SyncReport struct {
	// Success is true when the run completed with no per-item errors.
	Success bool

	// Created counts documents created or appended to.
	Created int

	// Skipped counts items detected as already synced.
	Skipped int

	// Errors holds one message per failed item, in fetch order.
	Errors []string
}

// AddError records a per-item failure.
func (r *SyncReport) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Success = false
}
