package domain

import "time"

// Cursor is the persisted incremental sync position: the completion time
// of the last successful run plus a user-configurable lookback offset.
// It is monotonically non-decreasing except when explicitly reset.
type Cursor struct {
	// LastSync is the completion time of the last run. Zero means no
	// run has completed yet and the next fetch is unbounded.
	LastSync time.Time

	// LookbackHours widens the next fetch window backwards so that a run
	// started shortly after a partial failure still covers the items the
	// failed run may have skipped. Re-delivered items are deduplicated
	// downstream, so a generous lookback is cheap.
	LookbackHours int
}

// Window returns the lower bound for the next fetch, or the zero time
// when no previous sync is recorded.
func (c Cursor) Window() time.Time {
	if c.LastSync.IsZero() {
		return time.Time{}
	}
	return c.LastSync.Add(-time.Duration(c.LookbackHours) * time.Hour)
}

// Advance returns the cursor stamped with a new completion time.
// Stamping backwards is refused so that a clock hiccup cannot shrink
// the synced range.
func (c Cursor) Advance(completedAt time.Time) Cursor {
	if completedAt.Before(c.LastSync) {
		return c
	}
	c.LastSync = completedAt
	return c
}

// Reset returns the cursor with its position cleared. The next run
// fetches from the beginning.
func (c Cursor) Reset() Cursor {
	c.LastSync = time.Time{}
	return c
}

// FilterTimestamp renders the fetch lower bound in the source's filter
// format: RFC3339 without fractional seconds. Returns "" when the
// window is unbounded.
func (c Cursor) FilterTimestamp() string {
	w := c.Window()
	if w.IsZero() {
		return ""
	}
	return w.UTC().Format("2006-01-02T15:04:05Z")
}
