package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotConfigured indicates the remote source credential or endpoint
	// is missing. Sync fails fast on this before any network call.
	ErrNotConfigured = errors.New("source not configured")

	// ErrSyncInProgress indicates a sync is already running.
	// Concurrent invocations are rejected, not queued.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrNoNotebook indicates no open notebook is available as a sync target.
	ErrNoNotebook = errors.New("no notebook available")

	// ErrInvalidDocumentID indicates the host returned an identifier that
	// does not look like a document ID (a known host quirk where a raw
	// timestamp is returned instead). The caller must treat the document
	// as not found rather than trust the value.
	ErrInvalidDocumentID = errors.New("invalid document ID")

	// ErrUnexpectedResponse indicates the remote source returned a payload
	// shape the client does not recognise.
	ErrUnexpectedResponse = errors.New("unexpected response structure")

	// ErrUploadFailed indicates all upload cascade tiers failed.
	ErrUploadFailed = errors.New("all upload strategies failed")

	// ErrRateLimited indicates the remote source rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
