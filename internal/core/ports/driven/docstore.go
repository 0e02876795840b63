package driven

import "context"

// Notebook is one host notebook that can receive documents.
type Notebook struct {
	ID     string
	Name   string
	Closed bool
}

// DocumentStore is the only surface through which core talks to the
// host's document CRUD, attribute and query APIs. The host has no
// transactions: every operation here is a single independent call, and
// callers sequence them so each step is idempotent-checkable.
type DocumentStore interface {
	// CreateDocument creates a document from markdown at a human-readable
	// path inside a notebook and returns its ID. Parent folders are
	// created by the host as needed.
	CreateDocument(ctx context.Context, notebook, path, markdown string) (string, error)

	// UpdateDocument replaces the full markdown content of a document.
	UpdateDocument(ctx context.Context, docID, markdown string) error

	// GetDocumentContent returns the document's markdown content with
	// host-specific inline metadata markup already stripped, safe to
	// treat as plain text for appending.
	GetDocumentContent(ctx context.Context, docID string) (string, error)

	// GetAttrs returns the document's attributes.
	GetAttrs(ctx context.Context, docID string) (map[string]string, error)

	// SetAttrs sets attributes in a single attempt.
	SetAttrs(ctx context.Context, docID string, attrs map[string]string) error

	// SetAttrsWithRetry sets attributes, retrying with linearly increasing
	// backoff. Used for the merge ledger and bucket metadata, whose loss
	// would cause duplicate content.
	SetAttrsWithRetry(ctx context.Context, docID string, attrs map[string]string, maxRetries int) error

	// GetIDByPath resolves a human-readable path directly against the
	// live file tree, bypassing the search index. Returns
	// domain.ErrNotFound when no document exists at the path, including
	// when the host returns an ID-shaped-like-a-timestamp quirk value.
	GetIDByPath(ctx context.Context, notebook, path string) (string, error)

	// QueryBySourceID finds a document stamped with the given source item
	// ID via an attribute query. Returns domain.ErrNotFound when absent.
	QueryBySourceID(ctx context.Context, sourceID string) (string, error)

	// QueryMergeBucket finds a merge bucket document by its date key,
	// tolerating buckets created without the date attribute by also
	// matching the rendered title. Returns domain.ErrNotFound when absent.
	QueryMergeBucket(ctx context.Context, notebook, mergeDate, title string) (string, error)

	// ListNotebooks returns the host's notebooks.
	ListNotebooks(ctx context.Context) ([]Notebook, error)
}
