package siyuan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/readfold/readfold/internal/core/domain"
	"github.com/readfold/readfold/internal/core/ports/driven"
	"github.com/readfold/readfold/internal/logger"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// retryBaseDelay is the backoff unit for attribute write retries; the
// wait grows linearly with the attempt number.
const retryBaseDelay = 100 * time.Millisecond

// DocumentStore implements the document store port against the kernel
// filetree, block, attribute and SQL query endpoints.
type DocumentStore struct {
	client *Client
}

// NewDocumentStore creates a document store over a kernel client.
func NewDocumentStore(client *Client) *DocumentStore {
	return &DocumentStore{client: client}
}

// CreateDocument creates a document from markdown and returns its ID.
func (s *DocumentStore) CreateDocument(ctx context.Context, notebook, path, markdown string) (string, error) {
	payload := map[string]string{
		"notebook": notebook,
		"path":     path,
		"markdown": markdown,
	}
	var id string
	if err := s.client.post(ctx, "/api/filetree/createDocWithMd", payload, &id); err != nil {
		return "", err
	}
	if !ValidDocID(id) {
		return "", fmt.Errorf("create %s returned %q: %w", path, id, domain.ErrInvalidDocumentID)
	}
	return id, nil
}

// UpdateDocument replaces a document's full markdown content.
func (s *DocumentStore) UpdateDocument(ctx context.Context, docID, markdown string) error {
	if !ValidDocID(docID) {
		return fmt.Errorf("update %q: %w", docID, domain.ErrInvalidDocumentID)
	}
	payload := map[string]string{
		"dataType": "markdown",
		"data":     markdown,
		"id":       docID,
	}
	return s.client.post(ctx, "/api/block/updateBlock", payload, nil)
}

// GetDocumentContent returns a document's content with the kernel's
// inline attribute markup stripped.
func (s *DocumentStore) GetDocumentContent(ctx context.Context, docID string) (string, error) {
	var data struct {
		ID       string `json:"id"`
		Kramdown string `json:"kramdown"`
	}
	payload := map[string]string{"id": docID}
	if err := s.client.post(ctx, "/api/block/getBlockKramdown", payload, &data); err != nil {
		return "", err
	}
	return StripIAL(data.Kramdown), nil
}

// GetAttrs returns a document's attributes.
func (s *DocumentStore) GetAttrs(ctx context.Context, docID string) (map[string]string, error) {
	attrs := make(map[string]string)
	payload := map[string]string{"id": docID}
	if err := s.client.post(ctx, "/api/attr/getBlockAttrs", payload, &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}

// SetAttrs sets attributes in a single attempt.
func (s *DocumentStore) SetAttrs(ctx context.Context, docID string, attrs map[string]string) error {
	payload := map[string]any{"id": docID, "attrs": attrs}
	return s.client.post(ctx, "/api/attr/setBlockAttrs", payload, nil)
}

// SetAttrsWithRetry sets attributes with linear backoff between
// attempts. Used for the merge ledger and bucket metadata, whose loss
// would cause duplicate content on the next run.
func (s *DocumentStore) SetAttrsWithRetry(ctx context.Context, docID string, attrs map[string]string, maxRetries int) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			logger.Debug("Retrying attribute write on %s (attempt %d)", docID, attempt+1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBaseDelay):
			}
		}
		if lastErr = s.SetAttrs(ctx, docID, attrs); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("set attrs after %d attempts: %w", maxRetries+1, lastErr)
}

// GetIDByPath resolves a human-readable path directly against the live
// file tree, bypassing the search index. The kernel expects the .md
// suffix here.
func (s *DocumentStore) GetIDByPath(ctx context.Context, notebook, path string) (string, error) {
	payload := map[string]string{
		"notebook": notebook,
		"path":     path + ".md",
	}
	var ids []string
	if err := s.client.post(ctx, "/api/filetree/getIDsByHPath", payload, &ids); err != nil {
		return "", err
	}
	for _, id := range ids {
		if ValidDocID(id) {
			return id, nil
		}
		logger.Debug("Discarding timestamp-shaped ID %q for %s", id, path)
	}
	return "", domain.ErrNotFound
}

// QueryBySourceID finds a document stamped with the given source item
// ID via the attribute index.
func (s *DocumentStore) QueryBySourceID(ctx context.Context, sourceID string) (string, error) {
	stmt := fmt.Sprintf(
		"SELECT block_id FROM attributes WHERE name = '%s' AND value = '%s' LIMIT 1",
		domain.AttrSourceID, escapeSQL(sourceID),
	)
	var rows []struct {
		BlockID string `json:"block_id"`
	}
	if err := s.client.post(ctx, "/api/query/sql", map[string]string{"stmt": stmt}, &rows); err != nil {
		return "", err
	}
	for _, row := range rows {
		if ValidDocID(row.BlockID) {
			return row.BlockID, nil
		}
	}
	return "", domain.ErrNotFound
}

// QueryMergeBucket finds a merge bucket by its date attribute. Buckets
// created before the attribute scheme have no merge-date, so the outer
// join also matches the rendered title.
func (s *DocumentStore) QueryMergeBucket(ctx context.Context, notebook, mergeDate, title string) (string, error) {
	stmt := fmt.Sprintf(
		"SELECT b.id AS id FROM blocks b "+
			"LEFT JOIN attributes a ON a.block_id = b.id AND a.name = '%s' "+
			"WHERE b.type = 'd' AND b.box = '%s' AND (a.value = '%s' OR b.content = '%s') "+
			"LIMIT 1",
		domain.AttrMergeDate, escapeSQL(notebook), escapeSQL(mergeDate), escapeSQL(title),
	)
	var rows []struct {
		ID string `json:"id"`
	}
	if err := s.client.post(ctx, "/api/query/sql", map[string]string{"stmt": stmt}, &rows); err != nil {
		return "", err
	}
	for _, row := range rows {
		if ValidDocID(row.ID) {
			return row.ID, nil
		}
	}
	return "", domain.ErrNotFound
}

// ListNotebooks returns the kernel's notebooks.
func (s *DocumentStore) ListNotebooks(ctx context.Context) ([]driven.Notebook, error) {
	var data struct {
		Notebooks []struct {
			ID     string `json:"id"`
			Name   string `json:"name"`
			Closed bool   `json:"closed"`
		} `json:"notebooks"`
	}
	if err := s.client.post(ctx, "/api/notebook/lsNotebooks", nil, &data); err != nil {
		return nil, err
	}
	notebooks := make([]driven.Notebook, len(data.Notebooks))
	for i, nb := range data.Notebooks {
		notebooks[i] = driven.Notebook{ID: nb.ID, Name: nb.Name, Closed: nb.Closed}
	}
	return notebooks, nil
}

// escapeSQL doubles single quotes for inlining into a query statement.
func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
