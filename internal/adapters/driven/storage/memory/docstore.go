package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/readfold/readfold/internal/core/domain"
	"github.com/readfold/readfold/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// Document is one stored document, exported so tests can inspect what
// a sync run produced.
type Document struct {
	ID       string
	Notebook string
	Path     string
	Content  string
	Attrs    map[string]string
}

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	seq       int
	docs      map[string]*Document
	notebooks []driven.Notebook
}

// NewDocumentStore creates a document store. With no notebooks given, a
// single open notebook "notebook-1" is provided.
func NewDocumentStore(notebooks ...driven.Notebook) *DocumentStore {
	if len(notebooks) == 0 {
		notebooks = []driven.Notebook{{ID: "notebook-1", Name: "Main"}}
	}
	return &DocumentStore{
		docs:      make(map[string]*Document),
		notebooks: notebooks,
	}
}

// CreateDocument stores a document and returns its generated ID.
func (s *DocumentStore) CreateDocument(_ context.Context, notebook, path, markdown string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := fmt.Sprintf("doc-%d", s.seq)
	s.docs[id] = &Document{
		ID:       id,
		Notebook: notebook,
		Path:     path,
		Content:  markdown,
		Attrs:    make(map[string]string),
	}
	return id, nil
}

// UpdateDocument replaces a document's content.
func (s *DocumentStore) UpdateDocument(_ context.Context, docID, markdown string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[docID]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Content = markdown
	return nil
}

// GetDocumentContent returns a document's content.
func (s *DocumentStore) GetDocumentContent(_ context.Context, docID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[docID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return doc.Content, nil
}

// GetAttrs returns a copy of a document's attributes.
func (s *DocumentStore) GetAttrs(_ context.Context, docID string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[docID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	attrs := make(map[string]string, len(doc.Attrs))
	for k, v := range doc.Attrs {
		attrs[k] = v
	}
	return attrs, nil
}

// SetAttrs merges attributes into a document.
func (s *DocumentStore) SetAttrs(_ context.Context, docID string, attrs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[docID]
	if !ok {
		return domain.ErrNotFound
	}
	for k, v := range attrs {
		doc.Attrs[k] = v
	}
	return nil
}

// SetAttrsWithRetry merges attributes. Memory writes never fail, so no
// retry machinery is needed here.
func (s *DocumentStore) SetAttrsWithRetry(ctx context.Context, docID string, attrs map[string]string, _ int) error {
	return s.SetAttrs(ctx, docID, attrs)
}

// GetIDByPath resolves a path within a notebook.
func (s *DocumentStore) GetIDByPath(_ context.Context, notebook, path string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.docs {
		if doc.Notebook == notebook && doc.Path == path {
			return doc.ID, nil
		}
	}
	return "", domain.ErrNotFound
}

// QueryBySourceID finds a document by its source-id attribute.
func (s *DocumentStore) QueryBySourceID(_ context.Context, sourceID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.docs {
		if doc.Attrs[domain.AttrSourceID] == sourceID {
			return doc.ID, nil
		}
	}
	return "", domain.ErrNotFound
}

// QueryMergeBucket finds a merge bucket by its date attribute, falling
// back to a title match for buckets missing the attribute.
func (s *DocumentStore) QueryMergeBucket(_ context.Context, notebook, mergeDate, title string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.docs {
		if doc.Notebook != notebook {
			continue
		}
		if doc.Attrs[domain.AttrMergeDate] == mergeDate {
			return doc.ID, nil
		}
	}
	for _, doc := range s.docs {
		if doc.Notebook != notebook {
			continue
		}
		if idx := strings.LastIndex(doc.Path, "/"); doc.Path[idx+1:] == title {
			return doc.ID, nil
		}
	}
	return "", domain.ErrNotFound
}

// ListNotebooks returns the configured notebooks.
func (s *DocumentStore) ListNotebooks(_ context.Context) ([]driven.Notebook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]driven.Notebook(nil), s.notebooks...), nil
}

// Document returns a stored document by ID for test inspection.
func (s *DocumentStore) Document(docID string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[docID]
	return doc, ok
}

// Len returns the number of stored documents.
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
