package siyuan

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readfold/readfold/internal/core/domain"
)

// fakeKernel routes kernel API calls to scripted handlers and records
// every request body.
type fakeKernel struct {
	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	bodies   map[string][]map[string]any
	server   *httptest.Server
}

func newFakeKernel(t *testing.T) *fakeKernel {
	t.Helper()
	k := &fakeKernel{
		handlers: make(map[string]http.HandlerFunc),
		bodies:   make(map[string][]map[string]any),
	}
	k.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Record JSON bodies without consuming multipart payloads.
		raw, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(raw))
		var body map[string]any
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			_ = json.Unmarshal(raw, &body)
		}
		k.mu.Lock()
		k.bodies[r.URL.Path] = append(k.bodies[r.URL.Path], body)
		handler, ok := k.handlers[r.URL.Path]
		k.mu.Unlock()
		if !ok {
			writeEnvelope(w, -1, "unexpected call to "+r.URL.Path, nil)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(k.server.Close)
	return k
}

func (k *fakeKernel) handle(path string, h http.HandlerFunc) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.handlers[path] = h
}

func (k *fakeKernel) respond(path string, data any) {
	k.handle(path, func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, 0, "", data)
	})
}

func (k *fakeKernel) requests(path string) []map[string]any {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.bodies[path]
}

func (k *fakeKernel) store() *DocumentStore {
	return NewDocumentStore(NewClient(Config{BaseURL: k.server.URL}))
}

func TestDocumentStore_CreateDocument(t *testing.T) {
	kernel := newFakeKernel(t)
	kernel.respond("/api/filetree/createDocWithMd", "20250115093000-a1b2c3d")

	id, err := kernel.store().CreateDocument(context.Background(), "nb-1", "/folder/title", "# hi")
	require.NoError(t, err)
	assert.Equal(t, "20250115093000-a1b2c3d", id)

	reqs := kernel.requests("/api/filetree/createDocWithMd")
	require.Len(t, reqs, 1)
	assert.Equal(t, "nb-1", reqs[0]["notebook"])
	assert.Equal(t, "/folder/title", reqs[0]["path"])
	assert.Equal(t, "# hi", reqs[0]["markdown"])
}

func TestDocumentStore_CreateDocumentRejectsTimestampID(t *testing.T) {
	kernel := newFakeKernel(t)
	kernel.respond("/api/filetree/createDocWithMd", "20250115093000")

	_, err := kernel.store().CreateDocument(context.Background(), "nb-1", "/p", "")
	assert.ErrorIs(t, err, domain.ErrInvalidDocumentID)
}

func TestDocumentStore_GetIDByPath(t *testing.T) {
	kernel := newFakeKernel(t)
	kernel.respond("/api/filetree/getIDsByHPath", []string{"20250115093000-a1b2c3d"})

	id, err := kernel.store().GetIDByPath(context.Background(), "nb-1", "/folder/title")
	require.NoError(t, err)
	assert.Equal(t, "20250115093000-a1b2c3d", id)

	reqs := kernel.requests("/api/filetree/getIDsByHPath")
	require.Len(t, reqs, 1)
	assert.Equal(t, "/folder/title.md", reqs[0]["path"])
}

func TestDocumentStore_GetIDByPathTimestampQuirk(t *testing.T) {
	kernel := newFakeKernel(t)
	// The kernel returns a bare timestamp; it must be treated as not
	// found rather than used as a merge target.
	kernel.respond("/api/filetree/getIDsByHPath", []string{"20250115093000"})

	_, err := kernel.store().GetIDByPath(context.Background(), "nb-1", "/folder/title")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_GetIDByPathEmpty(t *testing.T) {
	kernel := newFakeKernel(t)
	kernel.respond("/api/filetree/getIDsByHPath", []string{})

	_, err := kernel.store().GetIDByPath(context.Background(), "nb-1", "/missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_GetDocumentContentStripsIAL(t *testing.T) {
	kernel := newFakeKernel(t)
	kernel.respond("/api/block/getBlockKramdown", map[string]string{
		"id":       "20250115093000-a1b2c3d",
		"kramdown": "Paragraph\n{: id=\"20250115093000-a1b2c3d\"}\n",
	})

	content, err := kernel.store().GetDocumentContent(context.Background(), "20250115093000-a1b2c3d")
	require.NoError(t, err)
	assert.Equal(t, "Paragraph", content)
}

func TestDocumentStore_SetAttrsWithRetry(t *testing.T) {
	kernel := newFakeKernel(t)
	var calls int
	kernel.handle("/api/attr/setBlockAttrs", func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			writeEnvelope(w, -1, "index busy", nil)
			return
		}
		writeEnvelope(w, 0, "", nil)
	})

	err := kernel.store().SetAttrsWithRetry(context.Background(), "doc-1", map[string]string{"k": "v"}, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDocumentStore_SetAttrsWithRetryExhausted(t *testing.T) {
	kernel := newFakeKernel(t)
	var calls int
	kernel.handle("/api/attr/setBlockAttrs", func(w http.ResponseWriter, _ *http.Request) {
		calls++
		writeEnvelope(w, -1, "index busy", nil)
	})

	err := kernel.store().SetAttrsWithRetry(context.Background(), "doc-1", map[string]string{"k": "v"}, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index busy")
	assert.Equal(t, 3, calls)
}

func TestDocumentStore_QueryBySourceID(t *testing.T) {
	kernel := newFakeKernel(t)
	kernel.respond("/api/query/sql", []map[string]string{{"block_id": "20250115093000-a1b2c3d"}})

	id, err := kernel.store().QueryBySourceID(context.Background(), "item-o'brien")
	require.NoError(t, err)
	assert.Equal(t, "20250115093000-a1b2c3d", id)

	reqs := kernel.requests("/api/query/sql")
	require.Len(t, reqs, 1)
	stmt := reqs[0]["stmt"].(string)
	assert.Contains(t, stmt, domain.AttrSourceID)
	// Single quotes in values are doubled, not injected.
	assert.Contains(t, stmt, "item-o''brien")
}

func TestDocumentStore_QueryBySourceIDNotFound(t *testing.T) {
	kernel := newFakeKernel(t)
	kernel.respond("/api/query/sql", []map[string]string{})

	_, err := kernel.store().QueryBySourceID(context.Background(), "item-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_QueryMergeBucket(t *testing.T) {
	kernel := newFakeKernel(t)
	kernel.respond("/api/query/sql", []map[string]string{{"id": "20250115093000-a1b2c3d"}})

	id, err := kernel.store().QueryMergeBucket(context.Background(), "nb-1", "2025-01-15", "同步助手_2025-01-15")
	require.NoError(t, err)
	assert.Equal(t, "20250115093000-a1b2c3d", id)

	stmt := kernel.requests("/api/query/sql")[0]["stmt"].(string)
	assert.Contains(t, stmt, domain.AttrMergeDate)
	assert.Contains(t, stmt, "LEFT JOIN")
	assert.Contains(t, stmt, "同步助手_2025-01-15")
}

func TestDocumentStore_ListNotebooks(t *testing.T) {
	kernel := newFakeKernel(t)
	kernel.respond("/api/notebook/lsNotebooks", map[string]any{
		"notebooks": []map[string]any{
			{"id": "nb-1", "name": "Main", "closed": false},
			{"id": "nb-2", "name": "Archive", "closed": true},
		},
	})

	notebooks, err := kernel.store().ListNotebooks(context.Background())
	require.NoError(t, err)
	require.Len(t, notebooks, 2)
	assert.Equal(t, "nb-1", notebooks[0].ID)
	assert.False(t, notebooks[0].Closed)
	assert.True(t, notebooks[1].Closed)
}

func TestDocumentStore_UpdateDocument(t *testing.T) {
	kernel := newFakeKernel(t)
	kernel.respond("/api/block/updateBlock", nil)

	err := kernel.store().UpdateDocument(context.Background(), "doc-1", "new content")
	require.NoError(t, err)

	reqs := kernel.requests("/api/block/updateBlock")
	require.Len(t, reqs, 1)
	assert.Equal(t, "markdown", reqs[0]["dataType"])
	assert.Equal(t, "new content", reqs[0]["data"])
	assert.Equal(t, "doc-1", reqs[0]["id"])
}
