package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/readfold/readfold/internal/core/domain"
	"github.com/readfold/readfold/internal/core/ports/driven"
	"github.com/readfold/readfold/internal/core/ports/driving"
	"github.com/readfold/readfold/internal/logger"
)

// Ensure SyncEngine implements the interface.
var _ driving.Syncer = (*SyncEngine)(nil)

const (
	// pageSize is the fixed source page size.
	pageSize = 15

	// offsetCap bounds how deep one run pages into the source. Runs
	// hitting the cap finish normally; the next run's window picks up
	// anything beyond it.
	offsetCap = 1000
)

// RendererFactory builds a renderer for one run's settings snapshot.
type RendererFactory func(domain.Settings) driven.Renderer

// SyncEngine runs full synchronisation passes: fetch changed items from
// the source in pages, place each one idempotently into the host, then
// advance the persisted cursor. Items are processed strictly in fetch
// order and failures are isolated per item.
type SyncEngine struct {
	source      driven.SourceClient
	docs        driven.DocumentStore
	state       driven.StateStore
	localiser   *Localiser
	newRenderer RendererFactory

	mu      sync.Mutex
	syncing bool

	cache *pathCache
	now   func() time.Time
}

// NewSyncEngine creates the sync engine. localiser may be nil to
// disable asset localisation.
func NewSyncEngine(
	source driven.SourceClient,
	docs driven.DocumentStore,
	state driven.StateStore,
	localiser *Localiser,
	newRenderer RendererFactory,
) *SyncEngine {
	return &SyncEngine{
		source:      source,
		docs:        docs,
		state:       state,
		localiser:   localiser,
		newRenderer: newRenderer,
		cache:       newPathCache(),
		now:         time.Now,
	}
}

// Sync runs one synchronisation pass. The report is always non-nil; a
// run already in progress or a missing configuration is reported as an
// error without touching any state.
func (e *SyncEngine) Sync(ctx context.Context) *domain.SyncReport {
	report := &domain.SyncReport{Success: true}

	e.mu.Lock()
	if e.syncing {
		e.mu.Unlock()
		report.AddError(domain.ErrSyncInProgress.Error())
		return report
	}
	e.syncing = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.syncing = false
		e.mu.Unlock()
	}()

	settings := e.state.Settings()
	if !settings.Configured() {
		report.AddError(domain.ErrNotConfigured.Error())
		return report
	}

	// Paths cached in a previous run may have been renamed since.
	e.cache.Clear()

	startedAt := e.now()
	cursor := settings.CursorFrom(e.state.SyncState())
	renderer := e.newRenderer(settings)

	notebook, err := e.resolveNotebook(ctx, settings)
	if err != nil {
		report.AddError(err.Error())
		return report
	}

	f := &filer{
		docs:      e.docs,
		renderer:  renderer,
		localiser: e.localiser,
		cache:     e.cache,
		settings:  settings,
		notebook:  notebook,
		now:       e.now,
	}

	logger.Section("Sync")
	if since := cursor.FilterTimestamp(); since != "" {
		logger.Info("Fetching items updated since %s", since)
	} else {
		logger.Info("Fetching all items (no previous sync)")
	}

	aborted := e.runPages(ctx, f, cursor, settings, renderer.NeedsContent(), report)

	// The cursor marks the run start so items saved while the run was in
	// flight are fetched again next time. Per-item failures do not hold
	// it back: the lookback window is the recovery net for those. An
	// aborted fetch does hold it back, because pages past the failure
	// were never seen at all.
	if !aborted {
		next := cursor.Advance(startedAt)
		if err := e.state.SaveSyncState(domain.SyncState{LastSync: next.LastSync}); err != nil {
			report.AddError(fmt.Sprintf("save sync state: %v", err))
		}
	}

	logger.Info("Sync finished: %d created, %d skipped, %d errors",
		report.Created, report.Skipped, len(report.Errors))
	return report
}

// runPages walks the source pages and files every item. Returns true
// when the fetch itself failed or the context was cancelled before all
// pages were seen.
func (e *SyncEngine) runPages(
	ctx context.Context,
	f *filer,
	cursor domain.Cursor,
	settings domain.Settings,
	includeContent bool,
	report *domain.SyncReport,
) bool {
	offset := 0
	for {
		page, err := e.source.Search(ctx, driven.SearchRequest{
			After:          offset,
			First:          pageSize,
			UpdatedSince:   cursor.FilterTimestamp(),
			Query:          settings.CustomQuery,
			IncludeContent: includeContent,
		})
		if err != nil {
			report.AddError(fmt.Sprintf("fetch page at offset %d: %v", offset, err))
			return true
		}

		logger.Debug("Page at offset %d: %d items", offset, len(page.Items))

		for i := range page.Items {
			if ctx.Err() != nil {
				report.AddError(ctx.Err().Error())
				return true
			}
			item := &page.Items[i]
			created, err := f.file(ctx, item)
			switch {
			case err != nil:
				report.AddError(fmt.Sprintf("item %s: %v", item.ID, err))
			case created:
				report.Created++
			default:
				report.Skipped++
			}
		}

		if !page.HasNextPage || len(page.Items) == 0 {
			return false
		}
		offset += pageSize
		if offset >= offsetCap {
			logger.Warn("Stopping at offset cap %d with more pages available", offsetCap)
			return false
		}
	}
}

// resolveNotebook returns the configured notebook ID, or the host's
// first open notebook when none is configured.
func (e *SyncEngine) resolveNotebook(ctx context.Context, settings domain.Settings) (string, error) {
	if settings.Notebook != "" {
		return settings.Notebook, nil
	}
	notebooks, err := e.docs.ListNotebooks(ctx)
	if err != nil {
		return "", fmt.Errorf("list notebooks: %w", err)
	}
	for _, nb := range notebooks {
		if !nb.Closed {
			logger.Debug("Using notebook %s (%s)", nb.Name, nb.ID)
			return nb.ID, nil
		}
	}
	return "", domain.ErrNoNotebook
}

// ResetCursor clears the persisted sync position.
func (e *SyncEngine) ResetCursor() error {
	state := e.state.SyncState()
	cursor := domain.Cursor{LastSync: state.LastSync}.Reset()
	if err := e.state.SaveSyncState(domain.SyncState{LastSync: cursor.LastSync}); err != nil {
		return fmt.Errorf("save sync state: %w", err)
	}
	logger.Info("Sync position reset")
	return nil
}

// Syncing reports whether a run is currently active.
func (e *SyncEngine) Syncing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.syncing
}
