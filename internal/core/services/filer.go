package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/readfold/readfold/internal/core/domain"
	"github.com/readfold/readfold/internal/core/ports/driven"
	"github.com/readfold/readfold/internal/logger"
)

// attrRetries is how many times critical attribute writes are retried.
// Losing the source-id stamp or the merge ledger means the next run
// duplicates content, so these writes get more chances than the rest.
const attrRetries = 2

// filer places one fetched item into the host: either as a standalone
// document or appended into a date-bucketed merge document. A filer is
// built per sync run with that run's settings snapshot and path cache.
type filer struct {
	docs      driven.DocumentStore
	renderer  driven.Renderer
	localiser *Localiser
	cache     *pathCache
	settings  domain.Settings
	notebook  string
	now       func() time.Time
}

// file places one item. Returns true when document content was created
// or appended, false when the item was detected as already synced.
func (f *filer) file(ctx context.Context, item *domain.Item) (bool, error) {
	if domain.Decide(item, f.settings.MergeMode) == domain.PlaceMerge {
		return f.fileMerged(ctx, item)
	}
	return f.fileStandalone(ctx, item)
}

// fileStandalone creates the item's own document unless one already
// exists. Dedup is path-first: the rendered path is checked against the
// live file tree, then an attribute query catches documents the user
// has since renamed or moved.
func (f *filer) fileStandalone(ctx context.Context, item *domain.Item) (bool, error) {
	docPath := joinDocPath(f.renderer.FolderPath(item), f.renderer.Filename(item))

	id, err := f.resolvePath(ctx, docPath)
	switch {
	case err == nil:
		// An occupied path always skips, even when the source-id stamp
		// is missing or different: a stamp that failed on an earlier run
		// must not turn into a duplicate document here.
		if attrs, aerr := f.docs.GetAttrs(ctx, id); aerr == nil && attrs[domain.AttrSourceID] != item.ID {
			logger.Debug("Document %s at %s has no matching source id, skipping item %s", id, docPath, item.ID)
		} else {
			logger.Debug("Item %s already at %s, skipping", item.ID, docPath)
		}
		return false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return false, fmt.Errorf("resolve path %s: %w", docPath, err)
	}

	// The path is free. The item may still exist elsewhere under a
	// changed title or a moved folder.
	if _, qerr := f.docs.QueryBySourceID(ctx, item.ID); qerr == nil {
		logger.Debug("Item %s found by attribute query, skipping", item.ID)
		return false, nil
	} else if !errors.Is(qerr, domain.ErrNotFound) {
		return false, fmt.Errorf("query source id %s: %w", item.ID, qerr)
	}

	markdown := f.renderer.FrontMatter(item) + f.renderer.Article(item)
	markdown = f.localise(ctx, markdown)

	newID, err := f.docs.CreateDocument(ctx, f.notebook, docPath, markdown)
	if err != nil {
		return false, fmt.Errorf("create document %s: %w", docPath, err)
	}

	// The source-id stamp is what makes the next run skip this item.
	// Without it the document would be re-created, so its failure fails
	// the item.
	stamp := map[string]string{domain.AttrSourceID: item.ID}
	if err := f.docs.SetAttrsWithRetry(ctx, newID, stamp, attrRetries); err != nil {
		return false, fmt.Errorf("stamp source id on %s: %w", newID, err)
	}

	decoration := map[string]string{
		domain.AttrNoteHelper:     domain.NoteHelperValue,
		domain.AttrNoteHelperType: domain.NoteTypeArticle,
		domain.AttrCreationTime:   domain.CompactTimestamp(item.SavedAt),
	}
	if err := f.docs.SetAttrs(ctx, newID, decoration); err != nil {
		logger.Warn("Failed to decorate %s: %v", newID, err)
	}

	f.cache.Put(docPath, newID)
	logger.Info("Created document %s", docPath)
	return true, nil
}

// fileMerged appends the item to its date bucket, creating the bucket
// on first use. The bucket's merged-ids attribute is the idempotence
// ledger: an item already listed there is skipped without touching the
// content.
func (f *filer) fileMerged(ctx context.Context, item *domain.Item) (bool, error) {
	mergeDate := domain.BucketDate(item)
	bucketName := f.renderer.BucketFilename(mergeDate)
	docPath := joinDocPath(f.renderer.MergeFolderPath(item), bucketName)

	id, ok := f.cache.Get(docPath)
	if !ok {
		var err error
		id, err = f.docs.QueryMergeBucket(ctx, f.notebook, mergeDate, bucketName)
		if errors.Is(err, domain.ErrNotFound) {
			id, err = f.resolvePath(ctx, docPath)
		}
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return f.createBucket(ctx, item, mergeDate, docPath)
		case err != nil:
			return false, fmt.Errorf("find bucket %s: %w", docPath, err)
		}
		f.cache.Put(docPath, id)
	}

	attrs, err := f.docs.GetAttrs(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get bucket attrs %s: %w", id, err)
	}

	ledger := domain.ParseLedger(attrs[domain.AttrMergedIDs])
	if ledger.Contains(item.ID) {
		logger.Debug("Item %s already merged into %s, skipping", item.ID, id)
		return false, nil
	}

	content, err := f.docs.GetDocumentContent(ctx, id)
	if err != nil {
		return false, fmt.Errorf("get bucket content %s: %w", id, err)
	}

	block := f.localise(ctx, f.renderBlock(item))
	updated := strings.TrimRight(content, "\n") + "\n\n" + block
	if err := f.docs.UpdateDocument(ctx, id, updated); err != nil {
		return false, fmt.Errorf("append to bucket %s: %w", id, err)
	}

	ledger.Append(item.ID)
	stamp := map[string]string{
		domain.AttrMergedIDs:     ledger.Encode(),
		domain.AttrMergeCount:    strconv.Itoa(ledger.Len()),
		domain.AttrLastMergeTime: domain.CompactTimestamp(f.now()),
	}
	// Backfill the bucket markers on documents created before the
	// attribute scheme was complete so the SQL lookup finds them next
	// time without the title fallback.
	if attrs[domain.AttrMergeDoc] == "" {
		stamp[domain.AttrMergeDoc] = "true"
		stamp[domain.AttrMergeDate] = mergeDate
		stamp[domain.AttrMergePath] = docPath
	}
	if err := f.docs.SetAttrsWithRetry(ctx, id, stamp, attrRetries); err != nil {
		return false, fmt.Errorf("update ledger on %s: %w", id, err)
	}

	logger.Info("Merged item %s into bucket %s", item.ID, docPath)
	return true, nil
}

// renderBlock renders the content block an item contributes to a merge
// bucket. Clipped messages use the message template; regular articles
// folded in under merge-all keep the article template so their title
// and source link survive.
func (f *filer) renderBlock(item *domain.Item) string {
	if domain.IsClipMessage(item.Title) {
		return f.renderer.Message(item)
	}
	return f.renderer.Article(item)
}

// createBucket creates a new merge bucket seeded with the item's block.
func (f *filer) createBucket(ctx context.Context, item *domain.Item, mergeDate, docPath string) (bool, error) {
	block := f.localise(ctx, f.renderBlock(item))

	id, err := f.docs.CreateDocument(ctx, f.notebook, docPath, block)
	if err != nil {
		return false, fmt.Errorf("create bucket %s: %w", docPath, err)
	}

	ledger := domain.ParseLedger("")
	ledger.Append(item.ID)
	attrs := map[string]string{
		domain.AttrMergeDoc:       "true",
		domain.AttrMergeDate:      mergeDate,
		domain.AttrMergePath:      docPath,
		domain.AttrMergedIDs:      ledger.Encode(),
		domain.AttrMergeCount:     "1",
		domain.AttrLastMergeTime:  domain.CompactTimestamp(f.now()),
		domain.AttrCreationTime:   domain.CompactTimestamp(item.SavedAt),
		domain.AttrNoteHelper:     domain.NoteHelperValue,
		domain.AttrNoteHelperType: domain.NoteTypeMessage,
	}
	if err := f.docs.SetAttrsWithRetry(ctx, id, attrs, attrRetries); err != nil {
		return false, fmt.Errorf("stamp bucket %s: %w", id, err)
	}

	f.cache.Put(docPath, id)
	logger.Info("Created bucket %s", docPath)
	return true, nil
}

// resolvePath looks a path up in the run cache, then the live file tree.
func (f *filer) resolvePath(ctx context.Context, docPath string) (string, error) {
	if id, ok := f.cache.Get(docPath); ok {
		return id, nil
	}
	id, err := f.docs.GetIDByPath(ctx, f.notebook, docPath)
	if err != nil {
		return "", err
	}
	f.cache.Put(docPath, id)
	return id, nil
}

// localise rewrites remote assets in markdown per the run's settings.
func (f *filer) localise(ctx context.Context, markdown string) string {
	if f.localiser == nil {
		return markdown
	}
	opts := LocaliseOptions{
		Images:           f.settings.ImageMode == domain.ImageModeLocal,
		ImageFolder:      f.renderer.ImageFolder(f.now()),
		AttachmentFolder: f.renderer.AttachmentFolder(),
	}
	out, warnings := f.localiser.Localise(ctx, markdown, opts)
	for _, w := range warnings {
		logger.Warn("%s", w)
	}
	return out
}

// joinDocPath builds the host document path from a folder and filename.
func joinDocPath(folder, name string) string {
	if folder == "" {
		return "/" + name
	}
	return "/" + folder + "/" + name
}
