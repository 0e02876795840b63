package driven

import (
	"time"

	"github.com/readfold/readfold/internal/core/domain"
)

// Renderer turns an item and the user's templates into markdown text and
// target paths. Rendering is pure: same item and settings, same output.
type Renderer interface {
	// Article renders the full content block for a regular article.
	Article(item *domain.Item) string

	// Message renders the content block for a clipped message. Used both
	// standalone and when appending into a merge bucket.
	Message(item *domain.Item) string

	// FrontMatter renders the YAML front matter for a standalone
	// document. Empty when no front matter variables are configured.
	FrontMatter(item *domain.Item) string

	// Filename renders the standalone document filename, sanitised for
	// the host filesystem.
	Filename(item *domain.Item) string

	// FolderPath renders the standalone document folder path.
	FolderPath(item *domain.Item) string

	// MergeFolderPath renders the merge bucket folder path.
	MergeFolderPath(item *domain.Item) string

	// BucketFilename renders the merge bucket filename from its date key.
	BucketFilename(mergeDate string) string

	// ImageFolder renders the image asset folder for the given run time.
	// The folder template supports date placeholders.
	ImageFolder(now time.Time) string

	// AttachmentFolder returns the attachment asset folder.
	AttachmentFolder() string

	// NeedsContent reports whether any configured template references the
	// item content, so fetches can skip the heaviest field otherwise.
	NeedsContent() bool
}
