package render

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cbroglie/mustache"

	"github.com/readfold/readfold/internal/core/domain"
	"github.com/readfold/readfold/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.Renderer = (*Renderer)(nil)

// Renderer renders items against a fixed settings snapshot.
type Renderer struct {
	settings domain.Settings
}

// New creates a renderer for the given settings.
func New(settings domain.Settings) *Renderer {
	return &Renderer{settings: settings}
}

// Substitute renders a mustache template against the given variables.
// User templates carried over from earlier releases use {{{name}}} for
// unescaped values; section and conditional syntax works too. A
// template that fails to parse is returned as-is so a broken template
// shows up in the output instead of vanishing.
func Substitute(template string, vars map[string]string) string {
	out, err := mustache.Render(template, vars)
	if err != nil {
		return template
	}
	return out
}

// view builds the flat placeholder map for an item.
func (r *Renderer) view(item *domain.Item) map[string]string {
	vars := map[string]string{
		"id":          item.ID,
		"title":       titleOrUntitled(item),
		"author":      item.Author,
		"content":     item.Content,
		"originalUrl": item.URL,
		"siteName":    item.SiteName,
		"description": item.Description,
		"note":        item.Note,
		"state":       item.State,
		"type":        item.Type,
		"image":       item.Image,
		"dateSaved":   item.SavedAt.Format(r.settings.DateSavedFormat),
		"labels":      strings.Join(item.LabelNames(), ", "),
		"highlights":  r.renderHighlights(item),
	}
	if item.WordsCount > 0 {
		vars["wordsCount"] = fmt.Sprintf("%d", item.WordsCount)
	} else {
		vars["wordsCount"] = ""
	}
	if item.ReadLength > 0 {
		vars["readLength"] = fmt.Sprintf("%d", item.ReadLength)
	} else {
		vars["readLength"] = ""
	}
	if item.PublishedAt != nil {
		vars["datePublished"] = item.PublishedAt.Format(r.settings.DateSavedFormat)
	} else {
		vars["datePublished"] = ""
	}
	if item.ArchivedAt != nil {
		vars["dateArchived"] = item.ArchivedAt.Format(r.settings.DateSavedFormat)
	} else {
		vars["dateArchived"] = ""
	}
	return vars
}

// renderHighlights renders the item's highlights as a quote list.
func (r *Renderer) renderHighlights(item *domain.Item) string {
	if len(item.Highlights) == 0 {
		return ""
	}
	var b strings.Builder
	for i, h := range item.Highlights {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("> ")
		b.WriteString(strings.ReplaceAll(h.Quote, "\n", "\n> "))
		if h.Annotation != "" {
			b.WriteString("\n\n")
			b.WriteString(h.Annotation)
		}
		if !h.HighlightedAt.IsZero() {
			b.WriteString("\n\n*")
			b.WriteString(h.HighlightedAt.Format(r.settings.DateHighlightedFormat))
			b.WriteString("*")
		}
	}
	return b.String()
}

// Article renders the full content block for a regular article.
func (r *Renderer) Article(item *domain.Item) string {
	template := r.settings.Template
	if template == "" {
		template = domain.DefaultTemplate
	}
	return Substitute(template, r.view(item))
}

// Message renders the content block for a clipped message.
func (r *Renderer) Message(item *domain.Item) string {
	template := r.settings.MessageTemplate
	if template == "" {
		template = domain.DefaultMessageTemplate
	}
	return Substitute(template, r.view(item))
}

// frontMatterValue maps a front matter variable name to its value.
func (r *Renderer) frontMatterValue(item *domain.Item, name string) (string, bool) {
	switch name {
	case "title":
		return titleOrUntitled(item), true
	case "author":
		return item.Author, item.Author != ""
	case "tags":
		names := item.LabelNames()
		if len(names) == 0 {
			return "", false
		}
		return "[" + strings.Join(names, ", ") + "]", true
	case "date_saved":
		return item.SavedAt.Format(r.settings.DateSavedFormat), true
	case "date_published":
		if item.PublishedAt == nil {
			return "", false
		}
		return item.PublishedAt.Format(r.settings.DateSavedFormat), true
	case "date_archived":
		if item.ArchivedAt == nil {
			return "", false
		}
		return item.ArchivedAt.Format(r.settings.DateSavedFormat), true
	case "site_name":
		return item.SiteName, item.SiteName != ""
	case "original_url":
		return item.URL, item.URL != ""
	case "description":
		return item.Description, item.Description != ""
	case "note":
		return item.Note, item.Note != ""
	case "type":
		return item.Type, item.Type != ""
	case "state":
		return item.State, item.State != ""
	case "words_count":
		if item.WordsCount == 0 {
			return "", false
		}
		return fmt.Sprintf("%d", item.WordsCount), true
	case "read_length":
		if item.ReadLength == 0 {
			return "", false
		}
		return fmt.Sprintf("%d", item.ReadLength), true
	case "image":
		return item.Image, item.Image != ""
	default:
		return "", false
	}
}

// FrontMatter renders the YAML front matter for a standalone document
// from the configured variable list. Empty when no variables are set.
func (r *Renderer) FrontMatter(item *domain.Item) string {
	vars := r.settings.FrontMatterVariables
	if len(vars) == 0 {
		return ""
	}

	var lines []string
	for _, name := range vars {
		value, ok := r.frontMatterValue(item, name)
		if !ok {
			continue
		}
		if strings.Contains(value, "\n") {
			value = "|\n  " + strings.ReplaceAll(value, "\n", "\n  ")
		}
		lines = append(lines, name+": "+value)
	}
	if len(lines) == 0 {
		return ""
	}
	return "---\n" + strings.Join(lines, "\n") + "\n---\n\n"
}

// Filename renders the standalone document filename.
func (r *Renderer) Filename(item *domain.Item) string {
	template := r.settings.FilenameTemplate
	if template == "" {
		template = "{{{title}}}"
	}
	name := SanitizeFilename(Substitute(template, r.view(item)))
	if name == "" {
		name = "untitled-" + item.ID
	}
	return name
}

// FolderPath renders the standalone document folder path. {{{date}}}
// is the item's save date in the configured folder format.
func (r *Renderer) FolderPath(item *domain.Item) string {
	vars := r.view(item)
	vars["date"] = item.SavedAt.Format(r.settings.FolderDateFormat)
	template := r.settings.Folder
	if template == "" {
		template = "笔记同步助手"
	}
	return NormalizePath(Substitute(template, vars))
}

// MergeFolderPath renders the merge bucket folder path.
func (r *Renderer) MergeFolderPath(item *domain.Item) string {
	vars := r.view(item)
	vars["date"] = item.SavedAt.Format(r.settings.MergeFolderDateFormat)
	template := r.settings.MergeFolder
	if template == "" {
		template = "笔记同步助手"
	}
	return NormalizePath(Substitute(template, vars))
}

// BucketFilename renders the merge bucket filename from its yyyy-MM-dd
// date key. The key itself is the {{{date}}} value so that items with
// the same bucket key always resolve to the same filename.
func (r *Renderer) BucketFilename(mergeDate string) string {
	template := r.settings.BucketFilename
	if template == "" {
		template = "同步助手_{{{date}}}"
	}
	return SanitizeFilename(Substitute(template, map[string]string{"date": mergeDate}))
}

// ImageFolder renders the image asset folder for the given run time.
// Uploads must land inside the host's asset space: a folder not under
// assets/ is replaced with the default.
func (r *Renderer) ImageFolder(now time.Time) string {
	folder := NormalizePath(DatePlaceholders(r.settings.ImageFolder, now, r.settings.FolderDateFormat))
	if !strings.HasPrefix(folder, "assets/") {
		return "assets/笔记同步助手/images/" + now.Format(r.settings.FolderDateFormat)
	}
	return folder
}

// AttachmentFolder returns the attachment asset folder, replaced with
// the default when not under assets/.
func (r *Renderer) AttachmentFolder() string {
	folder := NormalizePath(r.settings.AttachmentFolder)
	if !strings.HasPrefix(folder, "assets/") {
		return "assets/笔记同步助手/attachments"
	}
	return folder
}

// NeedsContent reports whether any configured template references the
// item content or highlights.
func (r *Renderer) NeedsContent() bool {
	for _, t := range []string{r.settings.Template, r.settings.MessageTemplate} {
		if t == "" {
			t = domain.DefaultTemplate
		}
		if strings.Contains(t, "{{{content}}}") || strings.Contains(t, "{{{highlights}}}") {
			return true
		}
	}
	return false
}

// weekdayNames localises weekdays for path templates.
var weekdayNames = map[time.Weekday]string{
	time.Monday:    "周一",
	time.Tuesday:   "周二",
	time.Wednesday: "周三",
	time.Thursday:  "周四",
	time.Friday:    "周五",
	time.Saturday:  "周六",
	time.Sunday:    "周日",
}

// DatePlaceholders expands the date placeholder family ({{{date}}},
// {{{year}}}, {{{month}}}, {{{day}}}, {{{hour}}}, {{{minute}}},
// {{{weekday}}}, {{{quarter}}}) in a path template against a reference
// time. Used for asset folder templates.
func DatePlaceholders(template string, now time.Time, dateFormat string) string {
	vars := map[string]string{
		"date":    now.Format(dateFormat),
		"year":    now.Format("2006"),
		"month":   now.Format("01"),
		"day":     now.Format("02"),
		"hour":    now.Format("15"),
		"minute":  now.Format("04"),
		"weekday": weekdayNames[now.Weekday()],
		"quarter": fmt.Sprintf("Q%d", (int(now.Month())-1)/3+1),
	}
	return Substitute(template, vars)
}

func titleOrUntitled(item *domain.Item) string {
	if item.Title == "" {
		return "Untitled"
	}
	return item.Title
}

var (
	illegalFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	repeatedWhitespace   = regexp.MustCompile(`\s+`)
	repeatedSlashes      = regexp.MustCompile(`/+`)
)

// SanitizeFilename replaces filesystem-illegal characters with dashes
// and collapses whitespace.
func SanitizeFilename(name string) string {
	name = illegalFilenameChars.ReplaceAllString(name, "-")
	name = repeatedWhitespace.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// NormalizePath converts backslashes to forward slashes, collapses
// repeated slashes and trims leading/trailing slashes.
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}
	path = strings.ReplaceAll(path, "\\", "/")
	path = repeatedSlashes.ReplaceAllString(path, "/")
	return strings.Trim(path, "/")
}

// JoinPath joins non-empty path segments and normalises the result.
func JoinPath(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return NormalizePath(strings.Join(nonEmpty, "/"))
}
