package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/readfold/readfold/internal/core/domain"
)

func testItem() *domain.Item {
	return &domain.Item{
		ID:      "item-1",
		Title:   "A Story About Go",
		Author:  "R. Pike",
		Content: "Body text here.",
		URL:     "https://example.com/story",
		SavedAt: time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC),
		Labels:  []domain.Label{{ID: "l1", Name: "go"}, {ID: "l2", Name: "reading"}},
	}
}

func TestSubstitute(t *testing.T) {
	out := Substitute("Hello {{{name}}}!", map[string]string{"name": "world"})
	assert.Equal(t, "Hello world!", out)

	// Missing variables render empty, mustache semantics.
	out = Substitute("x{{{missing}}}y", map[string]string{"name": "x"})
	assert.Equal(t, "xy", out)

	// Triple braces must not HTML-escape.
	out = Substitute("{{{url}}}", map[string]string{"url": "https://e.com/a?b=1&c=2"})
	assert.Equal(t, "https://e.com/a?b=1&c=2", out)
}

func TestSubstitute_Sections(t *testing.T) {
	out := Substitute("{{#author}}by {{{author}}}{{/author}}", map[string]string{"author": "R. Pike"})
	assert.Equal(t, "by R. Pike", out)

	out = Substitute("{{#note}}note: {{{note}}}{{/note}}", map[string]string{})
	assert.Equal(t, "", out)
}

func TestSubstitute_BrokenTemplateKept(t *testing.T) {
	out := Substitute("{{#section}}unclosed", map[string]string{"section": "x"})
	assert.Equal(t, "{{#section}}unclosed", out)
}

func TestArticle_DefaultTemplate(t *testing.T) {
	r := New(domain.DefaultSettings())
	out := r.Article(testItem())

	assert.Contains(t, out, "# A Story About Go")
	assert.Contains(t, out, "[原文链接](https://example.com/story)")
	assert.Contains(t, out, "Body text here.")
}

func TestArticle_CustomTemplate(t *testing.T) {
	s := domain.DefaultSettings()
	s.Template = "{{{title}}} by {{{author}}} ({{{labels}}})"
	r := New(s)

	out := r.Article(testItem())
	assert.Equal(t, "A Story About Go by R. Pike (go, reading)", out)
}

func TestMessage_DefaultTemplate(t *testing.T) {
	r := New(domain.DefaultSettings())
	out := r.Message(testItem())

	assert.Contains(t, out, "2025-01-15 09:30:00")
	assert.Contains(t, out, "Body text here.")
}

func TestFrontMatter(t *testing.T) {
	s := domain.DefaultSettings()
	s.FrontMatterVariables = []string{"title", "author", "tags", "original_url", "date_published"}
	r := New(s)

	out := r.FrontMatter(testItem())
	assert.Contains(t, out, "---\n")
	assert.Contains(t, out, "title: A Story About Go")
	assert.Contains(t, out, "author: R. Pike")
	assert.Contains(t, out, "tags: [go, reading]")
	assert.Contains(t, out, "original_url: https://example.com/story")
	// date_published is unset on the item and must be omitted.
	assert.NotContains(t, out, "date_published")
}

func TestFrontMatter_Empty(t *testing.T) {
	r := New(domain.DefaultSettings())
	assert.Equal(t, "", r.FrontMatter(testItem()))
}

func TestFilename_Sanitised(t *testing.T) {
	s := domain.DefaultSettings()
	r := New(s)

	item := testItem()
	item.Title = `What: "is" <Go>?`
	name := r.Filename(item)

	assert.NotContains(t, name, ":")
	assert.NotContains(t, name, "\"")
	assert.NotContains(t, name, "<")
	assert.NotContains(t, name, "?")
}

func TestFilename_EmptyFallsBack(t *testing.T) {
	s := domain.DefaultSettings()
	s.FilenameTemplate = "{{{author}}}"
	r := New(s)

	item := testItem()
	item.Author = ""
	assert.Equal(t, "untitled-item-1", r.Filename(item))
}

func TestFolderPath_DatePlaceholder(t *testing.T) {
	r := New(domain.DefaultSettings())
	assert.Equal(t, "笔记同步助手/2025-01-15", r.FolderPath(testItem()))
}

func TestMergeFolderPath_MonthlyGrouping(t *testing.T) {
	r := New(domain.DefaultSettings())
	assert.Equal(t, "笔记同步助手/微信消息/2025-01", r.MergeFolderPath(testItem()))
}

func TestBucketFilename(t *testing.T) {
	r := New(domain.DefaultSettings())
	assert.Equal(t, "同步助手_2025-01-15", r.BucketFilename("2025-01-15"))
}

func TestNeedsContent(t *testing.T) {
	s := domain.DefaultSettings()
	r := New(s)
	assert.True(t, r.NeedsContent())

	s.Template = "# {{{title}}}"
	s.MessageTemplate = "{{{dateSaved}}}"
	r = New(s)
	assert.False(t, r.NeedsContent())

	s.MessageTemplate = "{{{highlights}}}"
	r = New(s)
	assert.True(t, r.NeedsContent())
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "a/b/c", NormalizePath(`a\b//c/`))
	assert.Equal(t, "a/b", NormalizePath("/a/b"))
	assert.Equal(t, "", NormalizePath(""))
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "a/b/c.md", JoinPath("a", "", "b", "c.md"))
}

func TestImageFolder_DatePlaceholder(t *testing.T) {
	r := New(domain.DefaultSettings())
	now := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "assets/笔记同步助手/images/2025-01-15", r.ImageFolder(now))
}

func TestImageFolder_OutsideAssetsFallsBack(t *testing.T) {
	s := domain.DefaultSettings()
	s.ImageFolder = "images/{{{date}}}"
	r := New(s)

	now := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "assets/笔记同步助手/images/2025-01-15", r.ImageFolder(now))
}

func TestAttachmentFolder_OutsideAssetsFallsBack(t *testing.T) {
	s := domain.DefaultSettings()
	s.AttachmentFolder = "attachments"
	r := New(s)

	assert.Equal(t, "assets/笔记同步助手/attachments", r.AttachmentFolder())

	s.AttachmentFolder = "assets/files"
	assert.Equal(t, "assets/files", New(s).AttachmentFolder())
}

func TestDatePlaceholders(t *testing.T) {
	now := time.Date(2025, 8, 3, 14, 5, 0, 0, time.UTC)
	out := DatePlaceholders("assets/img/{{{year}}}/{{{month}}}/{{{date}}}-{{{quarter}}}", now, "2006-01-02")
	assert.Equal(t, "assets/img/2025/08/2025-08-03-Q3", out)
}

func TestDatePlaceholders_Weekday(t *testing.T) {
	// 2025-01-15 is a Wednesday, 2025-08-03 a Sunday.
	out := DatePlaceholders("{{{weekday}}}", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), "2006-01-02")
	assert.Equal(t, "周三", out)

	out = DatePlaceholders("{{{weekday}}}", time.Date(2025, 8, 3, 0, 0, 0, 0, time.UTC), "2006-01-02")
	assert.Equal(t, "周日", out)
}
