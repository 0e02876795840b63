package domain

import "time"

// Item is one saved reading entry fetched from the remote source.
// Items are immutable once fetched: ID is the sole dedup join key and is
// stable across repeated fetches of the same logical entry.
type Item struct {
	// ID is the opaque, globally unique identifier assigned by the source.
	ID string `json:"id"`

	// Title is the saved title. Clipped messages embed a date token here.
	Title string `json:"title"`

	// Author is the original author, when known.
	Author string `json:"author,omitempty"`

	// Content is the saved body (markdown or HTML).
	Content string `json:"content,omitempty"`

	// URL is the canonical source URL.
	URL string `json:"url"`

	// SavedAt is when the item was saved on the remote service.
	SavedAt time.Time `json:"savedAt"`

	// PublishedAt is the original publication time, when known.
	PublishedAt *time.Time `json:"publishedAt,omitempty"`

	// ArchivedAt is when the item was archived, when it has been.
	ArchivedAt *time.Time `json:"archivedAt,omitempty"`

	// SiteName is the publishing site, when known.
	SiteName string `json:"siteName,omitempty"`

	// Description is the source-provided summary.
	Description string `json:"description,omitempty"`

	// Note is the user's own note attached to the item.
	Note string `json:"note,omitempty"`

	// Image is a cover image URL, when present.
	Image string `json:"image,omitempty"`

	// WordsCount is the source's word count metric.
	WordsCount int `json:"wordsCount,omitempty"`

	// ReadLength is the estimated reading time in minutes.
	ReadLength int `json:"readLength,omitempty"`

	// State is the source-side state tag (e.g. SUCCEEDED, ARCHIVED).
	State string `json:"state,omitempty"`

	// Type is the source-side type tag (e.g. ARTICLE, FILE).
	Type string `json:"type,omitempty"`

	// Highlights are the user's highlight records on this item.
	Highlights []Highlight `json:"highlights,omitempty"`

	// Labels are the user-assigned labels.
	Labels []Label `json:"labels,omitempty"`
}

// Highlight is one highlighted passage with an optional annotation.
type Highlight struct {
	ID            string     `json:"id"`
	Quote         string     `json:"quote"`
	Annotation    string     `json:"annotation,omitempty"`
	Color         string     `json:"color,omitempty"`
	HighlightedAt time.Time  `json:"highlightedAt"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// Label is a user-assigned tag on an item.
type Label struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
}

// LabelNames returns the names of the item's labels, in order.
func (i *Item) LabelNames() []string {
	if len(i.Labels) == 0 {
		return nil
	}
	names := make([]string, len(i.Labels))
	for n, l := range i.Labels {
		names[n] = l.Name
	}
	return names
}

// Page is one page of search results from the remote source.
type Page struct {
	// Items are the entries on this page, in source order.
	Items []Item

	// HasNextPage reports whether another page follows.
	HasNextPage bool

	// TotalCount is the source's total match count, when reported.
	TotalCount int
}
