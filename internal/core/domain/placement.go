package domain

import "regexp"

// MergeMode defines how items are placed into host documents.
type MergeMode string

// Available merge modes.
const (
	// MergeModeNone places every item in its own standalone document.
	MergeModeNone MergeMode = "none"

	// MergeModeMessages merges only clipped messages into date buckets;
	// regular articles stay standalone.
	MergeModeMessages MergeMode = "messages"

	// MergeModeAll merges every item into date buckets.
	MergeModeAll MergeMode = "all"
)

// IsValid returns true if the merge mode is recognised.
func (m MergeMode) IsValid() bool {
	switch m {
	case MergeModeNone, MergeModeMessages, MergeModeAll:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m MergeMode) String() string {
	return string(m)
}

// Placement is the routing decision for one item.
type Placement int

const (
	// PlaceStandalone routes the item to its own document.
	PlaceStandalone Placement = iota

	// PlaceMerge routes the item into a shared date-bucketed document.
	PlaceMerge
)

// Clipped message titles carry the forwarding prefix and an embedded
// yyyyMMdd token: 同步助手_20250115_<sender>_<kind>.
var (
	clipTitleRe = regexp.MustCompile(`^同步助手_\d{8}`)
	clipDateRe  = regexp.MustCompile(`同步助手_(\d{4})(\d{2})(\d{2})`)
)

// IsClipMessage reports whether a title identifies a clipped message.
func IsClipMessage(title string) bool {
	return clipTitleRe.MatchString(title)
}

// ClipDate extracts the yyyy-MM-dd date embedded in a clipped message
// title. Returns "" when the title carries no date token.
func ClipDate(title string) string {
	m := clipDateRe.FindStringSubmatch(title)
	if m == nil {
		return ""
	}
	return m[1] + "-" + m[2] + "-" + m[3]
}

// Decide routes an item according to the configured merge mode.
// Pure decision: no side effects, no I/O.
func Decide(item *Item, mode MergeMode) Placement {
	switch mode {
	case MergeModeAll:
		return PlaceMerge
	case MergeModeMessages:
		if IsClipMessage(item.Title) {
			return PlaceMerge
		}
		return PlaceStandalone
	default:
		return PlaceStandalone
	}
}

// BucketDate derives the merge bucket key for an item: the date token
// embedded in a clipped message title when present, otherwise the saved
// date truncated to day. Two items saved the same day without tokens
// always share a bucket.
func BucketDate(item *Item) string {
	if d := ClipDate(item.Title); d != "" {
		return d
	}
	return item.SavedAt.Format("2006-01-02")
}
