package domain

import (
	"encoding/json"
	"time"
)

// Attribute keys persisted on host documents. The custom- prefix is
// required by the host for user-defined block attributes.
const (
	// AttrSourceID marks a standalone document with the item ID it holds.
	// Its presence is definitive proof of prior successful processing.
	AttrSourceID = "custom-source-id"

	// AttrMergeDoc marks a document as a merge bucket.
	AttrMergeDoc = "custom-merge-doc"

	// AttrMergeDate holds the bucket's date key (yyyy-MM-dd).
	AttrMergeDate = "custom-merge-date"

	// AttrMergePath holds the rendered bucket path. Debug aid only.
	AttrMergePath = "custom-merge-path"

	// AttrMergedIDs holds the JSON array of item IDs already folded in.
	AttrMergedIDs = "custom-merged-ids"

	// AttrMergeCount holds len(merged-ids) as a decimal string.
	AttrMergeCount = "custom-merge-count"

	// AttrLastMergeTime holds the last append time in compact host format.
	AttrLastMergeTime = "custom-last-merge-time"

	// AttrCreationTime holds the bucket creation time in compact host format.
	AttrCreationTime = "custom-creation-time"

	// AttrNoteHelper and AttrNoteHelperType are decorative grouping
	// attributes; failures setting them are never escalated.
	AttrNoteHelper     = "custom-note-helper"
	AttrNoteHelperType = "custom-note-helper-type"
)

// NoteHelperValue is the fixed value for AttrNoteHelper.
const NoteHelperValue = "笔记同步助手"

// Values for AttrNoteHelperType.
const (
	NoteTypeArticle = "链接"
	NoteTypeMessage = "消息"
)

// Ledger is the ordered set of item IDs already folded into a merge
// bucket document. It is persisted as the AttrMergedIDs attribute, not
// in a separate store: the document carries its own dedup state.
type Ledger struct {
	ids []string
}

// ParseLedger decodes a ledger from its attribute value. An empty or
// malformed value yields an empty ledger: a bucket whose ledger cannot
// be read is treated as containing nothing, so items re-append rather
// than silently drop.
func ParseLedger(attrValue string) Ledger {
	if attrValue == "" {
		return Ledger{}
	}
	var ids []string
	if err := json.Unmarshal([]byte(attrValue), &ids); err != nil {
		return Ledger{}
	}
	return Ledger{ids: ids}
}

// Contains reports whether an item ID is already in the ledger.
func (l *Ledger) Contains(itemID string) bool {
	for _, id := range l.ids {
		if id == itemID {
			return true
		}
	}
	return false
}

// Append adds an item ID to the ledger. Appending an ID already present
// is a no-op, preserving the one-id-per-content-block invariant.
func (l *Ledger) Append(itemID string) {
	if l.Contains(itemID) {
		return
	}
	l.ids = append(l.ids, itemID)
}

// Len returns the number of ledger entries.
func (l *Ledger) Len() int {
	return len(l.ids)
}

// Encode serialises the ledger to its attribute value.
func (l *Ledger) Encode() string {
	if l.ids == nil {
		return "[]"
	}
	data, err := json.Marshal(l.ids)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// CompactTimestamp formats a time in the host's compact yyyyMMddHHmmss
// form. ISO timestamps must never be written into attributes the host
// re-parses: their punctuation collides with block ID references.
func CompactTimestamp(t time.Time) string {
	return t.Format("20060102150405")
}
