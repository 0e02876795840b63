package siyuan

import (
	"regexp"
	"strings"
)

// Kramdown content returned by the kernel carries inline attribute
// lists ({: id="..." updated="..."}) on every block. Appending to a
// document must strip them first: writing them back through the
// markdown update endpoint would duplicate block IDs and corrupt the
// re-parse.
var (
	blockIALRe  = regexp.MustCompile(`(?m)^[ \t]*\{:[^}]*\}[ \t]*\n?`)
	inlineIALRe = regexp.MustCompile(`[ \t]*\{:[^}]*\}`)
	blankRunsRe = regexp.MustCompile(`\n{3,}`)
)

// StripIAL removes all inline attribute lists from kramdown content and
// collapses the blank lines left behind, returning plain markdown safe
// to append to.
func StripIAL(kramdown string) string {
	out := blockIALRe.ReplaceAllString(kramdown, "")
	out = inlineIALRe.ReplaceAllString(out, "")
	out = blankRunsRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
