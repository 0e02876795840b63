// Package render turns items into markdown text and target paths using
// the user's placeholder templates.
//
// Templates are mustache with triple-brace placeholders ({{{title}}},
// {{{content}}}, {{{date}}}...) for compatibility with templates users
// already carry over from earlier releases; section syntax works too.
// Rendering is pure over a per-item view.
package render
