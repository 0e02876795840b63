package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathCache(t *testing.T) {
	c := newPathCache()

	_, ok := c.Get("/a/b")
	assert.False(t, ok)

	c.Put("/a/b", "doc-1")
	id, ok := c.Get("/a/b")
	assert.True(t, ok)
	assert.Equal(t, "doc-1", id)

	c.Clear()
	_, ok = c.Get("/a/b")
	assert.False(t, ok)
}
