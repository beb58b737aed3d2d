package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *TextCache {
	t.Helper()
	c, err := OpenTextCache(filepath.Join(t.TempDir(), "cache", "text.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestTextCache_PutGet(t *testing.T) {
	c := openTestCache(t)
	key := Key("pdf", "abc123")

	_, found, err := c.Get(key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Put(key, "MASTER SERVICES AGREEMENT\n\nTerm: 12 months"))

	text, found, err := c.Get(key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "MASTER SERVICES AGREEMENT\n\nTerm: 12 months", text)

	_, found, err = c.Get(Key("docx", "abc123"))
	require.NoError(t, err)
	assert.False(t, found, "format is part of the key")
}

func TestTextCache_EmptyTextIsAHit(t *testing.T) {
	c := openTestCache(t)
	require.NoError(t, c.Put("pdf:empty", ""))

	text, found, err := c.Get("pdf:empty")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, text)
}

func TestTextCache_ClearAndLen(t *testing.T) {
	c := openTestCache(t)
	require.NoError(t, c.Put("a", "1"))
	require.NoError(t, c.Put("b", "2"))

	n, err := c.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, c.Clear())
	n, err = c.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTextCache_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "text.db")
	c, err := OpenTextCache(path)
	require.NoError(t, err)
	require.NoError(t, c.Put("pdf:1", "persisted"))
	require.NoError(t, c.Close())

	c, err = OpenTextCache(path)
	require.NoError(t, err)
	defer c.Close()

	text, found, err := c.Get("pdf:1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "persisted", text)
}

func TestTextCache_Closed(t *testing.T) {
	c := openTestCache(t)
	require.NoError(t, c.Close())
	assert.NoError(t, c.Close())

	_, _, err := c.Get("k")
	assert.ErrorIs(t, err, ErrCacheClosed)
	assert.ErrorIs(t, c.Put("k", "v"), ErrCacheClosed)
}
