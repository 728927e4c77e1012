package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStoreSaveOpenRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir)
	require.NoError(t, err)

	loc, err := store.Save(context.Background(), strings.NewReader("hello"), ".txt")
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(loc))
	assert.True(t, strings.HasSuffix(loc, ".txt"))

	rc, err := store.Open(loc)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Remove(loc))
	_, err = os.Stat(loc)
	assert.True(t, os.IsNotExist(err))

	// Removing again still succeeds.
	assert.NoError(t, store.Remove(loc))
}

func TestDiskStoreRandomNames(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	a, err := store.Save(context.Background(), strings.NewReader("a"), ".txt")
	require.NoError(t, err)
	b, err := store.Save(context.Background(), strings.NewReader("b"), ".txt")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDiskStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := NewDiskStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSanitizeExt(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{".txt", ".txt"},
		{".PDF", ".pdf"},
		{"txt", ""},
		{"", ""},
		{".t x t", ""},
		{"../../etc/passwd", ""},
		{".averyveryverylongext", ""},
		{".tar.gz", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, sanitizeExt(tc.in), "input %q", tc.in)
	}
}
