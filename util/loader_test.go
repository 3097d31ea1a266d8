package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.jpg", "a.PNG", "c.webp", "notes.txt", "d.jpeg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.jpg"), 0o755))

	paths, err := ListImages(dir)
	require.NoError(t, err)

	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	assert.Equal(t, []string{"a.PNG", "b.jpg", "c.webp", "d.jpeg"}, names)
}

func TestListImagesMissingDirectory(t *testing.T) {
	_, err := ListImages(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
