package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestDiscoverWalksMarkdown(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "first.md", "---\ntitle: A\ndate: 2025-01-01\n---\n")
	writeFile(t, root, "sub/second.markdown", "---\ntitle: B\ndate: 2025-01-02\n---\n")
	writeFile(t, root, "ignore.txt", "not content")
	writeFile(t, root, ".hidden/skip.md", "---\ntitle: H\ndate: 2025-01-03\n---\n")

	sources, err := NewDiscovery(root, "").Discover()
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, "first.md", sources[0].Path)
	assert.Equal(t, "sub/second.markdown", sources[1].Path)
}

func TestDiscoverSplitsMultiPostFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "combined.md", multiPost)

	sources, err := NewDiscovery(root, DefaultSeparator).Discover()
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "combined.md#1", sources[0].ID())
	assert.Equal(t, "combined.md#2", sources[1].ID())
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := NewDiscovery(filepath.Join(t.TempDir(), "nope"), "").Discover()
	assert.Error(t, err)
}

func TestDiscoverDeterministicOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.md", "---\ntitle: B\ndate: 2025-01-01\n---\n")
	writeFile(t, root, "a.md", "---\ntitle: A\ndate: 2025-01-02\n---\n")
	writeFile(t, root, "c.md", "---\ntitle: C\ndate: 2025-01-03\n---\n")

	first, err := NewDiscovery(root, "").Discover()
	require.NoError(t, err)
	second, err := NewDiscovery(root, "").Discover()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "a.md", first[0].Path)
}
