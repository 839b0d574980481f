package gitmeta

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitFile(t *testing.T, repo *git.Repository, dir, rel, body string, when time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, rel)), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, rel), []byte(body), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(rel)
	require.NoError(t, err)
	_, err = wt.Commit("update "+rel, &git.CommitOptions{
		Author:    &object.Signature{Name: "test", Email: "test@example.com", When: when},
		Committer: &object.Signature{Name: "test", Email: "test@example.com", When: when},
	})
	require.NoError(t, err)
}

func TestOpenOutsideRepository(t *testing.T) {
	e, err := Open(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, e, "no repo means no enricher, not an error")
}

func TestLastmod(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	first := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	second := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	commitFile(t, repo, dir, "posts/a.md", "v1", first)
	commitFile(t, repo, dir, "posts/a.md", "v2", second)
	commitFile(t, repo, dir, "posts/b.md", "v1", first)

	e, err := Open(filepath.Join(dir, "posts"))
	require.NoError(t, err)
	require.NotNil(t, e)

	got, err := e.Lastmod(filepath.Join(dir, "posts"), "a.md")
	require.NoError(t, err)
	assert.True(t, got.Equal(second), "latest commit wins, got %v", got)

	got, err = e.Lastmod(filepath.Join(dir, "posts"), "b.md")
	require.NoError(t, err)
	assert.True(t, got.Equal(first))
}

func TestLastmodUntrackedFile(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	commitFile(t, repo, dir, "a.md", "v1", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.md"), []byte("x"), 0o644))

	e, err := Open(dir)
	require.NoError(t, err)

	got, err := e.Lastmod(dir, "new.md")
	require.NoError(t, err)
	assert.True(t, got.IsZero(), "untracked file has no lastmod")
}

func TestNilEnricherIsSafe(t *testing.T) {
	var e *Enricher
	got, err := e.Lastmod("anywhere", "a.md")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}
