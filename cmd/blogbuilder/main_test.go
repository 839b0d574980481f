package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syy321818/blogbuilder/internal/config"
	berrors "github.com/syy321818/blogbuilder/internal/errors"
)

func TestExitCodeByCategory(t *testing.T) {
	tests := []struct {
		category berrors.ErrorCategory
		want     int
	}{
		{berrors.CategoryConfig, 2},
		{berrors.CategoryValidation, 2},
		{berrors.CategoryPlan, 2},
		{berrors.CategoryContent, 3},
		{berrors.CategorySlug, 3},
		{berrors.CategoryHistory, 1},
		{berrors.CategoryInternal, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCode(tt.category), string(tt.category))
	}
}

func TestRunInitWritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blogbuilder.yaml")
	require.NoError(t, runInit(path, false))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "content", cfg.Content.Dir)
	assert.Equal(t, "site", cfg.Output.Dir)
}

func TestRunInitRefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blogbuilder.yaml")
	require.NoError(t, runInit(path, false))

	err := runInit(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	assert.NoError(t, runInit(path, true))
}

func TestRunBuildProducesOutput(t *testing.T) {
	contentDir := t.TempDir()
	outDir := t.TempDir()
	post := "---\ntitle: Hello\ndate: 2024-05-01\n---\nbody\n"
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "hello.md"), []byte(post), 0o600))

	cfg := config.Default(contentDir, outDir)
	require.NoError(t, runBuild(cfg))

	_, err := os.Stat(filepath.Join(outDir, "posts", "2024", "05", "01", "hello", "index.html"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "index.html"))
	assert.NoError(t, err)
}

func TestRunDiscoverReportsParseFailures(t *testing.T) {
	contentDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "bad.md"),
		[]byte("---\ntitle: No Date\n---\nbody\n"), 0o600))

	cfg := config.Default(contentDir, t.TempDir())
	assert.NoError(t, runDiscover(cfg))
}
