package content

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/syy321818/blogbuilder/internal/logfields"
)

// markdownExtensions lists file extensions considered content sources.
var markdownExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
}

// Discovery finds markdown sources under a content root.
type Discovery struct {
	root      string
	separator string
}

// NewDiscovery creates a discovery rooted at dir. separator is the multi-post
// split marker (empty disables splitting).
func NewDiscovery(dir, separator string) *Discovery {
	return &Discovery{root: dir, separator: separator}
}

// Discover walks the content root and returns all logical sources in
// deterministic (lexical walk) order. Hidden files and directories are
// skipped.
func (d *Discovery) Discover() ([]Source, error) {
	info, err := os.Stat(d.root)
	if err != nil {
		return nil, fmt.Errorf("content root %s: %w", d.root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content root %s is not a directory", d.root)
	}

	var sources []Source
	err = filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") && path != d.root {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if !markdownExtensions[strings.ToLower(filepath.Ext(name))] {
			return nil
		}

		raw, err := os.ReadFile(path) // #nosec G304 -- paths come from walking the configured content root
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		parts := SplitSource(rel, raw, d.separator)
		if len(parts) > 1 {
			slog.Debug("Split multi-post source", logfields.Source(rel), logfields.Count(len(parts)))
		}
		sources = append(sources, parts...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Discovered content sources", logfields.Count(len(sources)))
	return sources, nil
}
