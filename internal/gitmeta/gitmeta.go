// Package gitmeta enriches content units with last-modified timestamps from
// the git history of the content directory. The enrichment is display
// metadata only; a missing date field still rejects the unit.
package gitmeta

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/syy321818/blogbuilder/internal/logfields"
)

// Enricher resolves per-file last-commit dates from a git worktree.
type Enricher struct {
	repo     *git.Repository
	workRoot string // absolute path of the worktree root
}

// Open locates the repository containing dir. A dir outside any git
// worktree is not an error; Open returns (nil, nil) and enrichment is
// skipped.
func Open(dir string) (*Enricher, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if err == git.ErrRepositoryNotExists {
			return nil, nil
		}
		return nil, fmt.Errorf("open git repository for %s: %w", dir, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("resolve worktree: %w", err)
	}

	return &Enricher{repo: repo, workRoot: wt.Filesystem.Root()}, nil
}

// Lastmod returns the most recent commit date touching the file at path
// (relative to dir as passed to callers). A file with no history yields the
// zero time and no error.
func (e *Enricher) Lastmod(contentDir, relPath string) (time.Time, error) {
	if e == nil {
		return time.Time{}, nil
	}

	abs, err := filepath.Abs(filepath.Join(contentDir, filepath.FromSlash(relPath)))
	if err != nil {
		return time.Time{}, err
	}
	repoRel, err := filepath.Rel(e.workRoot, abs)
	if err != nil || strings.HasPrefix(repoRel, "..") {
		return time.Time{}, nil
	}
	repoRel = filepath.ToSlash(repoRel)

	iter, err := e.repo.Log(&git.LogOptions{FileName: &repoRel})
	if err != nil {
		return time.Time{}, fmt.Errorf("git log %s: %w", repoRel, err)
	}
	defer iter.Close()

	commit, err := iter.Next()
	if err != nil {
		// No history for this file (new or renamed); not an error.
		return time.Time{}, nil
	}

	return commitDate(commit), nil
}

func commitDate(c *object.Commit) time.Time {
	return c.Committer.When.UTC()
}

// LogSkipped notes once that enrichment is off because no repository was
// found.
func LogSkipped(dir string) {
	slog.Debug("No git repository found, lastmod enrichment skipped", logfields.Source(dir))
}
