package render

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	berrors "github.com/syy321818/blogbuilder/internal/errors"
	"github.com/syy321818/blogbuilder/internal/index"
	"github.com/syy321818/blogbuilder/internal/logfields"
	"github.com/syy321818/blogbuilder/internal/plan"
)

// Dispatcher fans page plan entries out to a renderer across a bounded
// worker pool and writes successful results under the output directory.
//
// Semantics are best-effort batch: every entry is attempted, failures are
// collected and reported together, nothing is retried. Cancellation stops
// new dispatches; in-flight renders complete and their results are dropped.
type Dispatcher struct {
	renderer Renderer
	outDir   string
	workers  int
}

// NewDispatcher creates a dispatcher writing into outDir. workers <= 0 means
// one worker per logical CPU.
func NewDispatcher(renderer Renderer, outDir string, workers int) *Dispatcher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Dispatcher{renderer: renderer, outDir: outDir, workers: workers}
}

// Dispatch renders every entry. The returned failures are sorted by output
// path for stable reporting; rendered counts successful writes.
func (d *Dispatcher) Dispatch(ctx context.Context, entries []plan.Entry, ix *index.Indices, site SiteMeta) (rendered int, failures []RenderFailure) {
	jobs := make(chan plan.Entry)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				out, err := d.renderOne(ctx, entry, ix, site)
				mu.Lock()
				if err != nil {
					failures = append(failures, RenderFailure{
						OutputPath: entry.OutputPath,
						Err:        berrors.RenderError(entry.OutputPath, err),
					})
				} else if out {
					rendered++
				}
				mu.Unlock()
			}
		}()
	}

dispatch:
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- entry:
		}
	}
	close(jobs)
	wg.Wait()

	if ctx.Err() != nil {
		// Aborted run: in-flight renders were allowed to complete, but their
		// results are discarded.
		return 0, failures
	}

	sort.Slice(failures, func(i, j int) bool { return failures[i].OutputPath < failures[j].OutputPath })
	return rendered, failures
}

func (d *Dispatcher) renderOne(ctx context.Context, entry plan.Entry, ix *index.Indices, site SiteMeta) (bool, error) {
	page := Page{
		Entry: entry,
		Items: ix.Units(entry.Slugs),
		Site:  site,
	}

	body, err := d.renderer.Render(ctx, page)
	if err != nil {
		return false, err
	}

	outputPath := filepath.Join(d.outDir, filepath.FromSlash(entry.OutputPath))
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o750); err != nil {
		return false, err
	}
	// #nosec G306 -- rendered pages are public site content
	if err := os.WriteFile(outputPath, body, 0o644); err != nil {
		return false, err
	}

	slog.Debug("Rendered page", logfields.Page(entry.OutputPath), logfields.Kind(string(entry.Kind)))
	return true, nil
}
