// Package render hands page plan entries to a renderer and collects the
// results. The Renderer interface is the external collaborator boundary; the
// pipeline core makes no assumptions about what a renderer does beyond the
// page-in, bytes-out contract.
package render

import (
	"context"
	"fmt"

	"github.com/syy321818/blogbuilder/internal/content"
	"github.com/syy321818/blogbuilder/internal/plan"
)

// SiteMeta is the site-wide metadata handed to the renderer with every page.
type SiteMeta struct {
	Title       string
	BaseURL     string
	Description string
}

// Page is the sole input contract to a renderer: one plan entry plus the
// resolved content units it references, in order.
type Page struct {
	Entry plan.Entry
	Items []*content.ContentUnit
	Site  SiteMeta
}

// Renderer materializes one page. Implementations must be safe for
// concurrent use; the dispatcher calls Render from multiple workers.
type Renderer interface {
	Render(ctx context.Context, page Page) ([]byte, error)
}

// RenderFailure tags a failed render with the originating entry's output
// path. Failures are collected, never retried by the core.
type RenderFailure struct {
	OutputPath string
	Err        error
}

func (f RenderFailure) Error() string {
	return fmt.Sprintf("render %s: %v", f.OutputPath, f.Err)
}

func (f RenderFailure) Unwrap() error { return f.Err }
