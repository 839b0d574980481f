// Package content discovers markdown sources, splits multi-post sources, and
// parses each source into a validated ContentUnit.
package content

import (
	"fmt"
	"time"
)

// Source is one logical markdown document awaiting parsing. A physical file
// usually maps to exactly one Source; files using the post separator marker
// map to several (Part carries the ordinal).
type Source struct {
	Path    string // path relative to the content root
	Part    int    // 0 for whole-file sources, 1-based ordinal for split parts
	Content []byte
}

// ID returns the identity of the source: the path, plus a part suffix when
// the physical file was split into several logical posts.
func (s Source) ID() string {
	if s.Part == 0 {
		return s.Path
	}
	return fmt.Sprintf("%s#%d", s.Path, s.Part)
}

// ContentUnit is one independently addressable article with validated
// metadata and an opaque body.
type ContentUnit struct {
	Source      string // identity: Source.ID() of the originating source
	Ordinal     int    // ingestion order across the corpus, breaks date ties in the chronological index
	Title       string
	Date        time.Time
	Tags        []string
	Categories  []string
	Description string
	Keywords    []string
	Extra       map[string]any // unrecognized frontmatter fields, preserved but ignored downstream
	Body        string

	// Lastmod is optional display metadata from git history. It never
	// substitutes for the required date field.
	Lastmod time.Time

	// Slug is assigned by the slug resolver after parsing.
	Slug string
}
