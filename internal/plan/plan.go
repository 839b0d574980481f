// Package plan computes the full set of output pages for one run from the
// index snapshot. The plan is computed fresh every run, never mutated after,
// and consumed once by the render dispatcher.
package plan

import (
	"fmt"
	"path"

	"github.com/syy321818/blogbuilder/internal/index"
	"github.com/syy321818/blogbuilder/internal/slug"
)

// Kind enumerates the page types a run emits.
type Kind string

const (
	KindPost     Kind = "post"
	KindTag      Kind = "tag"
	KindCategory Kind = "category"
	KindIndex    Kind = "index"
)

// DefaultPageSize is the listing page size when the configuration does not
// set one.
const DefaultPageSize = 10

// InvalidConfigError reports a pagination configuration the generator cannot
// work with. No partial plan is produced.
type InvalidConfigError struct {
	Field string
	Value int
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s = %d (must be a positive integer)", e.Field, e.Value)
}

// ListingPathError reports two distinct listing names flattening to the same
// output directory. The plan is rejected rather than letting one listing
// silently overwrite the other at render time.
type ListingPathError struct {
	Kind   Kind
	Path   string
	First  string
	Second string
}

func (e *ListingPathError) Error() string {
	return fmt.Sprintf("%s listings %q and %q both map to %s", e.Kind, e.First, e.Second, e.Path)
}

// Entry represents one output page.
type Entry struct {
	Kind       Kind
	OutputPath string   // site-relative path of the rendered page
	Name       string   // display name for tag/category listings, title for posts
	Slugs      []string // content units this page renders, in order
	PageNumber int      // 1-indexed for paginated kinds, 1 otherwise
	TotalPages int
}

// ValidatePageSize fails fast on a non-positive page size. Called before any
// indices are built so a bad configuration never produces partial output.
func ValidatePageSize(pageSize int) error {
	if pageSize <= 0 {
		return &InvalidConfigError{Field: "pagination.page_size", Value: pageSize}
	}
	return nil
}

// Generate computes the ordered page plan: one post page per unit, paginated
// listings per tag and per category, and the paginated chronological index.
func Generate(ix *index.Indices, pageSize int) ([]Entry, error) {
	if err := ValidatePageSize(pageSize); err != nil {
		return nil, err
	}

	var entries []Entry

	for _, s := range ix.Chronological {
		unit, ok := ix.Unit(s)
		if !ok {
			return nil, fmt.Errorf("plan references unknown slug %s", s)
		}
		entries = append(entries, Entry{
			Kind:       KindPost,
			OutputPath: path.Join("posts", s, "index.html"),
			Name:       unit.Title,
			Slugs:      []string{s},
			PageNumber: 1,
			TotalPages: 1,
		})
	}

	tags, err := listingEntries(KindTag, "tags", ix.Tags, pageSize)
	if err != nil {
		return nil, err
	}
	categories, err := listingEntries(KindCategory, "categories", ix.Categories, pageSize)
	if err != nil {
		return nil, err
	}
	entries = append(entries, tags...)
	entries = append(entries, categories...)
	entries = append(entries, paginate(KindIndex, "", "", ix.Chronological, pageSize)...)

	return entries, nil
}

// listingEntries emits the paginated listing pages for every name in a name
// index. Names with no remaining members are dropped, not emitted empty.
// Distinct names kebabing to the same directory are a ListingPathError.
func listingEntries(kind Kind, base string, ni *index.NameIndex, pageSize int) ([]Entry, error) {
	var entries []Entry
	claimed := make(map[string]string)
	for _, name := range ni.Names() {
		slugs := ni.Slugs(name)
		if len(slugs) == 0 {
			continue
		}
		dir := path.Join(base, slug.Kebab(name))
		if first, ok := claimed[dir]; ok {
			return nil, &ListingPathError{Kind: kind, Path: dir, First: first, Second: name}
		}
		claimed[dir] = name
		entries = append(entries, paginate(kind, dir, name, slugs, pageSize)...)
	}
	return entries, nil
}

// paginate slices items into 1-indexed pages: totalPages = ceil(n/pageSize),
// page N holds items [(N-1)*pageSize, N*pageSize). Page 1 lands at
// dir/index.html, later pages at dir/page/N/index.html.
func paginate(kind Kind, dir, name string, items []string, pageSize int) []Entry {
	total := (len(items) + pageSize - 1) / pageSize
	if total == 0 {
		total = 1
	}

	entries := make([]Entry, 0, total)
	for page := 1; page <= total; page++ {
		lo := (page - 1) * pageSize
		hi := lo + pageSize
		if hi > len(items) {
			hi = len(items)
		}

		out := path.Join(dir, "index.html")
		if page > 1 {
			out = path.Join(dir, "page", fmt.Sprintf("%d", page), "index.html")
		}

		entries = append(entries, Entry{
			Kind:       kind,
			OutputPath: out,
			Name:       name,
			Slugs:      append([]string(nil), items[lo:hi]...),
			PageNumber: page,
			TotalPages: total,
		})
	}
	return entries
}
