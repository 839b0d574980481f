// Package index aggregates parsed content units into the tag, category, and
// chronological indices. The builder owns the indices only while building;
// the returned snapshot is immutable and safe to share.
package index

import (
	"fmt"
	"sort"
	"strings"

	"github.com/syy321818/blogbuilder/internal/content"
)

// Policy controls how tag and category names merge.
type Policy string

const (
	// PolicyFold merges names case-insensitively; the first-seen casing
	// (newest-first order) becomes the canonical display form.
	PolicyFold Policy = "fold"
	// PolicyStrict keeps differently-cased names distinct.
	PolicyStrict Policy = "strict"
)

// NameIndex maps tag or category names to the slugs carrying them. Name
// order is first-seen while walking the corpus newest-first, so freshly
// introduced names surface before rarely used legacy ones.
type NameIndex struct {
	names   []string            // display names in first-seen order
	members map[string][]string // merge key -> slugs in chronological order
	display map[string]string   // merge key -> display name
	policy  Policy
}

func newNameIndex(policy Policy) *NameIndex {
	return &NameIndex{
		members: make(map[string][]string),
		display: make(map[string]string),
		policy:  policy,
	}
}

func (n *NameIndex) key(name string) string {
	if n.policy == PolicyFold {
		return strings.ToLower(name)
	}
	return name
}

func (n *NameIndex) add(name, slug string) {
	k := n.key(name)
	if _, seen := n.display[k]; !seen {
		n.display[k] = name
		n.names = append(n.names, name)
	}
	n.members[k] = append(n.members[k], slug)
}

// Names returns display names in first-seen order.
func (n *NameIndex) Names() []string {
	out := make([]string, len(n.names))
	copy(out, n.names)
	return out
}

// Slugs returns the member slugs for a name (matched under the index
// policy), in chronological-descending order.
func (n *NameIndex) Slugs(name string) []string {
	members := n.members[n.key(name)]
	out := make([]string, len(members))
	copy(out, members)
	return out
}

// Len returns the number of distinct names.
func (n *NameIndex) Len() int { return len(n.names) }

// Indices is the immutable result of one index build.
type Indices struct {
	Tags          *NameIndex
	Categories    *NameIndex
	Chronological []string // slugs, newest first

	units map[string]*content.ContentUnit
}

// Unit resolves a slug back to its content unit.
func (ix *Indices) Unit(slug string) (*content.ContentUnit, bool) {
	u, ok := ix.units[slug]
	return u, ok
}

// Units resolves a slug list, preserving order. Unknown slugs are skipped.
func (ix *Indices) Units(slugs []string) []*content.ContentUnit {
	out := make([]*content.ContentUnit, 0, len(slugs))
	for _, s := range slugs {
		if u, ok := ix.units[s]; ok {
			out = append(out, u)
		}
	}
	return out
}

// Build consumes the full set of successfully parsed units and produces the
// three indices. Units must already carry their slugs. Date ties break on
// the ingestion ordinal, so the result does not depend on slice order.
func Build(units []*content.ContentUnit, policy Policy) (*Indices, error) {
	if policy == "" {
		policy = PolicyFold
	}

	ordered := make([]*content.ContentUnit, len(units))
	copy(ordered, units)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.After(ordered[j].Date)
		}
		return ordered[i].Ordinal < ordered[j].Ordinal
	})

	ix := &Indices{
		Tags:       newNameIndex(policy),
		Categories: newNameIndex(policy),
		units:      make(map[string]*content.ContentUnit, len(ordered)),
	}

	for _, u := range ordered {
		if u.Slug == "" {
			return nil, fmt.Errorf("unit %s has no slug assigned", u.Source)
		}
		ix.Chronological = append(ix.Chronological, u.Slug)
		ix.units[u.Slug] = u

		for _, tag := range u.Tags {
			ix.Tags.add(tag, u.Slug)
		}
		for _, cat := range u.Categories {
			ix.Categories.add(cat, u.Slug)
		}
	}

	if err := ix.validate(); err != nil {
		return nil, err
	}
	return ix, nil
}

// validate checks referential consistency: every slug referenced by a name
// index appears in the chronological index.
func (ix *Indices) validate() error {
	known := make(map[string]struct{}, len(ix.Chronological))
	for _, s := range ix.Chronological {
		known[s] = struct{}{}
	}
	for _, ni := range []*NameIndex{ix.Tags, ix.Categories} {
		for _, slugs := range ni.members {
			for _, s := range slugs {
				if _, ok := known[s]; !ok {
					return fmt.Errorf("orphaned slug %s referenced by index", s)
				}
			}
		}
	}
	return nil
}
