package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syy321818/blogbuilder/internal/content"
)

func unit(source, title string, date time.Time, tags, categories []string) *content.ContentUnit {
	return &content.ContentUnit{
		Source:     source,
		Title:      title,
		Date:       date,
		Tags:       tags,
		Categories: categories,
		Slug:       date.Format("2006/01/02") + "/" + source,
	}
}

func day(d int) time.Time {
	return time.Date(2025, 12, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildChronologicalDescending(t *testing.T) {
	units := []*content.ContentUnit{
		unit("old", "Old", day(1), nil, nil),
		unit("new", "New", day(20), nil, nil),
		unit("mid", "Mid", day(10), nil, nil),
	}

	ix, err := Build(units, PolicyFold)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"2025/12/20/new",
		"2025/12/10/mid",
		"2025/12/01/old",
	}, ix.Chronological)
}

func TestBuildStableTieBreak(t *testing.T) {
	units := []*content.ContentUnit{
		unit("a", "A", day(10), nil, nil),
		unit("b", "B", day(10), nil, nil),
		unit("c", "C", day(10), nil, nil),
	}

	ix, err := Build(units, PolicyFold)
	require.NoError(t, err)

	// Same date: ingestion order is preserved.
	assert.Equal(t, []string{
		"2025/12/10/a",
		"2025/12/10/b",
		"2025/12/10/c",
	}, ix.Chronological)
}

func TestBuildTieBreakFollowsOrdinal(t *testing.T) {
	a := unit("a", "A", day(10), nil, nil)
	b := unit("b", "B", day(10), nil, nil)
	c := unit("c", "C", day(10), nil, nil)
	a.Ordinal, b.Ordinal, c.Ordinal = 0, 1, 2

	// Slice order disagrees with ingestion order; the ordinal wins.
	ix, err := Build([]*content.ContentUnit{c, a, b}, PolicyFold)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"2025/12/10/a",
		"2025/12/10/b",
		"2025/12/10/c",
	}, ix.Chronological)
}

func TestBuildFirstSeenNamesNewestFirst(t *testing.T) {
	units := []*content.ContentUnit{
		unit("old", "Old", day(1), []string{"legacy", "shared"}, nil),
		unit("new", "New", day(20), []string{"fresh", "shared"}, nil),
	}

	ix, err := Build(units, PolicyFold)
	require.NoError(t, err)

	// Names are first-seen in newest-first order, so "fresh" precedes "legacy".
	assert.Equal(t, []string{"fresh", "shared", "legacy"}, ix.Tags.Names())
	assert.Equal(t, []string{"2025/12/20/new", "2025/12/01/old"}, ix.Tags.Slugs("shared"))
}

func TestBuildFoldPolicyMergesCase(t *testing.T) {
	units := []*content.ContentUnit{
		unit("pivots", "Pivots", day(10), []string{"vba", "excel-pivottables"}, nil),
		unit("fix429", "Fix 429", day(10), []string{"VBA", "Troubleshooting"}, nil),
	}

	ix, err := Build(units, PolicyFold)
	require.NoError(t, err)

	// "vba" and "VBA" merge; first-seen casing wins as the display form.
	assert.Equal(t, 3, ix.Tags.Len())
	assert.Equal(t, []string{"vba", "excel-pivottables", "Troubleshooting"}, ix.Tags.Names())
	assert.Len(t, ix.Tags.Slugs("VBA"), 2)
	assert.Len(t, ix.Tags.Slugs("vba"), 2)
}

func TestBuildStrictPolicyKeepsCaseDistinct(t *testing.T) {
	units := []*content.ContentUnit{
		unit("pivots", "Pivots", day(10), []string{"vba", "excel-pivottables"}, nil),
		unit("fix429", "Fix 429", day(10), []string{"VBA", "Troubleshooting"}, nil),
	}

	ix, err := Build(units, PolicyStrict)
	require.NoError(t, err)

	assert.Equal(t, 4, ix.Tags.Len())
	assert.Len(t, ix.Tags.Slugs("VBA"), 1)
	assert.Len(t, ix.Tags.Slugs("vba"), 1)
}

func TestBuildCategories(t *testing.T) {
	units := []*content.ContentUnit{
		unit("a", "A", day(5), nil, []string{"Troubleshooting"}),
		unit("b", "B", day(6), nil, []string{"Automation", "Troubleshooting"}),
	}

	ix, err := Build(units, PolicyFold)
	require.NoError(t, err)

	assert.Equal(t, []string{"Automation", "Troubleshooting"}, ix.Categories.Names())
	assert.Equal(t, []string{"2025/12/06/b", "2025/12/05/a"}, ix.Categories.Slugs("Troubleshooting"))
}

func TestBuildNoOrphans(t *testing.T) {
	units := []*content.ContentUnit{
		unit("a", "A", day(5), []string{"x"}, []string{"C"}),
		unit("b", "B", day(6), []string{"x", "y"}, nil),
	}

	ix, err := Build(units, PolicyFold)
	require.NoError(t, err)

	known := map[string]bool{}
	for _, s := range ix.Chronological {
		known[s] = true
	}
	for _, name := range ix.Tags.Names() {
		for _, s := range ix.Tags.Slugs(name) {
			assert.True(t, known[s], "tag slug %s missing from chronological index", s)
		}
	}
	for _, name := range ix.Categories.Names() {
		for _, s := range ix.Categories.Slugs(name) {
			assert.True(t, known[s], "category slug %s missing from chronological index", s)
		}
	}
}

func TestBuildRejectsMissingSlug(t *testing.T) {
	u := unit("a", "A", day(5), nil, nil)
	u.Slug = ""
	_, err := Build([]*content.ContentUnit{u}, PolicyFold)
	assert.Error(t, err)
}

func TestUnitLookup(t *testing.T) {
	u := unit("a", "A", day(5), nil, nil)
	ix, err := Build([]*content.ContentUnit{u}, PolicyFold)
	require.NoError(t, err)

	got, ok := ix.Unit(u.Slug)
	require.True(t, ok)
	assert.Equal(t, "A", got.Title)

	_, ok = ix.Unit("2099/01/01/ghost")
	assert.False(t, ok)
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	units := []*content.ContentUnit{
		unit("old", "Old", day(1), nil, nil),
		unit("new", "New", day(20), nil, nil),
	}

	_, err := Build(units, PolicyFold)
	require.NoError(t, err)

	// Input slice order is untouched; the builder sorts a copy.
	assert.Equal(t, "old", units[0].Source)
	assert.Equal(t, "new", units[1].Source)
}
