package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const multiPost = `---
title: First
date: 2025-01-01
---
first body
<!-- blogbuilder:post -->
---
title: Second
date: 2025-01-02
---
second body
`

func TestSplitSourceDisabled(t *testing.T) {
	sources := SplitSource("a.md", []byte(multiPost), "")
	require.Len(t, sources, 1)
	assert.Equal(t, 0, sources[0].Part)
	assert.Equal(t, "a.md", sources[0].ID())
}

func TestSplitSourceNoMarker(t *testing.T) {
	raw := []byte("---\ntitle: Only\ndate: 2025-01-01\n---\nbody\n")
	sources := SplitSource("a.md", raw, DefaultSeparator)
	require.Len(t, sources, 1)
	assert.Equal(t, 0, sources[0].Part)
	assert.Equal(t, raw, sources[0].Content)
}

func TestSplitSourceMultiPost(t *testing.T) {
	sources := SplitSource("a.md", []byte(multiPost), DefaultSeparator)
	require.Len(t, sources, 2)

	assert.Equal(t, "a.md#1", sources[0].ID())
	assert.Equal(t, "a.md#2", sources[1].ID())

	first, err := Parse(sources[0])
	require.NoError(t, err)
	assert.Equal(t, "First", first.Title)
	assert.Equal(t, "first body\n", first.Body)

	second, err := Parse(sources[1])
	require.NoError(t, err)
	assert.Equal(t, "Second", second.Title)
	assert.Equal(t, "second body\n", second.Body)
}

func TestSplitSourceEmptySegmentsDropped(t *testing.T) {
	raw := "<!-- blogbuilder:post -->\n---\ntitle: Only\ndate: 2025-01-01\n---\nbody\n<!-- blogbuilder:post -->\n\n"
	sources := SplitSource("a.md", []byte(raw), DefaultSeparator)
	require.Len(t, sources, 1)
	assert.Equal(t, 1, sources[0].Part)

	unit, err := Parse(sources[0])
	require.NoError(t, err)
	assert.Equal(t, "Only", unit.Title)
}
