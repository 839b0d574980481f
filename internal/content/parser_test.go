package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func src(path, body string) Source {
	return Source{Path: path, Content: []byte(body)}
}

func TestParseValidUnit(t *testing.T) {
	unit, err := Parse(src("posts/fix-429.md", `---
title: "Fix Error 429: Too Many Requests"
date: 2025-12-10
tags: [VBA, Troubleshooting]
categories: Troubleshooting
description: What error 429 means and how to back off.
keywords:
  - vba
  - http
---
Body text here.
`))
	require.NoError(t, err)

	assert.Equal(t, "posts/fix-429.md", unit.Source)
	assert.Equal(t, "Fix Error 429: Too Many Requests", unit.Title)
	assert.Equal(t, time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC), unit.Date)
	assert.Equal(t, []string{"VBA", "Troubleshooting"}, unit.Tags)
	assert.Equal(t, []string{"Troubleshooting"}, unit.Categories, "bare scalar category normalizes to a one-element sequence")
	assert.Equal(t, "What error 429 means and how to back off.", unit.Description)
	assert.Equal(t, []string{"vba", "http"}, unit.Keywords)
	assert.Equal(t, "Body text here.\n", unit.Body)
}

func TestParseCategoriesSequence(t *testing.T) {
	unit, err := Parse(src("a.md", `---
title: Post
date: 2025-01-02
categories:
  - Excel
  - Automation
---
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Excel", "Automation"}, unit.Categories)
}

func TestParseMissingTitle(t *testing.T) {
	_, err := Parse(src("a.md", "---\ndate: 2025-01-02\n---\nbody\n"))

	var mfe *MissingFieldError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, "title", mfe.Field)
	assert.Equal(t, "a.md", mfe.Source)
}

func TestParseEmptyTitleRejected(t *testing.T) {
	_, err := Parse(src("a.md", "---\ntitle: \"  \"\ndate: 2025-01-02\n---\n"))

	var mfe *MissingFieldError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, "title", mfe.Field)
}

func TestParseMissingDate(t *testing.T) {
	_, err := Parse(src("no-date.md", "---\ntitle: Post\n---\nbody\n"))

	var mfe *MissingFieldError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, "date", mfe.Field)
	assert.Equal(t, "no-date.md", mfe.Source)
}

func TestParseMalformedDate(t *testing.T) {
	_, err := Parse(src("bad-date.md", "---\ntitle: Post\ndate: next tuesday\n---\n"))

	var mde *MalformedDateError
	require.ErrorAs(t, err, &mde)
	assert.Equal(t, "bad-date.md", mde.Source)
	assert.Equal(t, "next tuesday", mde.Value)
}

func TestParseDateFormats(t *testing.T) {
	tests := []struct {
		name string
		date string
		want time.Time
	}{
		{"plain day", "2025-12-10", time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)},
		{"quoted day", `"2025-12-10"`, time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)},
		{"slash day", `"2025/12/10"`, time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)},
		{"space datetime", `"2025-12-10 08:30:00"`, time.Date(2025, 12, 10, 8, 30, 0, 0, time.UTC)},
		{"rfc3339", `"2025-12-10T08:30:00+02:00"`, time.Date(2025, 12, 10, 8, 30, 0, 0, time.FixedZone("", 2*3600))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, err := Parse(src("d.md", "---\ntitle: P\ndate: "+tt.date+"\n---\n"))
			require.NoError(t, err)
			assert.True(t, unit.Date.Equal(tt.want), "got %v want %v", unit.Date, tt.want)
		})
	}
}

func TestParseNoFrontmatter(t *testing.T) {
	_, err := Parse(src("plain.md", "just a body, no metadata\n"))

	var mfe *MissingFieldError
	require.ErrorAs(t, err, &mfe)
}

func TestParseUnknownFieldsPreserved(t *testing.T) {
	unit, err := Parse(src("a.md", `---
title: Post
date: 2025-01-02
layout: widepage
weight: 3
---
`))
	require.NoError(t, err)
	assert.Equal(t, "widepage", unit.Extra["layout"])
	assert.Equal(t, 3, unit.Extra["weight"])
	assert.NotContains(t, unit.Extra, "title")
}

func TestParseTagsDeduplicated(t *testing.T) {
	unit, err := Parse(src("a.md", "---\ntitle: P\ndate: 2025-01-02\ntags: [vba, excel, vba]\n---\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"vba", "excel"}, unit.Tags)
}

func TestParseIsPure(t *testing.T) {
	s := src("a.md", "---\ntitle: P\ndate: 2025-01-02\n---\nbody\n")
	first, err := Parse(s)
	require.NoError(t, err)
	second, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
