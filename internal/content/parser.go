package content

import (
	"fmt"
	"strings"
	"time"

	"github.com/syy321818/blogbuilder/internal/frontmatter"
)

// Recognized frontmatter fields. Anything else is preserved in Extra and
// ignored by downstream stages.
const (
	fieldTitle       = "title"
	fieldDate        = "date"
	fieldTags        = "tags"
	fieldCategories  = "categories"
	fieldDescription = "description"
	fieldKeywords    = "keywords"
)

// dateLayouts are tried in order for string-valued date fields. yaml.v3
// already decodes unquoted timestamp-shaped scalars into time.Time; these
// cover the quoted and non-canonical forms seen in real corpora.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// Parse turns one source into a ContentUnit or an error. It is a pure
// function: no I/O, no retained state.
//
// Required fields are title and date; a unit missing either is rejected with
// MissingFieldError, and an unparseable date yields MalformedDateError.
func Parse(src Source) (*ContentUnit, error) {
	fm, body, had, _, err := frontmatter.Split(src.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.ID(), err)
	}
	if !had {
		return nil, &MissingFieldError{Source: src.ID(), Field: fieldTitle}
	}

	fields, err := frontmatter.Parse(fm)
	if err != nil {
		return nil, fmt.Errorf("%s: parse frontmatter: %w", src.ID(), err)
	}

	unit := &ContentUnit{
		Source: src.ID(),
		Body:   string(body),
	}

	title, ok := scalarString(fields[fieldTitle])
	if !ok || strings.TrimSpace(title) == "" {
		return nil, &MissingFieldError{Source: src.ID(), Field: fieldTitle}
	}
	unit.Title = strings.TrimSpace(title)

	rawDate, present := fields[fieldDate]
	if !present || rawDate == nil {
		return nil, &MissingFieldError{Source: src.ID(), Field: fieldDate}
	}
	date, err := coerceDate(rawDate)
	if err != nil {
		return nil, &MalformedDateError{Source: src.ID(), Value: fmt.Sprint(rawDate)}
	}
	unit.Date = date

	unit.Tags = stringList(fields[fieldTags], true)
	unit.Categories = stringList(fields[fieldCategories], false)
	unit.Keywords = stringList(fields[fieldKeywords], true)

	if desc, ok := scalarString(fields[fieldDescription]); ok {
		unit.Description = desc
	}

	for k, v := range fields {
		switch k {
		case fieldTitle, fieldDate, fieldTags, fieldCategories, fieldDescription, fieldKeywords:
		default:
			if unit.Extra == nil {
				unit.Extra = make(map[string]any)
			}
			unit.Extra[k] = v
		}
	}

	return unit, nil
}

// scalarString coerces a scalar frontmatter value to its string form.
func scalarString(v any) (string, bool) {
	switch vv := v.(type) {
	case string:
		return vv, true
	case int, int64, float64, bool:
		return fmt.Sprint(vv), true
	default:
		return "", false
	}
}

// stringList normalizes a list-valued field. Both inline and block sequences
// arrive as []any; a bare scalar is treated as a one-element list (some
// inputs encode a single category that way). When unique is true, duplicates
// are dropped while keeping first-seen order.
func stringList(v any, unique bool) []string {
	var items []string
	switch vv := v.(type) {
	case nil:
		return nil
	case []any:
		for _, item := range vv {
			if s, ok := scalarString(item); ok && strings.TrimSpace(s) != "" {
				items = append(items, strings.TrimSpace(s))
			}
		}
	default:
		if s, ok := scalarString(vv); ok && strings.TrimSpace(s) != "" {
			items = append(items, strings.TrimSpace(s))
		}
	}

	if !unique || len(items) < 2 {
		return items
	}

	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, s := range items {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// coerceDate accepts the forms yaml.v3 produces for date-like values.
func coerceDate(v any) (time.Time, error) {
	switch vv := v.(type) {
	case time.Time:
		return vv, nil
	case string:
		s := strings.TrimSpace(vv)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unsupported date format %q", vv)
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", v)
	}
}
