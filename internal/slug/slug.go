// Package slug derives canonical URL paths for content units and enforces
// corpus-wide uniqueness. URL stability matters for a published site, so a
// collision is an error here, never a silent rename.
package slug

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer strips combining marks so accented titles produce plain
// ASCII slugs ("café" -> "cafe").
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make derives the canonical slug for a title and publish date:
// the date as YYYY/MM/DD, then the lower-cased title with every run of
// non-alphanumeric characters collapsed to a single hyphen.
//
// Deterministic: the same (title, date) pair always yields the same slug.
func Make(title string, date time.Time) string {
	return date.Format("2006/01/02") + "/" + Kebab(title)
}

// Kebab lowercases s, folds accents away, and collapses every run of
// non-alphanumeric characters to a single hyphen, trimming leading and
// trailing separators. Also used for tag and category path segments.
func Kebab(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingSep := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}

	return b.String()
}
