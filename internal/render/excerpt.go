package render

import (
	"bytes"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// Excerpt reduces rendered HTML to a plain-text excerpt of at most limit
// runes, cut at a word boundary with an ellipsis. Used for listing entries
// when a unit carries no description.
func Excerpt(rendered []byte, limit int) string {
	doc, err := html.Parse(bytes.NewReader(rendered))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	text := strings.Join(strings.Fields(b.String()), " ")
	if limit <= 0 || len([]rune(text)) <= limit {
		return text
	}

	runes := []rune(text)[:limit]
	// Back up to the last word boundary so we never cut mid-word.
	cut := len(runes)
	for cut > 0 && !unicode.IsSpace(runes[cut-1]) {
		cut--
	}
	if cut == 0 {
		cut = len(runes)
	}
	return strings.TrimSpace(string(runes[:cut])) + "…"
}
