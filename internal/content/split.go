package content

import (
	"bytes"
	"strings"
)

// DefaultSeparator is the marker line that splits one physical file into
// several logical posts. An empty marker in the configuration disables
// splitting entirely.
const DefaultSeparator = "<!-- blogbuilder:post -->"

// SplitSource expands one physical source into its logical posts.
//
// A line exactly matching the separator marker (ignoring surrounding
// whitespace) is a split boundary; each resulting segment must carry its own
// frontmatter block and is parsed under the same rules as a whole file. When
// the marker never occurs, or the marker is empty, the file is exactly one
// Source with Part 0.
func SplitSource(path string, raw []byte, separator string) []Source {
	if separator == "" {
		return []Source{{Path: path, Content: raw}}
	}

	var segments [][]byte
	var current [][]byte
	for _, line := range bytes.SplitAfter(raw, []byte("\n")) {
		if strings.TrimSpace(string(line)) == separator {
			segments = append(segments, bytes.Join(current, nil))
			current = nil
			continue
		}
		current = append(current, line)
	}
	segments = append(segments, bytes.Join(current, nil))

	if len(segments) == 1 {
		return []Source{{Path: path, Content: raw}}
	}

	sources := make([]Source, 0, len(segments))
	part := 0
	for _, seg := range segments {
		trimmed := bytes.TrimLeft(seg, "\r\n")
		if len(bytes.TrimSpace(trimmed)) == 0 {
			continue
		}
		part++
		sources = append(sources, Source{Path: path, Part: part, Content: trimmed})
	}
	return sources
}
