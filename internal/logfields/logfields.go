// Package logfields centralizes canonical slog attribute names so field keys
// do not drift between packages.
package logfields

import "log/slog"

const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeySource     = "source"
	KeySlug       = "slug"
	KeyPage       = "page"
	KeyKind       = "kind"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Source(path string) slog.Attr    { return slog.String(KeySource, path) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Page(path string) slog.Attr      { return slog.String(KeyPage, path) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
