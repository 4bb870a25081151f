package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyContentType = "content_type"
	KeySlug        = "slug"
	KeyField       = "field"
	KeyPath        = "path"
	KeyRoute       = "route"
	KeyComponent   = "component"
	KeyDurationMS  = "duration_ms"
	KeyBuildID     = "build_id"
	KeyCount       = "count"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func ContentType(t string) slog.Attr  { return slog.String(KeyContentType, t) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Field(f string) slog.Attr        { return slog.String(KeyField, f) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Route(r string) slog.Attr        { return slog.String(KeyRoute, r) }
func Component(name string) slog.Attr { return slog.String(KeyComponent, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
