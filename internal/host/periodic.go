package host

import (
	"path"
	"strings"
	"time"

	"github.com/marcus/wsplus/internal/datefmt"
)

var defaultFormats = map[Granularity]string{
	Day:     "YYYY-MM-DD",
	Week:    "gggg-[W]ww",
	Month:   "YYYY-MM",
	Quarter: "YYYY-[Q]Q",
	Year:    "YYYY",
}

// DefaultFormat returns the note name format used when a series has none configured.
func DefaultFormat(g Granularity) string {
	return defaultFormats[g]
}

// FormatFor returns the configured format, falling back to the default for g.
func (s PeriodicSettings) FormatFor(g Granularity) string {
	if s.Format != "" {
		return s.Format
	}
	return DefaultFormat(g)
}

// NotePath returns the vault path of the note for the period containing date.
func (s PeriodicSettings) NotePath(g Granularity, date time.Time) string {
	name := datefmt.Format(date, s.FormatFor(g)) + ".md"
	return NormalizePath(path.Join(s.Folder, name))
}

// NormalizePath cleans a vault-relative path: forward slashes, no leading
// slash or "./".
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p)
	return strings.TrimPrefix(p, "/")
}
