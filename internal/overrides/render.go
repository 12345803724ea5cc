// Package overrides applies per-leaf file overrides to a layout before it is
// shown: template paths are rendered, periodic notes are created on demand and
// leaves are pointed at the resolved files.
package overrides

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/marcus/wsplus/internal/datefmt"
	"github.com/marcus/wsplus/internal/host"
)

const (
	defaultDateFormat = "YYYY-MM-DD"
	defaultTimeFormat = "HH:mm"
)

var (
	dateTimeToken  = regexp.MustCompile(`(?i)\{\{\s*(date|time)\s*(([+-]\d+)([yqmwdhs]))?\s*(:.+?)?\}\}`)
	yesterdayToken = regexp.MustCompile(`(?i)\{\{\s*yesterday\s*\}\}`)
	tomorrowToken  = regexp.MustCompile(`(?i)\{\{\s*tomorrow\s*\}\}`)
)

// Renderer expands {{date}}, {{time}}, {{yesterday}} and {{tomorrow}} tokens.
//
//	{{date}}              today in the date format
//	{{time}}              now in the time format
//	{{date+1d}}           offset by N units of y, q, m (month), w, d, h or s
//	{{date-1w:gggg-[W]ww}} offset and explicit format
type Renderer struct {
	templates host.Templates
}

// NewRenderer creates a renderer using the host's template formats. A nil
// templates uses the defaults.
func NewRenderer(t host.Templates) *Renderer {
	return &Renderer{templates: t}
}

func (r *Renderer) formats() (date, tm string) {
	date, tm = defaultDateFormat, defaultTimeFormat
	if r.templates == nil {
		return date, tm
	}
	if f := r.templates.DateFormat(); f != "" {
		date = f
	}
	if f := r.templates.TimeFormat(); f != "" {
		tm = f
	}
	return date, tm
}

// Render expands every token in text relative to now.
func (r *Renderer) Render(text string, now time.Time) string {
	dateFormat, timeFormat := r.formats()

	text = dateTimeToken.ReplaceAllStringFunc(text, func(match string) string {
		m := dateTimeToken.FindStringSubmatch(match)
		kind, calc, delta, unit, explicit := strings.ToLower(m[1]), m[2], m[3], m[4], m[5]

		format := dateFormat
		if kind == "time" {
			format = timeFormat
		}
		t := now
		if calc != "" {
			n, err := strconv.Atoi(delta)
			if err == nil {
				t = shift(t, n, strings.ToLower(unit))
			}
		}
		if explicit != "" {
			format = strings.TrimSpace(explicit[1:])
		}
		return datefmt.Format(t, format)
	})
	text = yesterdayToken.ReplaceAllLiteralString(text, datefmt.Format(now.AddDate(0, 0, -1), dateFormat))
	text = tomorrowToken.ReplaceAllLiteralString(text, datefmt.Format(now.AddDate(0, 0, 1), dateFormat))
	return text
}

func shift(t time.Time, n int, unit string) time.Time {
	switch unit {
	case "y":
		return addMonths(t, 12*n)
	case "q":
		return addMonths(t, 3*n)
	case "m":
		return addMonths(t, n)
	case "w":
		return t.AddDate(0, 0, 7*n)
	case "d":
		return t.AddDate(0, 0, n)
	case "h":
		return t.Add(time.Duration(n) * time.Hour)
	case "s":
		return t.Add(time.Duration(n) * time.Second)
	}
	return t
}

// addMonths moves t by n months, clamping the day to the target month's
// length (Jan 31 + 1 month is the last day of February).
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := first.AddDate(0, n, 0)
	last := target.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
