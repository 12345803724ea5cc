// Package ui provides the confirmation dialog and the overlay compositing
// used by the picker.
package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/wsplus/internal/styles"
)

// widest returns the largest display width among lines.
func widest(lines []string) int {
	w := 0
	for _, line := range lines {
		if lw := ansi.StringWidth(line); lw > w {
			w = lw
		}
	}
	return w
}

// dimmed strips styling from s and renders it in the subtle color. Faint SGR
// does not combine reliably with existing colors.
func dimmed(s string) string {
	return styles.Subtle.Render(ansi.Strip(s))
}

// splice places fg over bg starting at column x. Background cells on either
// side are dimmed; short backgrounds are padded.
func splice(bg, fg string, x, fgWidth, width int) string {
	plain := ansi.Strip(bg)
	plainWidth := ansi.StringWidth(plain)

	var b strings.Builder
	if x > 0 {
		left := ansi.Truncate(plain, x, "")
		b.WriteString(dimmed(left))
		if lw := ansi.StringWidth(left); lw < x {
			b.WriteString(strings.Repeat(" ", x-lw))
		}
	}
	b.WriteString(fg)
	if end := x + fgWidth; end < width && plainWidth > end {
		b.WriteString(dimmed(ansi.Cut(plain, end, plainWidth)))
	}
	return b.String()
}

// Overlay centers fg over a dimmed bg within a width x height screen.
func Overlay(bg, fg string, width, height int) string {
	bgLines := strings.Split(bg, "\n")
	fgLines := strings.Split(fg, "\n")

	fgWidth := widest(fgLines)
	x := max((width-fgWidth)/2, 0)
	y := max((height-len(fgLines))/2, 0)

	out := make([]string, 0, height)
	for row := 0; row < height; row++ {
		line := ""
		if row < len(bgLines) {
			line = bgLines[row]
		}
		if i := row - y; i >= 0 && i < len(fgLines) {
			out = append(out, splice(line, fgLines[i], x, fgWidth, width))
			continue
		}
		out = append(out, dimmed(line))
	}
	return strings.Join(out, "\n")
}
