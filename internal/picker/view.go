package picker

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/marcus/wsplus/internal/styles"
	"github.com/marcus/wsplus/internal/ui"
)

const defaultWidth = 60

// View implements tea.Model.
func (m Model) View() string {
	s := m.state
	if s.Closed {
		return ""
	}
	width := defaultWidth
	if m.width > 0 && m.width-4 < width {
		width = max(m.width-4, 30)
	}
	inner := width - 4

	var b strings.Builder
	b.WriteString(styles.Title.Render(strings.ToUpper(s.Kind.String()[:1]) + s.Kind.String()[1:]))
	b.WriteString("\n")
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")
	b.WriteString(m.renderList(inner))

	if m.ctl.Config().ShowInstructions {
		b.WriteString("\n\n")
		b.WriteString(m.renderInstructions(inner))
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styles.StatusError.Render(m.err.Error()))
	} else if s.Notice != "" {
		b.WriteString("\n")
		b.WriteString(styles.StatusNotice.Render(s.Notice))
	}

	box := styles.ModalBox.Width(width - 2).Render(b.String())
	if m.dialog == nil {
		return box
	}
	if m.width == 0 || m.height == 0 {
		return box + "\n" + m.dialog.Render()
	}
	return ui.Overlay(box, m.dialog.Render(), m.width, m.height)
}

func (m Model) renderList(width int) string {
	s := m.state
	if len(s.Matches) == 0 {
		msg := "No match found."
		if strings.TrimSpace(s.Filter) != "" {
			msg += " Shift+Enter to save as new " + s.Kind.Noun() + "."
		}
		return styles.Muted.Render(msg)
	}

	labelWidth := 0
	for _, match := range s.Matches {
		labelWidth = max(labelWidth, runewidth.StringWidth(match.Label))
	}
	labelWidth = min(labelWidth, max(width-14, 8))

	var lines []string
	if s.Scroll > 0 {
		lines = append(lines, styles.Muted.Render(fmt.Sprintf("  ↑ %d more above", s.Scroll)))
	}
	end := min(s.Scroll+maxVisible, len(s.Matches))
	for i := s.Scroll; i < end; i++ {
		lines = append(lines, m.renderRow(s.Matches[i], i == s.Selected, labelWidth))
		if desc := s.Matches[i].Description; desc != "" {
			lines = append(lines, "    "+styles.Description.Render(runewidth.Truncate(desc, width-4, "…")))
		}
	}
	if rest := len(s.Matches) - end; rest > 0 {
		lines = append(lines, styles.Muted.Render(fmt.Sprintf("  ↓ %d more below", rest)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(match Match, selected bool, labelWidth int) string {
	cursor := "  "
	if selected {
		cursor = styles.ListCursor.Render("> ")
	}
	marker := " "
	if match.Active {
		marker = styles.ActiveMarker.Render("✓")
	}

	var label string
	if selected && m.state.Renaming {
		label = m.rename.View()
	} else {
		text := runewidth.Truncate(match.Label, labelWidth, "…")
		label = highlight(text, match.Indexes, selected)
		label += strings.Repeat(" ", max(labelWidth-runewidth.StringWidth(text), 0))
	}

	platform := "desktop"
	if match.Mobile {
		platform = "mobile"
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cursor, marker, " ", label, "  ", styles.Subtle.Render(platform))
}

// highlight renders the matched byte offsets of text in the match style.
func highlight(text string, indexes []int, selected bool) string {
	base := styles.ListItemNormal
	if selected {
		base = styles.ListItemSelected
	}
	if len(indexes) == 0 {
		return base.Render(text)
	}
	var b strings.Builder
	for i, r := range text {
		if slices.Contains(indexes, i) {
			b.WriteString(styles.FuzzyMatchChar.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}
	return b.String()
}

func (m Model) renderInstructions(width int) string {
	var parts []string
	for _, kb := range m.keys.Instructions(m.ctl.Config().SaveOnChange) {
		h := kb.Help()
		parts = append(parts, styles.KeyHint.Render(h.Key)+" "+styles.Muted.Render(h.Desc))
	}
	var lines []string
	line := ""
	for _, p := range parts {
		if line != "" && lipgloss.Width(line)+2+lipgloss.Width(p) > width {
			lines = append(lines, line)
			line = ""
		}
		if line != "" {
			line += "  "
		}
		line += p
	}
	if line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
