// Package styles holds the lipgloss palette and styles shared by the picker
// and the CLI. Colors switch between a dark and a light theme.
package styles

import "github.com/charmbracelet/lipgloss"

// Colors of the applied theme. ApplyTheme replaces them.
var (
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	TextMuted     lipgloss.Color
	TextSubtle    lipgloss.Color

	BgPrimary   lipgloss.Color
	BgSecondary lipgloss.Color
	BgTertiary  lipgloss.Color

	BorderNormal lipgloss.Color
	BorderActive lipgloss.Color

	// SelectedText is the foreground used on Primary backgrounds.
	SelectedText lipgloss.Color

	CurrentSyntaxTheme   string
	CurrentMarkdownTheme string
)

// Styles built from the colors above.
var (
	ModalBox lipgloss.Style
	Title    lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Subtle   lipgloss.Style
	KeyHint  lipgloss.Style

	ListItemNormal   lipgloss.Style
	ListItemSelected lipgloss.Style
	ListCursor       lipgloss.Style
	ActiveMarker     lipgloss.Style
	FuzzyMatchChar   lipgloss.Style
	Description      lipgloss.Style

	ButtonNormal  lipgloss.Style
	ButtonFocused lipgloss.Style
	ButtonDanger  lipgloss.Style

	StatusError  lipgloss.Style
	StatusNotice lipgloss.Style
)

func init() {
	ApplyTheme(ThemeDark)
}

func rebuildStyles() {
	ModalBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderActive).
		Padding(0, 1)

	Title = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)
	Body = lipgloss.NewStyle().Foreground(TextPrimary)
	Muted = lipgloss.NewStyle().Foreground(TextMuted)
	Subtle = lipgloss.NewStyle().Foreground(TextSubtle)
	KeyHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(BgTertiary).
		Padding(0, 1)

	ListItemNormal = lipgloss.NewStyle().Foreground(TextPrimary)
	ListItemSelected = lipgloss.NewStyle().
		Foreground(SelectedText).
		Background(Primary)
	ListCursor = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	ActiveMarker = lipgloss.NewStyle().Foreground(Success).Bold(true)
	FuzzyMatchChar = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	Description = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)

	ButtonNormal = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(BgTertiary).
		Padding(0, 1)
	ButtonFocused = lipgloss.NewStyle().
		Foreground(SelectedText).
		Background(Primary).
		Bold(true).
		Padding(0, 1)
	ButtonDanger = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(Error).
		Bold(true).
		Padding(0, 1)

	StatusError = lipgloss.NewStyle().Foreground(Error)
	StatusNotice = lipgloss.NewStyle().Foreground(Success)
}

// Resolve maps a configured theme ("auto", "dark", "light") to a theme name.
// For "auto" the host's applied theme wins when known, then the terminal
// background.
func Resolve(configured, hostTheme string) string {
	switch configured {
	case ThemeDark, ThemeLight:
		return configured
	}
	switch hostTheme {
	case "obsidian", "dark":
		return ThemeDark
	case "moonstone", "light":
		return ThemeLight
	}
	if lipgloss.HasDarkBackground() {
		return ThemeDark
	}
	return ThemeLight
}
