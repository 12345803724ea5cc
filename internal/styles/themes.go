package styles

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// themeMu guards the registry and the current theme name.
var themeMu sync.RWMutex

var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}([0-9A-Fa-f]{2})?$`)

// ColorPalette holds the colors a theme defines.
type ColorPalette struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`

	Success string `json:"success"`
	Warning string `json:"warning"`
	Error   string `json:"error"`
	Info    string `json:"info"`

	TextPrimary   string `json:"textPrimary"`
	TextSecondary string `json:"textSecondary"`
	TextMuted     string `json:"textMuted"`
	TextSubtle    string `json:"textSubtle"`

	BgPrimary   string `json:"bgPrimary"`
	BgSecondary string `json:"bgSecondary"`
	BgTertiary  string `json:"bgTertiary"`

	BorderNormal string `json:"borderNormal"`
	BorderActive string `json:"borderActive"`

	// Chroma and glamour style names used by `wsplus show`.
	SyntaxTheme   string `json:"syntaxTheme"`
	MarkdownTheme string `json:"markdownTheme"`
}

// Theme is a named palette.
type Theme struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"displayName"`
	Dark        bool         `json:"dark"`
	Colors      ColorPalette `json:"colors"`
}

// Theme names. "dark" and "light" match config.UIConfig.Theme values.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

var themeRegistry = map[string]Theme{
	ThemeDark: {
		Name:        ThemeDark,
		DisplayName: "Obsidian",
		Dark:        true,
		Colors: ColorPalette{
			Primary:       "#7C3AED",
			Secondary:     "#3B82F6",
			Accent:        "#F59E0B",
			Success:       "#10B981",
			Warning:       "#F59E0B",
			Error:         "#EF4444",
			Info:          "#3B82F6",
			TextPrimary:   "#F9FAFB",
			TextSecondary: "#9CA3AF",
			TextMuted:     "#6B7280",
			TextSubtle:    "#4B5563",
			BgPrimary:     "#111827",
			BgSecondary:   "#1F2937",
			BgTertiary:    "#374151",
			BorderNormal:  "#374151",
			BorderActive:  "#7C3AED",
			SyntaxTheme:   "monokai",
			MarkdownTheme: "dark",
		},
	},
	ThemeLight: {
		Name:        ThemeLight,
		DisplayName: "Moonstone",
		Colors: ColorPalette{
			Primary:       "#6D28D9",
			Secondary:     "#2563EB",
			Accent:        "#B45309",
			Success:       "#047857",
			Warning:       "#B45309",
			Error:         "#B91C1C",
			Info:          "#2563EB",
			TextPrimary:   "#111827",
			TextSecondary: "#374151",
			TextMuted:     "#6B7280",
			TextSubtle:    "#9CA3AF",
			BgPrimary:     "#FFFFFF",
			BgSecondary:   "#F3F4F6",
			BgTertiary:    "#E5E7EB",
			BorderNormal:  "#D1D5DB",
			BorderActive:  "#6D28D9",
			SyntaxTheme:   "github",
			MarkdownTheme: "light",
		},
	},
}

var currentTheme = ThemeDark

// IsValidHexColor reports whether hex is #RRGGBB or #RRGGBBAA.
func IsValidHexColor(hex string) bool {
	return hexColorRegex.MatchString(hex)
}

// IsValidTheme reports whether name is registered.
func IsValidTheme(name string) bool {
	themeMu.RLock()
	defer themeMu.RUnlock()
	_, ok := themeRegistry[name]
	return ok
}

// GetTheme returns the named theme, or the dark theme if unknown.
func GetTheme(name string) Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	if t, ok := themeRegistry[name]; ok {
		return t
	}
	return themeRegistry[ThemeDark]
}

// GetCurrentThemeName returns the name of the applied theme.
func GetCurrentThemeName() string {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

// ListThemes returns the registered theme names, sorted.
func ListThemes() []string {
	themeMu.RLock()
	defer themeMu.RUnlock()
	names := make([]string, 0, len(themeRegistry))
	for name := range themeRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyTheme switches the package colors and styles to the named theme.
// Unknown names fall back to dark.
func ApplyTheme(name string) {
	t := GetTheme(name)
	themeMu.Lock()
	currentTheme = t.Name
	themeMu.Unlock()
	ApplyThemeColors(t)
}

// ApplyThemeColors sets the package color variables from t and rebuilds the
// styles that depend on them.
func ApplyThemeColors(t Theme) {
	c := t.Colors
	Primary = lipgloss.Color(c.Primary)
	Secondary = lipgloss.Color(c.Secondary)
	Accent = lipgloss.Color(c.Accent)
	Success = lipgloss.Color(c.Success)
	Warning = lipgloss.Color(c.Warning)
	Error = lipgloss.Color(c.Error)
	Info = lipgloss.Color(c.Info)
	TextPrimary = lipgloss.Color(c.TextPrimary)
	TextSecondary = lipgloss.Color(c.TextSecondary)
	TextMuted = lipgloss.Color(c.TextMuted)
	TextSubtle = lipgloss.Color(c.TextSubtle)
	BgPrimary = lipgloss.Color(c.BgPrimary)
	BgSecondary = lipgloss.Color(c.BgSecondary)
	BgTertiary = lipgloss.Color(c.BgTertiary)
	BorderNormal = lipgloss.Color(c.BorderNormal)
	BorderActive = lipgloss.Color(c.BorderActive)
	CurrentSyntaxTheme = c.SyntaxTheme
	CurrentMarkdownTheme = c.MarkdownTheme
	SelectedText = lipgloss.Color(readableOn(c.Primary, c.TextPrimary, c.BgPrimary))
	rebuildStyles()
}

// GetSyntaxTheme returns the chroma style for the applied theme.
func GetSyntaxTheme() string { return CurrentSyntaxTheme }

// GetMarkdownTheme returns the glamour style for the applied theme.
func GetMarkdownTheme() string { return CurrentMarkdownTheme }

// RGB is a color with 0-255 channels.
type RGB struct {
	R, G, B float64
}

// HexToRGB parses #RRGGBB (an alpha suffix is ignored). Invalid input yields black.
func HexToRGB(hex string) RGB {
	if !IsValidHexColor(hex) {
		return RGB{}
	}
	parse := func(s string) float64 {
		v, _ := strconv.ParseUint(s, 16, 8)
		return float64(v)
	}
	return RGB{R: parse(hex[1:3]), G: parse(hex[3:5]), B: parse(hex[5:7])}
}

// readableOn picks whichever candidate contrasts best with bg.
func readableOn(bg string, candidates ...string) string {
	best, bestRatio := "", -1.0
	for _, c := range candidates {
		if r := contrastRatio(HexToRGB(c), HexToRGB(bg)); r > bestRatio {
			best, bestRatio = c, r
		}
	}
	return best
}

// contrastRatio is the WCAG contrast ratio between two colors.
func contrastRatio(fg, bg RGB) float64 {
	l1 := relativeLuminance(fg)
	l2 := relativeLuminance(bg)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

func relativeLuminance(c RGB) float64 {
	r := linearize(c.R / 255.0)
	g := linearize(c.G / 255.0)
	b := linearize(c.B / 255.0)
	return 0.2126*r + 0.7152*g + 0.0722*b
}

func linearize(v float64) float64 {
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}
