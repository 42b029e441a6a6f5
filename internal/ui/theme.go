package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the palette of the terminal client.
type Theme struct {
	Name string

	Background  string
	Surface     string
	SurfaceAlt  string
	SelectionBg string
	Border      string
	BorderFocus string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// StatusColors maps booking and listing states to badge colors.
	StatusColors map[string]string
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style

	Header   lipgloss.Style
	Footer   lipgloss.Style
	Title    lipgloss.Style
	Selected lipgloss.Style
	Panel    lipgloss.Style
	Input    lipgloss.Style

	statusColors map[string]string
	background   string
	muted        string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),
		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),
		Title: fg(t.Accent).Bold(true),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.Text)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),
		Input: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(t.BorderFocus)).
			Padding(0, 1),

		statusColors: t.StatusColors,
		background:   t.Background,
		muted:        t.Muted,
	}
}

// StatusStyle returns a badge style for a booking or listing state.
func (s Styles) StatusStyle(status string) lipgloss.Style {
	color := s.statusColors[strings.ToLower(strings.TrimSpace(status))]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

var themes = map[string]Theme{
	"Nightfox": nightfoxTheme(),
	"Kanagawa": kanagawaTheme(),
	"Slate":    slateTheme(),
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

// GetTheme returns a theme by name, defaulting to Nightfox.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return nightfoxTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

// statusPalette assigns the shared state names to the semantic colors of
// a theme.
func statusPalette(t Theme) map[string]string {
	return map[string]string{
		"pending":     t.Warning,
		"confirmed":   t.Success,
		"declined":    t.Danger,
		"cancelled":   t.Faint,
		"completed":   t.Info,
		"draft":       t.Muted,
		"published":   t.Success,
		"unpublished": t.Faint,
		"unread":      t.Accent,
	}
}

func withStatus(t Theme) Theme {
	t.StatusColors = statusPalette(t)
	return t
}

func nightfoxTheme() Theme {
	// https://github.com/EdenEast/nightfox.nvim
	return withStatus(Theme{
		Name:        "Nightfox",
		Background:  "#131a24",
		Surface:     "#192330",
		SurfaceAlt:  "#212e3f",
		SelectionBg: "#2b3b51",
		Border:      "#39506d",
		BorderFocus: "#719cd6",
		Text:        "#cdcecf",
		Muted:       "#738091",
		Faint:       "#71839b",
		Accent:      "#719cd6",
		Success:     "#81b29a",
		Warning:     "#dbc074",
		Danger:      "#c94f6d",
		Info:        "#63cdcf",
	})
}

func kanagawaTheme() Theme {
	// https://github.com/rebelot/kanagawa.nvim
	return withStatus(Theme{
		Name:        "Kanagawa",
		Background:  "#16161d",
		Surface:     "#1f1f28",
		SurfaceAlt:  "#2a2a37",
		SelectionBg: "#2d4f67",
		Border:      "#54546d",
		BorderFocus: "#7e9cd8",
		Text:        "#dcd7ba",
		Muted:       "#727169",
		Faint:       "#938aa9",
		Accent:      "#7e9cd8",
		Success:     "#98bb6c",
		Warning:     "#e6c384",
		Danger:      "#e82424",
		Info:        "#7fb4ca",
	})
}

func slateTheme() Theme {
	return withStatus(Theme{
		Name:        "Slate",
		Background:  "#0f172a",
		Surface:     "#1e293b",
		SurfaceAlt:  "#334155",
		SelectionBg: "#334155",
		Border:      "#475569",
		BorderFocus: "#38bdf8",
		Text:        "#e2e8f0",
		Muted:       "#94a3b8",
		Faint:       "#64748b",
		Accent:      "#38bdf8",
		Success:     "#4ade80",
		Warning:     "#facc15",
		Danger:      "#f87171",
		Info:        "#22d3ee",
	})
}
