package styles

import (
	"image/color"
	"os"

	"charm.land/lipgloss/v2"

	"github.com/raphi011/rbee/internal/config"
)

// Theme is the report palette: one color per status plus chrome.
type Theme struct {
	Primary color.Color // repository titles, table headers
	Success color.Color
	Warning color.Color
	Error   color.Color
	Muted   color.Color // hints, summary counts
	Normal  color.Color
}

// family holds the variants of one named theme. A nil variant falls back
// to the other one.
type family struct {
	dark, light *Theme
}

var (
	defaultDark = Theme{
		Primary: lipgloss.Color("62"),
		Success: lipgloss.Color("82"),
		Warning: lipgloss.Color("214"),
		Error:   lipgloss.Color("196"),
		Muted:   lipgloss.Color("240"),
		Normal:  lipgloss.Color("252"),
	}
	noColor = Theme{
		Primary: lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Muted:   lipgloss.NoColor{},
		Normal:  lipgloss.NoColor{},
	}
)

// families are keyed by the names in config.ValidThemeNames.
var families = map[string]family{
	"none":    {dark: &noColor, light: &noColor},
	"default": {dark: &defaultDark},
	"dracula": {dark: &Theme{
		Primary: lipgloss.Color("#bd93f9"),
		Success: lipgloss.Color("#50fa7b"),
		Warning: lipgloss.Color("#ffb86c"),
		Error:   lipgloss.Color("#ff5555"),
		Muted:   lipgloss.Color("#6272a4"),
		Normal:  lipgloss.Color("#f8f8f2"),
	}},
	"nord": {
		dark: &Theme{
			Primary: lipgloss.Color("#88c0d0"), // frost
			Success: lipgloss.Color("#a3be8c"),
			Warning: lipgloss.Color("#ebcb8b"),
			Error:   lipgloss.Color("#bf616a"),
			Muted:   lipgloss.Color("#4c566a"),
			Normal:  lipgloss.Color("#eceff4"),
		},
		light: &Theme{
			Primary: lipgloss.Color("#5e81ac"),
			Success: lipgloss.Color("#a3be8c"),
			Warning: lipgloss.Color("#d08770"),
			Error:   lipgloss.Color("#bf616a"),
			Muted:   lipgloss.Color("#9a9a9a"),
			Normal:  lipgloss.Color("#2e3440"),
		},
	},
	"catppuccin": {
		dark: &Theme{ // mocha
			Primary: lipgloss.Color("#89b4fa"),
			Success: lipgloss.Color("#a6e3a1"),
			Warning: lipgloss.Color("#fab387"),
			Error:   lipgloss.Color("#f38ba8"),
			Muted:   lipgloss.Color("#6c7086"),
			Normal:  lipgloss.Color("#cdd6f4"),
		},
		light: &Theme{ // latte
			Primary: lipgloss.Color("#1e66f5"),
			Success: lipgloss.Color("#40a02b"),
			Warning: lipgloss.Color("#fe640b"),
			Error:   lipgloss.Color("#d20f39"),
			Muted:   lipgloss.Color("#9ca0b0"),
			Normal:  lipgloss.Color("#4c4f69"),
		},
	},
}

var currentTheme = defaultDark

// Current returns the active theme.
func Current() Theme {
	return currentTheme
}

// Init selects the theme from config, applies per-color overrides and
// rebuilds the package styles. Call it once before rendering.
func Init(cfg config.ThemeConfig) {
	theme := selectTheme(cfg.Name, cfg.Mode)

	for _, o := range []struct {
		value string
		dst   *color.Color
	}{
		{cfg.Primary, &theme.Primary},
		{cfg.Success, &theme.Success},
		{cfg.Warning, &theme.Warning},
		{cfg.Error, &theme.Error},
		{cfg.Muted, &theme.Muted},
	} {
		if o.value != "" {
			*o.dst = lipgloss.Color(o.value)
		}
	}

	currentTheme = theme
	applyTheme(theme)
	SetNerdfont(cfg.Nerdfont)
}

// selectTheme resolves a family and mode to a variant. Unknown names use the
// default family; "auto" (or empty) asks the terminal for its background.
func selectTheme(name, mode string) Theme {
	f, ok := families[name]
	if !ok {
		f = families["default"]
	}

	dark := mode == "dark"
	if mode == "" || mode == "auto" {
		dark = lipgloss.HasDarkBackground(os.Stdin, os.Stderr)
	}

	switch {
	case dark && f.dark != nil, f.light == nil:
		return *f.dark
	default:
		return *f.light
	}
}

func applyTheme(t Theme) {
	Primary = t.Primary
	Success = t.Success
	Warning = t.Warning
	Error = t.Error
	Muted = t.Muted
	Normal = t.Normal

	PrimaryStyle = lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(t.Success)
	WarningStyle = lipgloss.NewStyle().Foreground(t.Warning)
	ErrorStyle = lipgloss.NewStyle().Foreground(t.Error)
	MutedStyle = lipgloss.NewStyle().Foreground(t.Muted)
	NormalStyle = lipgloss.NewStyle().Foreground(t.Normal)
}
