package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the color scheme of the live view.
type Theme struct {
	Name   string
	Disk   lipgloss.Color
	Header lipgloss.Color
	Label  lipgloss.Color
	Value  lipgloss.Color
	Graph  lipgloss.Color
	Muted  lipgloss.Color
}

var (
	ThemeNebula = Theme{
		Name:   "nebula",
		Disk:   lipgloss.Color("#c9a0ff"),
		Header: lipgloss.Color("86"),
		Label:  lipgloss.Color("245"),
		Value:  lipgloss.Color("252"),
		Graph:  lipgloss.Color("49"),
		Muted:  lipgloss.Color("240"),
	}

	ThemeRetroGreen = Theme{
		Name:   "retro",
		Disk:   lipgloss.Color("#00ff00"),
		Header: lipgloss.Color("#88ff88"),
		Label:  lipgloss.Color("#00aa00"),
		Value:  lipgloss.Color("#00ff00"),
		Graph:  lipgloss.Color("#00cc00"),
		Muted:  lipgloss.Color("#005500"),
	}

	ThemeSunset = Theme{
		Name:   "sunset",
		Disk:   lipgloss.Color("#feca57"),
		Header: lipgloss.Color("#ff6b6b"),
		Label:  lipgloss.Color("#8b6b8c"),
		Value:  lipgloss.Color("#fff5f5"),
		Graph:  lipgloss.Color("#ff9ff3"),
		Muted:  lipgloss.Color("#8b6b8c"),
	}

	Themes = []Theme{ThemeNebula, ThemeRetroGreen, ThemeSunset}
)

// GetTheme returns the named theme, or the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after t in Themes.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
