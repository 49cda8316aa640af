// Package theme defines color themes for the iexpense TUI.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name          string
	Background    lipgloss.Color // Main app background
	Surface       lipgloss.Color // Card backgrounds
	SurfaceBright lipgloss.Color // Selected row
	Border        lipgloss.Color
	BorderAccent  lipgloss.Color // Focused card / overlays
	TextDim       lipgloss.Color // Hints
	TextMuted     lipgloss.Color // Labels, category names
	TextPrimary   lipgloss.Color
	Accent        lipgloss.Color
	AccentBright  lipgloss.Color
	AmountLow     lipgloss.Color // Below the low threshold
	AmountMid     lipgloss.Color
	AmountHigh    lipgloss.Color // Above the high threshold
	Warn          lipgloss.Color
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme.
var FlexokiDark = Theme{
	Name:          "flexoki-dark",
	Background:    lipgloss.Color("#100F0F"),
	Surface:       lipgloss.Color("#1C1B1A"),
	SurfaceBright: lipgloss.Color("#343331"),
	Border:        lipgloss.Color("#403E3C"),
	BorderAccent:  lipgloss.Color("#3AA99F"),
	TextDim:       lipgloss.Color("#575653"),
	TextMuted:     lipgloss.Color("#878580"),
	TextPrimary:   lipgloss.Color("#FFFCF0"),
	Accent:        lipgloss.Color("#3AA99F"),
	AccentBright:  lipgloss.Color("#5BC8BE"),
	AmountLow:     lipgloss.Color("#879A39"),
	AmountMid:     lipgloss.Color("#D0A215"),
	AmountHigh:    lipgloss.Color("#D14D41"),
	Warn:          lipgloss.Color("#DA702C"),
}

// CatppuccinMocha is a soft pastel theme.
var CatppuccinMocha = Theme{
	Name:          "catppuccin-mocha",
	Background:    lipgloss.Color("#1E1E2E"),
	Surface:       lipgloss.Color("#313244"),
	SurfaceBright: lipgloss.Color("#585B70"),
	Border:        lipgloss.Color("#585B70"),
	BorderAccent:  lipgloss.Color("#89B4FA"),
	TextDim:       lipgloss.Color("#6C7086"),
	TextMuted:     lipgloss.Color("#A6ADC8"),
	TextPrimary:   lipgloss.Color("#CDD6F4"),
	Accent:        lipgloss.Color("#89B4FA"),
	AccentBright:  lipgloss.Color("#B4D0FB"),
	AmountLow:     lipgloss.Color("#A6E3A1"),
	AmountMid:     lipgloss.Color("#F9E2AF"),
	AmountHigh:    lipgloss.Color("#F38BA8"),
	Warn:          lipgloss.Color("#FAB387"),
}

// TokyoNight is a cool blue/purple theme.
var TokyoNight = Theme{
	Name:          "tokyo-night",
	Background:    lipgloss.Color("#1A1B26"),
	Surface:       lipgloss.Color("#24283B"),
	SurfaceBright: lipgloss.Color("#414868"),
	Border:        lipgloss.Color("#565F89"),
	BorderAccent:  lipgloss.Color("#7AA2F7"),
	TextDim:       lipgloss.Color("#565F89"),
	TextMuted:     lipgloss.Color("#A9B1D6"),
	TextPrimary:   lipgloss.Color("#C0CAF5"),
	Accent:        lipgloss.Color("#7AA2F7"),
	AccentBright:  lipgloss.Color("#A9C1FF"),
	AmountLow:     lipgloss.Color("#9ECE6A"),
	AmountMid:     lipgloss.Color("#E0AF68"),
	AmountHigh:    lipgloss.Color("#F7768E"),
	Warn:          lipgloss.Color("#FF9E64"),
}

// Terminal uses ANSI 16 colors only.
var Terminal = Theme{
	Name:          "terminal",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("14"),
	AmountLow:     lipgloss.Color("2"),
	AmountMid:     lipgloss.Color("3"),
	AmountHigh:    lipgloss.Color("1"),
	Warn:          lipgloss.Color("3"),
}

// All available themes.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// Names returns the names of all themes in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}
