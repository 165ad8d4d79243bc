package render

import "github.com/charmbracelet/lipgloss"

// Theme defines colors and icons for terminal rendering.
type Theme struct {
	Name    string
	Primary lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Icons   ThemeIcons
}

// ThemeIcons are the status glyphs drawn before summary metrics and rows.
type ThemeIcons struct {
	Pass string
	Fail string
	Warn string
	Info string
}

func colored(primary, success, warning, errc, muted string) Theme {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }
	return Theme{
		Primary: fg(primary),
		Success: fg(success),
		Warning: fg(warning),
		Error:   fg(errc),
		Muted:   fg(muted),
		Bold:    lipgloss.NewStyle().Bold(true),
	}
}

// DefaultTheme returns a vibrant color theme.
func DefaultTheme() Theme {
	t := colored("39", "34", "214", "196", "242") // blue, green, orange, red, gray
	t.Name = "default"
	t.Icons = ThemeIcons{Pass: "✓", Fail: "✗", Warn: "⚠", Info: "●"}
	return t
}

// OrcaTheme returns a muted, professional theme.
func OrcaTheme() Theme {
	t := colored("75", "108", "179", "167", "245") // pale blue, sage, gold, muted red, light gray
	t.Name = "orca"
	t.Icons = ThemeIcons{Pass: "✓", Fail: "✗", Warn: "!", Info: "·"}
	return t
}

// MonoTheme returns a monochrome ASCII theme for logs and NO_COLOR.
func MonoTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Name:    "mono",
		Primary: plain,
		Success: plain,
		Warning: plain,
		Error:   plain,
		Muted:   plain,
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons:   ThemeIcons{Pass: "+", Fail: "x", Warn: "!", Info: "*"},
	}
}

// ThemeByName returns a theme by name, defaulting to DefaultTheme.
func ThemeByName(name string) Theme {
	switch name {
	case "orca":
		return OrcaTheme()
	case "mono":
		return MonoTheme()
	default:
		return DefaultTheme()
	}
}
