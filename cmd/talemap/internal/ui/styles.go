package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/recera/talemap/pkg/theme"
)

// Palette is the set of styles for one theme mode.
type Palette struct {
	Title      lipgloss.Style
	Text       lipgloss.Style
	Muted      lipgloss.Style
	Error      lipgloss.Style
	Choice     lipgloss.Style
	Selected   lipgloss.Style
	Busy       lipgloss.Style
	PastScene  lipgloss.Style
	PastChoice lipgloss.Style
	Edge       lipgloss.Style
	Node       lipgloss.Style
	Current    lipgloss.Style
	Box        lipgloss.Style
	Footer     lipgloss.Style
}

func newPalette(fg, muted, accent, surface, border lipgloss.Color) Palette {
	errorColor := lipgloss.Color("#ef4444")
	return Palette{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(accent),
		Text:       lipgloss.NewStyle().Foreground(fg),
		Muted:      lipgloss.NewStyle().Foreground(muted),
		Error:      lipgloss.NewStyle().Foreground(errorColor).Bold(true),
		Choice:     lipgloss.NewStyle().Foreground(fg),
		Selected:   lipgloss.NewStyle().Foreground(accent).Bold(true),
		Busy:       lipgloss.NewStyle().Foreground(muted).Faint(true),
		PastScene:  lipgloss.NewStyle().Foreground(fg).Background(surface),
		PastChoice: lipgloss.NewStyle().Foreground(accent).Italic(true),
		Edge:       lipgloss.NewStyle().Foreground(muted),
		Node:       lipgloss.NewStyle().Foreground(fg),
		Current:    lipgloss.NewStyle().Foreground(accent).Bold(true).Reverse(true),
		Box:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border),
		Footer:     lipgloss.NewStyle().Foreground(muted),
	}
}

var (
	lightPalette = newPalette(
		lipgloss.Color("#1f2937"),
		lipgloss.Color("#64748b"),
		lipgloss.Color("#2563eb"),
		lipgloss.Color("#e5e7eb"),
		lipgloss.Color("#94a3b8"),
	)
	darkPalette = newPalette(
		lipgloss.Color("#e5e7eb"),
		lipgloss.Color("#94a3b8"),
		lipgloss.Color("#3b82f6"),
		lipgloss.Color("#1f2937"),
		lipgloss.Color("#475569"),
	)
)

// PaletteFor returns the palette for mode.
func PaletteFor(mode theme.Mode) Palette {
	if mode == theme.Dark {
		return darkPalette
	}
	return lightPalette
}

// SystemMode guesses the terminal's scheme from its background colour.
func SystemMode() theme.Mode {
	if lipgloss.HasDarkBackground() {
		return theme.Dark
	}
	return theme.Light
}
