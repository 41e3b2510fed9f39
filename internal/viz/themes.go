package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/starfield/internal/config"
)

// Palette is the set of terminal colors derived from a star-field theme.
type Palette struct {
	Name    string
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Text    lipgloss.Color
}

func PaletteFor(t *config.Theme) Palette {
	if t == nil {
		t = config.GetPreset(config.DefaultTheme)
	}
	return Palette{
		Name:    t.Name,
		Primary: lipgloss.Color(t.Hex),
		Muted:   lipgloss.Color("#666666"),
		Text:    lipgloss.Color("#ffffff"),
	}
}

func (p Palette) Stars() lipgloss.Style {
	return canvasStyle.Foreground(p.Primary)
}

func (p Palette) Header() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(p.Primary).MarginBottom(1)
}

func (p Palette) Graph() lipgloss.Style {
	return graphStyle.Foreground(p.Primary)
}
