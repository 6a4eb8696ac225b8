// Package styles holds the palette and lipgloss styles shared by the TUI views.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pageform/internal/core/domain"
)

// Palette is the set of colours the TUI draws with.
type Palette struct {
	Accent lipgloss.Color
	Ink    lipgloss.Color
	Paper  lipgloss.Color
	Faint  lipgloss.Color
	Frame  lipgloss.Color

	// Cached and Generated colour the form source badge.
	Cached    lipgloss.Color
	Generated lipgloss.Color

	// Caution is used while a model call is in flight.
	Caution lipgloss.Color

	// Alert marks errors and fields the model flagged for review.
	Alert lipgloss.Color
}

// DefaultPalette returns the dark palette.
func DefaultPalette() *Palette {
	return &Palette{
		Accent:    lipgloss.Color("#7AA2F7"),
		Ink:       lipgloss.Color("#C0CAF5"),
		Paper:     lipgloss.Color("#1A1B26"),
		Faint:     lipgloss.Color("#565F89"),
		Frame:     lipgloss.Color("#3B4261"),
		Cached:    lipgloss.Color("#73DACA"),
		Generated: lipgloss.Color("#BB9AF7"),
		Caution:   lipgloss.Color("#E0AF68"),
		Alert:     lipgloss.Color("#F7768E"),
	}
}

// Styles are the rendered styles derived from a Palette.
type Styles struct {
	palette *Palette

	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Normal    lipgloss.Style
	Muted     lipgloss.Style
	Selected  lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	StatusBar lipgloss.Style
	Help      lipgloss.Style
	Border    lipgloss.Style

	// Badge labels a page that already has a form.
	Badge lipgloss.Style

	// Review highlights the count of low-confidence fields.
	Review lipgloss.Style

	cached    lipgloss.Style
	generated lipgloss.Style
}

// NewStyles derives styles from p. A nil palette selects the default.
func NewStyles(p *Palette) *Styles {
	if p == nil {
		p = DefaultPalette()
	}

	text := lipgloss.NewStyle().Foreground(p.Ink)
	chip := lipgloss.NewStyle().Foreground(p.Paper).Padding(0, 1)

	return &Styles{
		palette:   p,
		Title:     lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		Subtitle:  text.Bold(true).Underline(true),
		Normal:    text,
		Muted:     lipgloss.NewStyle().Foreground(p.Faint),
		Selected:  text.Bold(true).Background(p.Frame),
		Error:     lipgloss.NewStyle().Foreground(p.Alert),
		Success:   lipgloss.NewStyle().Foreground(p.Cached),
		Warning:   lipgloss.NewStyle().Foreground(p.Caution),
		StatusBar: lipgloss.NewStyle().Foreground(p.Faint).Background(p.Paper).Padding(0, 1),
		Help:      lipgloss.NewStyle().Foreground(p.Faint).Italic(true),
		Border:    lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(p.Frame),
		Badge:     chip.Background(p.Accent),
		Review:    lipgloss.NewStyle().Bold(true).Foreground(p.Alert),
		cached:    chip.Background(p.Cached),
		generated: chip.Background(p.Generated),
	}
}

// DefaultStyles returns styles for the default palette.
func DefaultStyles() *Styles {
	return NewStyles(DefaultPalette())
}

// Palette returns the palette the styles were built from.
func (s *Styles) Palette() *Palette {
	return s.palette
}

// SourceBadge renders where a form came from.
func (s *Styles) SourceBadge(src domain.FormSource) string {
	switch src {
	case domain.FormSourceCache:
		return s.cached.Render(src.String())
	case domain.FormSourceGenerated:
		return s.generated.Render(src.String())
	default:
		return s.Badge.Render(src.String())
	}
}
