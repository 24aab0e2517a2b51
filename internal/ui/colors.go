package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles is the palette shared by the sync and browse views.
var Styles = NewPalette("#FF0033", "#04B575", "#FF5F5F", "#626262")

// Palette holds the named [lipgloss.Style] values used to paint views.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	help  lipgloss.Style
}

// NewPalette builds a palette from foreground colors for titles, success,
// errors and help text.
func NewPalette(title, ok, err, help string) *Palette {
	return &Palette{
		title: NewBold(title).MarginBottom(1),
		ok:    NewBold(ok),
		err:   NewBold(err),
		help:  NewEm(help),
	}
}

func (p *Palette) Title(s string) string { return p.title.Render(s) }
func (p *Palette) OK(s string) string    { return p.ok.Render(s) }
func (p *Palette) Err(s string) string   { return p.err.Render(s) }
func (p *Palette) Help(s string) string  { return p.help.Render(s) }

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
