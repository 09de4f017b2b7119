package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Slider is a horizontal bar for a value in [Min, Max]
type Slider struct {
	Min, Max float64
	Width    int
	Fill     rune
	Rest     rune
	Style    lipgloss.Style
	Dim      lipgloss.Style
}

// Filled returns how many cells are filled for v
func (s Slider) Filled(v float64) int {
	if s.Max <= s.Min || s.Width <= 0 {
		return 0
	}
	frac := (min(max(v, s.Min), s.Max) - s.Min) / (s.Max - s.Min)
	return int(frac*float64(s.Width) + 0.5)
}

// Render draws the bar for v
func (s Slider) Render(v float64) string {
	n := s.Filled(v)
	return s.Style.Render(strings.Repeat(string(s.Fill), n)) +
		s.Dim.Render(strings.Repeat(string(s.Rest), s.Width-n))
}
