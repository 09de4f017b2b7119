package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderPad renders a single colored pad
func RenderPad(color [3]uint8) string {
	return RenderGlyph(color, '■')
}

// RenderGlyph renders r in color
func RenderGlyph(color [3]uint8, r rune) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render(string(r))
}

// RenderPadRow renders a row of colored pads with spacing
func RenderPadRow(colors [][3]uint8) string {
	var out strings.Builder
	for i, c := range colors {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString(RenderPad(c))
	}
	return out.String()
}

// RenderPadGrid renders an 8x8 grid of pads (row 0 at bottom, row 7 at top)
// Optional topRow adds the button row above the grid
func RenderPadGrid(grid [8][8][3]uint8, topRow *[8][3]uint8) string {
	var lines []string
	if topRow != nil {
		lines = append(lines, RenderPadRow(topRow[:]))
	}
	for row := 7; row >= 0; row-- {
		lines = append(lines, RenderPadRow(grid[row][:]))
	}
	return strings.Join(lines, "\n")
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(color [3]uint8, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderPad(color), name, desc)
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
