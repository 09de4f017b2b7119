package sequencer

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"go-lifeseq/life"
)

// Rect is a handle to a rectangle on a drawing surface
type Rect interface {
	Move(x, y int)
	SetFill(color string)
	SetOpacity(v float64)
}

// Surface is the rendering collaborator
type Surface interface {
	CreateRect(w, h int) Rect
}

// Geometry is the pixel layout of the cells
type Geometry struct {
	CellWidth  int `json:"cellWidth"`
	CellHeight int `json:"cellHeight"`
	PaddingX   int `json:"paddingX"`
	PaddingY   int `json:"paddingY"`
}

// DefaultGeometry returns 25x25 cells with 2px gaps
func DefaultGeometry() Geometry {
	return Geometry{CellWidth: 25, CellHeight: 25, PaddingX: 2, PaddingY: 2}
}

// Position returns the top-left pixel of cell (x, y)
func (g Geometry) Position(x, y int) (int, int) {
	return x * (g.CellWidth + g.PaddingX), y * (g.CellHeight + g.PaddingY)
}

// SurfaceSize returns the pixel size needed for cols x rows cells
func (g Geometry) SurfaceSize(cols, rows int) (int, int) {
	return cols * (g.CellWidth + g.PaddingX), rows * (g.CellHeight + g.PaddingY)
}

// Colors used by the board
type Colors struct {
	On          string
	Off         string
	Line        string
	LineOpacity float64
}

// DefaultColors returns pink live cells on light grey with a translucent green playhead
func DefaultColors() Colors {
	return Colors{
		On:          "#ff0066",
		Off:         "#efefef",
		Line:        colorful.Hsl(150, 1, 0.5).Hex(),
		LineOpacity: 0.2,
	}
}

// Board binds a grid to rect handles on a surface.
//
// Handles live in their own arena indexed y*cols+x; the grid never sees them.
type Board struct {
	cols, rows int
	geom       Geometry
	colors     Colors
	cells      []Rect
	line       Rect
}

// NewBoard creates one rect per cell and the column highlight on s
func NewBoard(s Surface, cols, rows int, geom Geometry, colors Colors) *Board {
	b := &Board{
		cols:   cols,
		rows:   rows,
		geom:   geom,
		colors: colors,
		cells:  make([]Rect, 0, cols*rows),
	}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			r := s.CreateRect(geom.CellWidth, geom.CellHeight)
			r.Move(geom.Position(x, y))
			r.SetFill(colors.On)
			b.cells = append(b.cells, r)
		}
	}

	_, h := geom.SurfaceSize(cols, rows)
	b.line = s.CreateRect(geom.CellWidth, h)
	b.line.SetFill(colors.Line)
	b.line.SetOpacity(colors.LineOpacity)
	return b
}

// Cell returns the handle for (x, y), nil outside the board
func (b *Board) Cell(x, y int) Rect {
	if x < 0 || y < 0 || x >= b.cols || y >= b.rows {
		return nil
	}
	return b.cells[y*b.cols+x]
}

// Highlight moves the playhead to column x
func (b *Board) Highlight(x int) {
	px, _ := b.geom.Position(x, 0)
	b.line.Move(px, 0)
}

// Draw repaints every cell from the grid state
func (b *Board) Draw(g *life.Grid) {
	cells := g.Cells()
	w := g.Width()
	for y := 0; y < b.rows && y < g.Height(); y++ {
		for x := 0; x < b.cols && x < w; x++ {
			fill := b.colors.Off
			if cells[y*w+x] {
				fill = b.colors.On
			}
			b.cells[y*b.cols+x].SetFill(fill)
		}
	}
}
