// Package gui draws the sequencer canvas in a desktop window.
package gui

import (
	"errors"

	"go-lifeseq/canvas"
	"go-lifeseq/life"
	"go-lifeseq/sequencer"
)

// ErrUnavailable is returned by Run in builds without the ebiten tag.
var ErrUnavailable = errors.New("gui: built without the 'ebiten' tag")

// Options wires the window to the running sequencer
type Options struct {
	Player   *sequencer.Player
	Canvas   *canvas.Canvas
	Geometry sequencer.Geometry
	Seed     life.SeedFunc
	Title    string
}

// cellAt maps a pixel to the cell drawn there. Clicks on the padding
// between cells miss.
func cellAt(geom sequencer.Geometry, cols, rows, px, py int) (int, int, bool) {
	if px < 0 || py < 0 {
		return 0, 0, false
	}
	pitchX := geom.CellWidth + geom.PaddingX
	pitchY := geom.CellHeight + geom.PaddingY
	if pitchX <= 0 || pitchY <= 0 {
		return 0, 0, false
	}
	x, y := px/pitchX, py/pitchY
	if x >= cols || y >= rows {
		return 0, 0, false
	}
	if px%pitchX >= geom.CellWidth || py%pitchY >= geom.CellHeight {
		return 0, 0, false
	}
	return x, y, true
}
