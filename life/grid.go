package life

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidSize is returned by New for non-positive dimensions.
	ErrInvalidSize = errors.New("life: invalid grid size")
	// ErrOutOfRange is returned by accessors addressing a cell outside the grid.
	ErrOutOfRange = errors.New("life: cell out of range")
)

// Grid is a fixed-size board of binary cells stored row-major.
//
// Step is double buffered: neighbor counts for a generation are always taken
// from cur while the result is written to nxt, then the buffers swap.
type Grid struct {
	w, h int
	cur  []bool
	nxt  []bool
}

// New allocates a width x height grid and sets each cell from seed.
// A nil seed leaves every cell inactive.
func New(width, height int, seed SeedFunc) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	g := &Grid{
		w:   width,
		h:   height,
		cur: make([]bool, width*height),
		nxt: make([]bool, width*height),
	}
	g.Reseed(seed)
	return g, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.w }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.h }

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.w && y < g.h
}

func (g *Grid) check(x, y int) error {
	if !g.inBounds(x, y) {
		return fmt.Errorf("%w: (%d,%d) not in %dx%d", ErrOutOfRange, x, y, g.w, g.h)
	}
	return nil
}

// Active reports whether the cell at (x, y) is alive.
func (g *Grid) Active(x, y int) (bool, error) {
	if err := g.check(x, y); err != nil {
		return false, err
	}
	return g.cur[y*g.w+x], nil
}

// Set overwrites the state of the cell at (x, y).
func (g *Grid) Set(x, y int, active bool) error {
	if err := g.check(x, y); err != nil {
		return err
	}
	g.cur[y*g.w+x] = active
	return nil
}

// Toggle flips the cell at (x, y) and returns its new state.
func (g *Grid) Toggle(x, y int) (bool, error) {
	if err := g.check(x, y); err != nil {
		return false, err
	}
	idx := y*g.w + x
	g.cur[idx] = !g.cur[idx]
	return g.cur[idx], nil
}

// Clear deactivates every cell.
func (g *Grid) Clear() {
	for i := range g.cur {
		g.cur[i] = false
	}
}

// Reseed replaces the whole board with the pattern produced by seed.
func (g *Grid) Reseed(seed SeedFunc) {
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			g.cur[y*g.w+x] = seed != nil && seed(x, y)
		}
	}
}

// Population returns the number of active cells.
func (g *Grid) Population() int {
	n := 0
	for _, c := range g.cur {
		if c {
			n++
		}
	}
	return n
}

// counted reports whether a neighbor coordinate takes part in counting.
// Column 0 never does, the other edges are plain bounds.
func (g *Grid) counted(nx, ny int) bool {
	if nx <= 0 || ny < 0 {
		return false
	}
	return nx < g.w && ny < g.h
}

// ActiveNeighbors counts active cells among the eight around (x, y).
// Off-grid neighbors are skipped, so the result is always in [0, 8].
func (g *Grid) ActiveNeighbors(x, y int) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if !g.counted(nx, ny) {
				continue
			}
			if g.cur[ny*g.w+nx] {
				n++
			}
		}
	}
	return n
}

// Step advances the board by one generation.
//
// A live cell survives only with exactly three active neighbors; a dead cell
// is born with two or three.
func (g *Grid) Step() {
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			idx := y*g.w + x
			n := g.ActiveNeighbors(x, y)
			if g.cur[idx] {
				g.nxt[idx] = n == 3
			} else {
				g.nxt[idx] = n == 2 || n == 3
			}
		}
	}
	g.cur, g.nxt = g.nxt, g.cur
}

// ActiveInColumn returns the rows of column x holding active cells, top to bottom.
func (g *Grid) ActiveInColumn(x int) ([]int, error) {
	if x < 0 || x >= g.w {
		return nil, fmt.Errorf("%w: column %d not in [0,%d)", ErrOutOfRange, x, g.w)
	}
	var rows []int
	for y := 0; y < g.h; y++ {
		if g.cur[y*g.w+x] {
			rows = append(rows, y)
		}
	}
	return rows, nil
}

// Cells returns a copy of the board in row-major order.
func (g *Grid) Cells() []bool {
	out := make([]bool, len(g.cur))
	copy(out, g.cur)
	return out
}

// String renders the board as rows of '#' (active) and '.' (inactive).
func (g *Grid) String() string {
	var b strings.Builder
	for y := 0; y < g.h; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < g.w; x++ {
			if g.cur[y*g.w+x] {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
	}
	return b.String()
}
