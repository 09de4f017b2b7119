package life

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// ErrBadSeed is returned by ParseSeed for an unknown or malformed seed spec.
var ErrBadSeed = errors.New("life: bad seed")

// SeedFunc decides the initial state of the cell at (x, y).
type SeedFunc func(x, y int) bool

// Empty leaves the board blank.
func Empty(x, y int) bool { return false }

// RowSeed activates every cell of one row.
func RowSeed(row int) SeedFunc {
	return func(x, y int) bool { return y == row }
}

// AlternatingSeed activates every other cell of one row, starting at column 0.
func AlternatingSeed(row int) SeedFunc {
	return func(x, y int) bool { return y == row && x%2 == 0 }
}

// RandomSeed fills the board with a deterministic coin flip per cell.
func RandomSeed(seed int64) SeedFunc {
	r := rand.New(rand.NewPCG(uint64(seed), 0))
	cache := make(map[[2]int]bool)
	return func(x, y int) bool {
		key := [2]int{x, y}
		if v, ok := cache[key]; ok {
			return v
		}
		v := r.IntN(2) == 1
		cache[key] = v
		return v
	}
}

// PatternSeed reads a picture: rows top to bottom, '#', 'x', 'X', 'o', 'O'
// or '1' mark active cells. Cells outside the picture are inactive.
func PatternSeed(rows []string) SeedFunc {
	return func(x, y int) bool {
		if y < 0 || y >= len(rows) || x < 0 || x >= len(rows[y]) {
			return false
		}
		switch rows[y][x] {
		case '#', 'x', 'X', 'o', 'O', '1':
			return true
		}
		return false
	}
}

// ParseSeed turns a config string into a SeedFunc.
//
//	empty          blank board
//	row:N          row N fully active
//	alternate:N    every other cell of row N
//	random:S       coin flips seeded with S
//	pattern:A/B/C  picture rows separated by '/'
func ParseSeed(spec string) (SeedFunc, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" || spec == "empty" {
		return Empty, nil
	}
	kind, arg, ok := strings.Cut(spec, ":")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBadSeed, spec)
	}
	switch kind {
	case "row", "alternate":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: row %q", ErrBadSeed, arg)
		}
		if kind == "row" {
			return RowSeed(n), nil
		}
		return AlternatingSeed(n), nil
	case "random":
		s, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: random seed %q", ErrBadSeed, arg)
		}
		return RandomSeed(s), nil
	case "pattern":
		return PatternSeed(strings.Split(arg, "/")), nil
	}
	return nil, fmt.Errorf("%w: unknown kind %q", ErrBadSeed, kind)
}
