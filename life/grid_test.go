package life

import (
	"errors"
	"strings"
	"testing"
)

func mustGrid(t *testing.T, w, h int, seed SeedFunc) *Grid {
	t.Helper()
	g, err := New(w, h, seed)
	if err != nil {
		t.Fatalf("New(%d, %d): %v", w, h, err)
	}
	return g
}

func TestNewRejectsBadSize(t *testing.T) {
	for _, size := range [][2]int{{0, 9}, {16, 0}, {-1, 3}, {3, -4}} {
		if _, err := New(size[0], size[1], nil); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("New(%d, %d) err = %v, want ErrInvalidSize", size[0], size[1], err)
		}
	}
}

func TestAccessorsOutOfRange(t *testing.T) {
	g := mustGrid(t, 4, 3, nil)
	coords := [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 3}, {10, 10}}
	for _, c := range coords {
		if _, err := g.Active(c[0], c[1]); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Active%v err = %v", c, err)
		}
		if err := g.Set(c[0], c[1], true); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Set%v err = %v", c, err)
		}
		if _, err := g.Toggle(c[0], c[1]); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Toggle%v err = %v", c, err)
		}
	}
	if _, err := g.ActiveInColumn(4); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("ActiveInColumn(4) err = %v", err)
	}
	if _, err := g.ActiveInColumn(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("ActiveInColumn(-1) err = %v", err)
	}
}

func TestNeighborCountInRange(t *testing.T) {
	seeds := []SeedFunc{Empty, RowSeed(4), AlternatingSeed(2), RandomSeed(1), RandomSeed(7), func(x, y int) bool { return true }}
	for i, seed := range seeds {
		g := mustGrid(t, 16, 9, seed)
		for y := 0; y < g.Height(); y++ {
			for x := 0; x < g.Width(); x++ {
				n := g.ActiveNeighbors(x, y)
				if n < 0 || n > 8 {
					t.Fatalf("seed %d: ActiveNeighbors(%d,%d) = %d", i, x, y, n)
				}
			}
		}
	}
}

func TestNeighborBoundaryPolicy(t *testing.T) {
	empty := mustGrid(t, 16, 9, nil)
	if n := empty.ActiveNeighbors(0, 0); n != 0 {
		t.Fatalf("empty corner count = %d, want 0", n)
	}

	full := mustGrid(t, 16, 9, func(x, y int) bool { return true })
	cases := []struct {
		x, y int
		want int
	}{
		{0, 0, 2},  // (1,0) (1,1); column 0 and row -1 skipped
		{1, 1, 5},  // column 0 never counts
		{2, 2, 8},  // interior
		{15, 8, 3}, // far corner
		{15, 4, 5}, // right edge
		{7, 0, 5},  // top edge
		{0, 4, 3},  // left edge sees only column 1
	}
	for _, c := range cases {
		if got := full.ActiveNeighbors(c.x, c.y); got != c.want {
			t.Errorf("full ActiveNeighbors(%d,%d) = %d, want %d", c.x, c.y, got, c.want)
		}
	}

	left := mustGrid(t, 5, 5, PatternSeed([]string{
		".....",
		"#....",
		"#....",
		"#....",
		".....",
	}))
	if n := left.ActiveNeighbors(1, 2); n != 0 {
		t.Errorf("column 0 neighbors counted: got %d, want 0", n)
	}
}

func TestStepRule(t *testing.T) {
	cases := []struct {
		name   string
		rows   []string
		active bool // state of (2,2) after Step
	}{
		{"dead with three is born", []string{".....", ".###.", ".....", ".....", "....."}, true},
		{"live with three survives", []string{".....", ".###.", "..#..", ".....", "....."}, true},
		{"live with two dies", []string{".....", ".#.#.", "..#..", ".....", "....."}, false},
		{"dead with two is born", []string{".....", ".#.#.", ".....", ".....", "....."}, true},
		{"live with one dies", []string{".....", ".#...", "..#..", ".....", "....."}, false},
		{"live with four dies", []string{".....", ".###.", "..##.", ".....", "....."}, false},
		{"dead with one stays dead", []string{".....", ".#...", ".....", ".....", "....."}, false},
		{"dead with four stays dead", []string{".....", ".###.", "...#.", ".....", "....."}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			g := mustGrid(t, 5, 5, PatternSeed(c.rows))
			g.Step()
			got, err := g.Active(2, 2)
			if err != nil {
				t.Fatal(err)
			}
			if got != c.active {
				t.Fatalf("(2,2) active = %v, want %v\n%s", got, c.active, g)
			}
		})
	}
}

func TestStepUsesSnapshot(t *testing.T) {
	// Every cell of the bar sees at most two neighbors and dies; the cells
	// beside it see two or three and are born from the same pre-step snapshot.
	g := mustGrid(t, 5, 5, PatternSeed([]string{
		".....",
		"..#..",
		"..#..",
		"..#..",
		".....",
	}))
	g.Step()
	want := strings.Join([]string{
		".....",
		".#.#.",
		".#.#.",
		".#.#.",
		".....",
	}, "\n")
	if g.String() != want {
		t.Fatalf("after step:\n%s\nwant:\n%s", g, want)
	}
}

func stable(g *Grid) bool {
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			n := g.ActiveNeighbors(x, y)
			alive, _ := g.Active(x, y)
			if alive && n != 3 {
				return false
			}
			if !alive && (n == 2 || n == 3) {
				return false
			}
		}
	}
	return true
}

func TestStablePatternIsFixedPoint(t *testing.T) {
	seeds := []SeedFunc{Empty, RowSeed(4), RandomSeed(3), RandomSeed(11)}
	checked := 0
	for _, seed := range seeds {
		g := mustGrid(t, 16, 9, seed)
		if !stable(g) {
			continue
		}
		checked++
		before := g.String()
		g.Step()
		if g.String() != before {
			t.Fatalf("stable pattern changed:\n%s\n->\n%s", before, g)
		}
	}
	if checked == 0 {
		t.Fatal("no stable pattern exercised")
	}

	g := mustGrid(t, 16, 9, RowSeed(4))
	if stable(g) {
		t.Fatal("row seed reported stable")
	}
}

func TestRowFourScenario(t *testing.T) {
	g := mustGrid(t, 16, 9, RowSeed(4))

	g.Step()
	first := strings.Join([]string{
		"................",
		"................",
		"................",
		".###############",
		"................",
		".###############",
		"................",
		"................",
		"................",
	}, "\n")
	if g.String() != first {
		t.Fatalf("generation 1:\n%s\nwant:\n%s", g, first)
	}

	g.Step()
	second := strings.Join([]string{
		"................",
		"................",
		".###############",
		"................",
		"#...............",
		"................",
		".###############",
		"................",
		"................",
	}, "\n")
	if g.String() != second {
		t.Fatalf("generation 2:\n%s\nwant:\n%s", g, second)
	}
}

func TestActiveInColumn(t *testing.T) {
	g := mustGrid(t, 3, 5, PatternSeed([]string{
		"#..",
		"...",
		"#.#",
		"...",
		"#..",
	}))
	rows, err := g.ActiveInColumn(0)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{0, 2, 4}
	if len(rows) != len(want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("rows = %v, want %v", rows, want)
		}
	}
	if rows, _ := g.ActiveInColumn(1); len(rows) != 0 {
		t.Fatalf("empty column rows = %v", rows)
	}
}

func TestToggleAndPopulation(t *testing.T) {
	g := mustGrid(t, 4, 4, nil)
	if on, err := g.Toggle(1, 2); err != nil || !on {
		t.Fatalf("Toggle = %v, %v", on, err)
	}
	if g.Population() != 1 {
		t.Fatalf("Population = %d, want 1", g.Population())
	}
	if on, _ := g.Toggle(1, 2); on {
		t.Fatal("second toggle left cell on")
	}
	g.Reseed(RowSeed(0))
	if g.Population() != 4 {
		t.Fatalf("Population after reseed = %d, want 4", g.Population())
	}
	g.Clear()
	if g.Population() != 0 {
		t.Fatalf("Population after clear = %d", g.Population())
	}
}
