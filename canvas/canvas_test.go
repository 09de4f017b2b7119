package canvas

import (
	"sync"
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"

	"go-lifeseq/life"
	"go-lifeseq/sequencer"
)

func TestRectUpdatesAndVersion(t *testing.T) {
	c := New()
	r := c.CreateRect(10, 5)
	v := c.Version()

	r.Move(3, 4)
	r.SetFill("#ff0066")
	r.SetOpacity(0.5)
	if c.Version() != v+3 {
		t.Fatalf("version = %d, want %d", c.Version(), v+3)
	}

	r.Move(3, 4)
	r.SetFill("#ff0066")
	if c.Version() != v+3 {
		t.Fatal("no-op updates bumped the version")
	}

	got := c.Snapshot()[0]
	want := RectState{X: 3, Y: 4, W: 10, H: 5, Fill: "#ff0066", Opacity: 0.5}
	if got != want {
		t.Fatalf("snapshot = %+v, want %+v", got, want)
	}
	if w, h := c.Size(); w != 13 || h != 9 {
		t.Fatalf("Size = %dx%d", w, h)
	}
}

func TestBoardOnCanvasComposites(t *testing.T) {
	g, err := life.New(16, 9, life.RowSeed(4))
	if err != nil {
		t.Fatal(err)
	}
	c := New()
	b := sequencer.NewBoard(c, 16, 9, sequencer.DefaultGeometry(), sequencer.DefaultColors())
	b.Draw(g)
	b.Highlight(2)

	rects := c.Snapshot()
	if len(rects) != 145 {
		t.Fatalf("%d rects", len(rects))
	}
	bg := colorful.Color{R: 0, G: 0, B: 0}

	// Live cell (2,4) under the playhead
	if got := ColorAt(rects, 2*27+1, 4*27+1, bg).Hex(); got != "#cc336b" {
		t.Errorf("live highlighted = %s", got)
	}
	// Dead cell (2,0) under the playhead
	if got := ColorAt(rects, 2*27+1, 1, bg).Hex(); got != "#bff2d9" {
		t.Errorf("dead highlighted = %s", got)
	}
	// Live cell outside the playhead
	if got := ColorAt(rects, 5*27+1, 4*27+1, bg).Hex(); got != "#ff0066" {
		t.Errorf("live = %s", got)
	}
	// Gap between cells is background, except where the playhead covers it
	if got := ColorAt(rects, 5*27+26, 1, bg).Hex(); got != "#000000" {
		t.Errorf("gap = %s", got)
	}
}

func TestConcurrentWritersAndReaders(t *testing.T) {
	c := New()
	rs := make([]sequencer.Rect, 8)
	for i := range rs {
		rs[i] = c.CreateRect(1, 1)
	}

	var wg sync.WaitGroup
	for i, r := range rs {
		wg.Add(1)
		go func(i int, r sequencer.Rect) {
			defer wg.Done()
			for n := 0; n < 200; n++ {
				r.Move(i, n)
				r.SetFill("#00ff80")
			}
		}(i, r)
	}
	for n := 0; n < 50; n++ {
		c.Snapshot()
	}
	wg.Wait()

	for i, s := range c.Snapshot() {
		if s.X != i || s.Y != 199 || s.Fill != "#00ff80" {
			t.Fatalf("rect %d = %+v", i, s)
		}
	}
}
