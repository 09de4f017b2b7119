package midi

import (
	"context"
	"sync"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"go-lifeseq/canvas"
	"go-lifeseq/debug"
	"go-lifeseq/sequencer"
)

// LED refresh rate
const ledFPS = 30

// Pads on a Launchpad page
const pageSize = 8

// Play button position: leftmost button of the top row
const (
	playRow = 8
	playCol = 0
)

var (
	colorPlaying = [3]uint8{0, 255, 0}
	colorStopped = [3]uint8{180, 60, 60}
)

// Mirror shows the canvas on a Launchpad and feeds pad presses back to the
// player. It pages through the grid 8 columns at a time, following the
// playhead; grid row 0 is the top pad row.
type Mirror struct {
	canvas  *canvas.Canvas
	player  *sequencer.Player
	pitches *sequencer.PitchMap
	geom    sequencer.Geometry

	mu         sync.Mutex
	controller Controller
	prevLEDs   map[[2]int]LEDUpdate // for diffing
}

// NewMirror creates a mirror; pitches may be nil when no keyboard is used
func NewMirror(c *canvas.Canvas, p *sequencer.Player, pitches *sequencer.PitchMap, geom sequencer.Geometry) *Mirror {
	return &Mirror{
		canvas:   c,
		player:   p,
		pitches:  pitches,
		geom:     geom,
		prevLEDs: make(map[[2]int]LEDUpdate),
	}
}

// SetController swaps the Launchpad (nil detaches). The next flush repaints
// everything.
func (m *Mirror) SetController(c Controller) {
	m.mu.Lock()
	defer m.mu.Unlock()
	debug.Log("mirror", "controller set, resetting diff state")
	m.controller = c
	m.prevLEDs = make(map[[2]int]LEDUpdate)
}

// Run flushes at ledFPS until ctx is cancelled
func (m *Mirror) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / ledFPS)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Flush()
		}
	}
}

// page returns the first grid column shown on the pads
func (m *Mirror) page() int {
	col := max(m.player.Snapshot().Column, 0)
	return col / pageSize * pageSize
}

// Frame renders the current pad colors
func (m *Mirror) Frame() []LEDUpdate {
	rects := m.canvas.Snapshot()
	cols, rows := m.player.Size()
	first := m.page()
	black := colorful.Color{}

	leds := make([]LEDUpdate, 0, pageSize*pageSize+1)
	for padRow := 0; padRow < pageSize; padRow++ {
		y := pageSize - 1 - padRow
		for padCol := 0; padCol < pageSize; padCol++ {
			x := first + padCol
			var rgb [3]uint8
			if x < cols && y < rows {
				px, py := m.geom.Position(x, y)
				c := canvas.ColorAt(rects, px+m.geom.CellWidth/2, py+m.geom.CellHeight/2, black)
				r, g, b := c.RGB255()
				rgb = [3]uint8{r, g, b}
			}
			leds = append(leds, LEDUpdate{Row: padRow, Col: padCol, Color: rgb})
		}
	}

	play := LEDUpdate{Row: playRow, Col: playCol, Color: colorStopped}
	if m.player.Control().Running() {
		play.Color = colorPlaying
		play.Channel = ChannelPulse
	}
	return append(leds, play)
}

// Flush sends only the LEDs that changed since the last flush
func (m *Mirror) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.controller == nil {
		return
	}

	newLEDs := m.Frame()
	newMap := make(map[[2]int]LEDUpdate, len(newLEDs))

	var updates []LEDUpdate
	for _, led := range newLEDs {
		key := [2]int{led.Row, led.Col}
		newMap[key] = led
		if prev, ok := m.prevLEDs[key]; !ok || prev != led {
			updates = append(updates, led)
		}
	}

	if len(updates) > 0 {
		debug.LogEvery(30, "led", "flush: batch=%d", len(updates))
		if err := m.controller.SetLEDBatch(updates); err != nil {
			debug.Log("led", "send: %v", err)
		}
	}
	m.prevLEDs = newMap
}

// HandlePad toggles the cell under a grid pad; the play button toggles running
func (m *Mirror) HandlePad(ev PadEvent) {
	if ev.Row == playRow && ev.Col == playCol {
		running := m.player.Control().Toggle()
		debug.Log("mirror", "play button running=%v", running)
		return
	}
	if ev.Row < 0 || ev.Row >= pageSize || ev.Col < 0 || ev.Col >= pageSize {
		return
	}
	x := m.page() + ev.Col
	y := pageSize - 1 - ev.Row
	if _, err := m.player.ToggleCell(x, y); err != nil {
		debug.Log("mirror", "pad %d,%d: %v", ev.Row, ev.Col, err)
	}
}

// HandleNote toggles the cell of the played pitch in the playhead column
func (m *Mirror) HandleNote(ev NoteEvent) {
	if m.pitches == nil {
		return
	}
	y, ok := m.pitches.Row(ev.Note)
	if !ok {
		return
	}
	x := max(m.player.Snapshot().Column, 0)
	if _, err := m.player.ToggleCell(x, y); err != nil {
		debug.Log("mirror", "note %d: %v", ev.Note, err)
	}
}

// Listen routes a controller's input until its channels close
func (m *Mirror) Listen(c Controller) {
	go func() {
		for ev := range c.PadEvents() {
			m.HandlePad(ev)
		}
	}()
	go func() {
		for ev := range c.NoteEvents() {
			m.HandleNote(ev)
		}
	}()
}
