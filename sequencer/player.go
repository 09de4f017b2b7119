package sequencer

import (
	"context"
	"sync"
	"time"

	"go-lifeseq/debug"
	"go-lifeseq/life"
)

// Default note timing
const (
	DefaultNoteLength = 250 * time.Millisecond // "8n" at 120bpm
	DefaultStagger    = 10 * time.Millisecond
)

// Status is a point-in-time view of the player for the UI
type Status struct {
	Running    bool
	Interval   time.Duration
	Cursor     int
	Column     int // last played column, -1 before the first cycle
	Generation int
	Population int
	Notes      []string
}

// Player walks the grid one column per cycle, stepping the automaton each
// time the scan wraps to column 0 and sounding the active rows.
type Player struct {
	grid    *life.Grid
	control *Control
	pitches *PitchMap
	board   *Board
	synth   Synth

	noteLength time.Duration
	stagger    time.Duration

	// mu serializes grid access between cycles and edits from input handlers
	mu         sync.Mutex
	cursor     int
	column     int
	generation int
	lastNotes  []string

	sleep func(ctx context.Context, d time.Duration) error

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// NewPlayer creates a player over grid driven by control
func NewPlayer(grid *life.Grid, control *Control, pitches *PitchMap) *Player {
	return &Player{
		grid:       grid,
		control:    control,
		pitches:    pitches,
		synth:      Silent{},
		noteLength: DefaultNoteLength,
		stagger:    DefaultStagger,
		column:     -1,
		sleep:      sleepCtx,
		UpdateChan: make(chan struct{}, 1),
	}
}

// SetBoard attaches the render binding (nil disables rendering)
func (p *Player) SetBoard(b *Board) {
	p.mu.Lock()
	p.board = b
	p.mu.Unlock()
	p.Redraw()
}

// SetSynth sets the audio collaborator (nil silences playback)
func (p *Player) SetSynth(s Synth) {
	if s == nil {
		s = Silent{}
	}
	p.mu.Lock()
	p.synth = s
	p.mu.Unlock()
}

// SetNoteLength sets how long each triggered note sounds
func (p *Player) SetNoteLength(d time.Duration) {
	p.mu.Lock()
	p.noteLength = d
	p.mu.Unlock()
}

// SetStagger sets the offset between notes of the same column
func (p *Player) SetStagger(d time.Duration) {
	p.mu.Lock()
	p.stagger = d
	p.mu.Unlock()
}

// Control returns the shared control state
func (p *Player) Control() *Control {
	return p.control
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run cycles until ctx is cancelled. The interval is read fresh before
// every wait, so speed changes apply from the next cycle.
func (p *Player) Run(ctx context.Context) {
	debug.Log("player", "run started interval=%s", FormatInterval(p.control.Interval()))
	for {
		if err := p.sleep(ctx, p.control.Interval()); err != nil {
			debug.Log("player", "run stopped: %v", err)
			return
		}
		if ctx.Err() != nil {
			debug.Log("player", "run stopped: %v", ctx.Err())
			return
		}
		p.Cycle()
	}
}

// Cycle performs one playback step without waiting. It returns false when
// paused, in which case nothing changes.
func (p *Player) Cycle() bool {
	if !p.control.Running() {
		return false
	}

	p.mu.Lock()
	x := p.cursor % p.grid.Width()
	if x == 0 {
		p.grid.Step()
		p.generation++
		debug.Log("player", "generation=%d population=%d", p.generation, p.grid.Population())
	}

	if p.board != nil {
		p.board.Highlight(x)
		p.board.Draw(p.grid)
	}

	rows, err := p.grid.ActiveInColumn(x)
	if err != nil {
		debug.Log("player", "column %d: %v", x, err)
	}
	notes := make([]string, 0, len(rows))
	for _, y := range rows {
		notes = append(notes, p.pitches.Pitch(y))
	}
	p.lastNotes = notes
	p.column = x
	p.cursor++

	synth, length, stagger := p.synth, p.noteLength, p.stagger
	p.mu.Unlock()

	p.play(synth, notes, length, stagger)
	p.notifyUpdate()
	return true
}

// play triggers notes from one shared "now", each offset by its index times stagger
func (p *Player) play(synth Synth, notes []string, length, stagger time.Duration) {
	if len(notes) == 0 {
		return
	}
	now := synth.Now()
	for i, n := range notes {
		at := now.Add(time.Duration(i) * stagger)
		if err := synth.TriggerAttackRelease(n, length, at); err != nil {
			debug.Log("player", "trigger %s: %v", n, err)
		}
	}
	debug.LogEvery(16, "player", "notes=%v", notes)
}

// ToggleCell flips a cell between cycles and repaints
func (p *Player) ToggleCell(x, y int) (bool, error) {
	p.mu.Lock()
	on, err := p.grid.Toggle(x, y)
	if err == nil && p.board != nil {
		p.board.Draw(p.grid)
	}
	p.mu.Unlock()
	if err == nil {
		p.notifyUpdate()
	}
	return on, err
}

// Reseed replaces the board pattern
func (p *Player) Reseed(seed life.SeedFunc) {
	p.mu.Lock()
	p.grid.Reseed(seed)
	if p.board != nil {
		p.board.Draw(p.grid)
	}
	p.mu.Unlock()
	p.notifyUpdate()
}

// Clear empties the board
func (p *Player) Clear() {
	p.Reseed(life.Empty)
}

// Redraw repaints the board without advancing
func (p *Player) Redraw() {
	p.mu.Lock()
	if p.board != nil {
		p.board.Draw(p.grid)
		if p.column >= 0 {
			p.board.Highlight(p.column)
		}
	}
	p.mu.Unlock()
}

// Snapshot returns the current status
func (p *Player) Snapshot() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	notes := make([]string, len(p.lastNotes))
	copy(notes, p.lastNotes)
	return Status{
		Running:    p.control.Running(),
		Interval:   p.control.Interval(),
		Cursor:     p.cursor,
		Column:     p.column,
		Generation: p.generation,
		Population: p.grid.Population(),
		Notes:      notes,
	}
}

// Size returns the grid dimensions
func (p *Player) Size() (int, int) {
	return p.grid.Width(), p.grid.Height()
}

// Cell reports the state of one cell
func (p *Player) Cell(x, y int) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.grid.Active(x, y)
}

// notifyUpdate wakes the TUI without blocking
func (p *Player) notifyUpdate() {
	select {
	case p.UpdateChan <- struct{}{}:
	default:
	}
}
