package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"go-lifeseq/canvas"
	"go-lifeseq/life"
	"go-lifeseq/midi"
	"go-lifeseq/sequencer"
)

func newTestModel(t *testing.T) (Model, *sequencer.Player) {
	t.Helper()
	grid, err := life.New(4, 3, life.Empty)
	if err != nil {
		t.Fatal(err)
	}
	pitches, err := sequencer.NewPitchMap([]string{"C4", "D4", "E4"})
	if err != nil {
		t.Fatal(err)
	}
	geom := sequencer.DefaultGeometry()
	c := canvas.New()
	player := sequencer.NewPlayer(grid, sequencer.NewControl(), pitches)
	player.SetBoard(sequencer.NewBoard(c, 4, 3, geom, sequencer.DefaultColors()))

	m := NewModel(Options{
		Player:   player,
		Canvas:   c,
		Geometry: geom,
		Seed:     life.RowSeed(1),
		Mirror:   midi.NewMirror(c, player, pitches, geom),
	})
	return m, player
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestToggleAndNudge(t *testing.T) {
	m, player := newTestModel(t)
	ctl := player.Control()

	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	if !ctl.Running() {
		t.Fatal("space did not start playback")
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	if got := ctl.Interval(); got != 177500*time.Microsecond {
		t.Fatalf("after left: %v", got)
	}
	press(m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight})
	if got := ctl.Interval(); got != 197500*time.Microsecond {
		t.Fatalf("after right x2: %v", got)
	}
}

func TestIntervalField(t *testing.T) {
	m, player := newTestModel(t)
	ctl := player.Control()

	m = press(m, runes("i"))
	if !m.editing {
		t.Fatal("i did not open the interval field")
	}
	m = press(m, runes("2"), runes("5"), runes("0"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.editing {
		t.Fatal("enter did not close the field")
	}
	if got := ctl.Interval(); got != 250*time.Millisecond {
		t.Fatalf("interval = %v, want 250ms", got)
	}

	// Malformed input leaves the interval alone
	m = press(m, runes("i"), runes("f"), runes("a"), runes("s"), runes("t"), tea.KeyMsg{Type: tea.KeyEnter})
	if got := ctl.Interval(); got != 250*time.Millisecond {
		t.Fatalf("interval changed to %v", got)
	}

	// Esc discards
	press(m, runes("i"), runes("1"), runes("2"), runes("0"), tea.KeyMsg{Type: tea.KeyEsc})
	if got := ctl.Interval(); got != 250*time.Millisecond {
		t.Fatalf("esc applied %v", got)
	}
}

func TestEditingSwallowsKeys(t *testing.T) {
	m, player := newTestModel(t)
	m = press(m, runes("i"), runes("q"))
	if m.quitting {
		t.Fatal("q quit while editing")
	}
	press(m, tea.KeyMsg{Type: tea.KeySpace})
	if player.Control().Running() {
		t.Fatal("space toggled playback while editing")
	}
}

func TestCursorToggleCell(t *testing.T) {
	m, player := newTestModel(t)

	m = press(m, runes("x"))
	if on, _ := player.Cell(0, 0); !on {
		t.Fatal("x did not toggle (0,0)")
	}

	// h and k wrap around
	m = press(m, runes("h"), runes("k"), runes("x"))
	if on, _ := player.Cell(3, 2); !on {
		t.Fatal("wrapped cursor did not toggle (3,2)")
	}

	press(m, runes("l"), runes("j"), tea.KeyMsg{Type: tea.KeyEnter})
	if on, _ := player.Cell(0, 0); on {
		t.Fatal("enter did not toggle (0,0) back off")
	}
}

func TestReseedAndClear(t *testing.T) {
	m, player := newTestModel(t)

	m = press(m, runes("r"))
	if st := player.Snapshot(); st.Population != 4 {
		t.Fatalf("population after reseed = %d, want 4", st.Population)
	}
	press(m, runes("c"))
	if st := player.Snapshot(); st.Population != 0 {
		t.Fatalf("population after clear = %d", st.Population)
	}
}

func TestQuitStopsPlayback(t *testing.T) {
	m, player := newTestModel(t)
	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	next, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q did not quit")
	}
	if player.Control().Running() {
		t.Fatal("still running after quit")
	}
	if next.View() != "" {
		t.Fatal("view not blank after quit")
	}
}

func TestView(t *testing.T) {
	m, _ := newTestModel(t)
	view := m.View()
	for _, want := range []string{"STOP", "187.5ms", "col:--", "gen:0", "pop:0", "◉"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "interval (ms)") {
		t.Error("interval field shown before i")
	}
	m = press(m, runes("i"))
	if !strings.Contains(m.View(), "interval (ms)") {
		t.Error("interval field not shown while editing")
	}
}

type stubController struct {
	id   string
	kind midi.ControllerType
	pads chan midi.PadEvent
	keys chan midi.NoteEvent
}

func newStubController(id string, kind midi.ControllerType) *stubController {
	return &stubController{id: id, kind: kind, pads: make(chan midi.PadEvent), keys: make(chan midi.NoteEvent)}
}

func (s *stubController) ID() string { return s.id }

func (s *stubController) Type() midi.ControllerType { return s.kind }

func (s *stubController) PadEvents() <-chan midi.PadEvent { return s.pads }

func (s *stubController) NoteEvents() <-chan midi.NoteEvent { return s.keys }

func (s *stubController) SetLEDBatch(u []midi.LEDUpdate) error { return nil }

func (s *stubController) Close() error { return nil }

func (s *stubController) SetLEDRGB(row, col int, rgb [3]uint8, channel uint8) error {
	return nil
}

func TestDeviceEvents(t *testing.T) {
	m, _ := newTestModel(t)

	kb := newStubController("kb", midi.ControllerKeyboard)
	defer close(kb.pads)
	defer close(kb.keys)
	m.handleDevice(midi.DeviceEvent{Type: midi.DeviceConnected, Controller: kb, ID: kb.id})
	if m.controller != nil {
		t.Fatal("keyboard attached as the grid controller")
	}

	lp := newStubController("lp", midi.ControllerLaunchpad)
	defer close(lp.pads)
	defer close(lp.keys)
	m.handleDevice(midi.DeviceEvent{Type: midi.DeviceConnected, Controller: lp, ID: lp.id})
	if m.controller != lp {
		t.Fatal("launchpad not attached")
	}
	if !strings.Contains(m.View(), "LP") {
		t.Error("header missing LP status")
	}

	m.handleDevice(midi.DeviceEvent{Type: midi.DeviceDisconnected, ID: "kb"})
	if m.controller != lp {
		t.Fatal("keyboard disconnect detached the launchpad")
	}
	m.handleDevice(midi.DeviceEvent{Type: midi.DeviceDisconnected, ID: "lp"})
	if m.controller != nil {
		t.Fatal("launchpad still attached after disconnect")
	}
}
