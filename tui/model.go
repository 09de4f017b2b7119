package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"go-lifeseq/canvas"
	"go-lifeseq/debug"
	"go-lifeseq/life"
	"go-lifeseq/midi"
	"go-lifeseq/sequencer"
	"go-lifeseq/theme"
	"go-lifeseq/widgets"
)

// Interval step for the arrow keys
const nudgeStep = 10 * time.Millisecond

// Options wires the model to the running sequencer
type Options struct {
	Player    *sequencer.Player
	Canvas    *canvas.Canvas
	Geometry  sequencer.Geometry
	Theme     *theme.Theme
	Seed      life.SeedFunc       // used by reseed
	Mirror    *midi.Mirror        // optional
	DeviceMgr *midi.DeviceManager // optional
}

type Model struct {
	player    *sequencer.Player
	canvas    *canvas.Canvas
	geom      sequencer.Geometry
	theme     *theme.Theme
	seed      life.SeedFunc
	mirror    *midi.Mirror
	deviceMgr *midi.DeviceManager

	keys    keyMap
	help    help.Model
	input   textinput.Model
	editing bool

	cursorX, cursorY int
	controller       midi.Controller // current Launchpad (may be nil)
	quitting         bool
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

// NewModel builds the terminal UI
func NewModel(opts Options) Model {
	th := opts.Theme
	if th == nil {
		th = theme.New(nil)
	}
	seed := opts.Seed
	if seed == nil {
		seed = life.Empty
	}

	in := textinput.New()
	in.Prompt = "interval (ms): "
	in.Placeholder = "187.5"
	in.CharLimit = 8
	in.Width = 10

	return Model{
		player:    opts.Player,
		canvas:    opts.Canvas,
		geom:      opts.Geometry,
		theme:     th,
		seed:      seed,
		mirror:    opts.Mirror,
		deviceMgr: opts.DeviceMgr,
		keys:      newKeyMap(),
		help:      help.New(),
		input:     in,
	}
}

func ListenForUpdates(player *sequencer.Player) tea.Cmd {
	return func() tea.Msg {
		<-player.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.player)}
	if m.deviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.deviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateKeys(msg)

	case UpdateMsg:
		return m, ListenForUpdates(m.player)

	case DeviceEventMsg:
		m.handleDevice(midi.DeviceEvent(msg))
		return m, ListenForDevices(m.deviceMgr)
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctl := m.player.Control()
	cols, rows := m.player.Size()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		ctl.SetRunning(false)
		return m, tea.Quit

	case key.Matches(msg, m.keys.Toggle):
		ctl.Toggle()

	case key.Matches(msg, m.keys.Faster):
		ctl.Nudge(-nudgeStep)

	case key.Matches(msg, m.keys.Slower):
		ctl.Nudge(nudgeStep)

	case key.Matches(msg, m.keys.Interval):
		m.editing = true
		m.input.SetValue("")
		m.input.Placeholder = strings.TrimSuffix(sequencer.FormatInterval(ctl.Interval()), "ms")
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Reseed):
		m.player.Reseed(m.seed)

	case key.Matches(msg, m.keys.Clear):
		m.player.Clear()

	case key.Matches(msg, m.keys.Up):
		m.cursorY = (m.cursorY - 1 + rows) % rows
	case key.Matches(msg, m.keys.Down):
		m.cursorY = (m.cursorY + 1) % rows
	case key.Matches(msg, m.keys.Left):
		m.cursorX = (m.cursorX - 1 + cols) % cols
	case key.Matches(msg, m.keys.Right):
		m.cursorX = (m.cursorX + 1) % cols

	case key.Matches(msg, m.keys.Cell):
		if _, err := m.player.ToggleCell(m.cursorX, m.cursorY); err != nil {
			debug.Log("tui", "toggle cell: %v", err)
		}

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// updateEditing feeds the interval field; malformed input is dropped
func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Apply):
		if !m.player.Control().SetIntervalText(m.input.Value()) {
			debug.Log("tui", "ignored interval %q", m.input.Value())
		}
		m.stopEditing()
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		m.stopEditing()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) stopEditing() {
	m.editing = false
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) handleDevice(event midi.DeviceEvent) {
	switch event.Type {
	case midi.DeviceConnected:
		if m.mirror == nil {
			return
		}
		m.mirror.Listen(event.Controller)
		if event.Controller.Type() == midi.ControllerLaunchpad {
			m.controller = event.Controller
			m.mirror.SetController(event.Controller)
		}
	case midi.DeviceDisconnected:
		if m.controller != nil && m.controller.ID() == event.ID {
			m.controller = nil
			if m.mirror != nil {
				m.mirror.SetController(nil)
			}
		}
	}
}

// cellColors samples the canvas at each cell center
func (m Model) cellColors(cols, rows int) []colorful.Color {
	rects := m.canvas.Snapshot()
	bg, _ := colorful.Hex(m.theme.Palette.Lookup(theme.RoleBG).Hex())
	out := make([]colorful.Color, cols*rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			px, py := m.geom.Position(x, y)
			out[y*cols+x] = canvas.ColorAt(rects, px+m.geom.CellWidth/2, py+m.geom.CellHeight/2, bg)
		}
	}
	return out
}

func (m Model) renderGrid(st sequencer.Status) string {
	cols, rows := m.player.Size()
	colors := m.cellColors(cols, rows)
	sym := m.theme.Symbols

	var out strings.Builder

	// Playhead marker row
	marker := lipgloss.NewStyle().Foreground(m.theme.Accent())
	for x := 0; x < cols; x++ {
		if x > 0 {
			out.WriteString(" ")
		}
		if x == st.Column {
			out.WriteString(marker.Render(string(sym.Playhead)))
		} else {
			out.WriteString(" ")
		}
	}
	out.WriteString("\n")

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if x > 0 {
				out.WriteString(" ")
			}
			r, g, b := colors[y*cols+x].RGB255()
			glyph := sym.Pad
			if x == m.cursorX && y == m.cursorY {
				glyph = sym.Cursor
			}
			out.WriteString(widgets.RenderGlyph([3]uint8{r, g, b}, glyph))
		}
		out.WriteString("\n")
	}
	return out.String()
}

// renderLaunchpad previews what the Launchpad shows
func (m Model) renderLaunchpad() string {
	var grid [8][8][3]uint8
	var top [8][3]uint8
	for _, led := range m.mirror.Frame() {
		switch {
		case led.Row == 8 && led.Col < 8:
			top[led.Col] = led.Color
		case led.Row < 8 && led.Col < 8:
			grid[led.Row][led.Col] = led.Color
		}
	}
	return widgets.RenderPadGrid(grid, &top)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.player.Snapshot()

	headerStyle := lipgloss.NewStyle().Foreground(m.theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.theme.Muted())
	noteStyle := lipgloss.NewStyle().Foreground(m.theme.Success())

	playState := "STOP"
	if st.Running {
		playState = "PLAY"
	}
	deviceStatus := ""
	if m.controller != nil {
		deviceStatus = "  LP"
	}
	column := "--"
	if st.Column >= 0 {
		column = fmt.Sprintf("%02d", st.Column)
	}
	header := headerStyle.Render(fmt.Sprintf("go-lifeseq  %s  %s  col:%s  gen:%d  pop:%d%s",
		playState, sequencer.FormatInterval(st.Interval), column, st.Generation, st.Population, deviceStatus))

	slider := widgets.Slider{
		Min:   float64(sequencer.MinInterval.Milliseconds()),
		Max:   float64(sequencer.MaxInterval.Milliseconds()),
		Width: 24,
		Fill:  m.theme.Symbols.SliderFill,
		Rest:  m.theme.Symbols.SliderRest,
		Style: lipgloss.NewStyle().Foreground(m.theme.Active()),
		Dim:   dimStyle,
	}
	ms := float64(st.Interval) / float64(time.Millisecond)

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(m.renderGrid(st))
	out.WriteString("\n")
	out.WriteString(dimStyle.Render("notes: "))
	out.WriteString(noteStyle.Render(strings.Join(st.Notes, " ")))
	out.WriteString("\n")
	out.WriteString(dimStyle.Render("speed: "))
	out.WriteString(slider.Render(ms))
	out.WriteString("\n")

	if m.controller != nil && m.mirror != nil {
		out.WriteString("\n")
		out.WriteString(m.renderLaunchpad())
		out.WriteString("\n")
	}

	out.WriteString("\n")
	if m.editing {
		out.WriteString(m.input.View())
		out.WriteString("\n")
		out.WriteString(m.help.View(editKeys{m.keys}))
	} else {
		out.WriteString(m.help.View(m.keys))
	}

	return out.String()
}
