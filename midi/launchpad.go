package midi

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	colorful "github.com/lucasb-eyer/go-colorful"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-lifeseq/debug"
)

var ledSendCount uint64

// SysEx device ids
const (
	deviceLaunchpadX    byte = 0x0C
	deviceLaunchpadMini byte = 0x0D
)

// LaunchpadController handles a Novation Launchpad X or Mini MK3 in
// programmer mode
type LaunchpadController struct {
	id       string
	device   byte
	send     func(msg gomidi.Message) error
	stopFunc func()

	padChan  chan PadEvent
	noteChan chan NoteEvent
	closed   sync.Once
}

// NewLaunchpadController opens the ports and switches the device to programmer mode
func NewLaunchpadController(id string, inPort drivers.In, outPort drivers.Out) (*LaunchpadController, error) {
	lp := newLaunchpad(id)

	// Open output
	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		lp.send = send
		lp.setup()
	}

	// Open input
	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			lp.handle(msg)
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		lp.stopFunc = stop
	}

	return lp, nil
}

func newLaunchpad(id string) *LaunchpadController {
	device := deviceLaunchpadX
	if strings.Contains(strings.ToLower(id), "mini") {
		device = deviceLaunchpadMini
	}
	return &LaunchpadController{
		id:       id,
		device:   device,
		padChan:  make(chan PadEvent, 32),
		noteChan: make(chan NoteEvent, 32),
	}
}

func (lp *LaunchpadController) sysex(data ...byte) {
	msg := append([]byte{0x00, 0x20, 0x29, 0x02, lp.device}, data...)
	if err := lp.send(gomidi.SysEx(msg)); err != nil {
		debug.Log("lp", "sysex %x: %v", data, err)
	}
}

func (lp *LaunchpadController) setup() {
	// Programmer mode: F0 00 20 29 02 <dev> 0E 01 F7
	lp.sysex(0x0E, 0x01)
	// Full brightness: F0 00 20 29 02 <dev> 08 7F F7
	lp.sysex(0x08, 0x7F)
	// Pads light only from our messages: F0 00 20 29 02 <dev> 0A 01 01 F7
	lp.sysex(0x0A, 0x01, 0x01)
}

// handle turns incoming messages into pad events, dropping them if nobody listens
func (lp *LaunchpadController) handle(msg gomidi.Message) {
	var channel, note, velocity uint8
	var cc, value uint8

	// Note messages: 8x8 grid + side buttons
	if msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0 {
		if row, col := noteToRowCol(note); row >= 0 {
			lp.emit(PadEvent{Row: row, Col: col, Velocity: velocity})
		}
	}

	// CC messages: top row buttons (CC 91-98)
	if msg.GetControlChange(&channel, &cc, &value) && value > 0 {
		if row, col := ccToRowCol(cc); row >= 0 {
			lp.emit(PadEvent{Row: row, Col: col, Velocity: value})
		}
	}
}

func (lp *LaunchpadController) emit(ev PadEvent) {
	select {
	case lp.padChan <- ev:
	default:
	}
}

func (lp *LaunchpadController) ID() string {
	return lp.id
}

func (lp *LaunchpadController) Type() ControllerType {
	return ControllerLaunchpad
}

func (lp *LaunchpadController) PadEvents() <-chan PadEvent {
	return lp.padChan
}

func (lp *LaunchpadController) NoteEvents() <-chan NoteEvent {
	return lp.noteChan // pads are not keys
}

func (lp *LaunchpadController) SetLEDRGB(row, col int, rgb [3]uint8, channel uint8) error {
	if lp.send == nil {
		return nil
	}
	atomic.AddUint64(&ledSendCount, 1)
	return lp.send(ledMessage(LEDUpdate{Row: row, Col: col, Color: rgb, Channel: channel}))
}

// SetLEDBatch sends each update as its own message; callers diff frames so
// batches stay small
func (lp *LaunchpadController) SetLEDBatch(updates []LEDUpdate) error {
	if lp.send == nil || len(updates) == 0 {
		return nil
	}

	var firstErr error
	for _, u := range updates {
		if err := lp.send(ledMessage(u)); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	atomic.AddUint64(&ledSendCount, uint64(len(updates)))

	count := atomic.LoadUint64(&ledSendCount)
	if count%100 < uint64(len(updates)) {
		debug.Log("lp-send", "batch count=%d (this batch=%d)", count, len(updates))
	}

	return firstErr
}

// ledMessage addresses the top row by CC and everything else by note
func ledMessage(u LEDUpdate) gomidi.Message {
	color := mapRGBToLaunchpad(u.Color)
	if u.Row == 8 {
		return gomidi.ControlChange(u.Channel, uint8(91+u.Col), color)
	}
	return gomidi.NoteOn(u.Channel, rowColToNote(u.Row, u.Col), color)
}

// Launchpad X palette entries, approximate RGB
// Format: {velocity, R, G, B}
var launchpadPalette = [][4]uint8{
	{0, 0, 0, 0},         // off
	{1, 30, 30, 30},      // dark grey
	{2, 127, 127, 127},   // grey
	{3, 255, 255, 255},   // white
	{5, 255, 0, 0},       // red
	{6, 255, 80, 80},     // bright red
	{7, 180, 60, 60},     // dim red
	{9, 255, 100, 0},     // orange
	{11, 180, 80, 40},    // dim orange
	{13, 255, 200, 0},    // yellow
	{17, 0, 180, 0},      // green
	{19, 0, 100, 0},      // dim green
	{21, 0, 255, 0},      // bright green
	{29, 0, 255, 128},    // spring green
	{33, 0, 255, 170},    // mint
	{37, 0, 200, 200},    // cyan
	{43, 40, 60, 120},    // dim blue
	{45, 0, 100, 255},    // blue
	{47, 80, 150, 255},   // bright blue
	{49, 150, 0, 200},    // purple
	{53, 255, 80, 180},   // pink
	{57, 255, 0, 100},    // hot pink
	{78, 100, 100, 255},  // light blue
	{84, 255, 150, 50},   // bright orange
	{87, 150, 255, 100},  // lime
	{97, 180, 180, 60},   // dim yellow
	{119, 255, 255, 255}, // bright white
}

// mapRGBToLaunchpad finds the nearest palette color in Lab space
func mapRGBToLaunchpad(rgb [3]uint8) uint8 {
	if rgb == [3]uint8{} {
		return ColorOff
	}
	target := colorful.Color{R: float64(rgb[0]) / 255, G: float64(rgb[1]) / 255, B: float64(rgb[2]) / 255}

	bestMatch := ColorOff
	bestDist := -1.0
	for _, p := range launchpadPalette {
		c := colorful.Color{R: float64(p[1]) / 255, G: float64(p[2]) / 255, B: float64(p[3]) / 255}
		if d := target.DistanceLab(c); bestDist < 0 || d < bestDist {
			bestDist = d
			bestMatch = p[0]
		}
	}
	return bestMatch
}

func (lp *LaunchpadController) Close() error {
	lp.closed.Do(func() {
		// Clear all LEDs on close via batch
		if lp.send != nil {
			var updates []LEDUpdate
			for row := 0; row < 9; row++ {
				for col := 0; col < 9; col++ {
					if row == 8 && col == 8 {
						continue // no LED at 8,8
					}
					updates = append(updates, LEDUpdate{Row: row, Col: col})
				}
			}
			lp.SetLEDBatch(updates)
			// Back to live mode
			lp.sysex(0x0E, 0x00)
		}
		if lp.stopFunc != nil {
			lp.stopFunc()
		}
		close(lp.padChan)
		close(lp.noteChan)
	})
	return nil
}

// Launchpad note mapping
// 8x8 Grid:  Row 0 (bottom) = notes 11-18, Row 7 = notes 81-88
// Side col:  Col 8 (right side scene buttons) = notes 19, 29, ... 89
// Top row:   Row 8 = CC 91-98

func rowColToNote(row, col int) uint8 {
	if row == 8 {
		return uint8(91 + col)
	}
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int) {
	if note >= 91 && note <= 98 {
		return 8, int(note - 91)
	}
	row = int(note/10) - 1
	col = int(note%10) - 1
	// Accept 8x8 grid (rows 0-7, cols 0-7) plus side column (col 8)
	if row < 0 || row > 7 || col < 0 || col > 8 {
		return -1, -1
	}
	return row, col
}

// ccToRowCol converts CC messages to row/col (for top row buttons)
func ccToRowCol(cc uint8) (row, col int) {
	if cc >= 91 && cc <= 98 {
		return 8, int(cc - 91)
	}
	return -1, -1
}
