package midi

// ControllerType identifies the kind of controller
type ControllerType int

const (
	ControllerUnknown ControllerType = iota
	ControllerLaunchpad
	ControllerKeyboard
)

func (t ControllerType) String() string {
	switch t {
	case ControllerLaunchpad:
		return "launchpad"
	case ControllerKeyboard:
		return "keyboard"
	}
	return "unknown"
}

// PadEvent is sent when a pad/button is pressed on a grid controller.
// Row 0 is the bottom pad row, row 8 the top button row, col 8 the scene column.
type PadEvent struct {
	Row, Col int
	Velocity uint8
}

// NoteEvent is sent when a note is played on a keyboard
type NoteEvent struct {
	Note     uint8
	Velocity uint8
	Channel  uint8
}

// LEDUpdate is one pad color change
type LEDUpdate struct {
	Row, Col int
	Color    [3]uint8 // RGB, mapped to the device palette
	Channel  uint8    // ChannelStatic, ChannelFlash, ChannelPulse
}

// Controller is the interface for MIDI input devices
type Controller interface {
	ID() string
	Type() ControllerType

	// Input events from the controller
	PadEvents() <-chan PadEvent   // For grid controllers (Launchpad)
	NoteEvents() <-chan NoteEvent // For keyboards

	// Output to the controller
	SetLEDRGB(row, col int, rgb [3]uint8, channel uint8) error
	SetLEDBatch(updates []LEDUpdate) error

	// Lifecycle
	Close() error
}

// Launchpad X color palette (velocity values 0-127)
const (
	ColorOff         uint8 = 0
	ColorRed         uint8 = 5
	ColorGreen       uint8 = 21
	ColorBrightWhite uint8 = 119

	// Channel modes for SetLED (use as 'channel' parameter)
	ChannelStatic uint8 = 0 // solid color
	ChannelFlash  uint8 = 1 // flashing A/B alternating
	ChannelPulse  uint8 = 2 // pulsing (fades)
)
