package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// KeyboardController is an input-only MIDI keyboard. Played keys are
// offered to the grid as cells in the playhead column.
type KeyboardController struct {
	id       string
	stopFunc func()

	padChan  chan PadEvent
	noteChan chan NoteEvent
	closed   sync.Once
}

// NewKeyboardController creates a keyboard controller (input only)
func NewKeyboardController(id string, inPort drivers.In) (*KeyboardController, error) {
	kb := newKeyboard(id)

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			kb.handle(msg)
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		kb.stopFunc = stop
	}

	return kb, nil
}

func newKeyboard(id string) *KeyboardController {
	return &KeyboardController{
		id:       id,
		padChan:  make(chan PadEvent, 32),
		noteChan: make(chan NoteEvent, 32),
	}
}

func (kb *KeyboardController) handle(msg gomidi.Message) {
	var channel, note, velocity uint8
	if msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0 {
		select {
		case kb.noteChan <- NoteEvent{Note: note, Velocity: velocity, Channel: channel}:
		default:
		}
	}
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) Type() ControllerType {
	return ControllerKeyboard
}

func (kb *KeyboardController) PadEvents() <-chan PadEvent {
	return kb.padChan // Keyboards don't have pads
}

func (kb *KeyboardController) NoteEvents() <-chan NoteEvent {
	return kb.noteChan
}

// SetLEDRGB is a no-op for keyboards (no visual feedback)
func (kb *KeyboardController) SetLEDRGB(row, col int, rgb [3]uint8, channel uint8) error {
	return nil
}

// SetLEDBatch is a no-op for keyboards
func (kb *KeyboardController) SetLEDBatch(updates []LEDUpdate) error {
	return nil
}

func (kb *KeyboardController) Close() error {
	kb.closed.Do(func() {
		if kb.stopFunc != nil {
			kb.stopFunc()
		}
		close(kb.padChan)
		close(kb.noteChan)
	})
	return nil
}
