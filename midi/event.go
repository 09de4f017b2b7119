package midi

import "time"

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
	CC      uint8 = 0xB0
)

// Event is one message captured by the recorder
type Event struct {
	Type     uint8 // NoteOn, NoteOff
	Channel  uint8
	Note     uint8
	Velocity uint8
	At       time.Duration // since the recording started
}
