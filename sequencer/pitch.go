package sequencer

import "errors"

// ErrNoPitches is returned when a pitch map would be empty
var ErrNoPitches = errors.New("sequencer: empty pitch sequence")

// PitchMap sonifies row positions by indexing a fixed pitch sequence modulo its length
type PitchMap struct {
	pitches []string
}

// NewPitchMap copies pitches into a new map
func NewPitchMap(pitches []string) (*PitchMap, error) {
	if len(pitches) == 0 {
		return nil, ErrNoPitches
	}
	p := make([]string, len(pitches))
	copy(p, pitches)
	return &PitchMap{pitches: p}, nil
}

// Pitch returns the pitch name for row y
func (m *PitchMap) Pitch(y int) string {
	n := len(m.pitches)
	return m.pitches[((y%n)+n)%n]
}

// Len returns the length of the sequence
func (m *PitchMap) Len() int {
	return len(m.pitches)
}

// Pitches returns a copy of the sequence
func (m *PitchMap) Pitches() []string {
	out := make([]string, len(m.pitches))
	copy(out, m.pitches)
	return out
}

// Row returns the lowest row sounding MIDI note, or false if the note is not
// in the sequence
func (m *PitchMap) Row(note uint8) (int, bool) {
	for y, p := range m.pitches {
		if n, err := ParsePitch(p); err == nil && n == note {
			return y, true
		}
	}
	return 0, false
}
