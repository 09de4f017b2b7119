package sequencer

import (
	"errors"
	"time"
)

// Synth is the audio collaborator: anything that can sound a pitch for a
// length starting at a point in time.
type Synth interface {
	// Now is the synth's notion of the current time; note times are offsets from it
	Now() time.Time
	// TriggerAttackRelease schedules a note-on at `at` and a note-off at `at+length`
	TriggerAttackRelease(pitch string, length time.Duration, at time.Time) error
}

// Note is one triggered pitch
type Note struct {
	Pitch  string
	Length time.Duration
	At     time.Time
}

// Synths fans every trigger out to several synths. Now comes from the first one.
type Synths []Synth

func (s Synths) Now() time.Time {
	if len(s) == 0 {
		return time.Now()
	}
	return s[0].Now()
}

func (s Synths) TriggerAttackRelease(pitch string, length time.Duration, at time.Time) error {
	var errs []error
	for _, syn := range s {
		if err := syn.TriggerAttackRelease(pitch, length, at); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Silent drops every note
type Silent struct{}

func (Silent) Now() time.Time { return time.Now() }

func (Silent) TriggerAttackRelease(string, time.Duration, time.Time) error { return nil }
