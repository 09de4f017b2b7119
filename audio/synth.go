package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"go-lifeseq/debug"
	"go-lifeseq/sequencer"
)

// Defaults for the built-in synth
const (
	DefaultSampleRate = beep.SampleRate(44100)
	DefaultAttack     = 5 * time.Millisecond
	DefaultRelease    = 60 * time.Millisecond
	DefaultGain       = 0.2
)

// Synth is a polyphonic triangle synth mixed onto the speaker. Notes are
// scheduled by prefixing them with silence, so timing is sample-accurate
// relative to the moment of the trigger.
type Synth struct {
	mu      sync.Mutex
	rate    beep.SampleRate
	mixer   *beep.Mixer
	started bool

	Attack  time.Duration
	Release time.Duration
	Gain    float64

	now func() time.Time
}

// NewSynth creates a synth that has not opened the audio device yet
func NewSynth(rate beep.SampleRate) *Synth {
	return &Synth{
		rate:    rate,
		mixer:   &beep.Mixer{},
		Attack:  DefaultAttack,
		Release: DefaultRelease,
		Gain:    DefaultGain,
		now:     time.Now,
	}
}

// Start opens the speaker and begins playing the mixer
func (s *Synth) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// 50ms buffer keeps latency below the shortest cycle interval
	if err := speaker.Init(s.rate, s.rate.N(50*time.Millisecond)); err != nil {
		return fmt.Errorf("audio: init speaker: %w", err)
	}
	speaker.Play(s.mixer)
	s.started = true
	debug.Log("audio", "speaker started rate=%d", s.rate)
	return nil
}

// Close silences every voice and stops the speaker
func (s *Synth) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.mixer.Clear()
		return
	}
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	speaker.Clear()
	speaker.Close()
	s.started = false
}

func (s *Synth) Now() time.Time { return s.now() }

// TriggerAttackRelease schedules pitch at `at` for length
func (s *Synth) TriggerAttackRelease(pitch string, length time.Duration, at time.Time) error {
	note, err := sequencer.ParsePitch(pitch)
	if err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	if length <= 0 {
		return nil
	}

	delay := max(at.Sub(s.now()), 0)
	v := NewVoice(NoteFreq(note), length, s.Attack, s.Release, s.Gain, s.rate)
	streamer := beep.Seq(beep.Silence(s.rate.N(delay)), v)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		speaker.Lock()
		s.mixer.Add(streamer)
		speaker.Unlock()
	} else {
		s.mixer.Add(streamer)
	}
	return nil
}

// Voices reports how many notes are queued or sounding
func (s *Synth) Voices() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		speaker.Lock()
		defer speaker.Unlock()
	}
	return s.mixer.Len()
}
