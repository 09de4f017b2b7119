package midi

import (
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-lifeseq/sequencer"
)

// Ticks per quarter note in recorded files
const recordResolution = 960

// Recorder captures every triggered note so the session can be saved as a
// Standard MIDI File. It is a sequencer.Synth and makes no sound.
type Recorder struct {
	mu      sync.Mutex
	start   time.Time
	bpm     float64
	channel uint8
	events  []Event

	now func() time.Time
}

// NewRecorder starts recording now. bpm only sets the file's tempo map;
// times are kept exact.
func NewRecorder(bpm float64, channel int) *Recorder {
	r := &Recorder{bpm: bpm, now: time.Now}
	if channel >= 1 && channel <= 16 {
		r.channel = uint8(channel - 1)
	}
	r.start = r.now()
	return r
}

func (r *Recorder) Now() time.Time { return r.now() }

func (r *Recorder) TriggerAttackRelease(pitch string, length time.Duration, at time.Time) error {
	note, err := sequencer.ParsePitch(pitch)
	if err != nil {
		return fmt.Errorf("midi: %w", err)
	}
	on := max(at.Sub(r.start), 0)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events,
		Event{Type: NoteOn, Channel: r.channel, Note: note, Velocity: DefaultVelocity, At: on},
		Event{Type: NoteOff, Channel: r.channel, Note: note, At: on + length},
	)
	return nil
}

// Len returns the number of recorded notes
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events) / 2
}

// ticks converts a time offset to ticks at the recorder's tempo
func (r *Recorder) ticks(d time.Duration) uint32 {
	return uint32(math.Round(d.Minutes() * r.bpm * recordResolution))
}

// Track returns the notes as one SMF track, sorted by time with
// note-offs before note-ons at equal times
func (r *Recorder) Track() smf.Track {
	r.mu.Lock()
	events := make([]Event, len(r.events))
	copy(events, r.events)
	r.mu.Unlock()

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].At != events[j].At {
			return events[i].At < events[j].At
		}
		return events[i].Type == NoteOff && events[j].Type == NoteOn
	})

	var track smf.Track
	var last uint32
	for _, ev := range events {
		abs := r.ticks(ev.At)
		var msg gomidi.Message
		if ev.Type == NoteOn {
			msg = gomidi.NoteOn(ev.Channel, ev.Note, ev.Velocity)
		} else {
			msg = gomidi.NoteOff(ev.Channel, ev.Note)
		}
		track.Add(abs-last, msg)
		last = abs
	}
	track.Close(0)
	return track
}

// SMF builds a two-track file: tempo map, then notes
func (r *Recorder) SMF() (*smf.SMF, error) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(recordResolution)

	var tempo smf.Track
	tempo.Add(0, smf.MetaMeter(4, 4))
	tempo.Add(0, smf.MetaTempo(r.bpm))
	tempo.Close(0)
	if err := s.Add(tempo); err != nil {
		return nil, fmt.Errorf("midi: add tempo track: %w", err)
	}
	if err := s.Add(r.Track()); err != nil {
		return nil, fmt.Errorf("midi: add note track: %w", err)
	}
	return s, nil
}

// WriteTo writes the file to w
func (r *Recorder) WriteTo(w io.Writer) (int64, error) {
	s, err := r.SMF()
	if err != nil {
		return 0, err
	}
	return s.WriteTo(w)
}

// WriteFile saves the recording to path
func (r *Recorder) WriteFile(path string) error {
	s, err := r.SMF()
	if err != nil {
		return err
	}
	if err := s.WriteFile(path); err != nil {
		return fmt.Errorf("midi: write %s: %w", path, err)
	}
	return nil
}
