package midi

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-lifeseq/debug"
	"go-lifeseq/sequencer"
)

// ErrNoPort is returned when no output port matches
var ErrNoPort = errors.New("midi: no matching output port")

// DefaultVelocity for generated notes
const DefaultVelocity uint8 = 100

// Output plays notes on an external MIDI instrument. Note-ons and note-offs
// are dispatched on timers at their scheduled times.
type Output struct {
	send     func(gomidi.Message) error
	channel  uint8 // 0-15
	Velocity uint8

	mu     sync.Mutex
	timers map[*time.Timer]struct{}
	closed bool

	now func() time.Time
}

// OpenOutput opens the first output port whose name contains name
// (case-insensitive; empty picks the first port). channel is 1-16.
func OpenOutput(name string, channel int) (*Output, error) {
	for _, port := range gomidi.GetOutPorts() {
		if name != "" && !strings.Contains(strings.ToLower(port.String()), strings.ToLower(name)) {
			continue
		}
		send, err := gomidi.SendTo(port)
		if err != nil {
			return nil, fmt.Errorf("midi: open %s: %w", port.String(), err)
		}
		debug.Log("midi-out", "opened %s ch=%d", port.String(), channel)
		return NewOutput(send, channel), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNoPort, name)
}

// NewOutput wraps a sender. channel is 1-16.
func NewOutput(send func(gomidi.Message) error, channel int) *Output {
	ch := uint8(0)
	if channel >= 1 && channel <= 16 {
		ch = uint8(channel - 1)
	}
	return &Output{
		send:     send,
		channel:  ch,
		Velocity: DefaultVelocity,
		timers:   make(map[*time.Timer]struct{}),
		now:      time.Now,
	}
}

func (o *Output) Now() time.Time { return o.now() }

// TriggerAttackRelease sends note-on at `at` and note-off length later
func (o *Output) TriggerAttackRelease(pitch string, length time.Duration, at time.Time) error {
	note, err := sequencer.ParsePitch(pitch)
	if err != nil {
		return fmt.Errorf("midi: %w", err)
	}

	delay := max(at.Sub(o.now()), 0)
	on := gomidi.NoteOn(o.channel, note, o.Velocity)
	off := gomidi.NoteOff(o.channel, note)

	if delay == 0 {
		if err := o.send(on); err != nil {
			return fmt.Errorf("midi: note on: %w", err)
		}
	} else if !o.schedule(delay, on) {
		return nil
	}
	o.schedule(delay+length, off)
	return nil
}

// schedule sends msg after d; false once closed
func (o *Output) schedule(d time.Duration, msg gomidi.Message) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return false
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		o.mu.Lock()
		_, live := o.timers[t]
		delete(o.timers, t)
		o.mu.Unlock()
		if !live {
			return
		}
		if err := o.send(msg); err != nil {
			debug.Log("midi-out", "send %s: %v", msg, err)
		}
	})
	o.timers[t] = struct{}{}
	return true
}

// Pending reports how many messages are still scheduled
func (o *Output) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.timers)
}

// Close cancels pending messages and silences the channel
func (o *Output) Close() error {
	o.mu.Lock()
	o.closed = true
	for t := range o.timers {
		t.Stop()
	}
	o.timers = make(map[*time.Timer]struct{})
	o.mu.Unlock()

	// All Notes Off
	return o.send(gomidi.ControlChange(o.channel, 123, 0))
}
