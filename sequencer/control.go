package sequencer

import (
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Interval bounds of the speed control
const (
	MinInterval     = 100 * time.Millisecond
	MaxInterval     = 500 * time.Millisecond
	DefaultInterval = 187500 * time.Microsecond
)

// Control is the state shared between the UI and the player.
//
// Both fields are written asynchronously by input handlers and read by the
// player once per cycle, so they are atomics.
type Control struct {
	running  atomic.Bool
	interval atomic.Int64 // time.Duration
}

// NewControl returns a paused control at the default interval
func NewControl() *Control {
	c := &Control{}
	c.interval.Store(int64(DefaultInterval))
	return c
}

// Running reports whether playback is enabled
func (c *Control) Running() bool {
	return c.running.Load()
}

// SetRunning sets the run flag
func (c *Control) SetRunning(on bool) {
	c.running.Store(on)
}

// Toggle flips the run flag and returns the new value
func (c *Control) Toggle() bool {
	for {
		old := c.running.Load()
		if c.running.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Interval returns the current cycle interval
func (c *Control) Interval() time.Duration {
	return time.Duration(c.interval.Load())
}

// SetInterval stores d clamped to [MinInterval, MaxInterval] and returns the stored value
func (c *Control) SetInterval(d time.Duration) time.Duration {
	d = ClampInterval(d)
	c.interval.Store(int64(d))
	return d
}

// Nudge moves the interval by delta, clamped
func (c *Control) Nudge(delta time.Duration) time.Duration {
	for {
		old := c.interval.Load()
		next := int64(ClampInterval(time.Duration(old) + delta))
		if c.interval.CompareAndSwap(old, next) {
			return time.Duration(next)
		}
	}
}

// SetIntervalText parses a millisecond value ("250", "187.5", "300ms") and
// applies it. Malformed input leaves the interval untouched and returns false.
func (c *Control) SetIntervalText(s string) bool {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "ms")
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	ms, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return false
	}
	c.SetInterval(time.Duration(ms * float64(time.Millisecond)))
	return true
}

// ClampInterval limits d to the range of the speed control
func ClampInterval(d time.Duration) time.Duration {
	if d < MinInterval {
		return MinInterval
	}
	if d > MaxInterval {
		return MaxInterval
	}
	return d
}

// FormatInterval renders an interval in milliseconds with one decimal
func FormatInterval(d time.Duration) string {
	return strconv.FormatFloat(float64(d)/float64(time.Millisecond), 'f', 1, 64) + "ms"
}
