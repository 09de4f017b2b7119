package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// NoteFreq converts a MIDI note number to Hz (A4 = 440)
func NoteFreq(note uint8) float64 {
	return 440 * math.Pow(2, (float64(note)-69)/12)
}

// voice is a triangle oscillator with a linear attack/release envelope
type voice struct {
	freq  float64
	phase float64
	rate  beep.SampleRate
	gain  float64

	pos     int
	total   int
	attack  int
	release int
}

// NewVoice returns a finite streamer sounding freq for length
func NewVoice(freq float64, length, attack, release time.Duration, gain float64, rate beep.SampleRate) beep.Streamer {
	total := rate.N(length)
	att := min(rate.N(attack), total/2)
	rel := min(rate.N(release), total-att)
	return &voice{
		freq:    freq,
		rate:    rate,
		gain:    gain,
		total:   total,
		attack:  att,
		release: rel,
	}
}

func (v *voice) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if v.pos >= v.total {
			return i, i > 0
		}

		val := 4*math.Abs(v.phase-0.5) - 1
		val *= v.gain * v.envelope()

		samples[i][0] = val
		samples[i][1] = val

		v.phase += v.freq / float64(v.rate)
		v.phase -= math.Floor(v.phase)
		v.pos++
	}
	return len(samples), true
}

func (v *voice) envelope() float64 {
	if v.attack > 0 && v.pos < v.attack {
		return float64(v.pos) / float64(v.attack)
	}
	if left := v.total - v.pos; v.release > 0 && left <= v.release {
		return float64(left-1) / float64(v.release)
	}
	return 1
}

func (v *voice) Err() error { return nil }
