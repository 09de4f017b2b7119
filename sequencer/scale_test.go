package sequencer

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRangeOf(t *testing.T) {
	cases := []struct {
		scale, low, high string
		want             string
	}{
		{"C pentatonic", "C4", "C6", "C4 D4 E4 G4 A4 C5 D5 E5 G5 A5 C6"},
		{"C major", "C4", "C5", "C4 D4 E4 F4 G4 A4 B4 C5"},
		{"A minor pentatonic", "A3", "A4", "A3 C4 D4 E4 G4 A4"},
		{"Eb major", "Eb4", "Eb5", "Eb4 F4 G4 Ab4 Bb4 C5 D5 Eb5"},
		{"D dorian", "D4", "D5", "D4 E4 F4 G4 A4 B4 C5 D5"},
		{"F# blues", "F#3", "F#4", "F#3 A3 B3 C4 C#4 E4 F#4"},
		{"C pentatonic", "C6", "C4", "C4 D4 E4 G4 A4 C5 D5 E5 G5 A5 C6"},
	}
	for _, c := range cases {
		got, err := RangeOf(c.scale, c.low, c.high)
		if err != nil {
			t.Fatalf("RangeOf(%q): %v", c.scale, err)
		}
		if s := strings.Join(got, " "); s != c.want {
			t.Errorf("RangeOf(%q, %s, %s) = %s, want %s", c.scale, c.low, c.high, s, c.want)
		}
	}

	if _, err := RangeOf("C bebop", "C4", "C5"); !errors.Is(err, ErrUnknownScale) {
		t.Errorf("unknown type err = %v", err)
	}
	if _, err := RangeOf("pentatonic", "C4", "C5"); !errors.Is(err, ErrUnknownScale) {
		t.Errorf("missing tonic err = %v", err)
	}
	if _, err := RangeOf("C major", "H4", "C5"); !errors.Is(err, ErrBadPitch) {
		t.Errorf("bad low err = %v", err)
	}
}

func TestParsePitch(t *testing.T) {
	cases := map[string]uint8{
		"C4":   60,
		"A4":   69,
		"c#4":  61,
		"Db4":  61,
		"B3":   59,
		"Cb4":  59,
		"C-1":  0,
		"G9":   127,
		"E#4":  65,
		"Bb-1": 10,
	}
	for in, want := range cases {
		got, err := ParsePitch(in)
		if err != nil || got != want {
			t.Errorf("ParsePitch(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "X4", "C", "C#", "G#9", "C-2"} {
		if _, err := ParsePitch(bad); !errors.Is(err, ErrBadPitch) {
			t.Errorf("ParsePitch(%q) err = %v", bad, err)
		}
	}
	if PitchName(61, false) != "C#4" || PitchName(61, true) != "Db4" {
		t.Errorf("PitchName(61) = %s / %s", PitchName(61, false), PitchName(61, true))
	}
}

func TestParseNoteValue(t *testing.T) {
	cases := []struct {
		in   string
		bpm  float64
		want time.Duration
	}{
		{"8n", 120, 250 * time.Millisecond},
		{"4n", 120, 500 * time.Millisecond},
		{"4n", 60, time.Second},
		{"8n.", 120, 375 * time.Millisecond},
		{"1m", 120, 2 * time.Second},
		{"150ms", 120, 150 * time.Millisecond},
	}
	for _, c := range cases {
		got, err := ParseNoteValue(c.in, c.bpm)
		if err != nil || got != c.want {
			t.Errorf("ParseNoteValue(%q, %v) = %v, %v; want %v", c.in, c.bpm, got, err, c.want)
		}
	}
	if got, _ := ParseNoteValue("4t", 120); got < 333*time.Millisecond || got > 334*time.Millisecond {
		t.Errorf("ParseNoteValue(4t) = %v", got)
	}
	for _, bad := range []string{"", "n", "0n", "8q", "-5ms"} {
		if _, err := ParseNoteValue(bad, 120); !errors.Is(err, ErrBadNoteValue) {
			t.Errorf("ParseNoteValue(%q) err = %v", bad, err)
		}
	}
	if _, err := ParseNoteValue("8n", 0); !errors.Is(err, ErrBadNoteValue) {
		t.Errorf("zero tempo err = %v", err)
	}
}

func TestPitchMapPeriodic(t *testing.T) {
	pitches, _ := RangeOf("C pentatonic", "C4", "C6")
	m, err := NewPitchMap(pitches)
	if err != nil {
		t.Fatal(err)
	}
	L := m.Len()
	for y := 0; y < 3*L; y++ {
		if m.Pitch(y) != m.Pitch(y+L) {
			t.Fatalf("Pitch(%d)=%s != Pitch(%d)=%s", y, m.Pitch(y), y+L, m.Pitch(y+L))
		}
	}
	if m.Pitch(0) != "C4" || m.Pitch(8) != "G5" || m.Pitch(11) != "C4" {
		t.Fatalf("unexpected mapping %s %s %s", m.Pitch(0), m.Pitch(8), m.Pitch(11))
	}
	if _, err := NewPitchMap(nil); !errors.Is(err, ErrNoPitches) {
		t.Fatalf("empty map err = %v", err)
	}
}

func TestPitchMapRow(t *testing.T) {
	m, _ := NewPitchMap([]string{"C4", "E4", "G4", "C5"})
	if y, ok := m.Row(64); !ok || y != 1 {
		t.Fatalf("Row(E4) = %d, %v", y, ok)
	}
	if _, ok := m.Row(62); ok {
		t.Fatal("Row(D4) found a row")
	}
}
