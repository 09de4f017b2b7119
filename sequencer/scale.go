package sequencer

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrBadPitch     = errors.New("sequencer: bad pitch name")
	ErrUnknownScale = errors.New("sequencer: unknown scale")
	ErrBadNoteValue = errors.New("sequencer: bad note value")
)

// Scale definitions - pitch classes above the tonic (semitones)
var scales = map[string][]int{
	"chromatic":         {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	"major":             {0, 2, 4, 5, 7, 9, 11},
	"ionian":            {0, 2, 4, 5, 7, 9, 11},
	"minor":             {0, 2, 3, 5, 7, 8, 10},
	"aeolian":           {0, 2, 3, 5, 7, 8, 10},
	"pentatonic":        {0, 2, 4, 7, 9},
	"major pentatonic":  {0, 2, 4, 7, 9},
	"minor pentatonic":  {0, 3, 5, 7, 10},
	"dorian":            {0, 2, 3, 5, 7, 9, 10},
	"phrygian":          {0, 1, 3, 5, 7, 8, 10},
	"lydian":            {0, 2, 4, 6, 7, 9, 11},
	"mixolydian":        {0, 2, 4, 5, 7, 9, 10},
	"locrian":           {0, 1, 3, 5, 6, 8, 10},
	"harmonic minor":    {0, 2, 3, 5, 7, 8, 11},
	"melodic minor":     {0, 2, 3, 5, 7, 9, 11},
	"blues":             {0, 3, 5, 6, 7, 10},
	"whole tone":        {0, 2, 4, 6, 8, 10},
	"hirajoshi":         {0, 2, 3, 7, 8},
	"in sen":            {0, 1, 5, 7, 10},
	"phrygian dominant": {0, 1, 4, 5, 7, 8, 10},
	"double harmonic":   {0, 1, 4, 5, 7, 8, 11},
}

var (
	sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	flatNames  = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}
	letterPC   = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}
)

// ScaleTypes lists the known scale type names, sorted
func ScaleTypes() []string {
	names := make([]string, 0, len(scales))
	for name := range scales {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// parsePitchClass reads a letter plus accidentals ("C", "f#", "Bb", "C##")
// and returns the semitone offset and how many bytes were consumed.
func parsePitchClass(s string) (pc int, n int, err error) {
	if s == "" {
		return 0, 0, fmt.Errorf("%w: empty", ErrBadPitch)
	}
	base, ok := letterPC[strings.ToUpper(s[:1])[0]]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadPitch, s)
	}
	pc = base
	n = 1
	for n < len(s) {
		switch s[n] {
		case '#':
			pc++
		case 'b':
			pc--
		default:
			return pc, n, nil
		}
		n++
	}
	return pc, n, nil
}

// ParsePitch converts scientific pitch notation ("C4", "F#3", "Bb-1") to a
// MIDI note number, C4 = 60.
func ParsePitch(name string) (uint8, error) {
	name = strings.TrimSpace(name)
	pc, n, err := parsePitchClass(name)
	if err != nil {
		return 0, err
	}
	oct, err := strconv.Atoi(name[n:])
	if err != nil {
		return 0, fmt.Errorf("%w: %q has no octave", ErrBadPitch, name)
	}
	note := (oct+1)*12 + pc
	if note < 0 || note > 127 {
		return 0, fmt.Errorf("%w: %q outside MIDI range", ErrBadPitch, name)
	}
	return uint8(note), nil
}

// PitchName spells a MIDI note number, with flats when flats is set
func PitchName(note uint8, flats bool) string {
	names := sharpNames
	if flats {
		names = flatNames
	}
	return names[int(note)%12] + strconv.Itoa(int(note)/12-1)
}

// RangeOf returns the ascending pitch names of scale between low and high,
// both inclusive. Scale is "<tonic> <type>", e.g. "C pentatonic" or
// "Eb minor pentatonic". Accidentals follow the tonic's spelling.
func RangeOf(scale, low, high string) ([]string, error) {
	scale = strings.TrimSpace(scale)
	tonicName, kind, ok := strings.Cut(scale, " ")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScale, scale)
	}
	tonic, n, err := parsePitchClass(tonicName)
	if err != nil || n != len(tonicName) {
		return nil, fmt.Errorf("%w: tonic %q", ErrUnknownScale, tonicName)
	}
	intervals, ok := scales[strings.ToLower(strings.Join(strings.Fields(kind), " "))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScale, kind)
	}
	lo, err := ParsePitch(low)
	if err != nil {
		return nil, err
	}
	hi, err := ParsePitch(high)
	if err != nil {
		return nil, err
	}
	if lo > hi {
		lo, hi = hi, lo
	}

	member := [12]bool{}
	for _, iv := range intervals {
		member[((tonic+iv)%12+12)%12] = true
	}
	flats := strings.Contains(tonicName[1:], "b") || strings.EqualFold(tonicName, "F")

	var out []string
	for note := int(lo); note <= int(hi); note++ {
		if member[note%12] {
			out = append(out, PitchName(uint8(note), flats))
		}
	}
	return out, nil
}

// ParseNoteValue converts a musical length to a duration at the given tempo.
//
//	"4n"  quarter note, "8n" eighth, "1n" whole
//	"8n." dotted eighth, "8t" eighth triplet
//	"2m"  two 4/4 measures
//	"250ms" any other Go duration
func ParseNoteValue(v string, bpm float64) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if bpm <= 0 {
		return 0, fmt.Errorf("%w: tempo %v", ErrBadNoteValue, bpm)
	}
	if beats, ok := noteBeats(v); ok {
		return time.Duration(beats * float64(time.Minute) / bpm), nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadNoteValue, v)
	}
	return d, nil
}

// noteBeats returns the length of a note value in quarter-note beats
func noteBeats(v string) (float64, bool) {
	dotted := strings.HasSuffix(v, ".")
	v = strings.TrimSuffix(v, ".")
	if len(v) < 2 {
		return 0, false
	}
	num, err := strconv.Atoi(v[:len(v)-1])
	if err != nil || num <= 0 {
		return 0, false
	}

	var beats float64
	switch v[len(v)-1] {
	case 'n':
		beats = 4 / float64(num)
	case 't':
		beats = 4 / float64(num) * 2 / 3
	case 'm':
		beats = 4 * float64(num)
	default:
		return 0, false
	}
	if dotted {
		beats *= 1.5
	}
	return beats, true
}
