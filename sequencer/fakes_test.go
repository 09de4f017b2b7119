package sequencer

import (
	"sync"
	"time"
)

type fakeRect struct {
	w, h    int
	x, y    int
	fill    string
	opacity float64
	moves   int
}

func (r *fakeRect) Move(x, y int) {
	r.x, r.y = x, y
	r.moves++
}

func (r *fakeRect) SetFill(c string) { r.fill = c }

func (r *fakeRect) SetOpacity(v float64) { r.opacity = v }

type fakeSurface struct {
	rects []*fakeRect
}

func (s *fakeSurface) CreateRect(w, h int) Rect {
	r := &fakeRect{w: w, h: h, opacity: 1}
	s.rects = append(s.rects, r)
	return r
}

type fakeSynth struct {
	mu    sync.Mutex
	now   time.Time
	notes []Note
	err   error
}

func newFakeSynth() *fakeSynth {
	return &fakeSynth{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (s *fakeSynth) Now() time.Time { return s.now }

func (s *fakeSynth) TriggerAttackRelease(pitch string, length time.Duration, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, Note{Pitch: pitch, Length: length, At: at})
	return s.err
}

func (s *fakeSynth) played() []Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Note, len(s.notes))
	copy(out, s.notes)
	return out
}
