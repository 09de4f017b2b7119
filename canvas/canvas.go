// Package canvas is an in-memory drawing surface. The player paints rects
// into it and the front ends (terminal, Launchpad, window) read snapshots.
package canvas

import (
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"

	"go-lifeseq/sequencer"
)

// RectState is a copy of one rect at snapshot time
type RectState struct {
	X, Y, W, H int
	Fill       string
	Opacity    float64
}

// Color parses Fill, falling back to black for malformed values
func (r RectState) Color() colorful.Color {
	c, err := colorful.Hex(r.Fill)
	if err != nil {
		return colorful.Color{}
	}
	return c
}

// Contains reports whether pixel (px, py) lies inside the rect
func (r RectState) Contains(px, py int) bool {
	return px >= r.X && px < r.X+r.W && py >= r.Y && py < r.Y+r.H
}

// Canvas implements sequencer.Surface
type Canvas struct {
	mu      sync.RWMutex
	rects   []RectState
	version uint64
}

// New returns an empty canvas
func New() *Canvas {
	return &Canvas{}
}

// CreateRect adds a rect at the origin, white and opaque
func (c *Canvas) CreateRect(w, h int) sequencer.Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rects = append(c.rects, RectState{W: w, H: h, Fill: "#ffffff", Opacity: 1})
	c.version++
	return &rect{c: c, i: len(c.rects) - 1}
}

// Snapshot returns every rect in creation order
func (c *Canvas) Snapshot() []RectState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]RectState, len(c.rects))
	copy(out, c.rects)
	return out
}

// Version increases on every change; readers compare it to skip redraws
func (c *Canvas) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Size returns the bounding box of all rects
func (c *Canvas) Size() (w, h int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.rects {
		w = max(w, r.X+r.W)
		h = max(h, r.Y+r.H)
	}
	return w, h
}

// ColorAt composites every rect covering (px, py) over bg in creation order
func ColorAt(rects []RectState, px, py int, bg colorful.Color) colorful.Color {
	out := bg
	for _, r := range rects {
		if !r.Contains(px, py) || r.Opacity <= 0 {
			continue
		}
		a := min(r.Opacity, 1)
		out = out.BlendRgb(r.Color(), a)
	}
	return out
}

func (c *Canvas) update(i int, fn func(*RectState) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fn(&c.rects[i]) {
		c.version++
	}
}

type rect struct {
	c *Canvas
	i int
}

func (r *rect) Move(x, y int) {
	r.c.update(r.i, func(s *RectState) bool {
		if s.X == x && s.Y == y {
			return false
		}
		s.X, s.Y = x, y
		return true
	})
}

func (r *rect) SetFill(color string) {
	r.c.update(r.i, func(s *RectState) bool {
		if s.Fill == color {
			return false
		}
		s.Fill = color
		return true
	})
}

func (r *rect) SetOpacity(v float64) {
	r.c.update(r.i, func(s *RectState) bool {
		if s.Opacity == v {
			return false
		}
		s.Opacity = v
		return true
	})
}
