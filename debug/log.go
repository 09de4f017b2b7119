package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	out     io.Writer
	closer  io.Closer
	mu      sync.Mutex
	enabled bool
)

// DefaultPath returns ~/.config/go-lifeseq/debug.log
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "go-lifeseq", "debug.log")
}

// Enable starts debug logging to DefaultPath
func Enable() error {
	return EnableAt(DefaultPath())
}

// EnableAt starts debug logging to path, truncating it
func EnableAt(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("debug: create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("debug: open log: %w", err)
	}

	start(f, f)
	return nil
}

// SetOutput routes the log to w (nil disables). Used by tests and the
// miditest tool, which logs to stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	stop()
	if w != nil {
		start(w, nil)
	}
}

// start must be called with mu held
func start(w io.Writer, c io.Closer) {
	out = w
	closer = c
	enabled = true

	// Write directly (can't call Log - we hold the mutex)
	write("debug", "=== Debug logging started ===")
}

// stop must be called with mu held
func stop() {
	if closer != nil {
		closer.Close()
	}
	out, closer = nil, nil
	enabled = false
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	stop()
}

// Enabled reports whether logging is on
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || out == nil {
		return
	}
	write(category, fmt.Sprintf(format, args...))
}

func write(category, msg string) {
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(out, "[%s] %-10s %s\n", ts, category, msg)
	if f, ok := out.(*os.File); ok {
		f.Sync() // flush immediately so we see logs even on crash
	}
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	if n <= 0 {
		n = 1
	}
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
