package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-lifeseq/life"
	"go-lifeseq/sequencer"
)

// ErrInvalid is wrapped by every Validate failure
var ErrInvalid = errors.New("config: invalid")

// ControllerType identifies the kind of controller
type ControllerType string

const (
	ControllerLaunchpadX    ControllerType = "launchpad-x"
	ControllerLaunchpadMini ControllerType = "launchpad-mini"
	ControllerKeyboard      ControllerType = "keyboard"
)

// ControllerConfig defines a saved controller configuration
type ControllerConfig struct {
	PortName    string         `json:"portName"`
	Type        ControllerType `json:"type"`
	AutoConnect bool           `json:"autoConnect"`
}

// Audio backends
const (
	AudioBeep = "beep"
	AudioMIDI = "midi"
	AudioBoth = "both"
	AudioNone = "none"
)

// GridConfig is the automaton and its on-screen layout
type GridConfig struct {
	Width    int                `json:"width"`
	Height   int                `json:"height"`
	Seed     string             `json:"seed"`
	Geometry sequencer.Geometry `json:"geometry"`
}

// MusicConfig holds the pitch table and note timing
type MusicConfig struct {
	Scale     string  `json:"scale"`
	Low       string  `json:"low"`
	High      string  `json:"high"`
	Tempo     float64 `json:"tempo"`
	NoteValue string  `json:"noteValue"`
	StaggerMs float64 `json:"staggerMs"`
}

// SynthOutputConfig defines the audio backend and MIDI output
type SynthOutputConfig struct {
	Backend  string `json:"backend"`
	PortName string `json:"portName,omitempty"`
	Channel  int    `json:"channel,omitempty"` // 1-16
}

// UIConfig stores UI preferences
type UIConfig struct {
	IntervalMs float64 `json:"intervalMs,omitempty"`
	Palette    string  `json:"palette,omitempty"` // GIMP .gpl file
	GUI        bool    `json:"gui,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Grid        GridConfig         `json:"grid"`
	Music       MusicConfig        `json:"music"`
	Controllers []ControllerConfig `json:"controllers,omitempty"`
	SynthOutput SynthOutputConfig  `json:"synthOutput"`
	UI          UIConfig           `json:"ui,omitempty"`

	// Command-line only
	RecordPath string `json:"-"`
	Debug      bool   `json:"-"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{
			Width:    16,
			Height:   9,
			Seed:     "row:4",
			Geometry: sequencer.DefaultGeometry(),
		},
		Music: MusicConfig{
			Scale:     "C pentatonic",
			Low:       "C4",
			High:      "C6",
			Tempo:     120,
			NoteValue: "8n",
			StaggerMs: 10,
		},
		Controllers: []ControllerConfig{
			{
				PortName:    "Launchpad X LPX MIDI",
				Type:        ControllerLaunchpadX,
				AutoConnect: true,
			},
		},
		SynthOutput: SynthOutputConfig{
			Backend: AudioBeep,
			Channel: 1,
		},
		UI: UIConfig{
			IntervalMs: 187.5,
		},
	}
}

// Bind attaches the overridable settings to fs. Call after Load so the
// file values become the flag defaults.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.Grid.Width, "width", c.Grid.Width, "grid columns")
	fs.IntVar(&c.Grid.Height, "height", c.Grid.Height, "grid rows")
	fs.StringVar(&c.Grid.Seed, "seed", c.Grid.Seed, "initial pattern: row:N, alternate:N, random:S, pattern:A/B/C or empty")
	fs.StringVar(&c.Music.Scale, "scale", c.Music.Scale, "scale as \"<tonic> <type>\"")
	fs.StringVar(&c.Music.Low, "low", c.Music.Low, "lowest pitch")
	fs.StringVar(&c.Music.High, "high", c.Music.High, "highest pitch")
	fs.Float64Var(&c.Music.Tempo, "tempo", c.Music.Tempo, "tempo in bpm for note values")
	fs.StringVar(&c.Music.NoteValue, "note", c.Music.NoteValue, "note length (4n, 8n, 8t, 250ms...)")
	fs.Float64Var(&c.Music.StaggerMs, "stagger", c.Music.StaggerMs, "offset between notes of one column in ms")
	fs.Float64Var(&c.UI.IntervalMs, "interval", c.UI.IntervalMs, "cycle interval in ms (100-500)")
	fs.StringVar(&c.SynthOutput.Backend, "audio", c.SynthOutput.Backend, "audio backend: beep, midi, both or none")
	fs.StringVar(&c.SynthOutput.PortName, "port", c.SynthOutput.PortName, "MIDI output port name")
	fs.IntVar(&c.SynthOutput.Channel, "channel", c.SynthOutput.Channel, "MIDI output channel (1-16)")
	fs.StringVar(&c.UI.Palette, "palette", c.UI.Palette, "GIMP palette for the terminal theme")
	fs.BoolVar(&c.UI.GUI, "gui", c.UI.GUI, "open a window (requires -tags ebiten)")
	fs.StringVar(&c.RecordPath, "record", c.RecordPath, "write played notes to this MIDI file on exit")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "log to ~/.config/go-lifeseq/debug.log")
}

// Validate rejects settings the sequencer cannot run with
func (c *Config) Validate() error {
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		return fmt.Errorf("%w: grid %dx%d", ErrInvalid, c.Grid.Width, c.Grid.Height)
	}
	g := c.Grid.Geometry
	if g.CellWidth <= 0 || g.CellHeight <= 0 || g.PaddingX < 0 || g.PaddingY < 0 {
		return fmt.Errorf("%w: geometry %+v", ErrInvalid, g)
	}
	if _, err := life.ParseSeed(c.Grid.Seed); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := c.Pitches(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := c.NoteLength(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Music.StaggerMs < 0 {
		return fmt.Errorf("%w: negative stagger", ErrInvalid)
	}
	switch c.SynthOutput.Backend {
	case AudioBeep, AudioMIDI, AudioBoth, AudioNone:
	default:
		return fmt.Errorf("%w: audio backend %q", ErrInvalid, c.SynthOutput.Backend)
	}
	if c.SynthOutput.Channel < 1 || c.SynthOutput.Channel > 16 {
		return fmt.Errorf("%w: MIDI channel %d", ErrInvalid, c.SynthOutput.Channel)
	}
	return nil
}

// Pitches resolves the configured scale range
func (c *Config) Pitches() ([]string, error) {
	return sequencer.RangeOf(c.Music.Scale, c.Music.Low, c.Music.High)
}

// NoteLength resolves the configured note value at the configured tempo
func (c *Config) NoteLength() (time.Duration, error) {
	return sequencer.ParseNoteValue(c.Music.NoteValue, c.Music.Tempo)
}

// Stagger returns the per-note offset as a duration
func (c *Config) Stagger() time.Duration {
	return time.Duration(c.Music.StaggerMs * float64(time.Millisecond))
}

// Interval returns the starting cycle interval, clamped
func (c *Config) Interval() time.Duration {
	if c.UI.IntervalMs <= 0 {
		return sequencer.DefaultInterval
	}
	return sequencer.ClampInterval(time.Duration(c.UI.IntervalMs * float64(time.Millisecond)))
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-lifeseq"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads path over the defaults; a missing file yields the defaults
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// FindController finds a controller config by port name
func (c *Config) FindController(portName string) *ControllerConfig {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == portName {
			return &c.Controllers[i]
		}
	}
	return nil
}

// AddController adds or updates a controller config
func (c *Config) AddController(ctrl ControllerConfig) {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == ctrl.PortName {
			c.Controllers[i] = ctrl
			return
		}
	}
	c.Controllers = append(c.Controllers, ctrl)
}

// AutoConnectControllers returns controllers with autoConnect enabled
func (c *Config) AutoConnectControllers() []ControllerConfig {
	var result []ControllerConfig
	for _, ctrl := range c.Controllers {
		if ctrl.AutoConnect {
			result = append(result, ctrl)
		}
	}
	return result
}
