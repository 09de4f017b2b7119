package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"go-lifeseq/audio"
	"go-lifeseq/canvas"
	"go-lifeseq/config"
	"go-lifeseq/debug"
	"go-lifeseq/gui"
	"go-lifeseq/life"
	"go-lifeseq/midi"
	"go-lifeseq/sequencer"
	"go-lifeseq/theme"
	"go-lifeseq/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Debug {
		if err := debug.Enable(); err != nil {
			return err
		}
		defer debug.Disable()
	}

	// Theme
	var palette *theme.Palette
	if cfg.UI.Palette != "" {
		p, err := theme.LoadGPL(cfg.UI.Palette)
		if err != nil {
			return err
		}
		palette = p
	}
	th := theme.New(palette)

	// Automaton and pitch table
	seed, err := life.ParseSeed(cfg.Grid.Seed)
	if err != nil {
		return err
	}
	grid, err := life.New(cfg.Grid.Width, cfg.Grid.Height, seed)
	if err != nil {
		return err
	}
	names, err := cfg.Pitches()
	if err != nil {
		return err
	}
	pitches, err := sequencer.NewPitchMap(names)
	if err != nil {
		return err
	}
	noteLength, err := cfg.NoteLength()
	if err != nil {
		return err
	}

	control := sequencer.NewControl()
	control.SetInterval(cfg.Interval())

	player := sequencer.NewPlayer(grid, control, pitches)
	player.SetNoteLength(noteLength)
	player.SetStagger(cfg.Stagger())

	geom := cfg.Grid.Geometry
	surface := canvas.New()
	player.SetBoard(sequencer.NewBoard(surface, cfg.Grid.Width, cfg.Grid.Height, geom, sequencer.DefaultColors()))

	// Audio
	synths, closeAudio, err := openSynths(cfg)
	if err != nil {
		return err
	}
	defer closeAudio()

	var recorder *midi.Recorder
	if cfg.RecordPath != "" {
		recorder = midi.NewRecorder(cfg.Music.Tempo, cfg.SynthOutput.Channel)
		synths = append(synths, recorder)
	}
	switch len(synths) {
	case 0:
	case 1:
		player.SetSynth(synths[0])
	default:
		player.SetSynth(synths)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Controllers (hot-plug)
	var keyboards []string
	for _, c := range cfg.AutoConnectControllers() {
		if c.Type == config.ControllerKeyboard {
			keyboards = append(keyboards, c.PortName)
		}
	}
	deviceMgr := midi.NewDeviceManager(keyboards...)
	mirror := midi.NewMirror(surface, player, pitches, geom)
	go deviceMgr.Run(ctx)
	go mirror.Run(ctx)

	go player.Run(ctx)

	if cfg.UI.GUI {
		go followDevices(ctx, deviceMgr, mirror)
		err = gui.Run(ctx, gui.Options{
			Player:   player,
			Canvas:   surface,
			Geometry: geom,
			Seed:     seed,
		})
	} else {
		m := tui.NewModel(tui.Options{
			Player:    player,
			Canvas:    surface,
			Geometry:  geom,
			Theme:     th,
			Seed:      seed,
			Mirror:    mirror,
			DeviceMgr: deviceMgr,
		})
		_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			err = nil
		}
	}
	stop()
	control.SetRunning(false)

	if recorder != nil {
		if werr := recorder.WriteFile(cfg.RecordPath); werr != nil {
			err = errors.Join(err, werr)
		} else {
			fmt.Printf("Recorded %d notes to %s\n", recorder.Len(), cfg.RecordPath)
		}
	}
	return err
}

// openSynths starts the configured audio backends
func openSynths(cfg *config.Config) (sequencer.Synths, func(), error) {
	var synths sequencer.Synths
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	backend := cfg.SynthOutput.Backend
	if backend == config.AudioBeep || backend == config.AudioBoth {
		s := audio.NewSynth(audio.DefaultSampleRate)
		if err := s.Start(); err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, s.Close)
		synths = append(synths, s)
	}
	if backend == config.AudioMIDI || backend == config.AudioBoth {
		out, err := midi.OpenOutput(cfg.SynthOutput.PortName, cfg.SynthOutput.Channel)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		closers = append(closers, func() { out.Close() })
		synths = append(synths, out)
	}
	return synths, closeAll, nil
}

// followDevices attaches controllers to the mirror when no TUI is
// consuming device events.
func followDevices(ctx context.Context, dm *midi.DeviceManager, mirror *midi.Mirror) {
	var current string
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-dm.Events():
			if !ok {
				return
			}
			switch ev.Type {
			case midi.DeviceConnected:
				mirror.Listen(ev.Controller)
				if ev.Controller.Type() == midi.ControllerLaunchpad {
					current = ev.ID
					mirror.SetController(ev.Controller)
				}
			case midi.DeviceDisconnected:
				if ev.ID == current {
					current = ""
					mirror.SetController(nil)
				}
			}
		}
	}
}
