package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-lifeseq/config"
	"go-lifeseq/midi"
	"go-lifeseq/theme"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "list":
		err = listPorts()
	case "scale":
		err = playScale(ctx, os.Args[2:])
	case "leds":
		err = testLEDs(ctx)
	case "poll":
		err = pollDevices(ctx)
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list    - List all MIDI ports")
	fmt.Println("  scale   - Play the configured pitch range on an output port")
	fmt.Println("  leds    - Light a test pattern on a Launchpad")
	fmt.Println("  poll    - Print controller connect/disconnect events")
}

func listPorts() error {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		return nil
	case <-time.After(3 * time.Second):
		return errors.New("port scan timed out")
	}
}

// playScale walks the pitch table low to high, one note per interval
func playScale(ctx context.Context, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("scale", flag.ContinueOnError)
	cfg.Bind(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	pitches, err := cfg.Pitches()
	if err != nil {
		return err
	}
	length, err := cfg.NoteLength()
	if err != nil {
		return err
	}
	out, err := midi.OpenOutput(cfg.SynthOutput.PortName, cfg.SynthOutput.Channel)
	if err != nil {
		return err
	}
	defer out.Close()

	step := cfg.Interval()
	for _, pitch := range pitches {
		fmt.Printf("  %s\n", pitch)
		if err := out.TriggerAttackRelease(pitch, length, out.Now()); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(step):
		}
	}

	// Let the last note-off go out
	time.Sleep(length)
	return nil
}

// waitForLaunchpad reads dm's events until a Launchpad connects
func waitForLaunchpad(ctx context.Context, dm *midi.DeviceManager, timeout time.Duration) (midi.Controller, error) {
	deadline := time.After(timeout)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, errors.New("no Launchpad found")
		case ev, ok := <-dm.Events():
			if !ok {
				return nil, errors.New("device manager stopped")
			}
			if ev.Type == midi.DeviceConnected && ev.Controller.Type() == midi.ControllerLaunchpad {
				return ev.Controller, nil
			}
		}
	}
}

func testLEDs(ctx context.Context) error {
	fmt.Println("Looking for a Launchpad...")

	// The manager closes its controllers when ctx ends
	dm := midi.NewDeviceManager()
	go dm.Run(ctx)
	lp, err := waitForLaunchpad(ctx, dm, 5*time.Second)
	if err != nil {
		return err
	}
	fmt.Printf("Using %s\n", lp.ID())

	th := theme.New(nil)
	var updates []midi.LEDUpdate
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			c := th.RGB(float64(row+col) / 14)
			updates = append(updates, midi.LEDUpdate{Row: row, Col: col, Color: [3]uint8(c)})
		}
	}
	fmt.Println("Lighting palette sweep...")
	if err := lp.SetLEDBatch(updates); err != nil {
		return err
	}

	fmt.Println("Press Enter to clear...")
	fmt.Scanln()

	// Close blanks the pads
	return lp.Close()
}

func pollDevices(ctx context.Context) error {
	fmt.Println("Watching for controllers. Ctrl+C to exit.")

	dm := midi.NewDeviceManager()
	go dm.Run(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-dm.Events():
			if !ok {
				return nil
			}
			stamp := time.Now().Format("15:04:05")
			switch ev.Type {
			case midi.DeviceConnected:
				fmt.Printf("[%s] connected %s (%s)\n", stamp, ev.ID, ev.Controller.Type())
			case midi.DeviceDisconnected:
				fmt.Printf("[%s] disconnected %s\n", stamp, ev.ID)
			}
		}
	}
}
