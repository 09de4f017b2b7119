package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-lifeseq/debug"
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager handles hot-plug detection of MIDI controllers
type DeviceManager struct {
	controllers map[string]Controller
	keyboards   []string // port name fragments accepted as keyboards
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration

	ports func() ([]drivers.In, []drivers.Out)
	open  func(id string, kind ControllerType, in drivers.In, out drivers.Out) (Controller, error)
}

// NewDeviceManager creates a new device manager. Launchpads are picked up
// automatically; other inputs only when their name contains one of keyboards.
func NewDeviceManager(keyboards ...string) *DeviceManager {
	return &DeviceManager{
		controllers: make(map[string]Controller),
		keyboards:   keyboards,
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		ports:       systemPorts,
		open:        openController,
	}
}

func systemPorts() ([]drivers.In, []drivers.Out) {
	return gomidi.GetInPorts(), gomidi.GetOutPorts()
}

func openController(id string, kind ControllerType, in drivers.In, out drivers.Out) (Controller, error) {
	if kind == ControllerKeyboard {
		return NewKeyboardController(id, in)
	}
	return NewLaunchpadController(id, in, out)
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		out[k] = v
	}
	return out
}

// GetLaunchpad returns the first connected Launchpad (or nil)
func (dm *DeviceManager) GetLaunchpad() Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	for _, c := range dm.controllers {
		if c.Type() == ControllerLaunchpad {
			return c
		}
	}
	return nil
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

// classify decides what a port is, if anything we use
func (dm *DeviceManager) classify(name string) ControllerType {
	if isLaunchpad(name) {
		return ControllerLaunchpad
	}
	lower := strings.ToLower(name)
	for _, k := range dm.keyboards {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			return ControllerKeyboard
		}
	}
	return ControllerUnknown
}

func (dm *DeviceManager) scan(ctx context.Context) {
	// Get current MIDI ports with timeout (CoreMIDI can hang)
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		in, out := dm.ports()
		ch <- portsResult{inPorts: in, outPorts: out}
	}()

	var inPorts []drivers.In
	var outPorts []drivers.Out

	select {
	case result := <-ch:
		inPorts = result.inPorts
		outPorts = result.outPorts
	case <-time.After(3 * time.Second):
		debug.Log("devices", "port scan timed out")
		return
	case <-ctx.Done():
		return
	}

	seenIDs := make(map[string]bool)

	for _, inPort := range inPorts {
		id := inPort.String()
		kind := dm.classify(id)
		if kind == ControllerUnknown {
			continue
		}
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		// Find matching output port
		var outPort drivers.Out
		for _, op := range outPorts {
			if strings.EqualFold(op.String(), id) {
				outPort = op
				break
			}
		}

		c, err := dm.open(id, kind, inPort, outPort)
		if err != nil {
			debug.Log("devices", "open %s: %v", id, err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = c
		dm.mu.Unlock()
		debug.Log("devices", "connected %s (%s)", id, kind)

		dm.send(ctx, DeviceEvent{Type: DeviceConnected, Controller: c, ID: id})
	}

	// Check for disconnects
	dm.mu.Lock()
	var gone []string
	for id, c := range dm.controllers {
		if !seenIDs[id] {
			c.Close()
			delete(dm.controllers, id)
			gone = append(gone, id)
		}
	}
	dm.mu.Unlock()

	for _, id := range gone {
		debug.Log("devices", "disconnected %s", id)
		dm.send(ctx, DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
}

func (dm *DeviceManager) send(ctx context.Context, ev DeviceEvent) {
	select {
	case dm.events <- ev:
	case <-ctx.Done():
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

// isLaunchpad matches the MIDI (programmer) port, not the DAW port
func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	lp := strings.Contains(name, "launchpad") || strings.Contains(name, "lpx") || strings.Contains(name, "lpmini")
	return lp && strings.Contains(name, "midi")
}
