package midisurface

import (
	"context"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// DeviceEvent is emitted when the grid controller connects or disconnects.
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

// DeviceWatcher polls the system's MIDI ports for a grid controller. A
// Bridge only ever drives one controller at a time (see Bridge.Attach), so
// unlike a general-purpose MIDI device manager this tracks a single active
// controller rather than a catalog of every port seen: once one is found,
// scanning stops looking until it disconnects.
type DeviceWatcher struct {
	mu       sync.RWMutex
	active   Controller
	activeID string

	events   chan DeviceEvent
	pollRate time.Duration
}

// NewDeviceWatcher creates a watcher with no controller attached yet.
func NewDeviceWatcher() *DeviceWatcher {
	return &DeviceWatcher{
		events:   make(chan DeviceEvent, 16),
		pollRate: time.Second,
	}
}

// Events returns the connect/disconnect channel, closed once Run returns.
func (dw *DeviceWatcher) Events() <-chan DeviceEvent {
	return dw.events
}

// Active returns the currently attached controller, or nil.
func (dw *DeviceWatcher) Active() Controller {
	dw.mu.RLock()
	defer dw.mu.RUnlock()
	return dw.active
}

// Run starts the polling loop (blocking - run in goroutine).
func (dw *DeviceWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(dw.pollRate)
	defer ticker.Stop()

	dw.scan()

	for {
		select {
		case <-ctx.Done():
			dw.detach()
			close(dw.events)
			return
		case <-ticker.C:
			dw.scan()
		}
	}
}

func (dw *DeviceWatcher) scan() {
	// Get current MIDI ports with timeout (CoreMIDI can hang).
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		ch <- portsResult{inPorts: gomidi.GetInPorts(), outPorts: gomidi.GetOutPorts()}
	}()

	var result portsResult
	select {
	case result = <-ch:
	case <-time.After(3 * time.Second):
		// CoreMIDI is hung - skip this scan.
		// User needs to run: sudo killall coreaudiod midiserver
		return
	}

	dw.mu.RLock()
	id := dw.activeID
	dw.mu.RUnlock()

	if id != "" {
		if !portStillPresent(result.inPorts, id) {
			dw.disconnectActive()
		}
		return // already attached; don't steal a second controller
	}

	dw.attachFirstLaunchpad(result.inPorts, result.outPorts)
}

func (dw *DeviceWatcher) attachFirstLaunchpad(inPorts []drivers.In, outPorts []drivers.Out) {
	for i, inPort := range inPorts {
		name := strings.ToLower(inPort.String())
		if !isLaunchpad(name) {
			continue
		}

		var outPort drivers.Out
		for j, op := range outPorts {
			if strings.ToLower(op.String()) == name {
				outPort = outPorts[j]
				break
			}
		}

		id := inPort.String()
		lp, err := NewLaunchpadController(id, inPorts[i], outPort)
		if err != nil {
			continue
		}

		dw.mu.Lock()
		dw.active, dw.activeID = lp, id
		dw.mu.Unlock()

		dw.events <- DeviceEvent{Type: DeviceConnected, Controller: lp, ID: id}
		return
	}
}

func (dw *DeviceWatcher) disconnectActive() {
	dw.mu.Lock()
	c, id := dw.active, dw.activeID
	dw.active, dw.activeID = nil, ""
	dw.mu.Unlock()

	if c == nil {
		return
	}
	c.Close()
	dw.events <- DeviceEvent{Type: DeviceDisconnected, ID: id}
}

func (dw *DeviceWatcher) detach() {
	dw.mu.Lock()
	c := dw.active
	dw.active, dw.activeID = nil, ""
	dw.mu.Unlock()
	if c != nil {
		c.Close()
	}
}

func portStillPresent(ports []drivers.In, id string) bool {
	for _, p := range ports {
		if p.String() == id {
			return true
		}
	}
	return false
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}
