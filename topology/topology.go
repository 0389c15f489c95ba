// Package topology models the device table and the single global lock
// serialising all device configuration changes.
//
// Design principle: "Illegal states unrepresentable" - code that must
// run under the topology lock takes a non-forgeable Scope token that
// proves the lock is held. The only way to obtain a Scope is to execute
// under Run, so a missing lock acquisition is a compile error rather
// than a latent deadlock or race.
//
// The topology lock is always acquired before the offload registry's
// lock, never the other way around. Run does not nest.
package topology

import (
	"fmt"
	"log/slog"
	"sync"
)

// Scope represents the dynamic execution region in which the topology
// lock is held.
//
// Possession of a Scope is proof that the caller holds the topology
// lock. Scope is a capability, not a mutex: it cannot be constructed,
// locked, or unlocked by callers. The interface cannot be implemented
// outside this package due to the unexported marker method.
type Scope interface {
	topologyScopeMarker()
}

type scope struct{}

func (scope) topologyScopeMarker() {}

// Topology is the process-wide device table. All registration-state
// changes and every driver command dispatch happen under its lock.
type Topology struct {
	mu      sync.Mutex
	devices map[int]*Device
	subs    map[*Subscription]struct{}
	logger  *slog.Logger
}

// New creates an empty topology.
func New(logger *slog.Logger) *Topology {
	if logger == nil {
		logger = slog.Default()
	}
	return &Topology{
		devices: make(map[int]*Device),
		subs:    make(map[*Subscription]struct{}),
		logger:  logger.With("component", "topology"),
	}
}

// Run acquires the topology lock, executes fn, then releases. The Scope
// proves to callees that the lock is held. fn must not call Run again.
func (t *Topology) Run(fn func(Scope) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(scope{})
}

// DeviceByIndex returns the device registered at index, or nil.
func (t *Topology) DeviceByIndex(s Scope, index int) *Device {
	_ = s
	return t.devices[index]
}

// RegisterDevice adds a device to the table and moves it to the
// registered state.
func (t *Topology) RegisterDevice(dev *Device) error {
	return t.Run(func(s Scope) error {
		if dev.state != StateUninitialized {
			return fmt.Errorf("device %s: register in state %s", dev.name, dev.state)
		}
		if _, ok := t.devices[dev.index]; ok {
			return fmt.Errorf("device index %d already registered", dev.index)
		}
		dev.state = StateRegistered
		t.devices[dev.index] = dev
		t.logger.Info("device registered", "index", dev.index, "name", dev.name)
		return nil
	})
}

// UnregisterDevice removes the device at index. Subscribers are
// notified while the device is in the unregistering state, before it
// leaves the table, so they can tear down anything still bound to it.
func (t *Topology) UnregisterDevice(index int) error {
	return t.Run(func(s Scope) error {
		dev := t.devices[index]
		if dev == nil {
			return fmt.Errorf("unregister device %d: no such device", index)
		}
		dev.state = StateUnregistering
		t.notify(s, Event{Type: EventUnregister, Device: dev})
		delete(t.devices, index)
		dev.state = StateUnregistered
		t.logger.Info("device unregistered", "index", dev.index, "name", dev.name)
		return nil
	})
}

// MoveDeviceNetns rebinds a device to a different network namespace
// handle. The same notification as removal fires, with the device still
// in the registered state; subscribers that only care about removal
// must check the state and ignore this event.
func (t *Topology) MoveDeviceNetns(index int, netnsPath string) error {
	return t.Run(func(s Scope) error {
		dev := t.devices[index]
		if dev == nil {
			return fmt.Errorf("move device %d: no such device", index)
		}
		t.notify(s, Event{Type: EventUnregister, Device: dev})
		dev.netnsPath = netnsPath
		t.logger.Info("device moved netns", "index", dev.index, "netns", netnsPath)
		return nil
	})
}
