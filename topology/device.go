package topology

import (
	offload "github.com/frobware/go-offload"
)

// RegState is a device's registration state.
type RegState uint8

const (
	// StateUninitialized is the state of a device that has never been
	// registered with a topology.
	StateUninitialized RegState = iota
	// StateRegistered means the device is live in the table.
	StateRegistered
	// StateUnregistering means removal is in progress; notifications
	// are delivered in this state.
	StateUnregistering
	// StateUnregistered means the device has left the table for good.
	StateUnregistered
)

// String returns the state name.
func (s RegState) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	case StateUnregistering:
		return "unregistering"
	case StateUnregistered:
		return "unregistered"
	default:
		return "uninitialized"
	}
}

// Device is one entry in the device table. Index, name and the command
// handler are fixed at construction; registration state and the
// namespace handle change only under the topology lock.
type Device struct {
	index int
	name  string
	ops   offload.CommandHandler

	// Guarded by the topology lock.
	state     RegState
	netnsPath string
}

// NewDevice creates a device in the uninitialized state. ops may be nil
// for devices whose driver has no offload support.
func NewDevice(index int, name, netnsPath string, ops offload.CommandHandler) *Device {
	return &Device{
		index:     index,
		name:      name,
		netnsPath: netnsPath,
		ops:       ops,
	}
}

// Index returns the device index.
func (d *Device) Index() int { return d.index }

// Name returns the device name.
func (d *Device) Name() string { return d.name }

// Ops returns the device's offload command handler, or nil.
func (d *Device) Ops() offload.CommandHandler { return d.ops }

// State returns the registration state. The Scope parameter is proof
// that the topology lock is held.
func (d *Device) State(s Scope) RegState {
	_ = s
	return d.state
}

// NetnsPath returns the path of the device's network namespace handle.
func (d *Device) NetnsPath(s Scope) string {
	_ = s
	return d.netnsPath
}
