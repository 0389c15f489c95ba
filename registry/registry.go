// Package registry holds the set of live offload descriptors and the
// reader/writer lock guarding it.
//
// The lock covers the set itself and every descriptor's binding fields
// (device, hook table, activity flag), but nothing else about a
// program. Descriptor fields are reachable only through the access
// tokens handed out by WithWrite and WithRead, so touching a binding
// outside a lock scope does not compile.
//
// A reader/writer lock rather than a mutex: verification of many
// independent programs proceeds concurrently and only reads the hook
// table, while writers (bind, destroy, device-removal sweeps) are rare.
//
// The registry lock nests inside the topology lock. Callers that need
// both must take the topology lock first.
package registry

import (
	"fmt"
	"sync"

	offload "github.com/frobware/go-offload"
	"github.com/frobware/go-offload/topology"
)

// Descriptor records one program's offload binding. A descriptor is a
// member of the registry exactly while its device is set.
type Descriptor struct {
	prog *offload.Program

	// Guarded by the registry lock.
	dev       *topology.Device
	hooks     offload.HookTable
	devActive bool
}

// New creates a descriptor binding prog to dev. The descriptor is not
// live until inserted into a registry.
func New(prog *offload.Program, dev *topology.Device) *Descriptor {
	return &Descriptor{prog: prog, dev: dev}
}

// Registry is the set of all live descriptors, keyed by program.
type Registry struct {
	mu    sync.RWMutex
	descs map[*offload.Program]*Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{descs: make(map[*offload.Program]*Descriptor)}
}

// WriteAccess is proof that the registry's write lock is held. It is
// only handed out by WithWrite and must not escape the callback.
type WriteAccess struct{ r *Registry }

// ReadAccess is proof that the registry's read lock is held. It is
// only handed out by WithRead and must not escape the callback.
type ReadAccess struct{ r *Registry }

// WithWrite runs fn with the write lock held.
func (r *Registry) WithWrite(fn func(WriteAccess) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(WriteAccess{r})
}

// WithRead runs fn with the read lock held. Readers do not serialise
// behind each other.
func (r *Registry) WithRead(fn func(ReadAccess) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fn(ReadAccess{r})
}

// Insert adds d to the live set. The descriptor must be bound to a
// device and its program must not already have a descriptor.
func (w WriteAccess) Insert(d *Descriptor) error {
	if d.dev == nil {
		return fmt.Errorf("insert unbound descriptor: %w", offload.ErrInvalidArgument)
	}
	if _, ok := w.r.descs[d.prog]; ok {
		return fmt.Errorf("program %q already has an offload descriptor", d.prog.Name())
	}
	w.r.descs[d.prog] = d
	return nil
}

// Get returns prog's descriptor, or nil.
func (w WriteAccess) Get(prog *offload.Program) *Descriptor {
	return w.r.descs[prog]
}

// ForEachBoundTo invokes fn for every descriptor bound to dev. fn may
// unbind the descriptor it is given without invalidating the
// iteration.
func (w WriteAccess) ForEachBoundTo(dev *topology.Device, fn func(*Descriptor)) {
	var bound []*Descriptor
	for _, d := range w.r.descs {
		if d.dev == dev {
			bound = append(bound, d)
		}
	}
	for _, d := range bound {
		fn(d)
	}
}

// Activate installs the driver's hook table and marks the device as
// having accepted responsibility for the program.
func (w WriteAccess) Activate(d *Descriptor, hooks offload.HookTable) {
	d.hooks = hooks
	d.devActive = true
}

// Unbind clears d's binding and unlinks it from the live set in one
// step, so no lock-holder can observe a member descriptor with an
// empty device. Idempotent: unbinding an already-unbound descriptor is
// a no-op.
func (w WriteAccess) Unbind(d *Descriptor) {
	d.devActive = false
	d.hooks = nil
	if d.dev == nil {
		return
	}
	if w.r.descs[d.prog] == d {
		delete(w.r.descs, d.prog)
	}
	d.dev = nil
}

// Device returns d's bound device, or nil.
func (w WriteAccess) Device(d *Descriptor) *topology.Device { return d.dev }

// Active reports whether the device has accepted responsibility for
// d's program.
func (w WriteAccess) Active(d *Descriptor) bool { return d.devActive }

// Program returns the program d belongs to.
func (w WriteAccess) Program(d *Descriptor) *offload.Program { return d.prog }

// Hooks returns prog's installed hook table. It fails with ErrNoDevice
// when the program has no live descriptor, its device is gone, or the
// driver has not yet accepted the program.
func (ra ReadAccess) Hooks(prog *offload.Program) (offload.HookTable, error) {
	d := ra.r.descs[prog]
	if d == nil || d.dev == nil || !d.devActive {
		return nil, offload.ErrNoDevice
	}
	return d.hooks, nil
}

// Device returns prog's bound device, or nil if the program is not
// offloaded.
func (ra ReadAccess) Device(prog *offload.Program) *topology.Device {
	d := ra.r.descs[prog]
	if d == nil {
		return nil
	}
	return d.dev
}

// Member reports whether prog currently has a live descriptor.
func (ra ReadAccess) Member(prog *offload.Program) bool {
	return ra.r.descs[prog] != nil
}
