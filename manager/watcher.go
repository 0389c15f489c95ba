package manager

import (
	"context"

	"github.com/frobware/go-offload/registry"
	"github.com/frobware/go-offload/topology"
)

// onDeviceEvent is the device-removal watcher. It runs on the device
// notification path with the topology lock already held, so it takes
// only the registry write lock, preserving the topology-then-registry
// order without re-acquisition.
//
// Every descriptor bound to the vanishing device gets the registry
// half of teardown. The descriptors' programs stay alive; their owners
// observe ErrNoDevice on next use and remain responsible for calling
// Destroy, which then finds nothing left to do.
func (m *Manager) onDeviceEvent(s topology.Scope, ev topology.Event) {
	if ev.Type != topology.EventUnregister {
		return
	}
	// The same notification fires for a namespace move; the device is
	// still registered then and nothing must be torn down.
	if ev.Device.State(s) != topology.StateUnregistering {
		return
	}

	m.reg.WithWrite(func(w registry.WriteAccess) error {
		w.ForEachBoundTo(ev.Device, func(d *registry.Descriptor) {
			m.logger.Info("device removed, force-destroying offload",
				"program", w.Program(d).Name(),
				"device", ev.Device.Name())
			m.destroyLocked(context.Background(), s, w, d, "sweep")
		})
		return nil
	})
}
