package manager

import (
	"context"

	offload "github.com/frobware/go-offload"
	"github.com/frobware/go-offload/journal"
	"github.com/frobware/go-offload/ndo"
	"github.com/frobware/go-offload/registry"
	"github.com/frobware/go-offload/topology"
)

// Destroy tears down prog's offload binding. Idempotent: a second
// call, or a call after a device-removal sweep already unbound the
// program, dispatches nothing to the driver and reports success.
//
// A driver failure on the destroy command is logged, not returned.
// Leaking bookkeeping state on top of a driver-level failure would be
// worse than a noisy log, so the descriptor is unlinked regardless.
func (m *Manager) Destroy(ctx context.Context, prog *offload.Program) error {
	devIndex := 0
	swept := true

	err := m.topo.Run(func(s topology.Scope) error {
		return m.reg.WithWrite(func(w registry.WriteAccess) error {
			d := w.Get(prog)
			if d == nil {
				return nil
			}
			swept = false
			devIndex = w.Device(d).Index()
			m.destroyLocked(ctx, s, w, d, "destroy")
			return nil
		})
	})
	if err != nil {
		return err
	}
	if swept {
		m.logger.Debug("destroy: program already unbound", "program", prog.Name())
		return nil
	}

	m.logger.Info("offload destroyed", "program", prog.Name(), "device_index", devIndex)
	return nil
}

// destroyLocked performs the registry half of teardown. The caller
// holds the topology lock and the registry write lock.
//
// Ordering matters here: the driver's destroy command is dispatched
// while the binding is still intact, the program's external identifier
// is withdrawn before the descriptor is unlinked (so a concurrent
// enumeration cannot find a program mid-teardown), and the unlink
// clears the device reference last, atomically with leaving the live
// set.
func (m *Manager) destroyLocked(ctx context.Context, s topology.Scope, w registry.WriteAccess, d *registry.Descriptor, op string) {
	prog := w.Program(d)
	dev := w.Device(d)

	var dispatchErr string
	if w.Active(d) {
		req := &offload.NdoRequest{Prog: prog}
		if err := ndo.Dispatch(s, dev, offload.CmdDestroy, req); err != nil {
			dispatchErr = err.Error()
			m.logger.Warn("driver destroy command failed",
				"program", prog.Name(),
				"device", dev.Name(),
				"error", err)
		}
	}

	progID := prog.ID()
	prog.InvalidateID()
	w.Unbind(d)

	m.record(ctx, journal.Entry{
		Op:          op,
		ProgramID:   progID,
		ProgramName: prog.Name(),
		DeviceIndex: dev.Index(),
		Err:         dispatchErr,
	})
}
