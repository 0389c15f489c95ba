package manager

import (
	"context"
	"fmt"

	offload "github.com/frobware/go-offload"
	"github.com/frobware/go-offload/journal"
	"github.com/frobware/go-offload/registry"
	"github.com/frobware/go-offload/topology"
)

// Init binds prog to the device named by attr. Admission requires the
// admin capability and zero flags; the flags check happens before any
// device lookup. The target device must support offload and be fully
// registered (not mid-teardown) at the moment the descriptor is
// inserted, which is checked under the topology lock plus the registry
// write lock.
//
// On success the program is Bound; nothing driver-side happens until
// VerifierPrep. On any failure the caller sees one error and no
// residual state.
func (m *Manager) Init(ctx context.Context, prog *offload.Program, attr offload.InitAttr, creds offload.Credentials) error {
	if creds == nil || !creds.CapableAdmin() {
		return offload.ErrPermissionDenied
	}
	if attr.Flags != 0 {
		return fmt.Errorf("flags must be zero: %w", offload.ErrInvalidArgument)
	}

	err := m.topo.Run(func(s topology.Scope) error {
		dev := m.topo.DeviceByIndex(s, attr.DeviceIndex)
		if err := AdmitDevice(dev); err != nil {
			return err
		}
		return m.reg.WithWrite(func(w registry.WriteAccess) error {
			if state := dev.State(s); state != topology.StateRegistered {
				return fmt.Errorf("device %s is %s: %w", dev.Name(), state, offload.ErrInvalidArgument)
			}
			return w.Insert(registry.New(prog, dev))
		})
	})
	if err != nil {
		return fmt.Errorf("offload init program %q: %w", prog.Name(), err)
	}

	m.logger.Info("program bound to device",
		"program", prog.Name(),
		"program_id", prog.ID(),
		"device_index", attr.DeviceIndex)
	m.record(ctx, journal.Entry{
		Op:          "bind",
		ProgramID:   prog.ID(),
		ProgramName: prog.Name(),
		DeviceIndex: attr.DeviceIndex,
	})
	return nil
}
