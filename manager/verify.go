package manager

import (
	"context"
	"fmt"

	offload "github.com/frobware/go-offload"
	"github.com/frobware/go-offload/journal"
	"github.com/frobware/go-offload/ndo"
	"github.com/frobware/go-offload/registry"
	"github.com/frobware/go-offload/topology"
)

// VerifierPrep asks the bound device's driver to take verification
// responsibility for env's program. On success the driver's hook table
// is installed and the descriptor becomes Prepped. On driver failure
// the descriptor stays Bound; the caller is expected to abandon the
// program and Destroy it.
func (m *Manager) VerifierPrep(ctx context.Context, env *offload.VerifierEnv) error {
	prog := env.Prog
	var devIndex int

	err := m.topo.Run(func(s topology.Scope) error {
		return m.reg.WithWrite(func(w registry.WriteAccess) error {
			d := w.Get(prog)
			if d == nil {
				return offload.ErrNoDevice
			}
			req := &offload.NdoRequest{Prog: prog}
			if err := ndo.Dispatch(s, w.Device(d), offload.CmdVerifierPrep, req); err != nil {
				return err
			}
			w.Activate(d, req.Hooks)
			devIndex = w.Device(d).Index()
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("verifier prep program %q: %w", prog.Name(), err)
	}

	m.logger.Debug("verifier prep complete", "program", prog.Name(), "device_index", devIndex)
	m.record(ctx, journal.Entry{
		Op:          "verifier-prep",
		ProgramID:   prog.ID(),
		ProgramName: prog.Name(),
		DeviceIndex: devIndex,
	})
	return nil
}

// VerifyInsn invokes the driver's per-instruction hook for the
// instruction at insnIdx and returns its verdict unmodified.
//
// Only the registry read lock is taken, never the topology lock: the
// hook table, once installed, is stable, and this is what lets
// verification of independent programs proceed concurrently. Once the
// bound device is gone every call fails with ErrNoDevice, which the
// verifier must treat as a hard verification failure.
func (m *Manager) VerifyInsn(env *offload.VerifierEnv, insnIdx, prevInsnIdx int) error {
	return m.reg.WithRead(func(ra registry.ReadAccess) error {
		hooks, err := ra.Hooks(env.Prog)
		if err != nil {
			return err
		}
		return hooks.InsnHook(env, insnIdx, prevInsnIdx)
	})
}
