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

// Compile finalises a verified program for device execution. The
// program's host entry point is replaced with a guard that refuses to
// run - an offloaded program must never execute in software - and the
// driver is asked to translate the program into its device-executable
// form.
//
// The guard is installed before the translate dispatch so there is no
// window where a translated program is still host-executable.
func (m *Manager) Compile(ctx context.Context, prog *offload.Program) error {
	logger := m.logger
	prog.SetRun(func([]byte) uint32 {
		logger.Error("attempt to execute device-offloaded program on the host",
			"program", prog.Name(),
			"program_id", prog.ID())
		return 0
	})

	if err := m.translate(prog); err != nil {
		return fmt.Errorf("translate program %q: %w", prog.Name(), err)
	}

	m.logger.Info("program translated for device execution", "program", prog.Name())
	m.record(ctx, journal.Entry{
		Op:          "translate",
		ProgramID:   prog.ID(),
		ProgramName: prog.Name(),
	})
	return nil
}

// translate dispatches the translate command under the topology lock.
// Purely side-effecting: the driver returns no hook table here.
func (m *Manager) translate(prog *offload.Program) error {
	return m.topo.Run(func(s topology.Scope) error {
		var dev *topology.Device
		m.reg.WithRead(func(ra registry.ReadAccess) error {
			dev = ra.Device(prog)
			return nil
		})
		req := &offload.NdoRequest{Prog: prog}
		return ndo.Dispatch(s, dev, offload.CmdTranslate, req)
	})
}
