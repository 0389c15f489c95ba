// Package sim implements a simulated offload-capable driver, standing
// in for real device firmware. It accepts the three offload commands,
// verifies programs instruction by instruction against a small static
// rule set, and tracks per-program device state the way a hardware
// driver's command handler must.
package sim

import (
	"fmt"
	"sync"

	"github.com/cilium/ebpf/asm"

	offload "github.com/frobware/go-offload"
)

// Driver is a simulated device command handler. One Driver serves one
// device.
type Driver struct {
	mu       sync.Mutex
	programs map[*offload.Program]*devProgram
}

// devProgram is the driver's device-side state for one program.
type devProgram struct {
	verified   int
	translated bool
}

// New creates an empty driver.
func New() *Driver {
	return &Driver{programs: make(map[*offload.Program]*devProgram)}
}

// BPF implements offload.CommandHandler.
func (d *Driver) BPF(req *offload.NdoRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch req.Command {
	case offload.CmdVerifierPrep:
		d.programs[req.Prog] = &devProgram{}
		req.Hooks = &hookTable{driver: d, prog: req.Prog}
		return nil

	case offload.CmdTranslate:
		dp := d.programs[req.Prog]
		if dp == nil {
			return fmt.Errorf("program %q: translate before verifier prep", req.Prog.Name())
		}
		if dp.verified == 0 {
			return fmt.Errorf("program %q: translate before verification", req.Prog.Name())
		}
		dp.translated = true
		return nil

	case offload.CmdDestroy:
		delete(d.programs, req.Prog)
		return nil

	default:
		return fmt.Errorf("unknown offload command %d", req.Command)
	}
}

// ProgramCount returns the number of programs the device currently
// holds state for.
func (d *Driver) ProgramCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.programs)
}

// Translated reports whether the device holds a translated form of
// prog.
func (d *Driver) Translated(prog *offload.Program) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	dp := d.programs[prog]
	return dp != nil && dp.translated
}

// hookTable is the per-program verifier hook table handed back from
// CmdVerifierPrep.
type hookTable struct {
	driver *Driver
	prog   *offload.Program
}

// InsnHook rejects instructions the simulated device cannot execute.
func (h *hookTable) InsnHook(env *offload.VerifierEnv, insnIdx, prevInsnIdx int) error {
	insns := h.prog.Instructions()
	if insnIdx < 0 || insnIdx >= len(insns) {
		return fmt.Errorf("instruction index %d out of range for %d instructions", insnIdx, len(insns))
	}

	op := insns[insnIdx].OpCode
	if op.Class().IsJump() && op.JumpOp() == asm.Call {
		return fmt.Errorf("instruction %d: helper calls cannot run on the device", insnIdx)
	}

	h.driver.mu.Lock()
	defer h.driver.mu.Unlock()
	dp := h.driver.programs[h.prog]
	if dp == nil {
		return fmt.Errorf("program %q: no device state", h.prog.Name())
	}
	dp.verified++
	return nil
}
