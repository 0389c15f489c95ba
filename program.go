package offload

import (
	"sync/atomic"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/asm"
)

// RunFunc is a program's host execution entry point.
type RunFunc func(data []byte) uint32

// Program is a handle to a program owned by the wider program-management
// subsystem. The offload subsystem never allocates or frees programs; it
// only binds them to devices and, during teardown, invalidates the
// externally visible identifier so identifier-based lookups stop finding
// a program whose device binding is going away.
type Program struct {
	name  string
	typ   ebpf.ProgramType
	insns asm.Instructions

	id  atomic.Uint32
	run atomic.Pointer[RunFunc]
}

// NewProgram creates a program handle. The id is the externally visible
// identifier assigned by the program-ID bookkeeping; it must be nonzero.
func NewProgram(id uint32, name string, typ ebpf.ProgramType, insns asm.Instructions) *Program {
	p := &Program{
		name:  name,
		typ:   typ,
		insns: insns,
	}
	p.id.Store(id)
	return p
}

// ID returns the externally visible program identifier, or 0 once the
// identifier has been invalidated during teardown.
func (p *Program) ID() uint32 { return p.id.Load() }

// InvalidateID withdraws the program's externally visible identifier.
// Lookups by identifier must treat 0 as "not found".
func (p *Program) InvalidateID() { p.id.Store(0) }

// Name returns the program name.
func (p *Program) Name() string { return p.name }

// Type returns the program type.
func (p *Program) Type() ebpf.ProgramType { return p.typ }

// Instructions returns the program body.
func (p *Program) Instructions() asm.Instructions { return p.insns }

// SetRun replaces the host execution entry point.
func (p *Program) SetRun(fn RunFunc) { p.run.Store(&fn) }

// Run invokes the host execution entry point. A program bound to a
// device has its entry point replaced with a guard that refuses host
// execution; see the manager's Compile.
func (p *Program) Run(data []byte) uint32 {
	fn := p.run.Load()
	if fn == nil {
		return 0
	}
	return (*fn)(data)
}

// VerifierEnv carries the verifier's per-program state into the
// per-instruction driver callbacks.
type VerifierEnv struct {
	Prog *Program
}
