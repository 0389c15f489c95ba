package offload

// Command selects the driver operation carried by an NdoRequest.
type Command uint32

const (
	// CmdVerifierPrep asks the driver to take verification
	// responsibility for a program. The driver fills in
	// NdoRequest.Hooks on success.
	CmdVerifierPrep Command = iota + 1
	// CmdTranslate asks the driver to lower a verified program into
	// its device-executable form.
	CmdTranslate
	// CmdDestroy asks the driver to release any device-side resources
	// held for a program.
	CmdDestroy
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CmdVerifierPrep:
		return "verifier-prep"
	case CmdTranslate:
		return "translate"
	case CmdDestroy:
		return "destroy"
	default:
		return "unknown"
	}
}

// NdoRequest is the payload handed to a device's command handler.
type NdoRequest struct {
	Command Command
	Prog    *Program

	// Hooks is an output parameter: the driver installs its hook
	// table here when handling CmdVerifierPrep.
	Hooks HookTable
}

// CommandHandler is implemented by device drivers that accept offload
// commands. Handlers are invoked with the topology lock held and must
// not call back into the offload subsystem.
type CommandHandler interface {
	BPF(req *NdoRequest) error
}

// HookTable is the driver-supplied set of verifier callbacks returned
// from CmdVerifierPrep. Once installed the table is treated as stable;
// its own thread-safety is the driver's responsibility.
type HookTable interface {
	// InsnHook is invoked once per verified instruction. A non-nil
	// error fails verification of the program.
	InsnHook(env *VerifierEnv, insnIdx, prevInsnIdx int) error
}
