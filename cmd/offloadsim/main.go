// offloadsim walks a program through the full offload lifecycle
// against a simulated device: bind, verifier prep, per-instruction
// verification, translate, device removal, and idempotent destroy.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/asm"

	offload "github.com/frobware/go-offload"
	"github.com/frobware/go-offload/journal"
	"github.com/frobware/go-offload/journal/sqlite"
	"github.com/frobware/go-offload/logging"
	"github.com/frobware/go-offload/manager"
	"github.com/frobware/go-offload/sim"
	"github.com/frobware/go-offload/topology"
)

var (
	logSpec     = flag.String("log", "info", "log spec, e.g. info,topology=debug")
	logFormat   = flag.String("log-format", "text", "log format: text or json")
	journalPath = flag.String("journal", "", "journal database path (default: in-memory)")
)

// adminCreds grants the admin capability unconditionally; the
// simulator has no privilege boundary to enforce.
type adminCreds struct{}

func (adminCreds) CapableAdmin() bool { return true }

func main() {
	flag.Parse()
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "offloadsim:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	format, err := logging.ParseFormat(*logFormat)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Spec: *logSpec, Format: format})
	if err != nil {
		return err
	}

	var jnl journal.Journal
	if *journalPath != "" {
		jnl, err = sqlite.New(ctx, *journalPath, logger)
	} else {
		jnl, err = sqlite.NewInMemory(ctx, logger)
	}
	if err != nil {
		return err
	}
	defer jnl.Close()

	topo := topology.New(logger)
	driver := sim.New()
	dev := topology.NewDevice(1, "sim0", "/proc/self/ns/net", driver)
	if err := topo.RegisterDevice(dev); err != nil {
		return err
	}

	mgr := manager.New(topo, manager.Options{Journal: jnl, Logger: logger})
	defer mgr.Close()

	prog := offload.NewProgram(1, "xdp_drop_all", ebpf.XDP, asm.Instructions{
		asm.Mov.Imm(asm.R0, 1),
		asm.Return(),
	})

	if err := mgr.Init(ctx, prog, offload.InitAttr{DeviceIndex: dev.Index()}, adminCreds{}); err != nil {
		return err
	}

	env := &offload.VerifierEnv{Prog: prog}
	if err := mgr.VerifierPrep(ctx, env); err != nil {
		return err
	}
	prev := 0
	for i := range prog.Instructions() {
		if err := mgr.VerifyInsn(env, i, prev); err != nil {
			return fmt.Errorf("verify instruction %d: %w", i, err)
		}
		prev = i
	}
	if err := mgr.Compile(ctx, prog); err != nil {
		return err
	}

	ident, err := mgr.Info(prog)
	if err != nil {
		return err
	}
	logger.Info("program offloaded",
		"program", prog.Name(),
		"device_index", ident.DeviceIndex,
		"netns_dev", ident.NetnsDev,
		"netns_ino", ident.NetnsInode)

	// Host execution is now refused; this logs the guard's complaint.
	prog.Run(nil)

	// Hot-unplug the device; the watcher force-destroys the binding.
	if err := topo.UnregisterDevice(dev.Index()); err != nil {
		return err
	}

	// Explicit destroy after the sweep is a no-op.
	if err := mgr.Destroy(ctx, prog); err != nil {
		return err
	}

	entries, err := jnl.List(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		logger.Info("journal entry", "op", e.Op, "program", e.ProgramName, "device_index", e.DeviceIndex, "err", e.Err)
	}
	return nil
}
