package manager_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/asm"
	"github.com/stretchr/testify/require"

	offload "github.com/frobware/go-offload"
	"github.com/frobware/go-offload/journal"
	"github.com/frobware/go-offload/journal/sqlite"
	"github.com/frobware/go-offload/manager"
	"github.com/frobware/go-offload/topology"
)

// testLogger returns a logger for tests. By default it discards all
// output. Set OFFLOAD_TEST_VERBOSE=1 to enable logging.
func testLogger() *slog.Logger {
	if os.Getenv("OFFLOAD_TEST_VERBOSE") != "" {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type allowAll struct{}

func (allowAll) CapableAdmin() bool { return true }

type denyAll struct{}

func (denyAll) CapableAdmin() bool { return false }

// hookCall records one insn hook invocation.
type hookCall struct {
	insnIdx     int
	prevInsnIdx int
}

// fakeDriver implements offload.CommandHandler for testing. It records
// every command and hook invocation and supports error injection plus
// a blockable hook for liveness tests.
type fakeDriver struct {
	mu             sync.Mutex
	prepCalls      int
	translateCalls int
	destroys       map[string]int // program name -> DESTROY dispatches
	hookCalls      []hookCall

	// Error injection.
	failPrep      error
	failTranslate error
	failDestroy   error
	verdict       error // returned by every insn hook

	// When non-nil, insn hooks block until the channel is closed.
	blockHook chan struct{}
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{destroys: make(map[string]int)}
}

func (f *fakeDriver) BPF(req *offload.NdoRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch req.Command {
	case offload.CmdVerifierPrep:
		f.prepCalls++
		if f.failPrep != nil {
			return f.failPrep
		}
		req.Hooks = &fakeHooks{driver: f}
		return nil
	case offload.CmdTranslate:
		f.translateCalls++
		return f.failTranslate
	case offload.CmdDestroy:
		f.destroys[req.Prog.Name()]++
		return f.failDestroy
	default:
		return fmt.Errorf("unexpected command %v", req.Command)
	}
}

func (f *fakeDriver) destroyCount(program string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.destroys[program]
}

func (f *fakeDriver) hookCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.hookCalls)
}

type fakeHooks struct {
	driver *fakeDriver
}

func (h *fakeHooks) InsnHook(env *offload.VerifierEnv, insnIdx, prevInsnIdx int) error {
	if ch := h.driver.blockHook; ch != nil {
		<-ch
	}
	h.driver.mu.Lock()
	h.driver.hookCalls = append(h.driver.hookCalls, hookCall{insnIdx, prevInsnIdx})
	verdict := h.driver.verdict
	h.driver.mu.Unlock()
	return verdict
}

// fixture wires a topology with one offload-capable device and a
// manager backed by a real in-memory journal.
type fixture struct {
	t       *testing.T
	topo    *topology.Topology
	mgr     *manager.Manager
	journal journal.Journal
	driver  *fakeDriver
	dev     *topology.Device
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := testLogger()

	jnl, err := sqlite.NewInMemory(context.Background(), logger)
	require.NoError(t, err, "failed to create journal")
	t.Cleanup(func() { jnl.Close() })

	topo := topology.New(logger)
	driver := newFakeDriver()
	dev := topology.NewDevice(1, "offl0", "/proc/self/ns/net", driver)
	require.NoError(t, topo.RegisterDevice(dev))

	mgr := manager.New(topo, manager.Options{Journal: jnl, Logger: logger})
	t.Cleanup(mgr.Close)

	return &fixture{
		t:       t,
		topo:    topo,
		mgr:     mgr,
		journal: jnl,
		driver:  driver,
		dev:     dev,
	}
}

// addDevice registers another offload-capable device with its own
// driver.
func (f *fixture) addDevice(index int, name string) *fakeDriver {
	f.t.Helper()
	driver := newFakeDriver()
	dev := topology.NewDevice(index, name, "/proc/self/ns/net", driver)
	require.NoError(f.t, f.topo.RegisterDevice(dev))
	return driver
}

// bind binds prog to the device at index with valid credentials.
func (f *fixture) bind(prog *offload.Program, index int) {
	f.t.Helper()
	err := f.mgr.Init(context.Background(), prog, offload.InitAttr{DeviceIndex: index}, allowAll{})
	require.NoError(f.t, err)
}

// prep runs VerifierPrep and returns the verifier env for the program.
func (f *fixture) prep(prog *offload.Program) *offload.VerifierEnv {
	f.t.Helper()
	env := &offload.VerifierEnv{Prog: prog}
	require.NoError(f.t, f.mgr.VerifierPrep(context.Background(), env))
	return env
}

// journalOps returns the recorded journal ops in append order.
func (f *fixture) journalOps() []string {
	f.t.Helper()
	entries, err := f.journal.List(context.Background())
	require.NoError(f.t, err)
	ops := make([]string, len(entries))
	for i, e := range entries {
		ops[i] = e.Op
	}
	return ops
}

// newUnsupportedDevice builds a device whose driver offers no offload
// command handler.
func newUnsupportedDevice(index int, name string) *topology.Device {
	return topology.NewDevice(index, name, "", nil)
}

func testProgram(id uint32, name string) *offload.Program {
	return offload.NewProgram(id, name, ebpf.XDP, asm.Instructions{
		asm.Mov.Imm(asm.R0, 2),
		asm.Return(),
	})
}
