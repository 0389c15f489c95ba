// Package manager orchestrates the offload lifecycle: admission and
// bind, verifier prep, per-instruction verification, translation, and
// teardown, whether explicit or forced by device removal.
//
// # State Machine
//
// Each descriptor moves Unbound -> Bound -> Prepped -> Destroyed.
// Destroyed is terminal: re-offloading a program takes a fresh Init.
// A driver failure during prep or translate leaves the descriptor in
// its prior state; the caller decides whether to abandon it.
//
// # Locking
//
// Every operation that reaches a driver's command handler runs under
// the topology lock, and the topology lock is always taken before the
// registry lock. VerifyInsn is the one exception: it takes only the
// registry read lock, which is what lets many programs verify
// concurrently.
//
// Device removal and explicit destroy may race for the same
// descriptor; the registry write lock serialises them and whichever
// runs second finds the binding already cleared and does nothing.
package manager

import (
	"context"
	"log/slog"

	"github.com/frobware/go-offload/journal"
	"github.com/frobware/go-offload/registry"
	"github.com/frobware/go-offload/topology"
)

// Options configures a Manager.
type Options struct {
	// Journal, when non-nil, receives one entry per lifecycle
	// transition. Journal failures are logged, never propagated.
	Journal journal.Journal
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Manager coordinates the offload registry, the device topology and
// the drivers' command handlers.
type Manager struct {
	topo    *topology.Topology
	reg     *registry.Registry
	journal journal.Journal
	logger  *slog.Logger
	sub     *topology.Subscription
}

// New creates a Manager and subscribes its device-removal watcher to
// topo. The subscription normally lives for the process lifetime;
// Close cancels it for clean shutdown.
func New(topo *topology.Topology, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		topo:    topo,
		reg:     registry.NewRegistry(),
		journal: opts.Journal,
		logger:  logger.With("component", "offload-manager"),
	}
	m.sub = topo.Subscribe(m.onDeviceEvent)
	return m
}

// Close cancels the device-removal subscription. The registry must not
// be used after Close.
func (m *Manager) Close() {
	m.sub.Cancel()
}

// record writes a journal entry, best effort.
func (m *Manager) record(ctx context.Context, e journal.Entry) {
	if m.journal == nil {
		return
	}
	if err := m.journal.Record(ctx, e); err != nil {
		m.logger.Warn("journal record failed", "op", e.Op, "error", err)
	}
}
