// Package offload holds the domain types for delegating a BPF program's
// verification, translation and teardown to a network-device driver
// instead of the host.
//
// The root package defines the program handle, the driver command
// contract (NdoRequest, CommandHandler, HookTable) and the error
// taxonomy. The moving parts live in subpackages:
//
//   - topology: the device table, the global topology lock and device
//     lifecycle notifications
//   - registry: the set of live offload descriptors and its
//     reader/writer lock
//   - ndo: the command dispatcher
//   - manager: lifecycle orchestration (bind, verifier prep,
//     per-instruction verification, translate, destroy) and the
//     device-removal watcher
//
// Two locks govern the subsystem: the topology lock serialises all
// device configuration changes, and the registry's reader/writer lock
// guards descriptor bindings. When both are needed the topology lock is
// always taken first; see the topology and registry packages.
package offload
