package offload

// InitAttr is the caller-facing admission request for binding a program
// to a device.
type InitAttr struct {
	// DeviceIndex identifies the target device in the topology.
	DeviceIndex int
	// Flags must be zero. Nonzero flags fail admission with
	// ErrInvalidArgument before any device lookup.
	Flags uint32
}

// DeviceIdentity is the diagnostics-facing view of a program's offload
// binding. The zero value means "not offloaded".
type DeviceIdentity struct {
	// DeviceIndex is the bound device's index, or 0 if unbound.
	DeviceIndex int
	// NetnsDev is the device number of the filesystem backing the
	// bound device's network namespace handle.
	NetnsDev uint64
	// NetnsInode is the inode of the namespace handle. Together with
	// NetnsDev it uniquely identifies the namespace.
	NetnsInode uint64
}
