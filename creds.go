package offload

import "golang.org/x/sys/unix"

// Credentials answers the single capability question the offload
// subsystem asks: may this caller delegate a program to hardware.
type Credentials interface {
	CapableAdmin() bool
}

// SystemCredentials derives the admin capability from the effective uid
// of the calling process.
type SystemCredentials struct{}

// CapableAdmin reports whether the process runs as root.
func (SystemCredentials) CapableAdmin() bool { return unix.Geteuid() == 0 }
