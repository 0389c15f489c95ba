// Package netns resolves network namespace identity for diagnostic
// reporting.
package netns

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Identity uniquely identifies a network namespace by the device number
// and inode of its handle.
type Identity struct {
	Dev   uint64
	Inode uint64
}

// Resolve stats the namespace handle at path and returns its identity.
// If path is empty, the calling process's network namespace is used.
func Resolve(path string) (Identity, error) {
	if path == "" {
		path = "/proc/self/ns/net"
	}
	var stat unix.Stat_t
	if err := unix.Stat(path, &stat); err != nil {
		return Identity{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return Identity{Dev: uint64(stat.Dev), Inode: stat.Ino}, nil
}
