package manager

import (
	"fmt"

	offload "github.com/frobware/go-offload"
	"github.com/frobware/go-offload/topology"
)

// AdmitDevice reports whether dev can accept offload commands: it must
// exist and expose a command handler. Pure predicate; no locks are
// required and none are taken.
func AdmitDevice(dev *topology.Device) error {
	if dev == nil {
		return fmt.Errorf("no such device: %w", offload.ErrInvalidArgument)
	}
	if dev.Ops() == nil {
		return fmt.Errorf("device %s: %w", dev.Name(), offload.ErrNotSupported)
	}
	return nil
}
