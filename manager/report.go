package manager

import (
	"fmt"

	offload "github.com/frobware/go-offload"
	"github.com/frobware/go-offload/netns"
	"github.com/frobware/go-offload/registry"
	"github.com/frobware/go-offload/topology"
)

// Info reports prog's offload binding for diagnostics.
//
// An unoffloaded program yields the zero DeviceIdentity and no error:
// "not offloaded" is a normal answer, not a failure. For a bound
// program the device's network namespace is resolved while the locks
// pin the device, and a resolution failure there is a genuine error.
func (m *Manager) Info(prog *offload.Program) (offload.DeviceIdentity, error) {
	var ident offload.DeviceIdentity

	err := m.topo.Run(func(s topology.Scope) error {
		return m.reg.WithRead(func(ra registry.ReadAccess) error {
			dev := ra.Device(prog)
			if dev == nil {
				return nil
			}
			ident.DeviceIndex = dev.Index()
			id, err := netns.Resolve(dev.NetnsPath(s))
			if err != nil {
				return fmt.Errorf("resolve netns of device %s: %w", dev.Name(), err)
			}
			ident.NetnsDev = id.Dev
			ident.NetnsInode = id.Inode
			return nil
		})
	})
	if err != nil {
		return offload.DeviceIdentity{}, err
	}
	return ident, nil
}
