// Package ndo dispatches offload commands to a device driver's command
// handler.
package ndo

import (
	offload "github.com/frobware/go-offload"
	"github.com/frobware/go-offload/topology"
)

// Dispatch tags req with cmd and forwards it to dev's command handler.
//
// The Scope parameter is proof that the caller holds the topology lock
// for the duration of the call; the dispatcher does not acquire it
// itself. A nil device fails with ErrNoDevice without invoking the
// handler. Handler failures come back wrapped as a DriverError with
// the underlying error untouched.
func Dispatch(s topology.Scope, dev *topology.Device, cmd offload.Command, req *offload.NdoRequest) error {
	_ = s
	if dev == nil {
		return offload.ErrNoDevice
	}
	handler := dev.Ops()
	if handler == nil {
		return offload.ErrNotSupported
	}
	req.Command = cmd
	if err := handler.BPF(req); err != nil {
		return &offload.DriverError{Cmd: cmd, Err: err}
	}
	return nil
}
