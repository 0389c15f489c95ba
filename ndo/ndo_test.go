package ndo_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	offload "github.com/frobware/go-offload"
	"github.com/frobware/go-offload/ndo"
	"github.com/frobware/go-offload/topology"
)

type recordingHandler struct {
	lastCmd offload.Command
	err     error
}

func (h *recordingHandler) BPF(req *offload.NdoRequest) error {
	h.lastCmd = req.Command
	return h.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatchNilDevice(t *testing.T) {
	topo := topology.New(testLogger())
	err := topo.Run(func(s topology.Scope) error {
		return ndo.Dispatch(s, nil, offload.CmdTranslate, &offload.NdoRequest{})
	})
	require.ErrorIs(t, err, offload.ErrNoDevice)
}

func TestDispatchDeviceWithoutHandler(t *testing.T) {
	topo := topology.New(testLogger())
	dev := topology.NewDevice(1, "eth0", "", nil)
	err := topo.Run(func(s topology.Scope) error {
		return ndo.Dispatch(s, dev, offload.CmdTranslate, &offload.NdoRequest{})
	})
	require.ErrorIs(t, err, offload.ErrNotSupported)
}

func TestDispatchTagsCommand(t *testing.T) {
	topo := topology.New(testLogger())
	handler := &recordingHandler{}
	dev := topology.NewDevice(1, "eth0", "", handler)

	err := topo.Run(func(s topology.Scope) error {
		return ndo.Dispatch(s, dev, offload.CmdVerifierPrep, &offload.NdoRequest{})
	})
	require.NoError(t, err)
	assert.Equal(t, offload.CmdVerifierPrep, handler.lastCmd)
}

func TestDispatchWrapsDriverError(t *testing.T) {
	driverErr := errors.New("firmware rejected program")
	topo := topology.New(testLogger())
	dev := topology.NewDevice(1, "eth0", "", &recordingHandler{err: driverErr})

	err := topo.Run(func(s topology.Scope) error {
		return ndo.Dispatch(s, dev, offload.CmdDestroy, &offload.NdoRequest{})
	})
	require.ErrorIs(t, err, driverErr)

	var de *offload.DriverError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, offload.CmdDestroy, de.Cmd)
}
