// Copyright (c) 2025 HYPR. PTE. LTD.
//
// Business Source License 1.1
// See LICENSE file in the project root for details.

package network

import (
	"context"
	"sync"

	"github.com/volantvm/bridgectl/internal/netdev/bridge"
)

// IoctlManager drives bridges through the bridge ioctls on a single control
// socket. Requests on the socket are serialized.
type IoctlManager struct {
	mu        sync.Mutex
	fd        int
	control   *bridge.Control
	sysfsRoot string
	closed    bool
}

var _ Manager = (*IoctlManager)(nil)

// NewIoctlManager opens a control socket and binds it to the host kernel.
func NewIoctlManager(sysfsRoot string) (*IoctlManager, error) {
	fd, err := bridge.OpenSocket()
	if err != nil {
		return nil, err
	}
	return newIoctlManager(fd, bridge.New(), sysfsRoot), nil
}

func newIoctlManager(fd int, control *bridge.Control, sysfsRoot string) *IoctlManager {
	if sysfsRoot == "" {
		sysfsRoot = bridge.DefaultSysfsRoot
	}
	return &IoctlManager{fd: fd, control: control, sysfsRoot: sysfsRoot}
}

// CreateBridge issues SIOCBRADDBR.
func (m *IoctlManager) CreateBridge(ctx context.Context, name string) error {
	return m.do(ctx, func(fd int) error { return m.control.CreateBridge(fd, name) })
}

// DeleteBridge issues SIOCBRDELBR.
func (m *IoctlManager) DeleteBridge(ctx context.Context, name string) error {
	return m.do(ctx, func(fd int) error { return m.control.DeleteBridge(fd, name) })
}

// AddInterface issues SIOCBRADDIF.
func (m *IoctlManager) AddInterface(ctx context.Context, bridgeName, intf string) error {
	return m.do(ctx, func(fd int) error { return m.control.AddInterface(fd, bridgeName, intf) })
}

// DeleteInterface issues SIOCBRDELIF.
func (m *IoctlManager) DeleteInterface(ctx context.Context, bridgeName, intf string) error {
	return m.do(ctx, func(fd int) error { return m.control.DeleteInterface(fd, bridgeName, intf) })
}

// List reports bridges from sysfs.
func (m *IoctlManager) List(ctx context.Context) ([]Bridge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return listBridges(m.sysfsRoot)
}

// Close releases the control socket.
func (m *IoctlManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	return bridge.CloseSocket(m.fd)
}

func (m *IoctlManager) do(ctx context.Context, fn func(fd int) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	return fn(m.fd)
}
