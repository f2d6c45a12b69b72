// Copyright (c) 2025 HYPR. PTE. LTD.
//
// Business Source License 1.1
// See LICENSE file in the project root for details.

//go:build linux

package network

import (
	"context"
	"errors"
	"fmt"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"github.com/volantvm/bridgectl/internal/netdev/bridge"
)

// NetlinkManager drives bridges over rtnetlink instead of the bridge ioctls.
// Errors carry the same operation labels as the ioctl path.
type NetlinkManager struct {
	sysfsRoot string
}

var _ Manager = (*NetlinkManager)(nil)

// NewNetlinkManager constructs a netlink-backed manager.
func NewNetlinkManager(sysfsRoot string) (*NetlinkManager, error) {
	if sysfsRoot == "" {
		sysfsRoot = bridge.DefaultSysfsRoot
	}
	return &NetlinkManager{sysfsRoot: sysfsRoot}, nil
}

// CreateBridge adds a bridge link. The kernel default txqueuelen is kept.
func (n *NetlinkManager) CreateBridge(ctx context.Context, name string) error {
	if err := prepare(ctx, name); err != nil {
		return err
	}
	la := netlink.NewLinkAttrs()
	la.Name = name
	if err := netlink.LinkAdd(&netlink.Bridge{LinkAttrs: la}); err != nil {
		return &bridge.IoctlError{Op: bridge.RequestAddBridge.String(), Err: err}
	}
	return nil
}

// DeleteBridge removes a bridge link.
func (n *NetlinkManager) DeleteBridge(ctx context.Context, name string) error {
	if err := prepare(ctx, name); err != nil {
		return err
	}
	op := bridge.RequestDelBridge.String()
	br, err := bridgeByName(name)
	if err != nil {
		return &bridge.IoctlError{Op: op, Err: err}
	}
	if err := netlink.LinkDel(br); err != nil {
		return &bridge.IoctlError{Op: op, Err: err}
	}
	return nil
}

// AddInterface sets the bridge as the interface's master.
func (n *NetlinkManager) AddInterface(ctx context.Context, bridgeName, intf string) error {
	if err := prepare(ctx, bridgeName, intf); err != nil {
		return err
	}
	link, err := interfaceByName(intf)
	if err != nil {
		return err
	}
	op := bridge.RequestAddInterface.String()
	br, err := bridgeByName(bridgeName)
	if err != nil {
		return &bridge.IoctlError{Op: op, Err: err}
	}
	if err := netlink.LinkSetMaster(link, br); err != nil {
		return &bridge.IoctlError{Op: op, Err: err}
	}
	return nil
}

// DeleteInterface clears the interface's master when it belongs to the bridge.
func (n *NetlinkManager) DeleteInterface(ctx context.Context, bridgeName, intf string) error {
	if err := prepare(ctx, bridgeName, intf); err != nil {
		return err
	}
	link, err := interfaceByName(intf)
	if err != nil {
		return err
	}
	op := bridge.RequestDelInterface.String()
	br, err := bridgeByName(bridgeName)
	if err != nil {
		return &bridge.IoctlError{Op: op, Err: err}
	}
	if link.Attrs().MasterIndex != br.Attrs().Index {
		// Matches br_del_if for a non-port.
		return &bridge.IoctlError{Op: op, Err: unix.EINVAL}
	}
	if err := netlink.LinkSetNoMaster(link); err != nil {
		return &bridge.IoctlError{Op: op, Err: err}
	}
	return nil
}

// List reports bridges from sysfs.
func (n *NetlinkManager) List(ctx context.Context) ([]Bridge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return listBridges(n.sysfsRoot)
}

func (n *NetlinkManager) Close() error { return nil }

func prepare(ctx context.Context, names ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, name := range names {
		if err := bridge.ValidateName(name); err != nil {
			return err
		}
	}
	return nil
}

func interfaceByName(name string) (netlink.Link, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		var notFound netlink.LinkNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", bridge.ErrDeviceNotFound, name)
		}
		return nil, fmt.Errorf("resolve %s: %w", name, err)
	}
	return link, nil
}

// bridgeByName mirrors the ioctl errno for a missing bridge (ENXIO) and for a
// device that is not a bridge (EINVAL).
func bridgeByName(name string) (*netlink.Bridge, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		var notFound netlink.LinkNotFoundError
		if errors.As(err, &notFound) {
			return nil, unix.ENXIO
		}
		return nil, err
	}
	br, ok := link.(*netlink.Bridge)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, errors.Join(ErrNotBridge, unix.EINVAL))
	}
	return br, nil
}
