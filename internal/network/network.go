// Copyright (c) 2025 HYPR. PTE. LTD.
//
// Business Source License 1.1
// See LICENSE file in the project root for details.

package network

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/volantvm/bridgectl/internal/netdev/bridge"
)

// Backend names a Manager implementation.
type Backend string

const (
	BackendIoctl   Backend = "ioctl"
	BackendNetlink Backend = "netlink"
	BackendNoop    Backend = "noop"
)

// ErrNotBridge is returned when a named device exists but is not a bridge.
var ErrNotBridge = errors.New("device is not a bridge")

// Bridge describes a bridge device and its attached ports.
type Bridge struct {
	Name  string   `json:"name"`
	Ports []string `json:"ports"`
}

// Manager creates and destroys bridges and manages their port membership.
type Manager interface {
	CreateBridge(ctx context.Context, name string) error
	DeleteBridge(ctx context.Context, name string) error
	AddInterface(ctx context.Context, bridgeName, intf string) error
	DeleteInterface(ctx context.Context, bridgeName, intf string) error
	List(ctx context.Context) ([]Bridge, error)
	Close() error
}

// Options configures New.
type Options struct {
	SysfsRoot string
	Logger    *slog.Logger
}

// ParseBackend normalizes a backend name.
func ParseBackend(raw string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(raw))); b {
	case "":
		return BackendIoctl, nil
	case BackendIoctl, BackendNetlink, BackendNoop:
		return b, nil
	default:
		return "", fmt.Errorf("unknown network backend %q", raw)
	}
}

// New constructs the Manager for backend.
func New(backend Backend, opts Options) (Manager, error) {
	if opts.SysfsRoot == "" {
		opts.SysfsRoot = bridge.DefaultSysfsRoot
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	switch backend {
	case BackendIoctl, "":
		m, err := NewIoctlManager(opts.SysfsRoot)
		if err != nil {
			return nil, err
		}
		return m, nil
	case BackendNetlink:
		m, err := NewNetlinkManager(opts.SysfsRoot)
		if err != nil {
			return nil, err
		}
		return m, nil
	case BackendNoop:
		return NewNoop(opts.Logger), nil
	default:
		return nil, fmt.Errorf("unknown network backend %q", backend)
	}
}

// listBridges reads bridge membership from sysfs.
func listBridges(root string) ([]Bridge, error) {
	names, err := bridge.Bridges(root)
	if err != nil {
		return nil, err
	}
	out := make([]Bridge, 0, len(names))
	for _, name := range names {
		ports, err := bridge.Ports(root, name)
		if err != nil {
			// Bridge vanished between the two reads.
			if errors.Is(err, bridge.ErrDeviceNotFound) {
				continue
			}
			return nil, err
		}
		if ports == nil {
			ports = []string{}
		}
		out = append(out, Bridge{Name: name, Ports: ports})
	}
	return out, nil
}
