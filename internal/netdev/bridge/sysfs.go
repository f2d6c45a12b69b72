// Copyright (c) 2025 HYPR. PTE. LTD.
//
// Business Source License 1.1
// See LICENSE file in the project root for details.

package bridge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DefaultSysfsRoot is where the kernel exposes network devices.
const DefaultSysfsRoot = "/sys/class/net"

// Bridges lists the bridge devices under root. A device is a bridge when it
// carries a "bridge" attribute directory.
func Bridges(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if _, err := os.Stat(filepath.Join(root, entry.Name(), "bridge")); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Ports lists the interfaces attached to bridge.
func Ports(root, bridge string) ([]string, error) {
	if err := ValidateName(bridge); err != nil {
		return nil, err
	}
	dir, err := os.Open(filepath.Join(root, bridge, "brif"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, bridge)
		}
		return nil, fmt.Errorf("list ports of %s: %w", bridge, err)
	}
	defer dir.Close()
	names, err := dir.Readdirnames(0)
	if err != nil {
		return nil, fmt.Errorf("list ports of %s: %w", bridge, err)
	}
	sort.Strings(names)
	return names, nil
}
