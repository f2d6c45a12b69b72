// Copyright (c) 2025 HYPR. PTE. LTD.
//
// Business Source License 1.1
// See LICENSE file in the project root for details.

//go:build !linux

package network

import "github.com/volantvm/bridgectl/internal/netdev/bridge"

// NewNetlinkManager is unavailable off Linux; the noop backend can stand in.
func NewNetlinkManager(string) (Manager, error) {
	return nil, bridge.ErrUnsupported
}
