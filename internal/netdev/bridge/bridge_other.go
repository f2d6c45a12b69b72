// Copyright (c) 2025 HYPR. PTE. LTD.
//
// Business Source License 1.1
// See LICENSE file in the project root for details.

//go:build !linux

package bridge

import "net"

// OpenSocket is unavailable off Linux.
func OpenSocket() (int, error) { return -1, ErrUnsupported }

// CloseSocket is a no-op off Linux.
func CloseSocket(int) error { return nil }

type unsupported struct{}

func defaultSyscaller() Syscaller { return unsupported{} }

func (unsupported) IoctlName(int, Request, *[IFNAMSIZ]byte) error { return ErrUnsupported }
func (unsupported) IoctlIfReq(int, Request, *IfReq) error         { return ErrUnsupported }

type netResolver struct{}

func defaultResolver() Resolver { return netResolver{} }

func (netResolver) IndexByName(name string) (int, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return 0, nil
	}
	return iface.Index, nil
}
