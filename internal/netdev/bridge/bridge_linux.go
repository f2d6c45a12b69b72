// Copyright (c) 2025 HYPR. PTE. LTD.
//
// Business Source License 1.1
// See LICENSE file in the project root for details.

//go:build linux

package bridge

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// OpenSocket opens a control socket suitable for bridge ioctls. The caller
// owns the descriptor and releases it with CloseSocket.
func OpenSocket() (int, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("open control socket: %w", err)
	}
	return fd, nil
}

// CloseSocket releases a descriptor returned by OpenSocket.
func CloseSocket(fd int) error { return unix.Close(fd) }

type kernel struct{}

func defaultSyscaller() Syscaller { return kernel{} }

func (kernel) IoctlName(fd int, req Request, name *[IFNAMSIZ]byte) error {
	return ioctl(fd, req, unsafe.Pointer(name))
}

func (kernel) IoctlIfReq(fd int, req Request, ifr *IfReq) error {
	return ioctl(fd, req, unsafe.Pointer(ifr))
}

func ioctl(fd int, req Request, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// linkResolver looks names up over rtnetlink.
type linkResolver struct{}

func defaultResolver() Resolver { return linkResolver{} }

func (linkResolver) IndexByName(name string) (int, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		var notFound netlink.LinkNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, unix.ENODEV) {
			return 0, nil
		}
		return 0, err
	}
	return link.Attrs().Index, nil
}
