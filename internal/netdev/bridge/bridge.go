// Copyright (c) 2025 HYPR. PTE. LTD.
//
// Business Source License 1.1
// See LICENSE file in the project root for details.

// Package bridge issues the Linux bridge-device ioctls (SIOCBRADDBR,
// SIOCBRDELBR, SIOCBRADDIF, SIOCBRDELIF) against a control socket owned by
// the caller. The package keeps no state between calls and performs no
// locking; callers sharing one descriptor across goroutines must serialize
// access themselves.
package bridge

import (
	"errors"
	"fmt"
)

// IFNAMSIZ is the kernel's fixed interface-name buffer width, terminator included.
const IFNAMSIZ = 16

// ifreqSize is sizeof(struct ifreq) on 64-bit Linux.
const ifreqSize = 40

var (
	// ErrDeviceNotFound reports that an interface name did not resolve to an index.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrInvalidName reports a device name the kernel would refuse or truncate.
	ErrInvalidName = errors.New("invalid device name")
	// ErrUnsupported is returned on platforms without Linux bridge ioctls.
	ErrUnsupported = errors.New("bridge control unsupported on this platform")
)

// Request is a bridge ioctl request number from linux/sockios.h.
type Request uint

const (
	RequestAddBridge    Request = 0x89a0 // SIOCBRADDBR
	RequestDelBridge    Request = 0x89a1 // SIOCBRDELBR
	RequestAddInterface Request = 0x89a2 // SIOCBRADDIF
	RequestDelInterface Request = 0x89a3 // SIOCBRDELIF
)

// String returns the operation label carried by IoctlError.
func (r Request) String() string {
	switch r {
	case RequestAddBridge:
		return "bridge add"
	case RequestDelBridge:
		return "bridge del"
	case RequestAddInterface:
		return "bridge intf add"
	case RequestDelInterface:
		return "bridge intf del"
	default:
		return fmt.Sprintf("bridge ioctl %#x", uint(r))
	}
}

// IoctlError wraps a kernel rejection of a bridge request.
type IoctlError struct {
	Op  string
	Err error
}

func (e *IoctlError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *IoctlError) Unwrap() error { return e.Err }

// IfReq mirrors struct ifreq with the ifr_ifindex member of the union set.
type IfReq struct {
	Name  [IFNAMSIZ]byte
	Index int32
	_     [ifreqSize - IFNAMSIZ - 4]byte
}

// Syscaller issues the two request shapes used by the bridge ioctls.
type Syscaller interface {
	// IoctlName passes a NUL-terminated name buffer (add/delete bridge).
	IoctlName(fd int, req Request, name *[IFNAMSIZ]byte) error
	// IoctlIfReq passes an ifreq record (add/delete interface).
	IoctlIfReq(fd int, req Request, ifr *IfReq) error
}

// Resolver maps an interface name to its kernel index. A zero index with a
// nil error means the name matched nothing.
type Resolver interface {
	IndexByName(name string) (int, error)
}

// Control issues bridge requests through a Syscaller, resolving interface
// names with a Resolver.
type Control struct {
	Sys      Syscaller
	Resolver Resolver
}

// New returns a Control bound to the host kernel.
func New() *Control {
	return &Control{Sys: defaultSyscaller(), Resolver: defaultResolver()}
}

var std = New()

// CreateBridge creates the bridge device name using the host kernel.
func CreateBridge(fd int, name string) error { return std.CreateBridge(fd, name) }

// DeleteBridge destroys the bridge device name using the host kernel.
func DeleteBridge(fd int, name string) error { return std.DeleteBridge(fd, name) }

// AddInterface enslaves intf to bridge using the host kernel.
func AddInterface(fd int, bridge, intf string) error { return std.AddInterface(fd, bridge, intf) }

// DeleteInterface releases intf from bridge using the host kernel.
func DeleteInterface(fd int, bridge, intf string) error {
	return std.DeleteInterface(fd, bridge, intf)
}

// CreateBridge issues SIOCBRADDBR for name.
func (c *Control) CreateBridge(fd int, name string) error {
	return c.bridgeRequest(fd, RequestAddBridge, name)
}

// DeleteBridge issues SIOCBRDELBR for name.
func (c *Control) DeleteBridge(fd int, name string) error {
	return c.bridgeRequest(fd, RequestDelBridge, name)
}

// AddInterface resolves intf and issues SIOCBRADDIF against bridge.
func (c *Control) AddInterface(fd int, bridge, intf string) error {
	return c.interfaceRequest(fd, RequestAddInterface, bridge, intf)
}

// DeleteInterface resolves intf and issues SIOCBRDELIF against bridge.
func (c *Control) DeleteInterface(fd int, bridge, intf string) error {
	return c.interfaceRequest(fd, RequestDelInterface, bridge, intf)
}

func (c *Control) bridgeRequest(fd int, req Request, name string) error {
	var buf [IFNAMSIZ]byte
	if err := encodeName(&buf, name); err != nil {
		return err
	}
	if err := c.Sys.IoctlName(fd, req, &buf); err != nil {
		return &IoctlError{Op: req.String(), Err: err}
	}
	return nil
}

func (c *Control) interfaceRequest(fd int, req Request, bridge, intf string) error {
	if err := ValidateName(intf); err != nil {
		return err
	}
	var ifr IfReq
	if err := encodeName(&ifr.Name, bridge); err != nil {
		return err
	}

	index, err := c.Resolver.IndexByName(intf)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", intf, err)
	}
	if index == 0 {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, intf)
	}
	ifr.Index = int32(index)

	if err := c.Sys.IoctlIfReq(fd, req, &ifr); err != nil {
		return &IoctlError{Op: req.String(), Err: err}
	}
	return nil
}

// encodeName copies a validated name into a zeroed buffer. The last byte is
// always left as the terminator.
func encodeName(buf *[IFNAMSIZ]byte, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	*buf = [IFNAMSIZ]byte{}
	copy(buf[:IFNAMSIZ-1], name)
	return nil
}

// ValidateName applies the kernel's device-name rules: non-empty, at most
// IFNAMSIZ-1 bytes, not "." or "..", and free of '/', ':', NUL and
// whitespace.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	case len(name) >= IFNAMSIZ:
		return fmt.Errorf("%w: %q is longer than %d bytes", ErrInvalidName, name, IFNAMSIZ-1)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '/', ':', 0, ' ', '\t', '\n', '\v', '\f', '\r':
			return fmt.Errorf("%w: %q contains %q", ErrInvalidName, name, name[i])
		}
	}
	return nil
}
