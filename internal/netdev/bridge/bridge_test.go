// Copyright (c) 2025 HYPR. PTE. LTD.
//
// Business Source License 1.1
// See LICENSE file in the project root for details.

package bridge

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"syscall"
	"testing"
	"unsafe"
)

type call struct {
	fd    int
	req   Request
	name  [IFNAMSIZ]byte
	index int32
}

type fakeSyscaller struct {
	calls []call
	err   error
}

func (f *fakeSyscaller) IoctlName(fd int, req Request, name *[IFNAMSIZ]byte) error {
	f.calls = append(f.calls, call{fd: fd, req: req, name: *name})
	return f.err
}

func (f *fakeSyscaller) IoctlIfReq(fd int, req Request, ifr *IfReq) error {
	f.calls = append(f.calls, call{fd: fd, req: req, name: ifr.Name, index: ifr.Index})
	return f.err
}

type fakeResolver map[string]int

func (f fakeResolver) IndexByName(name string) (int, error) { return f[name], nil }

type failingResolver struct{ err error }

func (f failingResolver) IndexByName(string) (int, error) { return 0, f.err }

func newTestControl(sys *fakeSyscaller) *Control {
	return &Control{Sys: sys, Resolver: fakeResolver{"eth-test0": 7}}
}

func nameBuf(s string) [IFNAMSIZ]byte {
	var b [IFNAMSIZ]byte
	copy(b[:], s)
	return b
}

func TestIfReqLayout(t *testing.T) {
	var ifr IfReq
	if got := unsafe.Sizeof(ifr); got != ifreqSize {
		t.Fatalf("sizeof(IfReq) = %d, want %d", got, ifreqSize)
	}
	if got := unsafe.Offsetof(ifr.Index); got != IFNAMSIZ {
		t.Fatalf("offsetof(Index) = %d, want %d", got, IFNAMSIZ)
	}
}

func TestBridgeRequests(t *testing.T) {
	tests := []struct {
		name string
		run  func(c *Control) error
		want call
	}{
		{
			name: "create",
			run:  func(c *Control) error { return c.CreateBridge(3, "testbr0") },
			want: call{fd: 3, req: RequestAddBridge, name: nameBuf("testbr0")},
		},
		{
			name: "delete",
			run:  func(c *Control) error { return c.DeleteBridge(3, "testbr0") },
			want: call{fd: 3, req: RequestDelBridge, name: nameBuf("testbr0")},
		},
		{
			name: "attach",
			run:  func(c *Control) error { return c.AddInterface(4, "testbr0", "eth-test0") },
			want: call{fd: 4, req: RequestAddInterface, name: nameBuf("testbr0"), index: 7},
		},
		{
			name: "detach",
			run:  func(c *Control) error { return c.DeleteInterface(4, "testbr0", "eth-test0") },
			want: call{fd: 4, req: RequestDelInterface, name: nameBuf("testbr0"), index: 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &fakeSyscaller{}
			if err := tt.run(newTestControl(sys)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(sys.calls) != 1 {
				t.Fatalf("expected 1 kernel request, got %d", len(sys.calls))
			}
			if !reflect.DeepEqual(sys.calls[0], tt.want) {
				t.Fatalf("request = %+v, want %+v", sys.calls[0], tt.want)
			}
		})
	}
}

func TestIoctlErrorLabels(t *testing.T) {
	tests := []struct {
		label string
		run   func(c *Control) error
	}{
		{"bridge add", func(c *Control) error { return c.CreateBridge(3, "br0") }},
		{"bridge del", func(c *Control) error { return c.DeleteBridge(3, "br0") }},
		{"bridge intf add", func(c *Control) error { return c.AddInterface(3, "br0", "eth-test0") }},
		{"bridge intf del", func(c *Control) error { return c.DeleteInterface(3, "br0", "eth-test0") }},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			sys := &fakeSyscaller{err: syscall.EEXIST}
			err := tt.run(newTestControl(sys))
			var ioctlErr *IoctlError
			if !errors.As(err, &ioctlErr) {
				t.Fatalf("expected IoctlError, got %v", err)
			}
			if ioctlErr.Op != tt.label {
				t.Fatalf("op = %q, want %q", ioctlErr.Op, tt.label)
			}
			if !errors.Is(err, syscall.EEXIST) {
				t.Fatalf("expected error to unwrap to EEXIST: %v", err)
			}
			if want := tt.label + ": " + syscall.EEXIST.Error(); err.Error() != want {
				t.Fatalf("message = %q, want %q", err.Error(), want)
			}
		})
	}
}

func TestAttachUnknownInterfaceIssuesNoRequest(t *testing.T) {
	for _, detach := range []bool{false, true} {
		sys := &fakeSyscaller{}
		c := newTestControl(sys)
		var err error
		if detach {
			err = c.DeleteInterface(3, "testbr0", "nosuch-iface")
		} else {
			err = c.AddInterface(3, "testbr0", "nosuch-iface")
		}
		if !errors.Is(err, ErrDeviceNotFound) {
			t.Fatalf("expected ErrDeviceNotFound, got %v", err)
		}
		if !strings.Contains(err.Error(), "nosuch-iface") {
			t.Fatalf("error should name the interface: %v", err)
		}
		if len(sys.calls) != 0 {
			t.Fatalf("expected no kernel requests, got %d", len(sys.calls))
		}
	}
}

func TestResolverFailurePropagates(t *testing.T) {
	sys := &fakeSyscaller{}
	boom := errors.New("netlink dump failed")
	c := &Control{Sys: sys, Resolver: failingResolver{err: boom}}
	err := c.AddInterface(3, "testbr0", "eth0")
	if !errors.Is(err, boom) {
		t.Fatalf("expected resolver error, got %v", err)
	}
	if errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("resolver failure must not be reported as missing device")
	}
	if len(sys.calls) != 0 {
		t.Fatalf("expected no kernel requests, got %d", len(sys.calls))
	}
}

func TestNameValidation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"max length", "abcdefghijklmno", true},
		{"ifnamsiz bytes", "abcdefghijklmnop", false},
		{"longer", "a-very-long-bridge-name", false},
		{"empty", "", false},
		{"dot", ".", false},
		{"dotdot", "..", false},
		{"slash", "br/0", false},
		{"colon", "br:0", false},
		{"space", "br 0", false},
		{"tab", "br\t0", false},
		{"nul", "br\x000", false},
		{"plain", "testbr0", true},
		{"dashes", "eth-test0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.ok && err != nil {
				t.Fatalf("expected %q to be valid: %v", tt.input, err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidName) {
				t.Fatalf("expected ErrInvalidName for %q, got %v", tt.input, err)
			}
		})
	}
}

func TestOverlongNamesNeverReachKernel(t *testing.T) {
	sys := &fakeSyscaller{}
	c := newTestControl(sys)
	long := "abcdefghijklmnop"

	checks := []error{
		c.CreateBridge(3, long),
		c.DeleteBridge(3, long),
		c.AddInterface(3, long, "eth-test0"),
		c.DeleteInterface(3, "testbr0", long),
	}
	for i, err := range checks {
		if !errors.Is(err, ErrInvalidName) {
			t.Fatalf("check %d: expected ErrInvalidName, got %v", i, err)
		}
	}
	if len(sys.calls) != 0 {
		t.Fatalf("expected no kernel requests, got %d", len(sys.calls))
	}
}

func TestMaxLengthNameIsTerminated(t *testing.T) {
	sys := &fakeSyscaller{}
	c := newTestControl(sys)
	if err := c.AddInterface(3, "abcdefghijklmno", "eth-test0"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	got := sys.calls[0].name
	if got[IFNAMSIZ-1] != 0 {
		t.Fatalf("name buffer not terminated: %q", got[:])
	}
	if string(got[:IFNAMSIZ-1]) != "abcdefghijklmno" {
		t.Fatalf("name buffer = %q", got[:])
	}
}

func TestRequestString(t *testing.T) {
	if got := Request(0x1234).String(); got != "bridge ioctl 0x1234" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestSysfsListing(t *testing.T) {
	root := t.TempDir()
	mustMkdir(t, filepath.Join(root, "br0", "bridge"))
	mustMkdir(t, filepath.Join(root, "br0", "brif", "veth1"))
	mustMkdir(t, filepath.Join(root, "br0", "brif", "eth-test0"))
	mustMkdir(t, filepath.Join(root, "abr", "bridge"))
	mustMkdir(t, filepath.Join(root, "abr", "brif"))
	mustMkdir(t, filepath.Join(root, "eth0"))

	bridges, err := Bridges(root)
	if err != nil {
		t.Fatalf("bridges: %v", err)
	}
	if want := []string{"abr", "br0"}; !reflect.DeepEqual(bridges, want) {
		t.Fatalf("bridges = %v, want %v", bridges, want)
	}

	ports, err := Ports(root, "br0")
	if err != nil {
		t.Fatalf("ports: %v", err)
	}
	if want := []string{"eth-test0", "veth1"}; !reflect.DeepEqual(ports, want) {
		t.Fatalf("ports = %v, want %v", ports, want)
	}

	empty, err := Ports(root, "abr")
	if err != nil {
		t.Fatalf("ports abr: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no ports, got %v", empty)
	}

	if _, err := Ports(root, "eth0"); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound for non-bridge, got %v", err)
	}
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}
