// Copyright (c) 2025 HYPR. PTE. LTD.
//
// Business Source License 1.1
// See LICENSE file in the project root for details.

package network

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/volantvm/bridgectl/internal/netdev/bridge"
)

type countingSyscaller struct {
	inFlight atomic.Int32
	overlap  atomic.Bool
	mu       sync.Mutex
	reqs     []bridge.Request
}

func (c *countingSyscaller) enter(req bridge.Request) {
	if c.inFlight.Add(1) > 1 {
		c.overlap.Store(true)
	}
	time.Sleep(time.Millisecond)
	c.mu.Lock()
	c.reqs = append(c.reqs, req)
	c.mu.Unlock()
	c.inFlight.Add(-1)
}

func (c *countingSyscaller) IoctlName(_ int, req bridge.Request, _ *[bridge.IFNAMSIZ]byte) error {
	c.enter(req)
	return nil
}

func (c *countingSyscaller) IoctlIfReq(_ int, req bridge.Request, _ *bridge.IfReq) error {
	c.enter(req)
	return nil
}

type staticResolver int

func (s staticResolver) IndexByName(string) (int, error) { return int(s), nil }

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in      string
		want    Backend
		wantErr bool
	}{
		{"", BackendIoctl, false},
		{"ioctl", BackendIoctl, false},
		{" Netlink ", BackendNetlink, false},
		{"NOOP", BackendNoop, false},
		{"ovs", "", true},
	}
	for _, tt := range tests {
		got, err := ParseBackend(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseBackend(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("ParseBackend(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestIoctlManagerSerializesRequests(t *testing.T) {
	sys := &countingSyscaller{}
	m := newIoctlManager(-1, &bridge.Control{Sys: sys, Resolver: staticResolver(5)}, t.TempDir())

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := m.CreateBridge(ctx, "br0"); err != nil {
				t.Errorf("create: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if err := m.AddInterface(ctx, "br0", "eth0"); err != nil {
				t.Errorf("attach: %v", err)
			}
		}()
	}
	wg.Wait()

	if sys.overlap.Load() {
		t.Fatalf("requests overlapped on the shared descriptor")
	}
	if len(sys.reqs) != 16 {
		t.Fatalf("expected 16 requests, got %d", len(sys.reqs))
	}
}

func TestIoctlManagerHonorsContextAndClose(t *testing.T) {
	sys := &countingSyscaller{}
	m := newIoctlManager(-1, &bridge.Control{Sys: sys, Resolver: staticResolver(5)}, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.DeleteBridge(ctx, "br0"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	m.closed = true
	if err := m.DeleteInterface(context.Background(), "br0", "eth0"); !errors.Is(err, errClosed) {
		t.Fatalf("expected errClosed, got %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if len(sys.reqs) != 0 {
		t.Fatalf("expected no requests, got %v", sys.reqs)
	}
}

func TestListBridges(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{
		filepath.Join("br0", "bridge"),
		filepath.Join("br0", "brif", "tap0"),
		filepath.Join("br1", "bridge"),
		filepath.Join("br1", "brif"),
		"eth0",
	} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	m := newIoctlManager(-1, bridge.New(), root)
	got, err := m.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []Bridge{
		{Name: "br0", Ports: []string{"tap0"}},
		{Name: "br1", Ports: []string{}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("list = %+v, want %+v", got, want)
	}
}

func TestNoopManagerValidates(t *testing.T) {
	n := NewNoop(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	if err := n.CreateBridge(ctx, "br0"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := n.AddInterface(ctx, "br0", ""); !errors.Is(err, bridge.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName for empty interface, got %v", err)
	}
	if err := n.DeleteBridge(ctx, "a-name-that-is-too-long"); !errors.Is(err, bridge.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	items, err := n.List(ctx)
	if err != nil || len(items) != 0 {
		t.Fatalf("list = %v, %v", items, err)
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	if _, err := New(Backend("ovs"), Options{}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	m, err := New(BackendNoop, Options{})
	if err != nil {
		t.Fatalf("noop: %v", err)
	}
	if _, ok := m.(*NoopManager); !ok {
		t.Fatalf("expected *NoopManager, got %T", m)
	}
}
