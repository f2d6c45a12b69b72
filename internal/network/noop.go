// Copyright (c) 2025 HYPR. PTE. LTD.
//
// Business Source License 1.1
// See LICENSE file in the project root for details.

package network

import (
	"context"
	"errors"
	"log/slog"

	"github.com/volantvm/bridgectl/internal/netdev/bridge"
)

var errClosed = errors.New("network: manager closed")

// NoopManager validates requests and logs them without touching host networking.
type NoopManager struct {
	logger *slog.Logger
}

var _ Manager = (*NoopManager)(nil)

// NewNoop creates a manager for hosts where bridges are handled out of band.
func NewNoop(logger *slog.Logger) *NoopManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopManager{logger: logger}
}

func (n *NoopManager) CreateBridge(ctx context.Context, name string) error {
	return n.record(ctx, "bridge add", name)
}

func (n *NoopManager) DeleteBridge(ctx context.Context, name string) error {
	return n.record(ctx, "bridge del", name)
}

func (n *NoopManager) AddInterface(ctx context.Context, bridgeName, intf string) error {
	return n.record(ctx, "bridge intf add", bridgeName, intf)
}

func (n *NoopManager) DeleteInterface(ctx context.Context, bridgeName, intf string) error {
	return n.record(ctx, "bridge intf del", bridgeName, intf)
}

// List always reports no bridges.
func (n *NoopManager) List(context.Context) ([]Bridge, error) { return []Bridge{}, nil }

func (n *NoopManager) Close() error { return nil }

func (n *NoopManager) record(ctx context.Context, op string, names ...string) error {
	for _, name := range names {
		if err := bridge.ValidateName(name); err != nil {
			return err
		}
	}
	attrs := []any{"op", op, "bridge", names[0]}
	if len(names) > 1 {
		attrs = append(attrs, "interface", names[1])
	}
	n.logger.InfoContext(ctx, "noop network request", attrs...)
	return nil
}
