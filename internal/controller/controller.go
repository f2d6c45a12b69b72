package controller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/volantvm/bridgectl/internal/db"
	"github.com/volantvm/bridgectl/internal/eventbus"
	"github.com/volantvm/bridgectl/internal/events"
	"github.com/volantvm/bridgectl/internal/netdev/bridge"
	"github.com/volantvm/bridgectl/internal/network"
)

// Controller applies bridge operations through a network.Manager and
// records each outcome in the journal and on the event bus.
type Controller struct {
	manager network.Manager
	journal db.Journal
	bus     eventbus.Bus
	logger  *slog.Logger
	now     func() time.Time
}

// New constructs a Controller. journal and bus may be nil.
func New(manager network.Manager, journal db.Journal, bus eventbus.Bus, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		manager: manager,
		journal: journal,
		bus:     bus,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ValidationError marks input validation failures.
type ValidationError struct{ Err error }

func (e ValidationError) Error() string { return e.Err.Error() }
func (e ValidationError) Unwrap() error { return e.Err }

// List returns the host's bridges.
func (c *Controller) List(ctx context.Context) ([]network.Bridge, error) {
	return c.manager.List(ctx)
}

// Journal returns the most recent journal entries.
func (c *Controller) Journal(ctx context.Context, limit int) ([]db.Entry, error) {
	if c.journal == nil {
		return []db.Entry{}, nil
	}
	return c.journal.List(ctx, limit)
}

// CreateBridge creates a bridge device.
func (c *Controller) CreateBridge(ctx context.Context, name string) error {
	return c.apply(ctx, op{
		label:  bridge.RequestAddBridge.String(),
		event:  events.TypeBridgeCreated,
		bridge: name,
		run:    func() error { return c.manager.CreateBridge(ctx, name) },
	})
}

// DeleteBridge destroys a bridge device.
func (c *Controller) DeleteBridge(ctx context.Context, name string) error {
	return c.apply(ctx, op{
		label:  bridge.RequestDelBridge.String(),
		event:  events.TypeBridgeDeleted,
		bridge: name,
		run:    func() error { return c.manager.DeleteBridge(ctx, name) },
	})
}

// AddInterface attaches intf to the bridge.
func (c *Controller) AddInterface(ctx context.Context, bridgeName, intf string) error {
	return c.apply(ctx, op{
		label:  bridge.RequestAddInterface.String(),
		event:  events.TypeInterfaceAttached,
		bridge: bridgeName,
		intf:   intf,
		run:    func() error { return c.manager.AddInterface(ctx, bridgeName, intf) },
	})
}

// DeleteInterface detaches intf from the bridge.
func (c *Controller) DeleteInterface(ctx context.Context, bridgeName, intf string) error {
	return c.apply(ctx, op{
		label:  bridge.RequestDelInterface.String(),
		event:  events.TypeInterfaceDetached,
		bridge: bridgeName,
		intf:   intf,
		run:    func() error { return c.manager.DeleteInterface(ctx, bridgeName, intf) },
	})
}

type op struct {
	label  string
	event  string
	bridge string
	intf   string
	run    func() error
}

func (c *Controller) apply(ctx context.Context, o op) error {
	names := []string{o.bridge}
	if o.event == events.TypeInterfaceAttached || o.event == events.TypeInterfaceDetached {
		names = append(names, o.intf)
	}
	for _, name := range names {
		if err := bridge.ValidateName(name); err != nil {
			return ValidationError{Err: err}
		}
	}

	err := o.run()
	c.record(ctx, o, err)
	return err
}

func (c *Controller) record(ctx context.Context, o op, opErr error) {
	attrs := []any{"op", o.label, "bridge", o.bridge}
	if o.intf != "" {
		attrs = append(attrs, "interface", o.intf)
	}

	entry := &db.Entry{
		Op:        o.label,
		Bridge:    o.bridge,
		Interface: o.intf,
		Success:   opErr == nil,
		CreatedAt: c.now(),
	}
	event := events.BridgeEvent{
		Type:      o.event,
		Op:        o.label,
		Bridge:    o.bridge,
		Interface: o.intf,
		Timestamp: entry.CreatedAt,
	}
	if opErr != nil {
		entry.Error = opErr.Error()
		event.Type = events.TypeOperationFailed
		event.Message = opErr.Error()
		c.logger.WarnContext(ctx, "bridge operation failed", append(attrs, "error", opErr)...)
	} else {
		c.logger.InfoContext(ctx, "bridge operation applied", attrs...)
	}

	// The kernel change has already happened; journal and bus failures are
	// logged, not returned.
	if c.journal != nil {
		if _, err := c.journal.Record(context.WithoutCancel(ctx), entry); err != nil {
			c.logger.ErrorContext(ctx, "journal record", append(attrs, "error", err)...)
		}
	}
	if c.bus != nil {
		if err := c.bus.Publish(context.WithoutCancel(ctx), events.TopicBridge, event); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.ErrorContext(ctx, "publish bridge event", append(attrs, "error", err)...)
		}
	}
}
