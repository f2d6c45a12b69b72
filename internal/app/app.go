package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/volantvm/bridgectl/internal/config"
)

const shutdownTimeout = 10 * time.Second

// Daemon coordinates HTTP serving and graceful shutdown.
type Daemon struct {
	cfg    config.Config
	logger *slog.Logger
	http   *http.Server
}

// New constructs a Daemon with the provided configuration and handler.
func New(cfg config.Config, logger *slog.Logger, handler http.Handler) *Daemon {
	return &Daemon{
		cfg:    cfg,
		logger: logger,
		http: &http.Server{
			Addr:              cfg.HTTPListen,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run listens on the configured address and serves until ctx is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", d.cfg.HTTPListen)
	if err != nil {
		return err
	}
	return d.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully.
func (d *Daemon) Serve(ctx context.Context, ln net.Listener) error {
	serverErr := make(chan error, 1)
	go func() {
		d.logger.Info("http server starting", "addr", ln.Addr().String())
		if err := d.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return d.http.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}
