package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/volantvm/bridgectl/internal/netdev/bridge"
	"github.com/volantvm/bridgectl/internal/network"
)

const (
	defaultHTTPListen = "127.0.0.1:7780"
	defaultDBPath     = "~/.bridgectl/journal.db"
)

// Config captures runtime settings for the bridgectl daemon.
type Config struct {
	HTTPListen   string
	DatabasePath string
	Backend      network.Backend
	SysfsRoot    string
}

// FromEnv loads configuration using environment variables with defaults.
func FromEnv() (Config, error) {
	return fromLookup(os.Getenv)
}

func fromLookup(lookup func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(lookup(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		HTTPListen:   get("BRIDGECTL_HTTP_LISTEN", defaultHTTPListen),
		DatabasePath: expandPath(get("BRIDGECTL_DB_PATH", defaultDBPath)),
		SysfsRoot:    filepath.Clean(get("BRIDGECTL_SYSFS_ROOT", bridge.DefaultSysfsRoot)),
	}

	backend, err := network.ParseBackend(lookup("BRIDGECTL_BACKEND"))
	if err != nil {
		return Config{}, err
	}
	cfg.Backend = backend

	if _, _, err := net.SplitHostPort(cfg.HTTPListen); err != nil {
		return Config{}, fmt.Errorf("invalid http listen address %q: %w", cfg.HTTPListen, err)
	}
	if cfg.DatabasePath == "" {
		return Config{}, fmt.Errorf("database path required")
	}

	return cfg, nil
}

func expandPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return filepath.Clean(path)
}
