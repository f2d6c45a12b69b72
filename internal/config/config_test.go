package config

import (
	"path/filepath"
	"testing"

	"github.com/volantvm/bridgectl/internal/network"
)

func lookupFrom(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

func TestDefaults(t *testing.T) {
	cfg, err := fromLookup(lookupFrom(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPListen != defaultHTTPListen {
		t.Fatalf("listen = %q", cfg.HTTPListen)
	}
	if cfg.Backend != network.BackendIoctl {
		t.Fatalf("backend = %q", cfg.Backend)
	}
	if cfg.SysfsRoot != "/sys/class/net" {
		t.Fatalf("sysfs root = %q", cfg.SysfsRoot)
	}
	if filepath.Base(cfg.DatabasePath) != "journal.db" {
		t.Fatalf("unexpected db path: %q", cfg.DatabasePath)
	}
}

func TestOverrides(t *testing.T) {
	cfg, err := fromLookup(lookupFrom(map[string]string{
		"BRIDGECTL_HTTP_LISTEN": "0.0.0.0:9000",
		"BRIDGECTL_DB_PATH":     "/var/lib/bridgectl/j.db",
		"BRIDGECTL_BACKEND":     "netlink",
		"BRIDGECTL_SYSFS_ROOT":  "/tmp/sys/",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPListen != "0.0.0.0:9000" || cfg.DatabasePath != "/var/lib/bridgectl/j.db" ||
		cfg.Backend != network.BackendNetlink || cfg.SysfsRoot != "/tmp/sys" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestInvalid(t *testing.T) {
	tests := []map[string]string{
		{"BRIDGECTL_HTTP_LISTEN": "no-port"},
		{"BRIDGECTL_BACKEND": "ovs"},
	}
	for _, env := range tests {
		if _, err := fromLookup(lookupFrom(env)); err == nil {
			t.Fatalf("expected error for %v", env)
		}
	}
}
