package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDaemonConfigOverlay(t *testing.T) {
	path := writeConfig(t, `
listen_addr = "127.0.0.1:8888"
at_most_once = false
cache_ttl_ms = 5000
loss_sim = 0.25
rate_limit = 100.0
etcd_endpoints = ["127.0.0.1:2379"]
advertise_addr = "10.0.0.5:8888"
weight = 3
`)
	cfg, err := loadDaemonConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != "127.0.0.1:8888" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.AtMostOnce {
		t.Error("at_most_once = false not applied")
	}
	if cfg.CacheTTL != 5*time.Second {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}
	if cfg.LossSim != 0.25 {
		t.Errorf("LossSim = %v", cfg.LossSim)
	}
	if cfg.RateLimit != 100 {
		t.Errorf("RateLimit = %v", cfg.RateLimit)
	}
	if cfg.RateBurst != 32 {
		t.Errorf("RateBurst = %d, want the default kept for absent keys", cfg.RateBurst)
	}
	if cfg.AdvertiseAddr != "10.0.0.5:8888" {
		t.Errorf("AdvertiseAddr = %q", cfg.AdvertiseAddr)
	}
	if cfg.Weight != 3 {
		t.Errorf("Weight = %d", cfg.Weight)
	}
}

func TestLoadDaemonConfigDefaults(t *testing.T) {
	cfg, err := loadDaemonConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatal(err)
	}
	want := defaultDaemonConfig()
	if cfg.ListenAddr != want.ListenAddr || cfg.CacheTTL != want.CacheTTL || !cfg.AtMostOnce {
		t.Errorf("empty file changed defaults: %+v", cfg)
	}
	if cfg.AdvertiseAddr != want.ListenAddr {
		t.Errorf("AdvertiseAddr = %q, want fallback to listen address", cfg.AdvertiseAddr)
	}
}

func TestLoadDaemonConfigRejectsBadLossSim(t *testing.T) {
	for _, body := range []string{"loss_sim = 1.0", "loss_sim = -0.1"} {
		if _, err := loadDaemonConfig(writeConfig(t, body)); err == nil {
			t.Errorf("%s accepted", body)
		}
	}
}

func TestLoadDaemonConfigMissingFile(t *testing.T) {
	if _, err := loadDaemonConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("missing file accepted")
	}
}
