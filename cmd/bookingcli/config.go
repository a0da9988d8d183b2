package main

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// bookingcli config.toml key mapping to client settings.
type fileConfig struct {
	ServerAddr    string   `toml:"server_addr"`
	TimeoutMS     int      `toml:"timeout_ms"`
	Retries       int      `toml:"retries"`
	AtMostOnce    bool     `toml:"at_most_once"`
	EtcdEndpoints []string `toml:"etcd_endpoints"`
	Balancer      string   `toml:"balancer"`
}

type cliConfig struct {
	ServerAddr    string
	Timeout       time.Duration
	Retries       int
	AtMostOnce    bool
	EtcdEndpoints []string
	Balancer      string
}

func defaultCLIConfig() cliConfig {
	return cliConfig{
		ServerAddr: "127.0.0.1:9999",
		Timeout:    500 * time.Millisecond,
		Retries:    3,
	}
}

func loadCLIConfig(path string) (cliConfig, error) {
	cfg := defaultCLIConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return cliConfig{}, fmt.Errorf("load bookingcli config: %w", err)
	}

	if meta.IsDefined("server_addr") {
		cfg.ServerAddr = raw.ServerAddr
	}
	if meta.IsDefined("timeout_ms") {
		cfg.Timeout = time.Duration(raw.TimeoutMS) * time.Millisecond
	}
	if meta.IsDefined("retries") {
		if raw.Retries < 0 {
			return cliConfig{}, fmt.Errorf("load bookingcli config: negative retries")
		}
		cfg.Retries = raw.Retries
	}
	if meta.IsDefined("at_most_once") {
		cfg.AtMostOnce = raw.AtMostOnce
	}
	if meta.IsDefined("etcd_endpoints") {
		cfg.EtcdEndpoints = raw.EtcdEndpoints
	}
	if meta.IsDefined("balancer") {
		cfg.Balancer = raw.Balancer
	}
	return cfg, nil
}
