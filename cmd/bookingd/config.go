package main

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// bookingd config.toml key mapping to daemon runtime settings.
type fileConfig struct {
	ListenAddr    string   `toml:"listen_addr"`
	AtMostOnce    bool     `toml:"at_most_once"`
	CacheTTLMS    int      `toml:"cache_ttl_ms"`
	LossSim       float64  `toml:"loss_sim"`
	RateLimit     float64  `toml:"rate_limit"`
	RateBurst     int      `toml:"rate_burst"`
	EtcdEndpoints []string `toml:"etcd_endpoints"`
	AdvertiseAddr string   `toml:"advertise_addr"`
	Weight        int      `toml:"weight"`
}

type daemonConfig struct {
	ListenAddr    string
	AtMostOnce    bool
	CacheTTL      time.Duration
	LossSim       float64
	RateLimit     float64 // requests/second, 0 disables the limiter
	RateBurst     int
	EtcdEndpoints []string
	AdvertiseAddr string // address registered in etcd; defaults to ListenAddr
	Weight        int
}

func defaultDaemonConfig() daemonConfig {
	return daemonConfig{
		ListenAddr: ":9999",
		AtMostOnce: true,
		CacheTTL:   time.Minute,
		RateBurst:  32,
		Weight:     1,
	}
}

// loadDaemonConfig overlays config.toml values on the defaults. Keys absent
// from the file keep their default.
func loadDaemonConfig(path string) (daemonConfig, error) {
	cfg := defaultDaemonConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return daemonConfig{}, fmt.Errorf("load bookingd config: %w", err)
	}

	if meta.IsDefined("listen_addr") {
		cfg.ListenAddr = raw.ListenAddr
	}
	if meta.IsDefined("at_most_once") {
		cfg.AtMostOnce = raw.AtMostOnce
	}
	if meta.IsDefined("cache_ttl_ms") {
		cfg.CacheTTL = time.Duration(raw.CacheTTLMS) * time.Millisecond
	}
	if meta.IsDefined("loss_sim") {
		if raw.LossSim < 0 || raw.LossSim >= 1 {
			return daemonConfig{}, fmt.Errorf("load bookingd config: loss_sim %v outside [0, 1)", raw.LossSim)
		}
		cfg.LossSim = raw.LossSim
	}
	if meta.IsDefined("rate_limit") {
		cfg.RateLimit = raw.RateLimit
	}
	if meta.IsDefined("rate_burst") {
		cfg.RateBurst = raw.RateBurst
	}
	if meta.IsDefined("etcd_endpoints") {
		cfg.EtcdEndpoints = raw.EtcdEndpoints
	}
	if meta.IsDefined("advertise_addr") {
		cfg.AdvertiseAddr = raw.AdvertiseAddr
	}
	if meta.IsDefined("weight") {
		cfg.Weight = raw.Weight
	}

	if cfg.AdvertiseAddr == "" {
		cfg.AdvertiseAddr = cfg.ListenAddr
	}
	return cfg, nil
}
