// bookingd is the facility booking server daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"facility-rpc/logging"
	"facility-rpc/middleware"
	"facility-rpc/registry"
	"facility-rpc/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "bookingd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config.toml")
	listenAddr := flag.String("listen", "", "override listen address")
	lossSim := flag.Float64("loss-sim", -1, "override simulated response loss probability")
	flag.Parse()

	cfg := defaultDaemonConfig()
	if *configPath != "" {
		var err error
		if cfg, err = loadDaemonConfig(*configPath); err != nil {
			return err
		}
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *lossSim >= 0 {
		cfg.LossSim = *lossSim
	}

	log := logging.New("bookingd")

	mws := []middleware.Middleware{middleware.Logging(log)}
	if cfg.RateLimit > 0 {
		mws = append(mws, middleware.RateLimit(cfg.RateLimit, cfg.RateBurst))
	}

	srv := server.New(server.Config{
		AtMostOnce: cfg.AtMostOnce,
		CacheTTL:   cfg.CacheTTL,
		LossRate:   cfg.LossSim,
		Logger:     &log,
	}, mws...)
	if err := srv.Listen(cfg.ListenAddr); err != nil {
		return err
	}

	if len(cfg.EtcdEndpoints) > 0 {
		reg, err := registry.NewEtcdRegistry(cfg.EtcdEndpoints)
		if err != nil {
			return fmt.Errorf("connect etcd: %w", err)
		}
		defer reg.Close()
		instance := registry.ServiceInstance{Addr: cfg.AdvertiseAddr, Weight: cfg.Weight}
		if err := reg.Register(registry.ServiceName, instance, 10); err != nil {
			return fmt.Errorf("register in etcd: %w", err)
		}
		defer reg.Deregister(registry.ServiceName, cfg.AdvertiseAddr)
		log.Info().Str("addr", cfg.AdvertiseAddr).Msg("registered in etcd")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
