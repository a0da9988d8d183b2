// bookingcli is the command-line facility booking client.
//
// Usage:
//
//	bookingcli query   --facility LabA --range-start <ms> --range-end <ms>
//	bookingcli book    --facility LabA --user alice --start <ms> --end <ms>
//	bookingcli change  --booking-id 1 --offset 60
//	bookingcli monitor --facility LabA --window 30 --callback-port 0
//	bookingcli reset   --facility LabA --range-start <ms> --range-end <ms>
//	bookingcli incr    --facility LabA
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"facility-rpc/booking"
	"facility-rpc/client"
	"facility-rpc/loadbalance"
	"facility-rpc/logging"
	"facility-rpc/monitor"
	"facility-rpc/registry"
	"facility-rpc/transport"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <query|book|change|monitor|reset|incr> [options]\n", os.Args[0])
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "bookingcli: %v\n", err)
		os.Exit(1)
	}
}

// commonFlags are accepted by every subcommand.
type commonFlags struct {
	configPath string
	server     string
	timeoutMS  int
	retries    int
	atMostOnce bool
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	c := &commonFlags{}
	fs.StringVar(&c.configPath, "config", "", "path to config.toml")
	fs.StringVar(&c.server, "server", "", "server address (host:port)")
	fs.IntVar(&c.timeoutMS, "timeout-ms", -1, "per-attempt reply timeout in ms")
	fs.IntVar(&c.retries, "retries", -1, "retransmissions after the first attempt")
	fs.BoolVar(&c.atMostOnce, "at-most-once", false, "request server-side dedupe of retries")
	return c
}

// resolve merges config file, flags, and registry discovery into a ready
// client over a dialed transport.
func resolve(c *commonFlags) (*client.Client, func(), error) {
	cfg := defaultCLIConfig()
	if c.configPath != "" {
		var err error
		if cfg, err = loadCLIConfig(c.configPath); err != nil {
			return nil, nil, err
		}
	}
	if c.server != "" {
		cfg.ServerAddr = c.server
	}
	if c.timeoutMS >= 0 {
		cfg.Timeout = time.Duration(c.timeoutMS) * time.Millisecond
	}
	if c.retries >= 0 {
		cfg.Retries = c.retries
	}
	if c.atMostOnce {
		cfg.AtMostOnce = true
	}

	addr := cfg.ServerAddr
	if len(cfg.EtcdEndpoints) > 0 {
		reg, err := registry.NewEtcdRegistry(cfg.EtcdEndpoints)
		if err != nil {
			return nil, nil, fmt.Errorf("connect etcd: %w", err)
		}
		defer reg.Close()
		instances, err := reg.Discover(registry.ServiceName)
		if err != nil {
			return nil, nil, fmt.Errorf("discover servers: %w", err)
		}
		picked, err := loadbalance.ByName(cfg.Balancer).Pick(instances)
		if err != nil {
			return nil, nil, err
		}
		addr = picked.Addr
	}

	conn, err := transport.Dial(addr)
	if err != nil {
		return nil, nil, err
	}
	log := logging.New("bookingcli")
	cl := client.New(conn, client.Options{
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.Retries,
		AtMostOnce: cfg.AtMostOnce,
		Logger:     &log,
	})
	return cl, func() { conn.Close() }, nil
}

func run(cmd string, args []string) error {
	switch cmd {
	case "query":
		return cmdQuery(args)
	case "book":
		return cmdBook(args)
	case "change":
		return cmdChange(args)
	case "monitor":
		return cmdMonitor(args)
	case "reset":
		return cmdReset(args)
	case "incr":
		return cmdIncr(args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	common := addCommonFlags(fs)
	facility := fs.String("facility", "LabA", "facility name")
	rangeStart := fs.Int64("range-start", 0, "window start, epoch ms")
	rangeEnd := fs.Int64("range-end", 0, "window end, epoch ms")
	fs.Parse(args)

	cl, closeFn, err := resolve(common)
	if err != nil {
		return err
	}
	defer closeFn()

	intervals, err := cl.QueryAvailability(*facility, *rangeStart, *rangeEnd)
	if err != nil {
		return err
	}
	fmt.Printf("available intervals: %d\n", len(intervals))
	for _, iv := range intervals {
		fmt.Printf("  [%d, %d)\n", iv.Start, iv.End)
	}
	return nil
}

func cmdBook(args []string) error {
	fs := flag.NewFlagSet("book", flag.ExitOnError)
	common := addCommonFlags(fs)
	facility := fs.String("facility", "LabA", "facility name")
	user := fs.String("user", "alice", "user name")
	start := fs.Int64("start", 0, "booking start, epoch ms")
	end := fs.Int64("end", 0, "booking end, epoch ms")
	fs.Parse(args)

	cl, closeFn, err := resolve(common)
	if err != nil {
		return err
	}
	defer closeFn()

	id, err := cl.Book(*facility, *user, *start, *end)
	if err != nil {
		return err
	}
	fmt.Printf("booking created: id=%d\n", id)
	return nil
}

func cmdChange(args []string) error {
	fs := flag.NewFlagSet("change", flag.ExitOnError)
	common := addCommonFlags(fs)
	bookingID := fs.Int64("booking-id", 0, "booking id")
	offset := fs.Uint("offset", 60, "shift in minutes")
	fs.Parse(args)

	cl, closeFn, err := resolve(common)
	if err != nil {
		return err
	}
	defer closeFn()

	iv, err := cl.ChangeBooking(*bookingID, uint32(*offset))
	if err != nil {
		return err
	}
	fmt.Printf("booking changed: new time [%d, %d)\n", iv.Start, iv.End)
	return nil
}

func cmdMonitor(args []string) error {
	fs := flag.NewFlagSet("monitor", flag.ExitOnError)
	common := addCommonFlags(fs)
	facility := fs.String("facility", "LabA", "facility name")
	window := fs.Uint("window", 30, "monitor window in seconds")
	callbackPort := fs.Uint("callback-port", 0, "local UDP port for callbacks (0 = auto)")
	fs.Parse(args)

	cl, closeFn, err := resolve(common)
	if err != nil {
		return err
	}
	defer closeFn()

	// Bind the callback endpoint first so the advertised port is real.
	cbConn, err := transport.ListenCallback(int(*callbackPort))
	if err != nil {
		return err
	}
	log := logging.New("bookingcli")
	listener := monitor.NewListener(cbConn, printUpdate, &log)

	ok, err := cl.Monitor(*facility, uint32(*window), uint32(listener.Port()))
	if err != nil {
		cbConn.Close()
		return err
	}
	if !ok {
		cbConn.Close()
		return errors.New("monitor registration rejected")
	}
	fmt.Printf("monitoring %s for %ds on port %d (Ctrl+C to stop)\n", *facility, *window, listener.Port())

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(sigCtx, time.Duration(*window)*time.Second)
	defer cancel()
	return listener.Run(ctx)
}

func printUpdate(intervals []booking.Interval) {
	fmt.Printf("availability update: %d intervals\n", len(intervals))
	for _, iv := range intervals {
		fmt.Printf("  [%d, %d)\n", iv.Start, iv.End)
	}
}

func cmdReset(args []string) error {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	common := addCommonFlags(fs)
	facility := fs.String("facility", "LabA", "facility name")
	rangeStart := fs.Int64("range-start", 0, "window start, epoch ms")
	rangeEnd := fs.Int64("range-end", 0, "window end, epoch ms")
	fs.Parse(args)

	cl, closeFn, err := resolve(common)
	if err != nil {
		return err
	}
	defer closeFn()

	removed, err := cl.ResetSchedule(*facility, *rangeStart, *rangeEnd)
	if err != nil {
		return err
	}
	fmt.Printf("schedule reset: %d booking(s) removed\n", removed)
	return nil
}

func cmdIncr(args []string) error {
	fs := flag.NewFlagSet("incr", flag.ExitOnError)
	common := addCommonFlags(fs)
	facility := fs.String("facility", "LabA", "facility name")
	fs.Parse(args)

	cl, closeFn, err := resolve(common)
	if err != nil {
		return err
	}
	defer closeFn()

	usage, err := cl.IncrementUsage(*facility)
	if err != nil {
		return err
	}
	fmt.Printf("usage counter: %d\n", usage)
	return nil
}
