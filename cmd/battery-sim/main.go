// Command battery-sim runs a simulated battery that publishes reading
// and event profiles and applies received control profiles.
//
// Usage:
//
//	battery-sim [flags]
//
// Flags:
//
//	-config string        Configuration file path (YAML)
//	-identity string      Device identity file (YAML), overrides the config's device section
//	-interval duration    Publish interval (default 1s)
//	-event-every int      Publish an event profile every n ticks (default 10)
//	-log-level string     Log level: debug, info, warn, error (default "info")
//	-metrics-addr string  Serve Prometheus metrics on this address
//	-protocol-log string  Write publication events to this file (.plog)
//	-out string           Frame output file, "-" for stdout (default "-")
//	-control-in string    File or FIFO to read control frames from
//	-state string         Resume from and save battery state to this file
//
// Examples:
//
//	# Publish to stdout, operational logs on stderr
//	battery-sim -interval 500ms -log-level debug
//
//	# Publish to a file, accept controls from a FIFO, expose metrics
//	mkfifo /tmp/bess.ctl
//	battery-sim -config bess.yaml -out bess.frames -control-in /tmp/bess.ctl -metrics-addr :9108
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openfmb-sim/battery-sim-go/pkg/device"
	"github.com/openfmb-sim/battery-sim-go/pkg/log"
	"github.com/openfmb-sim/battery-sim-go/pkg/metrics"
	"github.com/openfmb-sim/battery-sim-go/pkg/persistence"
	"github.com/openfmb-sim/battery-sim-go/pkg/simulator"
	"github.com/openfmb-sim/battery-sim-go/pkg/transport"
)

var (
	configFile   = flag.String("config", "", "Configuration file path (YAML)")
	identityFile = flag.String("identity", "", "Device identity file (YAML)")
	interval     = flag.Duration("interval", simulator.DefaultInterval, "Publish interval")
	eventEvery   = flag.Int("event-every", simulator.DefaultEventEvery, "Publish an event profile every n ticks")
	logLevel     = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	metricsAddr  = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	protocolLog  = flag.String("protocol-log", "", "Write publication events to this file")
	output       = flag.String("out", "-", "Frame output file, \"-\" for stdout")
	controlIn    = flag.String("control-in", "", "File or FIFO to read control frames from")
	stateFile    = flag.String("state", "", "Resume from and save battery state to this file")
)

func main() {
	flag.Parse()

	cfg, err := buildConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}

	level, _ := parseLevel(cfg.Log.Level)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("battery-sim failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Goodbye!")
}

// buildConfig loads the config file and applies explicitly set flags on
// top of it.
func buildConfig() (Config, error) {
	cfg, err := loadConfig(*configFile)
	if err != nil {
		return Config{}, err
	}

	var flagErr error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "identity":
			id, err := device.LoadIdentity(*identityFile)
			if err != nil {
				flagErr = err
				return
			}
			cfg.Device = id
		case "interval":
			cfg.Publisher.Interval = *interval
		case "event-every":
			cfg.Publisher.EventEvery = *eventEvery
		case "log-level":
			cfg.Log.Level = *logLevel
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		case "protocol-log":
			cfg.Log.ProtocolLog = *protocolLog
		case "out":
			cfg.Output = *output
		case "control-in":
			cfg.ControlIn = *controlIn
		case "state":
			cfg.StateFile = *stateFile
		}
	})
	if flagErr != nil {
		return Config{}, flagErr
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	sink, err := openSink(cfg.Output)
	if err != nil {
		return err
	}
	defer sink.Close()

	pubLoggers := []log.Logger{log.NewSlogAdapter(logger)}
	if cfg.Log.ProtocolLog != "" {
		fl, err := log.NewFileLogger(cfg.Log.ProtocolLog)
		if err != nil {
			return err
		}
		defer func() {
			if n := fl.Dropped(); n > 0 {
				logger.Warn("publication events dropped", "count", n)
			}
			fl.Close()
		}()
		pubLoggers = append(pubLoggers, fl)
		logger.Info("Publication logging enabled", "path", cfg.Log.ProtocolLog)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}
	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	battery := simulator.NewBattery(cfg.Battery)
	if cfg.StateFile != "" {
		store := persistence.NewStateStore(cfg.StateFile)
		if err := restoreState(store, cfg.Device.LogicalDeviceID, battery, logger); err != nil {
			return err
		}
		defer func() {
			if err := saveState(store, cfg.Device.LogicalDeviceID, battery); err != nil {
				logger.Error("saving battery state", "path", cfg.StateFile, "error", err)
				return
			}
			logger.Info("Battery state saved", "path", cfg.StateFile)
		}()
	}
	pub := simulator.NewPublisher(cfg.Device, battery, sink,
		simulator.WithLogger(log.NewMultiLogger(pubLoggers...)),
		simulator.WithMetrics(m),
		simulator.WithSlog(logger),
		simulator.WithInterval(cfg.Publisher.Interval),
		simulator.WithEventEvery(cfg.Publisher.EventEvery),
	)

	logger.Info("Battery simulator",
		"device", cfg.Device.String(),
		"mrid", cfg.Device.MRID,
		"capacity_kwh", cfg.Battery.CapacityKWh,
		"max_power_kw", cfg.Battery.MaxPowerKW,
		"output", cfg.Output)

	if cfg.ControlIn != "" {
		go readControls(ctx, cfg.ControlIn, pub, logger)
	}

	err = pub.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("Shutting down...", "frames", sink.Frames())
		return nil
	}
	return err
}

func openSink(path string) (*transport.FrameSink, error) {
	if path == "-" {
		return transport.NewFrameSink(os.Stdout), nil
	}
	return transport.CreateFrameSink(path)
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}

// readControls applies control frames from path until the stream ends.
// Opening a FIFO blocks until a writer connects.
func readControls(ctx context.Context, path string, pub *simulator.Publisher, logger *slog.Logger) {
	f, err := os.Open(path)
	if err != nil {
		logger.Error("opening control input", "path", path, "error", err)
		return
	}
	defer f.Close()

	logger.Info("Reading controls", "path", path)
	err = transport.NewFrameSource(f).Serve(ctx, pub.HandleControl, func(err error) {
		logger.Warn("control rejected", "error", err)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("control input failed", "error", err)
		return
	}
	logger.Info("Control input closed", "path", path)
}
