// Command iikit-sim runs the kit firmware loop against a simulated
// hardware abstraction layer.
//
// The simulator reproduces the kit's behavior on a desktop machine:
//   - LED blink on pin D1 every 500 ms
//   - Display refresh ("P1:" / "T1:" on lines 2 and 3) every 50 ms
//   - LasecPlot UDP telemetry on port 47250+<kit id>
//   - mDNS advertisement as iikit<N>.local
//
// Usage:
//
//	iikit-sim [flags]
//
// Flags:
//
//	-config string     Configuration file path (YAML)
//	-kit int           Kit id (default 1)
//	-blink duration    LED blink interval (default 500ms)
//	-refresh duration  Display refresh interval (default 50ms)
//	-rate float        Telemetry send rate in Hz (default 30)
//	-no-telemetry      Disable the telemetry link
//	-no-advertise      Disable mDNS advertising
//	-state string      Kit state file path
//	-event-log string  CBOR event log file path (.klog)
//	-log-level string  Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Run kit 3 with defaults
//	iikit-sim -kit 3
//
//	# Run from a config file with event capture
//	iikit-sim -config kit.yaml -event-log run.klog
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lasec-lab/iikit-go/pkg/config"
	"github.com/lasec-lab/iikit-go/pkg/discovery"
	"github.com/lasec-lab/iikit-go/pkg/hal"
	kitlog "github.com/lasec-lab/iikit-go/pkg/log"
	"github.com/lasec-lab/iikit-go/pkg/loop"
	"github.com/lasec-lab/iikit-go/pkg/persistence"
	"github.com/lasec-lab/iikit-go/pkg/telemetry"
	"github.com/lasec-lab/iikit-go/pkg/version"
)

var (
	configFile   string
	kitID        int
	blink        time.Duration
	refresh      time.Duration
	sendRate     float64
	noTelemetry  bool
	noAdvertise  bool
	stateFile    string
	eventLogFile string
	logLevel     string
)

func init() {
	flag.StringVar(&configFile, "config", "", "Configuration file path (YAML)")
	flag.IntVar(&kitID, "kit", 1, "Kit id")
	flag.DurationVar(&blink, "blink", 500*time.Millisecond, "LED blink interval")
	flag.DurationVar(&refresh, "refresh", 50*time.Millisecond, "Display refresh interval")
	flag.Float64Var(&sendRate, "rate", 30, "Telemetry send rate in Hz")
	flag.BoolVar(&noTelemetry, "no-telemetry", false, "Disable the telemetry link")
	flag.BoolVar(&noAdvertise, "no-advertise", false, "Disable mDNS advertising")
	flag.StringVar(&stateFile, "state", "", "Kit state file path")
	flag.StringVar(&eventLogFile, "event-log", "", "CBOR event log file path")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func main() {
	flag.Parse()

	setupLogging(logLevel)

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Println("IIKit Simulator")
	log.Println("===============")
	log.Printf("Kit: %s (%s), firmware %s", cfg.KitName(), cfg.Host(), version.Current)
	log.Printf("Blink: %v on pin %d", cfg.BlinkInterval, cfg.LEDPin)
	log.Printf("Display refresh: %v", cfg.DisplayInterval)
	if cfg.Telemetry.Enabled {
		log.Printf("Telemetry: port %d at %.0f Hz", cfg.CommandPort(), cfg.Telemetry.SendRate)
	}

	eventLogger, closeLogger, err := buildEventLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to open event log: %v", err)
	}
	defer closeLogger()

	// Simulated hardware, optionally restored from the last run.
	kit := hal.NewSimKit()
	var store *persistence.StateStore
	if cfg.StateFile != "" {
		store = persistence.NewStateStore(cfg.StateFile)
		state, err := store.Load()
		if err != nil {
			log.Fatalf("Failed to load kit state: %v", err)
		}
		if state != nil {
			persistence.Restore(kit, state)
			log.Printf("Restored kit state from %s (saved %s)",
				cfg.StateFile, state.SavedAt.Format(time.RFC3339))
		}
	}

	ctrl, err := loop.NewController(loop.Config{
		Kit:          kit,
		PollInterval: cfg.PollInterval,
		KitID:        cfg.KitName(),
		Logger:       eventLogger,
	})
	if err != nil {
		log.Fatalf("Failed to create controller: %v", err)
	}

	// The two canonical firmware tasks.
	if err := ctrl.AddTask("blinkLED", cfg.BlinkInterval, ctrl.Blink(cfg.LEDPin)); err != nil {
		log.Fatalf("Failed to add blink task: %v", err)
	}
	if err := ctrl.AddTask("managerInput", cfg.DisplayInterval, ctrl.RefreshDisplay(cfg.DisplayLabels)); err != nil {
		log.Fatalf("Failed to add display task: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var pub *telemetry.Publisher
	if cfg.Telemetry.Enabled {
		pub, err = startTelemetry(ctx, cfg, kit, eventLogger)
		if err != nil {
			log.Fatalf("Failed to start telemetry: %v", err)
		}
		defer pub.Stop()
		log.Printf("Telemetry listening on %s", pub.Addr())

		if cfg.Telemetry.Advertise {
			adv, err := startAdvertising(ctx, cfg, pub)
			if err != nil {
				log.Printf("Warning: mDNS advertising failed: %v", err)
			} else {
				defer adv.Stop()
				log.Printf("Advertising as %s", cfg.Host())
			}
		}
	}

	// Run the polling loop.
	loopDone := make(chan error, 1)
	go func() {
		loopDone <- ctrl.Run(ctx)
	}()

	// Wait for shutdown signal.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.Printf("Received signal: %v", sig)
	log.Println("Shutting down...")

	cancel()
	<-loopDone

	if store != nil {
		target := ""
		if pub != nil {
			target = pub.Target()
		}
		if err := store.Save(persistence.Snapshot(kit, cfg.KitID, target)); err != nil {
			log.Printf("Error saving kit state: %v", err)
		} else {
			log.Printf("Kit state saved to %s", cfg.StateFile)
		}
	}

	log.Println("Goodbye!")
}

func setupLogging(level string) {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	switch level {
	case "debug":
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	case "warn", "error":
		log.SetFlags(log.Ltime)
	}
}

// loadConfig merges the config file (if any) with command-line flags.
// Flags set explicitly win over the file.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "kit":
			cfg.KitID = kitID
		case "blink":
			cfg.BlinkInterval = blink
		case "refresh":
			cfg.DisplayInterval = refresh
		case "rate":
			cfg.Telemetry.SendRate = sendRate
		case "no-telemetry":
			cfg.Telemetry.Enabled = !noTelemetry
		case "no-advertise":
			cfg.Telemetry.Advertise = !noAdvertise
		case "state":
			cfg.StateFile = stateFile
		case "event-log":
			cfg.EventLog = eventLogFile
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildEventLogger assembles the event capture chain: console via slog
// at debug level, plus the CBOR file logger when configured.
func buildEventLogger(cfg *config.Config) (kitlog.Logger, func(), error) {
	var loggers []kitlog.Logger
	closeFn := func() {}

	if logLevel == "debug" {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		loggers = append(loggers, kitlog.NewSlogAdapter(slog.New(handler)))
	}

	if cfg.EventLog != "" {
		fl, err := kitlog.NewFileLogger(cfg.EventLog)
		if err != nil {
			return nil, nil, err
		}
		loggers = append(loggers, fl)
		closeFn = func() { _ = fl.Close() }
	}

	switch len(loggers) {
	case 0:
		return kitlog.NoopLogger{}, closeFn, nil
	case 1:
		return loggers[0], closeFn, nil
	default:
		return kitlog.NewMultiLogger(loggers...), closeFn, nil
	}
}

// startTelemetry brings up the UDP publisher exporting the LED level
// and the loop iteration counter.
func startTelemetry(ctx context.Context, cfg *config.Config, kit *hal.SimKit, logger kitlog.Logger) (*telemetry.Publisher, error) {
	pub, err := telemetry.NewPublisher(telemetry.PublisherConfig{
		Address:  addrFor(cfg.CommandPort()),
		SendRate: cfg.Telemetry.SendRate,
		KitID:    cfg.KitName(),
		Logger:   logger,
		OnConnect: func(target string) {
			log.Printf("[TELEMETRY] Plot client connected: %s", target)
		},
		OnDisconnect: func(target string) {
			log.Printf("[TELEMETRY] Plot client disconnected: %s", target)
		},
	})
	if err != nil {
		return nil, err
	}

	gpio := kit.GPIO()
	ledPin := cfg.LEDPin
	if err := pub.Register("led", func() float64 {
		return float64(gpio.DigitalRead(ledPin))
	}); err != nil {
		return nil, err
	}
	if err := pub.Register("ticks", func() float64 {
		return float64(kit.Ticks())
	}); err != nil {
		return nil, err
	}

	if err := pub.Start(ctx); err != nil {
		return nil, err
	}
	return pub, nil
}

// startAdvertising registers the kit's mDNS service.
func startAdvertising(ctx context.Context, cfg *config.Config, pub *telemetry.Publisher) (discovery.Advertiser, error) {
	adv, err := discovery.NewMDNSAdvertiser(discovery.DefaultAdvertiserConfig())
	if err != nil {
		return nil, err
	}

	info := &discovery.KitInfo{
		KitID:    cfg.KitID,
		Firmware: version.Current,
		Vars:     pub.VarNames(),
		Port:     cfg.CommandPort(),
	}
	if err := adv.Advertise(ctx, info); err != nil {
		return nil, err
	}
	return adv, nil
}

func addrFor(port int) string {
	return fmt.Sprintf(":%d", port)
}
