package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"wifiwatch/internal/alert"
	"wifiwatch/internal/api"
	"wifiwatch/internal/config"
	"wifiwatch/internal/locator"
	"wifiwatch/internal/logger"
	"wifiwatch/internal/monitor"
	"wifiwatch/internal/notify"
	"wifiwatch/internal/scanner"
	"wifiwatch/internal/types"
	"wifiwatch/internal/version"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	once := flag.Bool("once", false, "Run a single cycle, print its report and exit")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	// Show version if requested
	if *showVersion {
		fmt.Println(version.GetInfo().String())
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if *debug {
		cfg.Log.Level = "debug"
	}

	// Initialize logger
	log, err := logger.New(&cfg.Log)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer func(log *zap.Logger) {
		_ = log.Sync()
	}(log)

	if err := run(cfg, *once, log); err != nil {
		log.Error("wifiwatch failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, once bool, log *zap.Logger) error {
	log.Info("Starting wifiwatch",
		zap.String("version", version.Version),
		zap.String("hostname", cfg.Monitor.Hostname),
		zap.Duration("interval", cfg.Monitor.Interval))

	loc, err := locator.New(cfg.Locator, log)
	if err != nil {
		return fmt.Errorf("failed to create locator: %w", err)
	}
	sc := scanner.NewFromConfig(cfg.Scanner, log)

	// Alerting
	var alerters alert.Multi
	if cfg.Alert.Sound.Enabled {
		alerters = append(alerters, alert.NewSoundAlerter(cfg.Alert.Sound, log))
	}

	var manager *notify.Manager
	if cfg.Notify.Enabled {
		manager, err = notify.NewManager(&cfg.Notify, log)
		if err != nil {
			return fmt.Errorf("failed to create notification manager: %w", err)
		}
		defer func() {
			if err := manager.Stop(); err != nil {
				log.Error("Failed to stop notification manager", zap.Error(err))
			}
		}()
		if cfg.Alert.Notify {
			alerters = append(alerters, alert.NewNotifyAlerter(manager))
		}
	}

	recorder := monitor.NewRecorder()
	m := monitor.New(cfg.Monitor, loc, sc, alerters, recorder, log)

	if once {
		_, report := m.RunCycle(context.Background(), types.MonitorState{})
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	// Status API
	var server *api.Server
	if cfg.API.Enabled {
		var health api.NotifyStatus
		if manager != nil {
			health = manager
		}
		router := api.NewRouter(recorder, health, cfg.Log.Level == "debug", log)
		server = api.NewServer(cfg.API, router, log)
		server.Start()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	<-ctx.Done()
	log.Info("Received shutdown signal, waiting for the current cycle")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to stop status API", zap.Error(err))
		}
	}

	select {
	case err := <-done:
		if err != nil {
			return err
		}
	case <-shutdownCtx.Done():
		log.Warn("Timed out waiting for the current cycle")
	}

	log.Info("Shutdown complete")
	return nil
}
