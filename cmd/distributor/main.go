// Package main is the entry point for the daily rewards distributor.
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

	"github.com/joho/godotenv"

	"github.com/fd1az/rewards-distributor/business/chain"
	chainDI "github.com/fd1az/rewards-distributor/business/chain/di"
	"github.com/fd1az/rewards-distributor/business/rewards"
	rewardsDI "github.com/fd1az/rewards-distributor/business/rewards/di"
	"github.com/fd1az/rewards-distributor/business/schedule"
	"github.com/fd1az/rewards-distributor/internal/apm"
	"github.com/fd1az/rewards-distributor/internal/config"
	"github.com/fd1az/rewards-distributor/internal/health"
	"github.com/fd1az/rewards-distributor/internal/logger"
	"github.com/fd1az/rewards-distributor/internal/metrics"
	"github.com/fd1az/rewards-distributor/internal/monolith"
	"github.com/fd1az/rewards-distributor/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type mode int

const (
	modeDaemon mode = iota
	modeDiagnose
	modeDistribute
)

var errReportFailed = errors.New("report has failed checks")

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Parse flags
	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	diagnose := flag.Bool("diagnose", false, "Print contract diagnostics and exit")
	distribute := flag.Bool("distribute", false, "Run one distribution now and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("rewards-distributor %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	m := modeDaemon
	switch {
	case *diagnose && *distribute:
		fmt.Fprintln(os.Stderr, "error: -diagnose and -distribute are mutually exclusive")
		os.Exit(2)
	case *diagnose:
		m = modeDiagnose
	case *distribute:
		m = modeDistribute
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	// Run application
	if err := run(ctx, *configPath, m); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, m mode) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(os.Stderr, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)
	defer log.Sync()

	log.Info(ctx, "starting rewards distributor",
		"version", version,
		"environment", cfg.App.Environment,
	)

	stopTelemetry, err := startTelemetry(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stopTelemetry()

	// Create monolith (application container)
	mono := monolith.New(cfg, log)
	defer func() {
		if err := mono.Close(); err != nil {
			log.Error(ctx, "shutdown error", "error", err)
		}
	}()

	// Define modules in dependency order
	modules := []monolith.Module{
		&chain.Module{},   // RPC client and network profile
		&rewards.Module{}, // Depends on chain
	}
	if m == modeDaemon {
		modules = append(modules, &schedule.Module{}) // Depends on rewards
	}

	// Register all module services
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	switch m {
	case modeDiagnose:
		report := rewardsDI.GetDiagnostics(mono.Services()).Diagnose(ctx)
		fmt.Print(ui.RenderReport(report))
		if report.Failed() {
			return errReportFailed
		}
		return nil
	case modeDistribute:
		report := rewardsDI.GetDiagnostics(mono.Services()).ManualTrigger(ctx)
		fmt.Print(ui.RenderReport(report))
		if report.Failed() {
			return report.Err
		}
		return nil
	}

	// Daemon mode: health server, then wait for shutdown
	healthServer := health.NewServer(cfg.Health.Port, version, log)
	healthServer.RegisterCheck("rpc", health.RPCCheck(chainDI.GetChainClient(mono.Services())))
	healthServer.RegisterCheck("last_run", rewardsDI.GetDistributor(mono.Services()).HealthCheck)
	if err := healthServer.Start(ctx); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	}
	defer shutdown(healthServer.Stop)

	log.Info(ctx, "all modules started, waiting for schedule")
	<-ctx.Done()
	log.Info(ctx, "shutting down")
	return nil
}

// startTelemetry installs tracer and meter providers when enabled and
// returns a function that flushes them.
func startTelemetry(ctx context.Context, cfg *config.Config, log logger.LoggerInterface) (func(), error) {
	if !cfg.Telemetry.Enabled {
		return func() {}, nil
	}

	provider, err := apm.ParseProvider(cfg.Telemetry.Provider)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	tp, err := apm.NewTraceProvider(log, apm.TracerOptions{
		Provider:    provider,
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Headers:     cfg.Telemetry.OTLPHeaders,
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	mp, err := metrics.NewMetricProvider(
		metrics.WithServiceName(cfg.Telemetry.ServiceName),
		metrics.WithProviderConfig(metrics.NewPrometheusConfig()),
	)
	if err != nil {
		_ = tp.Stop()
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	promServer := metrics.NewPrometheusServer(cfg.Telemetry.PrometheusPort, nil, log)
	if err := promServer.Start(ctx); err != nil {
		log.Warn(ctx, "failed to start metrics server", "error", err)
	}

	return func() {
		shutdown(promServer.Stop)
		shutdown(mp.Shutdown)
		if err := tp.Stop(); err != nil {
			log.Warn(context.Background(), "trace provider shutdown failed", "error", err)
		}
	}, nil
}

func shutdown(stop func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = stop(ctx)
}
