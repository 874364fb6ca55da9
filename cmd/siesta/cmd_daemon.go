package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	cloudaws "github.com/siesta-sh/siesta/internal/cloud/aws"
	"github.com/siesta-sh/siesta/internal/schedule"
	"github.com/siesta-sh/siesta/internal/telemetry"
)

// daemonCmd runs both rules on an interval, for deployments without an
// external scheduler. Serves Prometheus metrics while running.
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run both rules on an interval with a metrics endpoint",
	RunE:  runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	promExporter, err := prometheus.New()
	if err != nil {
		logger.Error().Err(err).Msg("failed to create prometheus exporter")
		return err
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(promExporter))
	otel.SetMeterProvider(provider)

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		logger.Error().Err(err).Msg("failed to create metrics")
		return err
	}

	runner := schedule.NewRunner(cloudaws.NewFleet(), cfg.Regions, logger, metrics)
	rules := []schedule.Rule{
		applyTagKeys(schedule.StopRule, cfg),
		applyTagKeys(schedule.StartRule, cfg),
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: cfg.Daemon.MetricsAddr, Handler: mux}

	var group run.Group
	group.Add(func() error {
		logger.Info().Str("addr", cfg.Daemon.MetricsAddr).Msg("starting metrics server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}, func(error) {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	})
	group.Add(func() error {
		return tick(ctx, runner, rules, logger, cfg.Daemon.Interval)
	}, func(error) {
		cancel()
	})

	logger.Info().
		Strs("regions", cfg.Regions).
		Dur("interval", cfg.Daemon.Interval).
		Msg("siesta daemon starting")
	return group.Run()
}

func tick(ctx context.Context, runner *schedule.Runner, rules []schedule.Rule, logger zerolog.Logger, interval time.Duration) error {
	runAll(ctx, runner, rules, logger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runAll(ctx, runner, rules, logger)
		case <-ctx.Done():
			logger.Info().Msg("shutting down")
			return nil
		}
	}
}

// runAll applies both rules once. A failed run is logged, not fatal;
// the daemon keeps its schedule.
func runAll(ctx context.Context, runner *schedule.Runner, rules []schedule.Rule, logger zerolog.Logger) {
	for _, rule := range rules {
		if _, err := runner.Run(ctx, rule); err != nil {
			logger.Error().Err(err).Str("rule", rule.Name).Msg("run failed")
		}
	}
}
