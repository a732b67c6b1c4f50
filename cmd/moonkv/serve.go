package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/eternalApril/moonkv/internal/config"
	"github.com/eternalApril/moonkv/internal/logger"
	"github.com/eternalApril/moonkv/internal/server"
	"github.com/eternalApril/moonkv/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the moonkv server",
	Long: `Start the moonkv server. Settings are read from config.yaml, then from environment
variables (MOONKV_SERVER_PORT=6380, MOONKV_LOG_LEVEL=debug, ...), then from flags.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	flags := serveCmd.Flags()
	flags.String("config", ".", "directory containing config.yaml")
	flags.String("host", "0.0.0.0", "address to listen on")
	flags.String("port", "8000", "port to listen on")
	flags.Duration("idle-timeout", 0, "close clients idle for this long (0 disables)")
	flags.Int("rate-limit", 0, "commands per second per connection (0 disables)")
	flags.Duration("shutdown-timeout", 5*time.Second, "how long to wait for clients on shutdown")
	flags.Int("max-array-len", 0, "maximum number of elements in one command")
	flags.Int("max-bulk-len", 0, "maximum size of one argument in bytes")
	flags.String("log-level", "info", "debug, info, warn or error")
	flags.String("log-format", "json", "json or console")
	flags.Bool("metrics", false, "serve prometheus metrics")
	flags.String("metrics-address", "127.0.0.1:9121", "address of the metrics endpoint")
}

func runServe(cmd *cobra.Command, _ []string) error {
	configDir, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	cfg, err := config.Load(configDir, cmd.Flags())
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync() //nolint:errcheck

	log.Info("moonkv starting",
		zap.String("version", Version),
		zap.String("address", cfg.Address()),
	)

	var metrics *server.Metrics
	var registry *prometheus.Registry
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = server.NewMetrics(registry)
	}

	engine := server.NewEngine(storage.NewStore(), log, metrics)

	var metricsServer *http.Server
	if metrics != nil {
		metrics.WatchKeyspace(engine.Keys)
		metricsServer = startMetricsServer(cfg.Metrics.Address, metrics, log)
	}

	srv := server.NewServer(engine, log, metrics, server.Options{
		ReadBuffer:  cfg.Server.ReadBuffer,
		IdleTimeout: cfg.Server.IdleTimeout,
		RateLimit:   cfg.Server.RateLimit,
		MaxArrayLen: cfg.Limits.MaxArrayLen,
		MaxBulkLen:  cfg.Limits.MaxBulkLen,
	})

	listener, err := net.Listen("tcp", cfg.Address())
	if err != nil {
		log.Error("listener error", zap.Error(err))
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ctx, listener)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			log.Error("server stopped", zap.Error(err))
			return err
		}
	}

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("Shutdown timed out, forcing exit", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	} else {
		log.Info("All connections closed gracefully")
	}

	if metricsServer != nil {
		metricsServer.Shutdown(shutdownCtx) //nolint:errcheck
	}

	log.Info("moonkv stopped")
	return nil
}

// startMetricsServer serves /metrics in the background
func startMetricsServer(address string, metrics *server.Metrics, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("metrics listening on", zap.String("address", address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()

	return srv
}
