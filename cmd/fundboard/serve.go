package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fundboard/fundboard/internal/api"
	"github.com/fundboard/fundboard/internal/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the relay and snapshot API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	p := buildPipeline(cfg, log, reg)

	log.Info("starting fundboard server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	server, err := api.NewServer(api.Config{
		Host:                      cfg.Server.Host,
		Port:                      cfg.Server.Port,
		WriteTimeout:              cfg.Server.WriteTimeout,
		Domain:                    cfg.Upstream.Domain,
		CacheMaxAge:               cfg.Relay.CacheMaxAge,
		CacheStaleWhileRevalidate: cfg.Relay.CacheStaleWhileRevalidate,
		MetricsEnabled:            cfg.Metrics.Enabled,
		MetricsPath:               cfg.Metrics.Path,
	}, api.Dependencies{
		Relay:     p.direct,
		Snapshots: p.service,
		Metrics:   reg,
	}, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info("shutting down fundboard server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
