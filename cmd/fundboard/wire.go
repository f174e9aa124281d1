package main

import (
	"fmt"

	"github.com/fundboard/fundboard/internal/aggregator"
	"github.com/fundboard/fundboard/internal/classifier"
	"github.com/fundboard/fundboard/internal/config"
	"github.com/fundboard/fundboard/internal/dashboard"
	"github.com/fundboard/fundboard/internal/logger"
	"github.com/fundboard/fundboard/internal/metrics"
	"github.com/fundboard/fundboard/internal/relay"
	"github.com/fundboard/fundboard/internal/synthetic"
	"go.uber.org/zap"
)

// setup loads and validates the configuration and builds the logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg := config.Defaults()
	if cfgFile != "" {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}

	log, err := logger.New(debug || cfg.Server.Mode == "debug")
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	if cfgFile == "" {
		log.Warn("no config file specified, using defaults")
	}
	return cfg, log, nil
}

// pipeline holds the wired components shared by the commands.
type pipeline struct {
	direct  *relay.Direct
	service *dashboard.Service
}

// newDirect builds the fetcher that talks to the upstream itself.
func newDirect(cfg *config.Config, log *zap.Logger, reg *metrics.Registry) *relay.Direct {
	return relay.NewDirect(cfg.Upstream.Domain,
		relay.WithTimeout(cfg.Upstream.Timeout),
		relay.WithRateLimit(cfg.Upstream.RateLimit, cfg.Upstream.Burst),
		relay.WithMaxBodyBytes(cfg.Relay.MaxBodyBytes),
		relay.WithLogger(log),
		relay.WithMetrics(reg),
	)
}

// buildPipeline wires the dashboard service. The relay mode decides whether
// the pipeline calls the upstream itself or goes through a deployed relay;
// the local /relay endpoint always uses the direct fetcher.
func buildPipeline(cfg *config.Config, log *zap.Logger, reg *metrics.Registry) *pipeline {
	direct := newDirect(cfg, log, reg)

	var fetcher relay.Fetcher = direct
	if cfg.Relay.Mode == config.RelayModeRemote {
		fetcher = relay.NewRemote(cfg.Relay.BaseURL, cfg.Upstream.Domain,
			relay.WithTimeout(cfg.Upstream.Timeout),
			relay.WithMaxBodyBytes(cfg.Relay.MaxBodyBytes),
			relay.WithLogger(log),
			relay.WithMetrics(reg),
		)
	}

	log.Info("upstream pipeline configured",
		zap.String("relay_mode", cfg.Relay.Mode),
		zap.String("domain", cfg.Upstream.Domain),
		zap.Duration("load_timeout", cfg.Upstream.LoadTimeout),
	)

	svc := dashboard.New(
		classifier.New(fetcher, cfg.Upstream.BaseURL, log, reg),
		aggregator.New(fetcher, cfg.Upstream.BaseURL, log, reg),
		synthetic.New(),
		log,
		reg,
		dashboard.WithLoadTimeout(cfg.Upstream.LoadTimeout),
	)

	return &pipeline{direct: direct, service: svc}
}
