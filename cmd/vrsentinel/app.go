package main

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"VRSentinel/internal/batch"
	"VRSentinel/internal/calculator"
	"VRSentinel/internal/collector"
	"VRSentinel/internal/config"
	"VRSentinel/internal/logger"
	"VRSentinel/internal/metrics"
	"VRSentinel/internal/store"
)

// app is the wired set of components shared by run and serve.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	store    store.SeriesStore
	cache    *collector.SeriesCache
	orch     *batch.Orchestrator
}

func newApp(opts *rootOptions, serve bool) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.pretty {
		cfg.Log.Pretty = true
	}
	validate := cfg.Validate
	if serve {
		validate = cfg.ValidateServe
	}
	if err := validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	a := &app{cfg: cfg, log: log, registry: prometheus.NewRegistry()}
	a.metrics = metrics.New(a.registry)

	a.store = store.NewNoopStore()
	if cfg.Database.SQLitePath != "" {
		st, err := store.NewSQLiteStore(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite store failed, using noop")
		} else {
			a.store = st
		}
	}

	providers := make([]collector.PriceProvider, 0, len(cfg.DataSource.Providers))
	for _, name := range cfg.DataSource.Providers {
		switch name {
		case "fmp":
			if cfg.DataSource.FMPAPIKey == "" {
				log.Warn().Msg("fmp provider configured without FMP_API_KEY, skipping")
				continue
			}
			p := collector.NewFMPProvider(cfg.DataSource.FMPAPIKey, cfg.Proxy, cfg.DataSource.HTTPTimeout, log)
			if cfg.DataSource.FMPBaseURL != "" {
				p.BaseURL = cfg.DataSource.FMPBaseURL
			}
			providers = append(providers, p)
		case "yahoo":
			providers = append(providers, collector.NewYahooProvider(cfg.Proxy, cfg.DataSource.HTTPTimeout, log))
		case "mock":
			providers = append(providers, &collector.MockProvider{Price: 100})
		}
	}
	if len(providers) == 0 {
		a.store.Close()
		return nil, fmt.Errorf("no usable price provider configured")
	}
	chain := collector.NewChain(log.With().Str("component", "chain").Logger(), a.metrics, providers...)
	log.Info().Str("source", chain.Name()).Msg("price sources ready")

	a.cache, err = collector.NewSeriesCache(cfg.Cache.Capacity, a.store, a.metrics, log)
	if err != nil {
		a.store.Close()
		return nil, fmt.Errorf("init cache: %w", err)
	}

	inception, _ := cfg.Inception() // checked by Validate
	policy, _ := calculator.ParseFridayPolicy(cfg.Scoring.FridayPolicy)
	a.orch = batch.New(collector.NewSeriesProvider(chain, a.cache, log), batch.Config{
		MaxConcurrency:  cfg.Scoring.MaxConcurrency,
		TaskTimeout:     cfg.Scoring.TaskTimeout,
		LookbackYears:   cfg.Scoring.LookbackYears,
		MinObservations: cfg.Scoring.MinObservations,
		Benchmark:       cfg.Scoring.Benchmark,
		REITBenchmark:   cfg.Scoring.REITBenchmark,
		InceptionDate:   inception,
		WidenGrace:      time.Duration(cfg.Scoring.WidenGraceDays) * 24 * time.Hour,
		FridayPolicy:    policy,
	}, a.metrics, log)
	return a, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("close store")
	}
}
