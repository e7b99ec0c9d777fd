package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"VRSentinel/internal/notifier"
	"VRSentinel/internal/scheduler"
	"VRSentinel/internal/server"
	"VRSentinel/internal/store"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run scheduled watchlist reports, Telegram commands and the HTTP listener",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(root, runOnStart || os.Getenv("RUN_ON_START") == "true")
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "score all watchlists immediately")
	return cmd
}

func serve(root *rootOptions, runOnStart bool) error {
	a, err := newApp(root, true)
	if err != nil {
		return err
	}
	defer a.Close()
	log := a.log
	cfg := a.cfg
	log.Info().Msg("VRSentinel starting")

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)

	sched := scheduler.NewScheduler(ctx, a.orch, tn, cfg.Watchlists, log)
	if pr, ok := a.store.(*store.SQLiteStore); ok {
		sched.Pruner = pr
		sched.Retention = time.Duration(cfg.Database.RetentionDays) * 24 * time.Hour
	}
	if err := sched.RegisterAll(cfg.Schedule.Cron, cfg.Schedule.PruneCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info().Msg("telegram polling started")

	var srv *server.Server
	if cfg.MetricsAddr != "" {
		srv = server.New(server.Config{Addr: cfg.MetricsAddr, Log: log, Runner: a.orch, Gatherer: a.registry})
		go func() {
			if err := srv.Start(); err != nil {
				log.Error().Err(err).Msg("http server failed")
			}
		}()
	}

	if runOnStart {
		log.Info().Msg("run on start enabled, scoring watchlists now")
		go sched.RunAllNow()
	}

	log.Info().Str("cron", cfg.Schedule.Cron).Msg("VRSentinel is running, press Ctrl+C to stop")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	if srv != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("http server shutdown")
		}
	}
	log.Info().Msg("VRSentinel stopped")
	return nil
}
