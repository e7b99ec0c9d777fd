package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"VRSentinel/internal/batch"
	"VRSentinel/internal/config"
	"VRSentinel/internal/model"
	"VRSentinel/internal/notifier"
)

// Runner scores one batch.
type Runner interface {
	Run(ctx context.Context, req batch.Request) (*model.BatchResult, error)
}

// Sender delivers formatted reports.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Pruner drops persisted series older than a cutoff.
type Pruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron       *cron.Cron
	Runner     Runner
	Notifier   Sender
	Watchlists []config.Watchlist
	Pruner     Pruner
	Retention  time.Duration
	Ctx        context.Context
	log        zerolog.Logger
	now        func() time.Time
}

// NewScheduler creates a new Scheduler. Overlapping runs of the same job are skipped.
func NewScheduler(ctx context.Context, runner Runner, sender Sender, watchlists []config.Watchlist, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		Runner:     runner,
		Notifier:   sender,
		Watchlists: watchlists,
		Ctx:        ctx,
		log:        log.With().Str("component", "scheduler").Logger(),
		now:        time.Now,
	}
}

// RegisterAll registers the watchlist batch and, when a pruner is set, store pruning.
func (s *Scheduler) RegisterAll(batchCron, pruneCron string) error {
	if _, err := s.Cron.AddFunc(batchCron, s.RunAllNow); err != nil {
		return fmt.Errorf("register batch task: %w", err)
	}
	if s.Pruner != nil && pruneCron != "" {
		if _, err := s.Cron.AddFunc(pruneCron, s.pruneTask); err != nil {
			return fmt.Errorf("register prune task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Int("watchlists", len(s.Watchlists)).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunAllNow scores every watchlist in order and sends one report per watchlist.
func (s *Scheduler) RunAllNow() {
	s.log.Info().Msg("running watchlists")
	for _, w := range s.Watchlists {
		if s.Ctx.Err() != nil {
			return
		}
		s.trySend(s.runWatchlist(s.Ctx, w))
	}
}

// runWatchlist scores one watchlist and returns the report text.
func (s *Scheduler) runWatchlist(ctx context.Context, w config.Watchlist) string {
	res, err := s.Runner.Run(ctx, batch.Request{
		Symbols:   w.Symbols,
		Benchmark: w.Benchmark,
		Group:     w.Group,
	})
	if err != nil {
		var be *model.BenchmarkError
		if errors.As(err, &be) {
			return notifier.FormatBenchmarkFailure(w.Name, err)
		}
		s.log.Error().Err(err).Str("watchlist", w.Name).Msg("batch failed")
		return fmt.Sprintf("❌ VR report %s failed: %v", w.Name, err)
	}
	return notifier.FormatBatchReport(w.Name, res)
}

func (s *Scheduler) pruneTask() {
	retention := s.Retention
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	n, err := s.Pruner.Prune(s.Ctx, s.now().Add(-retention))
	if err != nil {
		s.log.Error().Err(err).Msg("prune series store")
		return
	}
	s.log.Info().Int64("deleted", n).Msg("series store pruned")
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	switch strings.ToLower(fields[0]) {
	case "/vr":
		if len(fields) < 2 {
			return "usage: /vr SYMBOL [SYMBOL...]"
		}
		return s.runWatchlist(ctx, config.Watchlist{Name: "ad hoc", Symbols: batch.Symbols(fields[1:]...)})
	case "/run":
		if len(fields) != 2 {
			return "usage: /run WATCHLIST"
		}
		for _, w := range s.Watchlists {
			if strings.EqualFold(w.Name, fields[1]) {
				return s.runWatchlist(ctx, w)
			}
		}
		return fmt.Sprintf("unknown watchlist %q", fields[1])
	case "/watchlists":
		lists := make(map[string][]string, len(s.Watchlists))
		for _, w := range s.Watchlists {
			syms := make([]string, len(w.Symbols))
			for i, r := range w.Symbols {
				syms[i] = r.Symbol
			}
			lists[w.Name] = syms
		}
		return notifier.FormatWatchlists(lists)
	default:
		return "commands:\n• /vr SYMBOL [SYMBOL...]\n• /run WATCHLIST\n• /watchlists"
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
