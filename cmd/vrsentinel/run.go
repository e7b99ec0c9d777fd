package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"VRSentinel/internal/batch"
	"VRSentinel/internal/model"
)

type runOptions struct {
	watchlist string
	benchmark string
	group     string
	end       string
	years     int
	minObs    int
	targets   []string
	format    string
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [SYMBOL...]",
		Short: "Score symbols once and print the results",
		Example: `  vrsentinel run AAPL MSFT NVDA
  vrsentinel run --group reits O PLD --format table
  vrsentinel run --watchlist core --target AAPL=250`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, root, opts, args)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.watchlist, "watchlist", "w", "", "score a configured watchlist")
	f.StringVarP(&opts.benchmark, "benchmark", "b", "", "benchmark symbol (default by group)")
	f.StringVarP(&opts.group, "group", "g", "", "symbol group used to pick the benchmark, e.g. reits")
	f.StringVar(&opts.end, "end", "", "last day of the lookback window, YYYY-MM-DD (default today)")
	f.IntVar(&opts.years, "years", 0, "lookback window in years (default from config)")
	f.IntVar(&opts.minObs, "min-obs", 0, "minimum paired observations (default from config)")
	f.StringSliceVarP(&opts.targets, "target", "t", nil, "target price as SYMBOL=PRICE, repeatable")
	f.StringVarP(&opts.format, "format", "o", "json", "output format: json or table")
	return cmd
}

func runBatch(cmd *cobra.Command, root *rootOptions, opts *runOptions, args []string) error {
	if opts.format != "json" && opts.format != "table" {
		return fmt.Errorf("unknown format %q", opts.format)
	}
	a, err := newApp(root, false)
	if err != nil {
		return err
	}
	defer a.Close()

	req, err := buildRequest(a, opts, args)
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := a.orch.Run(ctx, req)
	if err != nil {
		return err
	}
	if opts.format == "table" {
		return writeTable(cmd.OutOrStdout(), res)
	}
	return writeJSON(cmd.OutOrStdout(), res)
}

func buildRequest(a *app, opts *runOptions, args []string) (batch.Request, error) {
	req := batch.Request{
		Symbols:         batch.Symbols(args...),
		Benchmark:       opts.benchmark,
		Group:           opts.group,
		LookbackYears:   opts.years,
		MinObservations: opts.minObs,
	}
	if opts.watchlist != "" {
		w, ok := a.cfg.Watchlist(opts.watchlist)
		if !ok {
			return req, fmt.Errorf("unknown watchlist %q", opts.watchlist)
		}
		req.Symbols = append(append([]model.SymbolRequest{}, w.Symbols...), req.Symbols...)
		if req.Benchmark == "" {
			req.Benchmark = w.Benchmark
		}
		if req.Group == "" {
			req.Group = w.Group
		}
	}
	if len(req.Symbols) == 0 {
		return req, fmt.Errorf("no symbols given")
	}
	if opts.end != "" {
		end, err := time.Parse("2006-01-02", opts.end)
		if err != nil {
			return req, fmt.Errorf("--end: %w", err)
		}
		req.End = end
	}

	targets, err := parseTargets(opts.targets)
	if err != nil {
		return req, err
	}
	for i, r := range req.Symbols {
		if p, ok := targets[model.NormalizeSymbol(r.Symbol)]; ok {
			req.Symbols[i].TargetPrice = &p
		}
	}
	return req, nil
}

// parseTargets parses SYMBOL=PRICE pairs.
func parseTargets(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		sym, price, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("--target %q: expected SYMBOL=PRICE", pair)
		}
		p, err := strconv.ParseFloat(strings.TrimSpace(price), 64)
		if err != nil || p <= 0 {
			return nil, fmt.Errorf("--target %q: price must be a positive number", pair)
		}
		out[model.NormalizeSymbol(sym)] = p
	}
	return out, nil
}
