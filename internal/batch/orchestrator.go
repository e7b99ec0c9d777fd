package batch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"VRSentinel/internal/calculator"
	"VRSentinel/internal/metrics"
	"VRSentinel/internal/model"
	"VRSentinel/internal/strategy"
)

// Fetcher supplies normalized price series and split events for a date range.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, []model.SplitEvent, error)
}

// Request is one batch invocation.
type Request struct {
	Symbols []model.SymbolRequest
	// Benchmark overrides the group-based benchmark selection when set.
	Benchmark string
	Group     string
	// End is the last day of the lookback window; zero means today.
	End             time.Time
	LookbackYears   int
	MinObservations int
}

// Orchestrator scores batches of symbols against one shared benchmark sample.
type Orchestrator struct {
	fetcher Fetcher
	cfg     Config
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

func New(fetcher Fetcher, cfg Config, m *metrics.Metrics, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		fetcher: fetcher,
		cfg:     cfg.withDefaults(),
		metrics: m,
		log:     log.With().Str("component", "batch").Logger(),
		now:     time.Now,
	}
}

// Config returns the effective configuration.
func (o *Orchestrator) Config() Config { return o.cfg }

// task carries the per-batch inputs shared read-only by every symbol task.
type task struct {
	start, end time.Time
	benchmark  string
	benchRets  model.ReturnSeries
	minObs     int
	log        zerolog.Logger
}

// Run scores every requested symbol. Per-symbol failures are recorded in the
// result; only a benchmark failure aborts the batch, as a *model.BenchmarkError.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*model.BatchResult, error) {
	began := time.Now()
	runID := uuid.NewString()
	log := o.log.With().Str("run_id", runID).Logger()

	symbols := NormalizeSymbols(req.Symbols)
	end := req.End
	if end.IsZero() {
		end = o.now()
	}
	end = model.Day(end)
	lookback := req.LookbackYears
	if lookback <= 0 {
		lookback = o.cfg.LookbackYears
	}
	minObs := req.MinObservations
	if minObs <= 0 {
		minObs = o.cfg.MinObservations
	}

	t := task{
		start:     end.AddDate(-lookback, 0, 0),
		end:       end,
		benchmark: strategy.PickBenchmark(req.Benchmark, req.Group, o.cfg.Benchmark, o.cfg.REITBenchmark),
		minObs:    minObs,
		log:       log,
	}
	log.Info().Int("symbols", len(symbols)).Str("benchmark", t.benchmark).
		Time("start", t.start).Time("end", t.end).Msg("batch started")

	benchRets, err := o.benchmarkReturns(ctx, t)
	if err != nil {
		log.Error().Err(err).Str("benchmark", t.benchmark).Msg("benchmark unavailable, aborting batch")
		o.metrics.ObserveBatch(time.Since(began))
		return nil, &model.BenchmarkError{Symbol: t.benchmark, Err: err}
	}
	t.benchRets = benchRets

	result := &model.BatchResult{
		RunID:     runID,
		Benchmark: t.benchmark,
		Start:     t.start,
		End:       t.end,
		Order:     make([]string, len(symbols)),
		Results:   make(map[string]model.SymbolResult, len(symbols)),
	}
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(o.cfg.MaxConcurrency)
	for i, sr := range symbols {
		result.Order[i] = sr.Symbol
		g.Go(func() error {
			res := o.runTask(ctx, t, sr)
			mu.Lock()
			result.Results[sr.Symbol] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // tasks never return errors; failures live in the results

	result.Duration = time.Since(began)
	o.metrics.ObserveBatch(result.Duration)
	counts := result.Counts()
	log.Info().Int("scored", counts[model.KindNone]).Int("failed", len(symbols)-counts[model.KindNone]).
		Dur("duration", result.Duration).Msg("batch finished")
	return result, nil
}

// benchmarkReturns fetches and prepares the shared benchmark return series once.
func (o *Orchestrator) benchmarkReturns(ctx context.Context, t task) (model.ReturnSeries, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.TaskTimeout)
	defer cancel()

	series, splits, err := o.fetcher.Fetch(ctx, t.benchmark, t.start, t.end)
	if err != nil {
		return model.ReturnSeries{}, err
	}
	rets := calculator.BuildReturns(calculator.AdjustForSplits(series, splits), model.SplitDates(splits))
	if rets.Len() == 0 {
		return model.ReturnSeries{}, fmt.Errorf("%w: %s has %d usable bars", model.ErrDataUnavailable, t.benchmark, series.Len())
	}
	return rets, nil
}

// runTask runs one symbol under its own deadline. A task that outlives the deadline is
// abandoned and recorded as a timeout; its pool slot is released immediately.
func (o *Orchestrator) runTask(ctx context.Context, t task, sr model.SymbolRequest) model.SymbolResult {
	began := time.Now()
	taskCtx, cancel := context.WithTimeout(ctx, o.cfg.TaskTimeout)
	defer cancel()

	done := make(chan model.SymbolResult, 1)
	go func() { done <- o.score(taskCtx, t, sr) }()

	var res model.SymbolResult
	select {
	case res = <-done:
		if res.Err != nil && taskCtx.Err() != nil && !errors.Is(res.Err, model.ErrTimeout) {
			res.Err = fmt.Errorf("%w: %s: %w", model.ErrTimeout, sr.Symbol, res.Err)
		}
	case <-taskCtx.Done():
		res = model.SymbolResult{
			Symbol:         sr.Symbol,
			TargetPrice:    sr.TargetPrice,
			Classification: strategy.Unclassified(),
			Err:            fmt.Errorf("%w: %s exceeded %s", model.ErrTimeout, sr.Symbol, o.cfg.TaskTimeout),
		}
	}
	res.Duration = time.Since(began)

	kind := res.Kind()
	o.metrics.ObserveTask(string(kind), res.Duration)
	if kind != model.KindNone {
		t.log.Warn().Err(res.Err).Str("symbol", sr.Symbol).Str("kind", string(kind)).Msg("symbol not scored")
	} else {
		t.log.Debug().Str("symbol", sr.Symbol).Float64("vr", res.Metrics.VR).Dur("took", res.Duration).Msg("symbol scored")
	}
	return res
}

// score runs fetch, adjust, returns, align, ratios and VR for one symbol.
func (o *Orchestrator) score(ctx context.Context, t task, sr model.SymbolRequest) model.SymbolResult {
	res := model.SymbolResult{
		Symbol:         sr.Symbol,
		TargetPrice:    sr.TargetPrice,
		Classification: strategy.Unclassified(),
	}

	series, splits, err := o.fetchAsset(ctx, t, sr.Symbol)
	if err != nil {
		res.Err = err
		return res
	}
	res.Snapshot = calculator.BuildSnapshot(series, sr.TargetPrice, t.end, o.cfg.FridayPolicy)

	adj := calculator.AdjustForSplits(series, splits)
	rets := calculator.BuildReturns(adj, model.SplitDates(splits))
	sample := calculator.Align(rets, t.benchRets)

	ratios, err := calculator.ComputeRatios(sample, t.minObs)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", sr.Symbol, err)
		return res
	}
	vr := calculator.ScoreVR(ratios.DERI, ratios.MEVAR)
	if math.IsNaN(vr) || math.IsInf(vr, 0) {
		res.Err = fmt.Errorf("%w: %s: vr undefined", model.ErrComputation, sr.Symbol)
		return res
	}

	res.Metrics = &model.RiskMetrics{
		Symbol:     sr.Symbol,
		Benchmark:  t.benchmark,
		DERI:       ratios.DERI,
		MEVAR:      ratios.MEVAR,
		VR:         vr,
		SampleSize: sample.Len(),
	}
	res.Classification = strategy.Classify(ratios.DERI, ratios.MEVAR)
	return res
}

// fetchAsset fetches the lookback window and widens it to the inception date when
// the window has no data or starts later than the grace period allows.
func (o *Orchestrator) fetchAsset(ctx context.Context, t task, symbol string) (model.PriceSeries, []model.SplitEvent, error) {
	series, splits, err := o.fetcher.Fetch(ctx, symbol, t.start, t.end)
	widen := errors.Is(err, model.ErrDataUnavailable) ||
		(err == nil && series.First().After(t.start.Add(o.cfg.WidenGrace)))
	if !widen || ctx.Err() != nil || !o.cfg.InceptionDate.Before(t.start) {
		return series, splits, err
	}

	t.log.Debug().Str("symbol", symbol).Time("from", o.cfg.InceptionDate).Msg("widening range to inception")
	wide, wideSplits, werr := o.fetcher.Fetch(ctx, symbol, o.cfg.InceptionDate, t.end)
	switch {
	case werr == nil:
		return wide, wideSplits, nil
	case err == nil:
		return series, splits, nil
	default:
		return model.PriceSeries{}, nil, err
	}
}
