package batch

import (
	"time"

	"VRSentinel/internal/calculator"
	"VRSentinel/internal/strategy"
)

// Config controls how a batch is fetched and scored.
type Config struct {
	MaxConcurrency  int
	TaskTimeout     time.Duration
	LookbackYears   int
	MinObservations int
	Benchmark       string
	REITBenchmark   string
	// InceptionDate is the lower bound used when an asset's range is widened.
	InceptionDate time.Time
	// WidenGrace is how late the first bar may start before the range is widened.
	WidenGrace   time.Duration
	FridayPolicy calculator.FridayPolicy
}

func DefaultConfig() Config {
	return Config{
		MaxConcurrency:  8,
		TaskTimeout:     30 * time.Second,
		LookbackYears:   5,
		MinObservations: calculator.DefaultMinObservations,
		Benchmark:       strategy.DefaultBenchmark,
		REITBenchmark:   strategy.DefaultREITBenchmark,
		InceptionDate:   time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC),
		WidenGrace:      60 * 24 * time.Hour,
		FridayPolicy:    calculator.FridayPreviousOnFriday,
	}
}

// withDefaults fills zero values from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = d.MaxConcurrency
	}
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = d.TaskTimeout
	}
	if c.LookbackYears <= 0 {
		c.LookbackYears = d.LookbackYears
	}
	if c.MinObservations <= 0 {
		c.MinObservations = d.MinObservations
	}
	if c.Benchmark == "" {
		c.Benchmark = d.Benchmark
	}
	if c.REITBenchmark == "" {
		c.REITBenchmark = d.REITBenchmark
	}
	if c.InceptionDate.IsZero() {
		c.InceptionDate = d.InceptionDate
	}
	if c.WidenGrace <= 0 {
		c.WidenGrace = d.WidenGrace
	}
	if c.FridayPolicy == "" {
		c.FridayPolicy = d.FridayPolicy
	}
	return c
}
