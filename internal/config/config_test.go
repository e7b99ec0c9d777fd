package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"fmp", "yahoo"}, cfg.DataSource.Providers)
	assert.Equal(t, "SPY", cfg.Scoring.Benchmark)
	assert.Equal(t, "VNQ", cfg.Scoring.REITBenchmark)
	assert.Equal(t, 5, cfg.Scoring.LookbackYears)
	assert.Equal(t, 150, cfg.Scoring.MinObservations)
	assert.Equal(t, 8, cfg.Scoring.MaxConcurrency)
	assert.Equal(t, 30*time.Second, cfg.Scoring.TaskTimeout)
	assert.Equal(t, 60, cfg.Scoring.WidenGraceDays)
	assert.Equal(t, "previous_on_friday", cfg.Scoring.FridayPolicy)
	assert.Equal(t, 0, cfg.Cache.Capacity)

	inception, err := cfg.Inception()
	require.NoError(t, err)
	assert.Equal(t, 1900, inception.Year())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
data_source:
  providers: [yahoo]
scoring:
  benchmark: QQQ
  task_timeout: 10s
  max_concurrency: 4
cache:
  capacity: 64
watchlists:
  - name: core
    symbols:
      - symbol: AAPL
        target_price: 250
      - symbol: MSFT
  - group: reits
    symbols:
      - symbol: O
`)
	t.Setenv("VR_MAX_CONCURRENCY", "2")
	t.Setenv("VR_TASK_TIMEOUT", "5s")
	t.Setenv("FMP_API_KEY", "k")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"yahoo"}, cfg.DataSource.Providers)
	assert.Equal(t, "QQQ", cfg.Scoring.Benchmark)
	assert.Equal(t, 2, cfg.Scoring.MaxConcurrency)
	assert.Equal(t, 5*time.Second, cfg.Scoring.TaskTimeout)
	assert.Equal(t, "k", cfg.DataSource.FMPAPIKey)
	assert.Equal(t, 64, cfg.Cache.Capacity)

	require.Len(t, cfg.Watchlists, 2)
	assert.Equal(t, "watchlist-2", cfg.Watchlists[1].Name)
	core, ok := cfg.Watchlist("CORE")
	require.True(t, ok)
	require.Len(t, core.Symbols, 2)
	require.NotNil(t, core.Symbols[0].TargetPrice)
	assert.Equal(t, 250.0, *core.Symbols[0].TargetPrice)
	assert.Nil(t, core.Symbols[1].TargetPrice)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("VR_TASK_TIMEOUT", "soon")
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VR_TASK_TIMEOUT")
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "scoring: [not, a, map"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown provider", func(c *Config) { c.DataSource.Providers = []string{"bloomberg"} }, "unknown provider"},
		{"min observations", func(c *Config) { c.Scoring.MinObservations = 1 }, "min_observations"},
		{"concurrency", func(c *Config) { c.Scoring.MaxConcurrency = -1 }, "max_concurrency"},
		{"inception", func(c *Config) { c.Scoring.InceptionDate = "yesterday" }, "inception_date"},
		{"friday policy", func(c *Config) { c.Scoring.FridayPolicy = "sometimes" }, "friday_policy"},
		{"cache", func(c *Config) { c.Cache.Capacity = -5 }, "cache.capacity"},
		{"empty watchlist", func(c *Config) { c.Watchlists = []Watchlist{{Name: "x"}} }, "no symbols"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateServe(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Telegram.BotToken = ""
	cfg.Telegram.ChatID = ""
	assert.ErrorContains(t, cfg.ValidateServe(), "bot_token")

	cfg.Telegram.BotToken = "t"
	cfg.Telegram.ChatID = "c"
	assert.ErrorContains(t, cfg.ValidateServe(), "watchlist")
}
