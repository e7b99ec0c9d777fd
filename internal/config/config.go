package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"VRSentinel/internal/calculator"
	"VRSentinel/internal/model"
)

// Watchlist is a named group of symbols scored against one benchmark.
type Watchlist struct {
	Name      string                `yaml:"name"`
	Group     string                `yaml:"group"`
	Benchmark string                `yaml:"benchmark"`
	Symbols   []model.SymbolRequest `yaml:"symbols"`
}

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Providers   []string      `yaml:"providers"`
		FMPBaseURL  string        `yaml:"fmp_base_url"`
		FMPAPIKey   string        `yaml:"fmp_api_key"`
		HTTPTimeout time.Duration `yaml:"http_timeout"`
	} `yaml:"data_source"`
	Scoring struct {
		Benchmark       string        `yaml:"benchmark"`
		REITBenchmark   string        `yaml:"reit_benchmark"`
		LookbackYears   int           `yaml:"lookback_years"`
		MinObservations int           `yaml:"min_observations"`
		MaxConcurrency  int           `yaml:"max_concurrency"`
		TaskTimeout     time.Duration `yaml:"task_timeout"`
		WidenGraceDays  int           `yaml:"widen_grace_days"`
		InceptionDate   string        `yaml:"inception_date"`
		FridayPolicy    string        `yaml:"friday_policy"`
	} `yaml:"scoring"`
	Cache struct {
		Capacity int `yaml:"capacity"`
	} `yaml:"cache"`
	Schedule struct {
		Cron      string `yaml:"cron"`
		PruneCron string `yaml:"prune_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath    string `yaml:"sqlite_path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	MetricsAddr string      `yaml:"metrics_addr"`
	Watchlists  []Watchlist `yaml:"watchlists"`
	Proxy       string      `yaml:"proxy"`
}

// Load reads config from a YAML file, loads .env if present, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional; real environment variables take precedence over it.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("FMP_API_KEY"); v != "" {
		c.DataSource.FMPAPIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("VR_CRON"); v != "" {
		c.Schedule.Cron = v
	}
	if v := os.Getenv("VR_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("VR_MAX_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("VR_MAX_CONCURRENCY: %w", err)
		}
		c.Scoring.MaxConcurrency = n
	}
	if v := os.Getenv("VR_TASK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("VR_TASK_TIMEOUT: %w", err)
		}
		c.Scoring.TaskTimeout = d
	}
	return nil
}

func (c *Config) applyDefaults() {
	if len(c.DataSource.Providers) == 0 {
		c.DataSource.Providers = []string{"fmp", "yahoo"}
	}
	if c.DataSource.HTTPTimeout == 0 {
		c.DataSource.HTTPTimeout = 20 * time.Second
	}
	if c.Scoring.Benchmark == "" {
		c.Scoring.Benchmark = "SPY"
	}
	if c.Scoring.REITBenchmark == "" {
		c.Scoring.REITBenchmark = "VNQ"
	}
	if c.Scoring.LookbackYears == 0 {
		c.Scoring.LookbackYears = 5
	}
	if c.Scoring.MinObservations == 0 {
		c.Scoring.MinObservations = 150
	}
	if c.Scoring.MaxConcurrency == 0 {
		c.Scoring.MaxConcurrency = 8
	}
	if c.Scoring.TaskTimeout == 0 {
		c.Scoring.TaskTimeout = 30 * time.Second
	}
	if c.Scoring.WidenGraceDays == 0 {
		c.Scoring.WidenGraceDays = 60
	}
	if c.Scoring.InceptionDate == "" {
		c.Scoring.InceptionDate = "1900-01-01"
	}
	if c.Scoring.FridayPolicy == "" {
		c.Scoring.FridayPolicy = string(calculator.FridayPreviousOnFriday)
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 0 18 * * 1-5"
	}
	if c.Schedule.PruneCron == "" {
		c.Schedule.PruneCron = "0 0 3 * * *"
	}
	if c.Database.RetentionDays == 0 {
		c.Database.RetentionDays = 30
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	for i := range c.Watchlists {
		if c.Watchlists[i].Name == "" {
			c.Watchlists[i].Name = fmt.Sprintf("watchlist-%d", i+1)
		}
	}
}

// Inception parses the configured inception date.
func (c *Config) Inception() (time.Time, error) {
	return time.Parse("2006-01-02", c.Scoring.InceptionDate)
}

// Watchlist returns the watchlist named name, case-insensitively.
func (c *Config) Watchlist(name string) (Watchlist, bool) {
	for _, w := range c.Watchlists {
		if strings.EqualFold(w.Name, name) {
			return w, true
		}
	}
	return Watchlist{}, false
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	for _, p := range c.DataSource.Providers {
		switch p {
		case "fmp", "yahoo", "mock":
		default:
			return fmt.Errorf("data_source.providers: unknown provider %q", p)
		}
	}
	if c.Scoring.LookbackYears < 0 {
		return fmt.Errorf("scoring.lookback_years must be positive")
	}
	if c.Scoring.MinObservations < 2 {
		return fmt.Errorf("scoring.min_observations must be at least 2")
	}
	if c.Scoring.MaxConcurrency < 1 {
		return fmt.Errorf("scoring.max_concurrency must be at least 1")
	}
	if c.Scoring.TaskTimeout <= 0 {
		return fmt.Errorf("scoring.task_timeout must be positive")
	}
	if c.Cache.Capacity < 0 {
		return fmt.Errorf("cache.capacity must not be negative")
	}
	if _, err := c.Inception(); err != nil {
		return fmt.Errorf("scoring.inception_date: %w", err)
	}
	if _, err := calculator.ParseFridayPolicy(c.Scoring.FridayPolicy); err != nil {
		return fmt.Errorf("scoring.friday_policy: %w", err)
	}
	for _, w := range c.Watchlists {
		if len(w.Symbols) == 0 {
			return fmt.Errorf("watchlist %s has no symbols", w.Name)
		}
	}
	return nil
}

// ValidateServe checks the settings the scheduler daemon needs on top of Validate.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if len(c.Watchlists) == 0 {
		return fmt.Errorf("at least one watchlist is required")
	}
	return nil
}
