package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kissncome-byte/stock-app/internal/decision"
)

// Config represents the application configuration
type Config struct {
	FinMind FinMindConfig           `yaml:"finmind"`
	Quote   QuoteConfig             `yaml:"quote"`
	Market  MarketConfig            `yaml:"market"`
	Risk    decision.RiskParameters `yaml:"risk"`
	Gates   decision.Thresholds     `yaml:"gates"`
	Scanner ScannerConfig           `yaml:"scanner"`
	Journal JournalConfig           `yaml:"journal"`
}

// FinMindConfig holds the historical-bar provider settings.
type FinMindConfig struct {
	Token     string `yaml:"token"`
	RateLimit int    `yaml:"rate_limit"` // requests per minute
	StartDate string `yaml:"start_date"` // first bar to request, YYYY-MM-DD
}

// QuoteConfig holds the live-quote feed settings.
type QuoteConfig struct {
	RateLimit int           `yaml:"rate_limit"`
	Timeout   time.Duration `yaml:"timeout"`
}

// MarketConfig holds exchange unit conventions. SharesPerLot is an
// explicit setting rather than a literal: FinMind reports share counts,
// other feeds report board lots, and a silent mismatch scales every
// turnover and sizing figure by 1000.
type MarketConfig struct {
	SharesPerLot int     `yaml:"shares_per_lot"`
	TurnoverUnit float64 `yaml:"turnover_unit"` // 1e8 = hundred-million TWD
}

// ScannerConfig holds multi-symbol scan settings.
type ScannerConfig struct {
	Workers int           `yaml:"workers"`
	Timeout time.Duration `yaml:"timeout"`
}

// JournalConfig holds plan-journal settings.
type JournalConfig struct {
	Path    string `yaml:"path"`
	Enabled bool   `yaml:"enabled"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		FinMind: FinMindConfig{
			Token:     os.Getenv("FINMIND_TOKEN"),
			RateLimit: 60,
			StartDate: "2023-01-01",
		},
		Quote: QuoteConfig{
			RateLimit: 30,
			Timeout:   10 * time.Second,
		},
		Market: MarketConfig{
			SharesPerLot: 1000,
			TurnoverUnit: 1e8,
		},
		Risk: decision.RiskParameters{
			TotalCapital:    1000000,
			RiskPerTradePct: 1.0,
		},
		Gates: decision.DefaultThresholds(),
		Scanner: ScannerConfig{
			Workers: 5,
			Timeout: 60 * time.Second,
		},
		Journal: JournalConfig{
			Path:    "plans.db",
			Enabled: false,
		},
	}
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if file doesn't exist
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Override with environment variables if set
	if token := os.Getenv("FINMIND_TOKEN"); token != "" {
		cfg.FinMind.Token = token
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Market.SharesPerLot < 1 {
		return fmt.Errorf("shares_per_lot must be at least 1")
	}
	if c.Market.TurnoverUnit <= 0 {
		return fmt.Errorf("turnover_unit must be positive")
	}
	if c.Risk.TotalCapital <= 0 {
		return fmt.Errorf("total_capital must be positive")
	}
	if c.Risk.RiskPerTradePct <= 0 || c.Risk.RiskPerTradePct > 100 {
		return fmt.Errorf("risk_per_trade_pct must be in (0, 100]")
	}
	if c.Gates.MinHistoryBars < decision.PivotPeriod {
		return fmt.Errorf("min_history_bars must be at least %d", decision.PivotPeriod)
	}
	if c.Gates.SlippageTicks < 0 {
		return fmt.Errorf("slippage_ticks must not be negative")
	}
	switch c.Gates.SetupPolicy {
	case decision.SetupInformational, decision.SetupStrict:
	default:
		return fmt.Errorf("setup_policy must be %q or %q",
			decision.SetupInformational, decision.SetupStrict)
	}
	if c.Scanner.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	return nil
}
