// Package config loads and validates backtest configuration from YAML or
// JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/backtester/engine"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/strategy"
)

// Config represents the complete backtest configuration.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Engine   EngineConfig   `json:"engine" yaml:"engine"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

// AccountConfig contains account initialization parameters.
type AccountConfig struct {
	Cash     float64 `json:"cash" yaml:"cash"`
	Currency string  `json:"currency,omitempty" yaml:"currency,omitempty"`
}

// DataConfig says where the bars come from: a CSV (optionally .xz) file or
// a kline store database plus period.
type DataConfig struct {
	File   string `json:"file,omitempty" yaml:"file,omitempty"`
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	Period string `json:"period,omitempty" yaml:"period,omitempty"`
	Symbol string `json:"symbol" yaml:"symbol"`
	Start  string `json:"start,omitempty" yaml:"start,omitempty"`
	End    string `json:"end,omitempty" yaml:"end,omitempty"`
}

// StrategyConfig names a registered strategy.
type StrategyConfig struct {
	Name   string         `json:"name" yaml:"name"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// EngineConfig contains simulation parameters.
type EngineConfig struct {
	CommissionRate float64 `json:"commission_rate" yaml:"commission_rate"`
	SlippageBPS    float64 `json:"slippage_bps" yaml:"slippage_bps"`
	BatchSize      int     `json:"batch_size,omitempty" yaml:"batch_size,omitempty"`
	PeriodsPerYear float64 `json:"periods_per_year,omitempty" yaml:"periods_per_year,omitempty"`
	RiskFree       float64 `json:"risk_free,omitempty" yaml:"risk_free,omitempty"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file. YAML is tried first, JSON
// as a fallback.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if yerr := yaml.Unmarshal(data, cfg); yerr != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", yerr)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on
// extension).
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Account.Cash <= 0 {
		return fmt.Errorf("account.cash must be positive")
	}
	if c.Data.File == "" && c.Data.DBPath == "" {
		return fmt.Errorf("data.file or data.db_path is required")
	}
	if c.Data.File != "" && c.Data.DBPath != "" {
		return fmt.Errorf("data.file and data.db_path are mutually exclusive")
	}
	if c.Data.DBPath != "" && c.Data.Period == "" {
		return fmt.Errorf("data.period is required when loading from a database")
	}
	if c.Data.Symbol == "" {
		return fmt.Errorf("data.symbol is required")
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if c.Engine.CommissionRate < 0 {
		return fmt.Errorf("engine.commission_rate must not be negative")
	}
	if c.Engine.SlippageBPS < 0 {
		return fmt.Errorf("engine.slippage_bps must not be negative")
	}
	if c.Engine.BatchSize < 0 {
		return fmt.Errorf("engine.batch_size must not be negative")
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}

	if _, _, err := c.dates(); err != nil {
		return err
	}
	return nil
}

// EngineConfig builds the engine configuration this file describes.
func (c *Config) EngineConfig() (engine.Config, error) {
	start, end, err := c.dates()
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		Start:          start,
		End:            end,
		Cash:           c.Account.Cash,
		CommissionRate: c.Engine.CommissionRate,
		SlippageBPS:    c.Engine.SlippageBPS,
		BatchSize:      c.Engine.BatchSize,
		PeriodsPerYear: c.Engine.PeriodsPerYear,
		RiskFree:       c.Engine.RiskFree,
	}, nil
}

// BuildStrategy instantiates the configured strategy from the registry.
func (c *Config) BuildStrategy() (strategy.Strategy, error) {
	return strategy.New(c.Strategy.Name)
}

func (c *Config) dates() (time.Time, time.Time, error) {
	var start, end time.Time
	var err error
	if c.Data.Start != "" {
		if start, err = market.ParseTime(c.Data.Start); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("data.start: %w", err)
		}
	}
	if c.Data.End != "" {
		if end, err = market.ParseTime(c.Data.End); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("data.end: %w", err)
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("data.end precedes data.start")
	}
	return start, end, nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Cash:     100000,
			Currency: "USD",
		},
		Data: DataConfig{
			File:   "./bars.csv",
			Symbol: "AAPL",
		},
		Strategy: StrategyConfig{
			Name: "sma-cross",
		},
		Engine: EngineConfig{
			CommissionRate: 0.0005,
			SlippageBPS:    1,
			PeriodsPerYear: 252,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./backtests.db",
		},
	}
}
