package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestSaveAndLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backtest.yaml")

	cfg := Default()
	cfg.Account.Cash = 25000
	cfg.Data.Symbol = "MSFT"
	cfg.Engine.SlippageBPS = 2.5
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 25000.0, loaded.Account.Cash)
	assert.Equal(t, "MSFT", loaded.Data.Symbol)
	assert.Equal(t, 2.5, loaded.Engine.SlippageBPS)
}

func TestSaveAndLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backtest.json")

	cfg := Default()
	cfg.Journal = JournalConfig{Type: "csv", TradesFile: "t.csv", EquityFile: "e.csv"}
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "csv", loaded.Journal.Type)
	assert.Equal(t, "t.csv", loaded.Journal.TradesFile)
}

func TestLoadRawYAML(t *testing.T) {
	raw := `
account:
  cash: 5000
data:
  db_path: ./klines.db
  period: 1d
  symbol: AAPL
  start: 2024-01-01
  end: 2024-06-30
strategy:
  name: sma-cross
engine:
  commission_rate: 0.001
journal:
  type: none
`
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, cfg.Account.Cash)
	assert.Equal(t, "1d", cfg.Data.Period)

	ec, err := cfg.EngineConfig()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ec.Start)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), ec.End)
	assert.Equal(t, 0.001, ec.CommissionRate)
}

func TestValidateRejections(t *testing.T) {
	base := func() *Config { return Default() }

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero cash", func(c *Config) { c.Account.Cash = 0 }},
		{"no data source", func(c *Config) { c.Data.File = "" }},
		{"both data sources", func(c *Config) { c.Data.DBPath = "x.db"; c.Data.Period = "1d" }},
		{"db without period", func(c *Config) { c.Data.File = ""; c.Data.DBPath = "x.db" }},
		{"no symbol", func(c *Config) { c.Data.Symbol = "" }},
		{"no strategy", func(c *Config) { c.Strategy.Name = "" }},
		{"negative commission", func(c *Config) { c.Engine.CommissionRate = -1 }},
		{"bad journal type", func(c *Config) { c.Journal.Type = "postgres" }},
		{"csv journal without files", func(c *Config) { c.Journal = JournalConfig{Type: "csv"} }},
		{"bad start date", func(c *Config) { c.Data.Start = "not-a-date" }},
		{"end before start", func(c *Config) { c.Data.Start = "2024-06-01"; c.Data.End = "2024-01-01" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestBuildStrategy(t *testing.T) {
	cfg := Default()
	strat, err := cfg.BuildStrategy()
	require.NoError(t, err)
	assert.NotNil(t, strat)

	cfg.Strategy.Name = "no-such-strategy"
	_, err = cfg.BuildStrategy()
	assert.Error(t, err)
}
