//go:build blackbox

package blackbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeBars creates a CSV of gently trending daily bars.
func writeBars(t *testing.T, dir, name string, n int) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("datetime,open,high,low,close,volume\n")
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	price := 100.0
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%s,%.2f,%.2f,%.2f,%.2f,%d\n",
			day.Format("2006-01-02 15:04:05"),
			price, price+1, price-1, price+0.5, 1000+i)
		price += 0.5
		day = day.AddDate(0, 0, 1)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersion(t *testing.T) {
	out := run(t, "version")
	if !strings.Contains(out, "backtester version") {
		t.Fatalf("unexpected version output: %s", out)
	}
}

func TestStrategiesLists(t *testing.T) {
	out := run(t, "strategies")
	for _, want := range []string{"noop", "sma-cross"} {
		if !strings.Contains(out, want) {
			t.Fatalf("strategy %q missing from: %s", want, out)
		}
	}
}

func TestBacktestFromCSV(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeBars(t, dir, "aapl.csv", 120)

	out := run(t, "backtest",
		"-f", csvPath, "-i", "AAPL",
		"-s", "sma-cross", "--fast", "5", "--slow", "20",
		"--commission", "0.0005")

	if !strings.Contains(out, "Backtest Complete!") {
		t.Fatalf("missing completion banner:\n%s", out)
	}
	if !strings.Contains(out, "Total Return") {
		t.Fatalf("missing stats:\n%s", out)
	}
}

func TestImportResampleBacktestPipeline(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeBars(t, dir, "msft.csv", 90)
	dbPath := filepath.Join(dir, "klines.db")

	out := run(t, "import", "-d", dbPath, "-p", "1d", "-i", "MSFT", csvPath)
	if !strings.Contains(out, "90 new") {
		t.Fatalf("import did not report new bars:\n%s", out)
	}

	// Importing again adds nothing.
	out = run(t, "import", "-d", dbPath, "-p", "1d", "-i", "MSFT", csvPath)
	if !strings.Contains(out, "0 new") {
		t.Fatalf("re-import was not idempotent:\n%s", out)
	}

	out = run(t, "resample", "-d", dbPath, "-i", "MSFT", "--from", "1d", "--to", "1w")
	if !strings.Contains(out, "bars written") {
		t.Fatalf("resample reported nothing:\n%s", out)
	}

	out = run(t, "backtest", "-d", dbPath, "-p", "1d", "-i", "MSFT", "-s", "noop")
	if !strings.Contains(out, "Backtest Complete!") {
		t.Fatalf("backtest from store failed:\n%s", out)
	}
}

func TestConfigInitValidateRun(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeBars(t, dir, "spy.csv", 60)
	cfgPath := filepath.Join(dir, "backtest.yaml")
	journalPath := filepath.Join(dir, "runs.db")

	run(t, "config", "init", "-o", cfgPath)

	// Point the generated config at real data before validating.
	raw, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	cfg := string(raw)
	cfg = strings.ReplaceAll(cfg, "./bars.csv", csvPath)
	cfg = strings.ReplaceAll(cfg, "AAPL", "SPY")
	cfg = strings.ReplaceAll(cfg, "./backtests.db", journalPath)
	if err := os.WriteFile(cfgPath, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	out := run(t, "config", "validate", "-f", cfgPath)
	if !strings.Contains(out, "Configuration valid") {
		t.Fatalf("validate failed:\n%s", out)
	}

	out = run(t, "run", "-c", cfgPath)
	if !strings.Contains(out, "Backtest Complete!") {
		t.Fatalf("run failed:\n%s", out)
	}

	out = run(t, "journal", "runs", "-d", journalPath)
	if !strings.Contains(out, "SPY") {
		t.Fatalf("journal did not record the run:\n%s", out)
	}
}
