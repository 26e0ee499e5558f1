package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/xyproto/unzip"

	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/store"
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import bar CSV files into a kline store",
	Long: `Import reads OHLCV CSV files (plain, .xz compressed, or .zip archives of
CSVs) and stores the bars in the kline database. Bars already present are
skipped, so re-importing is safe.

The symbol defaults to the file name without extension; override it with
--symbol when importing a single instrument.

Example:
  backtester import -d klines.db -p 1m data/aapl-2024.csv.xz
  backtester import -d klines.db -p 1d data/sp500.zip`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

var (
	importDBPath  string
	importPeriod  string
	importSymbol  string
	importWorkers int
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importDBPath, "db", "d", "./klines.db", "path to kline store database")
	importCmd.Flags().StringVarP(&importPeriod, "period", "p", "1m", "period of the imported bars")
	importCmd.Flags().StringVarP(&importSymbol, "symbol", "i", "", "symbol override (default: file name)")
	importCmd.Flags().IntVarP(&importWorkers, "workers", "w", 4, "parallel file parsers")
}

type parsedFile struct {
	path string
	bars []market.Bar
	err  error
}

func runImport(cmd *cobra.Command, args []string) error {
	files, err := expandArchives(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no CSV files to import")
	}

	st, err := store.Open(importDBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	// Files parse in parallel; the single store writer keeps SQLite happy.
	paths := make(chan string)
	results := make(chan parsedFile)
	var wg sync.WaitGroup
	for w := 0; w < importWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				bars, err := market.LoadFile(path, symbolFor(path))
				results <- parsedFile{path: path, bars: bars, err: err}
			}
		}()
	}
	go func() {
		for _, f := range files {
			paths <- f
		}
		close(paths)
		wg.Wait()
		close(results)
	}()

	total, failed := 0, 0
	for res := range results {
		if res.err != nil {
			failed++
			fmt.Printf("FAIL  %s  (%v)\n", res.path, res.err)
			continue
		}
		n, err := st.SaveBars(importPeriod, res.bars)
		if err != nil {
			return fmt.Errorf("save %s: %w", res.path, err)
		}
		total += n
		fmt.Printf("OK    %s  (%d bars, %d new)\n", res.path, len(res.bars), n)
	}

	fmt.Printf("\nImported %d new bars into %s (%s)\n", total, importDBPath, importPeriod)
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed", failed)
	}
	return nil
}

// expandArchives replaces .zip arguments with the CSV files they contain,
// extracted next to a temp directory.
func expandArchives(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		if !strings.HasSuffix(strings.ToLower(arg), ".zip") {
			files = append(files, arg)
			continue
		}

		dest, err := os.MkdirTemp("", "backtester-import-*")
		if err != nil {
			return nil, err
		}
		if err := unzip.Extract(arg, dest); err != nil {
			return nil, fmt.Errorf("extract %s: %w", arg, err)
		}
		err = filepath.WalkDir(dest, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			lower := strings.ToLower(path)
			if !d.IsDir() && (strings.HasSuffix(lower, ".csv") || strings.HasSuffix(lower, ".csv.xz")) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func symbolFor(path string) string {
	if importSymbol != "" {
		return importSymbol
	}
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".xz")
	name = strings.TrimSuffix(name, ".csv")
	return strings.ToUpper(name)
}
