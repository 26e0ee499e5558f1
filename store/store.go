// Package store keeps historical kline (candlestick) data in SQLite, one
// table per period ("klines_1m", "klines_1d", ...). It feeds backtests with
// bar series and can resample a finer period into a coarser one.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/backtester/market"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// ensureTable creates the period's klines table and its unique
// (symbol, datetime) index on first use.
func (s *Store) ensureTable(period string) (string, error) {
	table, err := tableName(period)
	if err != nil {
		return "", err
	}
	if _, err := s.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			symbol   TEXT      NOT NULL,
			datetime TIMESTAMP NOT NULL,
			open     REAL      NOT NULL,
			high     REAL      NOT NULL,
			low      REAL      NOT NULL,
			close    REAL      NOT NULL,
			volume   REAL      NOT NULL
		)`, table)); err != nil {
		return "", fmt.Errorf("store: ensure %s: %w", table, err)
	}
	if _, err := s.db.Exec(fmt.Sprintf(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_symbol_datetime
		ON %s (symbol, datetime)`, table, table)); err != nil {
		return "", fmt.Errorf("store: index %s: %w", table, err)
	}
	return table, nil
}

// SaveBars inserts bars into the period's table inside one transaction and
// returns the number of new rows. Bars already present (same symbol and
// timestamp) are skipped, so re-importing a file is harmless.
func (s *Store) SaveBars(period string, bars []market.Bar) (int, error) {
	table, err := s.ensureTable(period)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT OR IGNORE INTO %s
		(symbol, datetime, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, table))
	if err != nil {
		return 0, fmt.Errorf("store: prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, b := range bars {
		res, err := stmt.Exec(b.Symbol, b.Time.UTC(), b.Open, b.High, b.Low, b.Close, b.Volume)
		if err != nil {
			return 0, fmt.Errorf("store: insert %s @ %s: %w", b.Symbol, b.Time, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit: %w", err)
	}
	return inserted, nil
}

// LoadBars returns the symbol's bars for the period, time-ascending. Zero
// from/to leave that side unbounded.
func (s *Store) LoadBars(period, symbol string, from, to time.Time) ([]market.Bar, error) {
	table, err := s.ensureTable(period)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT symbol, datetime, open, high, low, close, volume
		FROM %s WHERE symbol = ?`, table)
	args := []any{symbol}
	if !from.IsZero() {
		query += " AND datetime >= ?"
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		query += " AND datetime <= ?"
		args = append(args, to.UTC())
	}
	query += " ORDER BY datetime ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query %s: %w", table, err)
	}
	defer rows.Close()

	var bars []market.Bar
	for rows.Next() {
		var b market.Bar
		if err := rows.Scan(&b.Symbol, &b.Time, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		b.Time = b.Time.UTC()
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// Symbols lists the distinct symbols stored for the period, sorted.
func (s *Store) Symbols(period string) ([]string, error) {
	table, err := s.ensureTable(period)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(fmt.Sprintf(
		"SELECT DISTINCT symbol FROM %s ORDER BY symbol", table))
	if err != nil {
		return nil, fmt.Errorf("store: symbols: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}

// Count returns the number of bars stored for the symbol and period.
func (s *Store) Count(period, symbol string) (int, error) {
	table, err := s.ensureTable(period)
	if err != nil {
		return 0, err
	}
	var n int
	err = s.db.QueryRow(fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE symbol = ?", table), symbol).Scan(&n)
	return n, err
}
