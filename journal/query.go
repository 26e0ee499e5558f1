package journal

import (
	"database/sql"
	"fmt"
)

// GetRun returns a single run summary by ID.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	var r RunRecord

	row := j.db.QueryRow(`
		SELECT run_id, created, strategy, symbol, dataset, start, end,
		       start_cash, end_cash, end_equity,
		       trades, wins, losses, win_rate, total_return, max_drawdown, sharpe
		FROM runs WHERE run_id = ?`, runID)

	err := row.Scan(
		&r.RunID, &r.Created, &r.Strategy, &r.Symbol, &r.Dataset, &r.Start, &r.End,
		&r.StartCash, &r.EndCash, &r.EndEquity,
		&r.Trades, &r.Wins, &r.Losses, &r.WinRate, &r.TotalReturn, &r.MaxDrawdown, &r.Sharpe,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunRecord{}, fmt.Errorf("run %q not found", runID)
		}
		return RunRecord{}, err
	}
	return r, nil
}

// ListTradesByRun returns a run's fills in time order.
func (j *SQLite) ListTradesByRun(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, order_id, symbol, side, price, size, commission, realized_pnl, time
		FROM trades
		WHERE run_id = ?
		ORDER BY time ASC, order_id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.RunID, &t.OrderID, &t.Symbol, &t.Side,
			&t.Price, &t.Size, &t.Commission, &t.RealizedPnL, &t.Time); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListEquityByRun returns a run's equity curve in time order.
func (j *SQLite) ListEquityByRun(runID string) ([]EquityRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, equity
		FROM equity
		WHERE run_id = ?
		ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityRecord
	for rows.Next() {
		var e EquityRecord
		if err := rows.Scan(&e.RunID, &e.Time, &e.Equity); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListRuns returns all run summaries, newest first.
func (j *SQLite) ListRuns() ([]RunRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, created, strategy, symbol, dataset, start, end,
		       start_cash, end_cash, end_equity,
		       trades, wins, losses, win_rate, total_return, max_drawdown, sharpe
		FROM runs
		ORDER BY created DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(
			&r.RunID, &r.Created, &r.Strategy, &r.Symbol, &r.Dataset, &r.Start, &r.End,
			&r.StartCash, &r.EndCash, &r.EndEquity,
			&r.Trades, &r.Wins, &r.Losses, &r.WinRate, &r.TotalReturn, &r.MaxDrawdown, &r.Sharpe,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
