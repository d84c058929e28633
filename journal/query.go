package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const tradeColumns = `trade_id, time, strategy, profit, daily_pnl, monthly_pnl, total_pnl, capital, drawdown, win_streak, loss_streak`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(s scanner) (TradeRecord, error) {
	var rec TradeRecord
	err := s.Scan(
		&rec.TradeID,
		&rec.Time,
		&rec.Strategy,
		&rec.Profit,
		&rec.DailyPnL,
		&rec.MonthlyPnL,
		&rec.TotalPnL,
		&rec.Capital,
		&rec.Drawdown,
		&rec.WinStreak,
		&rec.LossStreak,
	)
	return rec, err
}

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`SELECT `+tradeColumns+` FROM trades WHERE trade_id = ?`, tradeID)

	rec, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTradesBetween returns trades whose time is within [start, end).
func (j *SQLite) ListTradesBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`SELECT `+tradeColumns+` FROM trades
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, trade_id ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDecisionsBetween returns gate transitions within [start, end).
func (j *SQLite) ListDecisionsBetween(start, end time.Time) ([]DecisionRecord, error) {
	rows, err := j.db.Query(`
		SELECT decision_id, time, code, msg, state, pause_until
		FROM decisions
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, decision_id ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DecisionRecord
	for rows.Next() {
		var (
			rec   DecisionRecord
			until sql.NullTime
		)
		if err := rows.Scan(&rec.DecisionID, &rec.Time, &rec.Code, &rec.Msg, &rec.State, &until); err != nil {
			return nil, err
		}
		rec.PauseUntil = nullTime(until)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
