package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, time, strategy, profit, daily_pnl, monthly_pnl, total_pnl, capital, drawdown, win_streak, loss_streak)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Time.UTC(), t.Strategy, t.Profit.String(),
		t.DailyPnL.String(), t.MonthlyPnL.String(), t.TotalPnL.String(),
		t.Capital.String(), t.Drawdown.String(), t.WinStreak, t.LossStreak,
	)
	return err
}

func (j *SQLite) RecordDecision(d DecisionRecord) error {
	var until interface{}
	if !d.PauseUntil.IsZero() {
		until = d.PauseUntil.UTC()
	}
	_, err := j.db.Exec(`
		INSERT INTO decisions
		(decision_id, time, code, msg, state, pause_until)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.DecisionID, d.Time.UTC(), d.Code, d.Msg, d.State, until,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func nullTime(nt sql.NullTime) time.Time {
	if !nt.Valid {
		return time.Time{}
	}
	return nt.Time
}
