package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func sampleTrade(id string, at time.Time, profit string) TradeRecord {
	return TradeRecord{
		TradeID:    id,
		Time:       at,
		Strategy:   "arbitrage",
		Profit:     dec(profit),
		DailyPnL:   dec("-12.5"),
		MonthlyPnL: dec("-12.5"),
		TotalPnL:   dec("-12.5"),
		Capital:    dec("237.5"),
		Drawdown:   dec("0.05"),
		WinStreak:  0,
		LossStreak: 3,
	}
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('trades','decisions')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["trades"])
	assert.True(t, found["decisions"])
}

func TestSQLiteRecordTrade(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := sampleTrade("T1", at, "-0.1")
	require.NoError(t, j.RecordTrade(rec))
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var (
		tradeID  string
		ts       time.Time
		strategy string
		profit   string
		capital  string
		losses   int
	)
	err = db.QueryRow(`SELECT trade_id, time, strategy, profit, capital, loss_streak FROM trades LIMIT 1`).
		Scan(&tradeID, &ts, &strategy, &profit, &capital, &losses)
	require.NoError(t, err)

	assert.Equal(t, "T1", tradeID)
	assert.True(t, ts.Equal(at))
	assert.Equal(t, "arbitrage", strategy)
	assert.Equal(t, "-0.1", profit)
	assert.Equal(t, "237.5", capital)
	assert.Equal(t, 3, losses)
}

func TestSQLiteGetTrade(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	want := sampleTrade("T1", at, "1.23")
	require.NoError(t, j.RecordTrade(want))

	got, err := j.GetTrade("T1")
	require.NoError(t, err)
	assert.Equal(t, want.TradeID, got.TradeID)
	assert.True(t, got.Time.Equal(at))
	assert.True(t, want.Profit.Equal(got.Profit))
	assert.True(t, want.Capital.Equal(got.Capital))
	assert.True(t, want.Drawdown.Equal(got.Drawdown))
	assert.Equal(t, want.LossStreak, got.LossStreak)

	_, err = j.GetTrade("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteListTradesBetween(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	day := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordTrade(sampleTrade("A", day.Add(-time.Minute), "1")))
	require.NoError(t, j.RecordTrade(sampleTrade("C", day.Add(5*time.Hour), "3")))
	require.NoError(t, j.RecordTrade(sampleTrade("B", day, "2")))
	require.NoError(t, j.RecordTrade(sampleTrade("D", day.Add(24*time.Hour), "4")))

	got, err := j.ListTradesBetween(day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].TradeID)
	assert.Equal(t, "C", got[1].TradeID)
}

func TestSQLiteDecisions(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	at := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordDecision(DecisionRecord{
		DecisionID: "D1",
		Time:       at,
		Code:       "DAILY_LOSS_LIMIT",
		Msg:        "daily pnl -15.00 <= limit -12.50",
		State:      "PAUSED",
		PauseUntil: at.Add(time.Hour),
	}))
	require.NoError(t, j.RecordDecision(DecisionRecord{
		DecisionID: "D2",
		Time:       at.Add(2 * time.Hour),
		Code:       "TOTAL_LOSS_LIMIT",
		State:      "HALTED",
	}))

	got, err := j.ListDecisionsBetween(at, at.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "D1", got[0].DecisionID)
	assert.Equal(t, "PAUSED", got[0].State)
	assert.True(t, got[0].PauseUntil.Equal(at.Add(time.Hour)))

	assert.Equal(t, "TOTAL_LOSS_LIMIT", got[1].Code)
	assert.True(t, got[1].PauseUntil.IsZero())
}
