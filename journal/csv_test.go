package journal

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVJournalHeaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	decisionsPath := filepath.Join(dir, "decisions.csv")

	j, err := NewCSV(tradesPath, decisionsPath)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	assert.Equal(t, [][]string{tradesHeader}, readCSV(t, tradesPath))
	assert.Equal(t, [][]string{decisionsHeader}, readCSV(t, decisionsPath))
}

func TestCSVJournalRecord(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	decisionsPath := filepath.Join(dir, "decisions.csv")

	j, err := NewCSV(tradesPath, decisionsPath)
	require.NoError(t, err)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, j.RecordTrade(sampleTrade("T1", at, "-5")))
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
		Time:       at,
		Code:       "HALTED",
		State:      "HALTED",
	}))
	require.NoError(t, j.Close())

	trades := readCSV(t, tradesPath)
	require.Len(t, trades, 2)
	assert.Equal(t, []string{
		"T1", "2026-01-02T03:04:05Z", "arbitrage", "-5",
		"-12.5", "-12.5", "-12.5", "237.5", "0.05", "0", "3",
	}, trades[1])

	decisions := readCSV(t, decisionsPath)
	require.Len(t, decisions, 3)
	assert.Equal(t, []string{
		"D1", "2026-01-02T03:04:05Z", "DAILY_LOSS_LIMIT",
		"daily pnl -15.00 <= limit -12.50", "PAUSED", "2026-01-02T04:04:05Z",
	}, decisions[1])
	assert.Equal(t, "", decisions[2][5])
}

type headerFile struct {
	failWrite bool
	closed    bool
}

func (f *headerFile) Write(p []byte) (int, error) {
	if f.failWrite {
		return 0, errors.New("no space left on device")
	}
	return len(p), nil
}

func (f *headerFile) Close() error {
	f.closed = true
	return nil
}

func TestCSVJournalHeaderErrorClosesFiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		tradesFail    bool
		decisionsFail bool
	}{
		{name: "trades header", tradesFail: true},
		{name: "decisions header", decisionsFail: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tf := &headerFile{failWrite: tt.tradesFail}
			df := &headerFile{failWrite: tt.decisionsFail}

			j, err := newCSVJournal(tf, df)
			require.Error(t, err)
			assert.Nil(t, j)
			assert.True(t, tf.closed)
			assert.True(t, df.closed)
		})
	}
}

func TestNewCSVDecisionsPathIsDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := NewCSV(filepath.Join(dir, "trades.csv"), dir)
	require.Error(t, err)
}
