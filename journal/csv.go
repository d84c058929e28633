package journal

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"
)

var (
	tradesHeader    = []string{"trade_id", "time", "strategy", "profit", "daily_pnl", "monthly_pnl", "total_pnl", "capital", "drawdown", "win_streak", "loss_streak"}
	decisionsHeader = []string{"decision_id", "time", "code", "msg", "state", "pause_until"}
)

type CSVJournal struct {
	trades    *csv.Writer
	decisions *csv.Writer
	tf, df    io.WriteCloser
}

func NewCSV(tradesPath, decisionsPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	df, err := os.Create(decisionsPath)
	if err != nil {
		_ = tf.Close()
		return nil, err
	}
	return newCSVJournal(tf, df)
}

// newCSVJournal writes both headers. Both files are closed if either fails.
func newCSVJournal(tf, df io.WriteCloser) (*CSVJournal, error) {
	tw := csv.NewWriter(tf)
	dw := csv.NewWriter(df)

	if err := writeHeader(tw, tradesHeader); err != nil {
		_ = tf.Close()
		_ = df.Close()
		return nil, err
	}
	if err := writeHeader(dw, decisionsHeader); err != nil {
		_ = tf.Close()
		_ = df.Close()
		return nil, err
	}
	return &CSVJournal{tw, dw, tf, df}, nil
}

func writeHeader(w *csv.Writer, header []string) error {
	if err := w.Write(header); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.TradeID,
		t.Time.UTC().Format(time.RFC3339Nano),
		t.Strategy,
		t.Profit.String(),
		t.DailyPnL.String(),
		t.MonthlyPnL.String(),
		t.TotalPnL.String(),
		t.Capital.String(),
		t.Drawdown.String(),
		strconv.Itoa(t.WinStreak),
		strconv.Itoa(t.LossStreak),
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordDecision(d DecisionRecord) error {
	until := ""
	if !d.PauseUntil.IsZero() {
		until = d.PauseUntil.UTC().Format(time.RFC3339Nano)
	}
	err := j.decisions.Write([]string{
		d.DecisionID,
		d.Time.UTC().Format(time.RFC3339Nano),
		d.Code,
		d.Msg,
		d.State,
		until,
	})
	if err != nil {
		return err
	}

	j.decisions.Flush()
	return j.decisions.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.decisions.Flush()
	if err := j.decisions.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	if err := j.df.Close(); err != nil {
		return err
	}
	return nil
}
