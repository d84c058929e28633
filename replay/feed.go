package replay

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rustyeddy/riskgate/risk"
	"github.com/shopspring/decimal"
)

// Row is one realized trade outcome to push through the gate.
type Row struct {
	Line     int
	Time     time.Time
	Strategy risk.Strategy
	BaseSize decimal.Decimal // zero when the column is empty
	Profit   decimal.Decimal
}

// Feed reads trade outcomes from CSV.
//
// Expected columns:
// time,strategy,base_size,profit
// Header allowed; an empty base_size means "use the configured base".
type Feed struct {
	src  string
	c    io.Closer
	r    *csv.Reader
	from time.Time
	to   time.Time

	line     int
	sawFirst bool
}

// NewFeed reads rows from r. Rows outside [from, to) are skipped; a zero
// bound is open.
func NewFeed(r io.Reader, from, to time.Time) *Feed {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	return &Feed{r: cr, from: from, to: to}
}

func OpenFeed(path string, from, to time.Time) (*Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	feed := NewFeed(f, from, to)
	feed.src = path
	feed.c = f
	return feed, nil
}

// Source is the path the feed was opened from, if any.
func (f *Feed) Source() string { return f.src }

func (f *Feed) Close() error {
	if f.c != nil {
		return f.c.Close()
	}
	return nil
}

func (f *Feed) Next() (Row, bool, error) {
	for {
		rec, err := f.r.Read()
		if err == io.EOF {
			return Row{}, false, nil
		}
		if err != nil {
			return Row{}, false, err
		}
		f.line, _ = f.r.FieldPos(0)
		if len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}

		if !f.sawFirst {
			f.sawFirst = true
			if strings.EqualFold(strings.TrimSpace(rec[0]), "time") {
				continue
			}
		}

		row, err := parseRow(rec)
		if err != nil {
			return Row{}, false, fmt.Errorf("line %d: %w", f.line, err)
		}
		row.Line = f.line
		if !inRange(row.Time, f.from, f.to) {
			continue
		}
		return row, true, nil
	}
}

func parseRow(rec []string) (Row, error) {
	if len(rec) != 4 {
		return Row{}, fmt.Errorf("expected 4 columns (time,strategy,base_size,profit), got %d", len(rec))
	}

	ts := strings.TrimSpace(rec[0])
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Row{}, fmt.Errorf("bad time %q: %w", ts, err)
	}

	s, err := risk.ParseStrategy(rec[1])
	if err != nil {
		return Row{}, err
	}

	var base decimal.Decimal
	if v := strings.TrimSpace(rec[2]); v != "" {
		base, err = decimal.NewFromString(v)
		if err != nil {
			return Row{}, fmt.Errorf("bad base_size %q: %w", v, err)
		}
		if base.Sign() < 0 {
			return Row{}, fmt.Errorf("bad base_size %q: must not be negative", v)
		}
	}

	profit, err := decimal.NewFromString(strings.TrimSpace(rec[3]))
	if err != nil {
		return Row{}, fmt.Errorf("bad profit %q: %w", rec[3], err)
	}

	return Row{Time: t, Strategy: s, BaseSize: base, Profit: profit}, nil
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}
