package replay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rustyeddy/riskgate/journal"
	"github.com/rustyeddy/riskgate/pkg/id"
	"github.com/rustyeddy/riskgate/risk"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Driver pushes recorded trade outcomes through a risk engine using the row
// timestamps as the clock, so windows, pauses and halts play out exactly as
// they would have live.
type Driver struct {
	policy risk.Policy
	base   decimal.Decimal
	opts   []risk.Option
	log    *zap.Logger

	mu     sync.Mutex
	now    time.Time
	engine *risk.Engine
}

// NewDriver returns a driver that sizes rows without a base_size using base.
// opts are passed to the engine, which is created at the first row's time.
func NewDriver(p risk.Policy, base decimal.Decimal, log *zap.Logger, opts ...risk.Option) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{policy: p, base: base, opts: opts, log: log}
}

// Engine returns the engine built by Run, or nil before the first row.
func (d *Driver) Engine() *risk.Engine {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine
}

func (d *Driver) clock() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.now
}

func (d *Driver) setClock(t time.Time) {
	d.mu.Lock()
	d.now = t
	d.mu.Unlock()
}

func (d *Driver) start(t time.Time) *risk.Engine {
	opts := append([]risk.Option{risk.WithClock(d.clock), risk.WithLogger(d.log)}, d.opts...)
	e := risk.NewEngine(d.policy, t, opts...)
	d.mu.Lock()
	d.engine = e
	d.mu.Unlock()
	return e
}

// Run consumes feed until EOF or ctx is done. Rows must be in time order.
func (d *Driver) Run(ctx context.Context, feed *Feed) (*journal.Session, error) {
	sess := &journal.Session{
		Source:       feed.Source(),
		Created:      time.Now(),
		Denied:       make(map[string]int),
		StartCapital: d.policy.TotalCapitalUSD,
		EndCapital:   d.policy.TotalCapitalUSD,
		PeakCapital:  d.policy.TotalCapitalUSD,
	}

	var (
		e         *risk.Engine
		prev      time.Time
		streakHit bool
	)
	for {
		if err := ctx.Err(); err != nil {
			return sess, err
		}

		row, ok, err := feed.Next()
		if err != nil {
			return sess, err
		}
		if !ok {
			break
		}

		if e == nil {
			e = d.start(row.Time)
			sess.SessionID = id.At(row.Time)
			sess.Start = row.Time
		} else if row.Time.Before(prev) {
			return sess, fmt.Errorf("line %d: time %s is before previous row %s",
				row.Line, row.Time.Format(time.RFC3339), prev.Format(time.RFC3339))
		}
		prev = row.Time
		d.setClock(row.Time)
		sess.Rows++
		sess.End = row.Time

		dec := e.Check(row.Time)
		if !dec.Allowed {
			sess.Denied[string(dec.Code)]++
			if dec.Code == risk.CodeTotalLossLimit {
				sess.Notes = append(sess.Notes, fmt.Sprintf("trading halted at %s: %s",
					row.Time.UTC().Format(time.RFC3339), dec.Msg))
			}
			continue
		}

		base := row.BaseSize
		if base.IsZero() {
			base = d.base
		}
		size := e.Size(base, row.Time)
		snap := e.Record(row.Profit, row.Strategy)

		d.log.Debug("replayed trade",
			zap.Int("line", row.Line),
			zap.Stringer("strategy", row.Strategy),
			zap.String("size", size.String()),
			zap.String("profit", row.Profit.String()),
			zap.String("capital", snap.CurrentCapital.StringFixed(2)))

		sess.Traded++
		if row.Profit.Sign() >= 0 {
			sess.Wins++
		} else {
			sess.Losses++
		}
		if snap.CurrentDrawdown.GreaterThan(sess.MaxDrawdown) {
			sess.MaxDrawdown = snap.CurrentDrawdown
		}
		if snap.StreakLimitReached && !streakHit {
			sess.Notes = append(sess.Notes, fmt.Sprintf("%d consecutive losses reached at %s",
				snap.ConsecutiveLosses, row.Time.UTC().Format(time.RFC3339)))
			streakHit = true
		}
	}

	if e != nil {
		snap := e.Snapshot()
		sess.EndCapital = snap.CurrentCapital
		// the last trade has no following check to raise the peak
		sess.PeakCapital = decimal.Max(snap.PeakCapital, snap.CurrentCapital)
		sess.NetPL = snap.TotalPnL
		sess.Halted = snap.PermanentlyHalted
	}

	d.log.Info("replay finished",
		zap.String("source", sess.Source),
		zap.Int("rows", sess.Rows),
		zap.Int("traded", sess.Traded),
		zap.String("net_pl", sess.NetPL.StringFixed(2)),
		zap.Bool("halted", sess.Halted))
	return sess, nil
}
