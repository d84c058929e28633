package metrics

import (
	"github.com/rustyeddy/riskgate/risk"
)

// Observe updates the series from an engine event. It has the shape of a
// risk.Listener and is meant to be installed with risk.WithListener.
func (c *Collector) Observe(ev risk.Event) {
	switch ev.Kind {
	case risk.EventTrade:
		c.Trades.WithLabelValues(ev.Strategy.String()).Inc()
		if st, ok := ev.Snapshot.Strategies[ev.Strategy]; ok {
			c.StrategyPnL.WithLabelValues(ev.Strategy.String()).Set(st.Profit.InexactFloat64())
		}
	case risk.EventDenied:
		c.Denials.WithLabelValues(string(ev.Decision.Code)).Inc()
	case risk.EventResumed:
		c.Resumes.Inc()
	}
	c.SetSnapshot(ev.Snapshot)
}

// SetSnapshot copies the ledger, streak and gate fields of s into the gauges.
func (c *Collector) SetSnapshot(s risk.Snapshot) {
	c.DailyPnL.Set(s.DailyPnL.InexactFloat64())
	c.MonthlyPnL.Set(s.MonthlyPnL.InexactFloat64())
	c.TotalPnL.Set(s.TotalPnL.InexactFloat64())
	c.Capital.Set(s.CurrentCapital.InexactFloat64())
	c.PeakCapital.Set(s.PeakCapital.InexactFloat64())
	c.Drawdown.Set(s.CurrentDrawdown.InexactFloat64())
	c.ConsecutiveWins.Set(float64(s.ConsecutiveWins))
	c.ConsecutiveLosses.Set(float64(s.ConsecutiveLosses))
	c.Paused.Set(boolGauge(s.IsPaused))
	c.Halted.Set(boolGauge(s.PermanentlyHalted))
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
