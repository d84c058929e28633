package risk

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger accumulates realized P/L over daily, monthly and all-time windows
// and tracks the capital high-water mark. Peak and drawdown are refreshed on
// read by the gate, never by RecordPnL. It is not safe for concurrent use;
// Engine serializes access.
type Ledger struct {
	baseCapital decimal.Decimal

	dailyPnL   decimal.Decimal
	monthlyPnL decimal.Decimal
	totalPnL   decimal.Decimal

	peakCapital     decimal.Decimal
	currentDrawdown decimal.Decimal

	lastDailyResetAt   time.Time
	lastMonthlyResetAt time.Time
}

// NewLedger starts both windows at start with peak and current capital equal
// to baseCapital.
func NewLedger(baseCapital decimal.Decimal, start time.Time) *Ledger {
	return &Ledger{
		baseCapital:        baseCapital,
		peakCapital:        baseCapital,
		lastDailyResetAt:   start,
		lastMonthlyResetAt: start,
	}
}

// RollDailyIfDue zeroes the daily P/L once 24h have elapsed since the last
// reset. Several elapsed days count as a single reset. It returns the value
// that was discarded.
func (l *Ledger) RollDailyIfDue(now time.Time) (decimal.Decimal, bool) {
	if now.Sub(l.lastDailyResetAt) < DailyWindow {
		return decimal.Zero, false
	}
	prev := l.dailyPnL
	l.dailyPnL = decimal.Zero
	l.lastDailyResetAt = now
	return prev, true
}

// RollMonthlyIfDue is RollDailyIfDue for the fixed 30 day window.
func (l *Ledger) RollMonthlyIfDue(now time.Time) (decimal.Decimal, bool) {
	if now.Sub(l.lastMonthlyResetAt) < MonthlyWindow {
		return decimal.Zero, false
	}
	prev := l.monthlyPnL
	l.monthlyPnL = decimal.Zero
	l.lastMonthlyResetAt = now
	return prev, true
}

// RecordPnL adds a realized profit (negative for a loss) to every window.
// Peak and drawdown are left alone until the next RefreshCapitalMetrics, so a
// win given back before the gate looks does not leave a high-water mark.
func (l *Ledger) RecordPnL(profit decimal.Decimal) {
	l.dailyPnL = l.dailyPnL.Add(profit)
	l.monthlyPnL = l.monthlyPnL.Add(profit)
	l.totalPnL = l.totalPnL.Add(profit)
}

// RefreshCapitalMetrics raises the peak if current capital exceeds it and
// recomputes drawdown. It reports whether a new peak was set.
func (l *Ledger) RefreshCapitalMetrics() bool {
	current := l.CurrentCapital()

	newPeak := false
	if current.GreaterThan(l.peakCapital) {
		l.peakCapital = current
		newPeak = true
	}
	l.currentDrawdown = drawdown(l.peakCapital, current)
	return newPeak
}

// drawdown is the fractional decline of current from peak, floored at zero.
// A non-positive peak reports zero.
func drawdown(peak, current decimal.Decimal) decimal.Decimal {
	if peak.Sign() <= 0 {
		return decimal.Zero
	}
	dd := peak.Sub(current).Div(peak)
	if dd.IsNegative() {
		return decimal.Zero
	}
	return dd
}

func (l *Ledger) DailyPnL() decimal.Decimal        { return l.dailyPnL }
func (l *Ledger) MonthlyPnL() decimal.Decimal      { return l.monthlyPnL }
func (l *Ledger) TotalPnL() decimal.Decimal        { return l.totalPnL }
func (l *Ledger) PeakCapital() decimal.Decimal     { return l.peakCapital }
func (l *Ledger) CurrentDrawdown() decimal.Decimal { return l.currentDrawdown }

// CurrentCapital is base capital plus total P/L, including trades the gate
// has not looked at yet.
func (l *Ledger) CurrentCapital() decimal.Decimal { return l.baseCapital.Add(l.totalPnL) }

func (l *Ledger) LastDailyResetAt() time.Time   { return l.lastDailyResetAt }
func (l *Ledger) LastMonthlyResetAt() time.Time { return l.lastMonthlyResetAt }
