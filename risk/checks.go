package risk

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Code names the rule behind a denial.
type Code string

const (
	CodeNone             Code = ""
	CodeHalted           Code = "HALTED"
	CodePaused           Code = "PAUSED"
	CodeDailyLossLimit   Code = "DAILY_LOSS_LIMIT"
	CodeMonthlyLossLimit Code = "MONTHLY_LOSS_LIMIT"
	CodeDrawdownLimit    Code = "DRAWDOWN_LIMIT"
	CodeTotalLossLimit   Code = "TOTAL_LOSS_LIMIT"
)

// Codes lists every denial code.
func Codes() []Code {
	return []Code{
		CodeHalted, CodePaused, CodeDailyLossLimit,
		CodeMonthlyLossLimit, CodeDrawdownLimit, CodeTotalLossLimit,
	}
}

// GateState is the trading state of the gate. Halted is terminal.
type GateState int

const (
	Active GateState = iota
	Paused
	Halted
)

func (s GateState) String() string {
	switch s {
	case Active:
		return "ACTIVE"
	case Paused:
		return "PAUSED"
	case Halted:
		return "HALTED"
	}
	return fmt.Sprintf("GateState(%d)", int(s))
}

type Decision struct {
	At      time.Time
	Allowed bool
	Code    Code
	Msg     string

	// Set when the gate is paused after this decision.
	PauseUntil time.Time

	// Changed is true when this evaluation moved the gate to a new state
	// (a pause started, a pause cleared, or trading halted).
	Changed bool
	Resumed bool
}

type gate struct {
	state      GateState
	pauseUntil time.Time
	pauseCode  Code
}

func (d *Decision) deny(code Code, msg string) {
	d.Allowed = false
	d.Code = code
	d.Msg = msg
}

// evaluate runs the layered checks in order, least severe first, and stops at
// the first denial. Caller holds e.mu.
func (e *Engine) evaluate(now time.Time) Decision {
	d := Decision{At: now, Allowed: true}
	p := e.policy

	if e.gate.state == Halted {
		d.deny(CodeHalted, "trading permanently halted: total loss limit reached")
		return d
	}

	if prev, ok := e.ledger.RollDailyIfDue(now); ok {
		e.log.Info("daily pnl reset", zap.String("previous", prev.StringFixed(2)), zap.Time("at", now))
	}
	if prev, ok := e.ledger.RollMonthlyIfDue(now); ok {
		e.log.Info("monthly pnl reset", zap.String("previous", prev.StringFixed(2)), zap.Time("at", now))
	}
	e.ledger.RefreshCapitalMetrics()

	if e.gate.state == Paused {
		if now.Before(e.gate.pauseUntil) {
			d.deny(CodePaused, fmt.Sprintf("paused after %s until %s",
				e.gate.pauseCode, e.gate.pauseUntil.UTC().Format(time.RFC3339)))
			d.PauseUntil = e.gate.pauseUntil
			return d
		}
		e.log.Info("trading resumed after cooldown",
			zap.String("pause_code", string(e.gate.pauseCode)),
			zap.Time("pause_until", e.gate.pauseUntil))
		e.gate = gate{state: Active}
		d.Changed = true
		d.Resumed = true
	}

	l := e.ledger

	// Layer 1: daily loss
	if limit := p.dailyLossLimit(); l.DailyPnL().LessThanOrEqual(limit.Neg()) {
		d.deny(CodeDailyLossLimit, fmt.Sprintf("daily pnl %s <= limit -%s",
			l.DailyPnL().StringFixed(2), limit.StringFixed(2)))
		e.pause(&d, now.Add(p.PauseOnBreach))
		e.log.Warn("daily loss limit breached",
			zap.String("daily_pnl", l.DailyPnL().StringFixed(2)),
			zap.String("limit", limit.StringFixed(2)),
			zap.Duration("pause", p.PauseOnBreach))
		return d
	}

	// Layer 2: monthly loss
	if limit := p.monthlyLossLimit(); l.MonthlyPnL().LessThanOrEqual(limit.Neg()) {
		d.deny(CodeMonthlyLossLimit, fmt.Sprintf("monthly pnl %s <= limit -%s",
			l.MonthlyPnL().StringFixed(2), limit.StringFixed(2)))
		e.pause(&d, now.Add(MonthlyBreachPause))
		e.log.Error("monthly loss limit breached",
			zap.String("monthly_pnl", l.MonthlyPnL().StringFixed(2)),
			zap.String("limit", limit.StringFixed(2)),
			zap.Duration("pause", MonthlyBreachPause))
		return d
	}

	// Layer 3: drawdown from peak
	if l.CurrentDrawdown().GreaterThanOrEqual(p.MaxDrawdownFromPeak) {
		d.deny(CodeDrawdownLimit, fmt.Sprintf("drawdown %s%% >= limit %s%%",
			pct(l.CurrentDrawdown()), pct(p.MaxDrawdownFromPeak)))
		e.pause(&d, now.Add(DrawdownBreachPause))
		e.log.Error("maximum drawdown reached",
			zap.String("drawdown_pct", pct(l.CurrentDrawdown())),
			zap.String("limit_pct", pct(p.MaxDrawdownFromPeak)),
			zap.String("peak", l.PeakCapital().StringFixed(2)),
			zap.Duration("pause", DrawdownBreachPause))
		return d
	}

	// Layer 4: total loss, permanent
	if limit := p.totalLossLimit(); l.TotalPnL().LessThanOrEqual(limit.Neg()) {
		d.deny(CodeTotalLossLimit, fmt.Sprintf("total pnl %s <= limit -%s",
			l.TotalPnL().StringFixed(2), limit.StringFixed(2)))
		e.gate = gate{state: Halted}
		d.Changed = true
		e.log.Error("total loss limit reached, trading permanently halted",
			zap.String("total_pnl", l.TotalPnL().StringFixed(2)),
			zap.String("limit", limit.StringFixed(2)))
		return d
	}

	return d
}

func (e *Engine) pause(d *Decision, until time.Time) {
	e.gate = gate{state: Paused, pauseUntil: until, pauseCode: d.Code}
	d.PauseUntil = until
	d.Changed = true
}

func pct(x decimal.Decimal) string {
	return x.Mul(decimal.NewFromInt(100)).StringFixed(1)
}
