package risk

import (
	"time"

	"github.com/shopspring/decimal"
)

type StrategyStats struct {
	Trades int             `json:"trades"`
	Profit decimal.Decimal `json:"profit"`
}

// Snapshot is a read-only copy of the engine state for dashboards and logs.
// CurrentCapital includes every recorded trade; PeakCapital is the mark as of
// the last gate evaluation, so it can trail CurrentCapital until the next Check.
type Snapshot struct {
	At time.Time `json:"at"`

	DailyPnL        decimal.Decimal `json:"dailyPnL"`
	MonthlyPnL      decimal.Decimal `json:"monthlyPnL"`
	TotalPnL        decimal.Decimal `json:"totalPnL"`
	CurrentCapital  decimal.Decimal `json:"currentCapital"`
	PeakCapital     decimal.Decimal `json:"peakCapital"`
	CurrentDrawdown decimal.Decimal `json:"currentDrawdown"`

	ConsecutiveWins    int  `json:"consecutiveWins"`
	ConsecutiveLosses  int  `json:"consecutiveLosses"`
	StreakLimitReached bool `json:"streakLimitReached"`

	State             GateState `json:"-"`
	IsPaused          bool      `json:"isPaused"`
	PauseUntil        time.Time `json:"pauseUntil"`
	PauseReason       Code      `json:"pauseReason,omitempty"`
	PermanentlyHalted bool      `json:"permanentlyHalted"`

	TradesExecuted int                        `json:"tradesExecuted"`
	Strategies     map[Strategy]StrategyStats `json:"strategies"`
}

// snapshot copies the current state. Caller holds e.mu.
func (e *Engine) snapshot(at time.Time) Snapshot {
	s := Snapshot{
		At:                at,
		DailyPnL:          e.ledger.DailyPnL(),
		MonthlyPnL:        e.ledger.MonthlyPnL(),
		TotalPnL:          e.ledger.TotalPnL(),
		CurrentCapital:    e.ledger.CurrentCapital(),
		PeakCapital:       e.ledger.PeakCapital(),
		CurrentDrawdown:   drawdown(e.ledger.PeakCapital(), e.ledger.CurrentCapital()),
		ConsecutiveWins:   e.streak.ConsecutiveWins(),
		ConsecutiveLosses: e.streak.ConsecutiveLosses(),
		State:             e.gate.state,
		IsPaused:          e.gate.state == Paused,
		PermanentlyHalted: e.gate.state == Halted,
		TradesExecuted:    e.trades,
		Strategies:        make(map[Strategy]StrategyStats, len(e.stats)),
	}
	if e.policy.MaxConsecutiveLosses > 0 {
		s.StreakLimitReached = s.ConsecutiveLosses >= e.policy.MaxConsecutiveLosses
	}
	if s.IsPaused {
		s.PauseUntil = e.gate.pauseUntil
		s.PauseReason = e.gate.pauseCode
	}
	for k, v := range e.stats {
		s.Strategies[k] = v
	}
	return s
}
