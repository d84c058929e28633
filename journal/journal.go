package journal

import (
	"time"

	"github.com/rustyeddy/riskgate/pkg/id"
	"github.com/rustyeddy/riskgate/risk"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TradeRecord is one realized trade plus the ledger totals right after it.
type TradeRecord struct {
	TradeID    string
	Time       time.Time
	Strategy   string
	Profit     decimal.Decimal
	DailyPnL   decimal.Decimal
	MonthlyPnL decimal.Decimal
	TotalPnL   decimal.Decimal
	Capital    decimal.Decimal
	Drawdown   decimal.Decimal
	WinStreak  int
	LossStreak int
}

// DecisionRecord is a gate transition: a pause starting or clearing, or a halt.
type DecisionRecord struct {
	DecisionID string
	Time       time.Time
	Code       string
	Msg        string
	State      string
	PauseUntil time.Time
}

// CodeResumed marks a pause that cleared. Other codes are risk.Code values.
const CodeResumed = "RESUMED"

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordDecision(DecisionRecord) error
	Close() error
}

func TradeFromEvent(ev risk.Event) TradeRecord {
	s := ev.Snapshot
	return TradeRecord{
		TradeID:    id.At(ev.At),
		Time:       ev.At.UTC(),
		Strategy:   ev.Strategy.String(),
		Profit:     ev.Profit,
		DailyPnL:   s.DailyPnL,
		MonthlyPnL: s.MonthlyPnL,
		TotalPnL:   s.TotalPnL,
		Capital:    s.CurrentCapital,
		Drawdown:   s.CurrentDrawdown,
		WinStreak:  s.ConsecutiveWins,
		LossStreak: s.ConsecutiveLosses,
	}
}

func DecisionFromEvent(ev risk.Event) DecisionRecord {
	rec := DecisionRecord{
		DecisionID: id.At(ev.At),
		Time:       ev.At.UTC(),
		Code:       string(ev.Decision.Code),
		Msg:        ev.Decision.Msg,
		State:      ev.Snapshot.State.String(),
	}
	if ev.Kind == risk.EventResumed {
		// a re-armed pause in the same check is journaled by its own denial row
		rec.Code = CodeResumed
		rec.Msg = "pause expired"
		rec.State = risk.Active.String()
		return rec
	}
	if !ev.Decision.PauseUntil.IsZero() {
		rec.PauseUntil = ev.Decision.PauseUntil.UTC()
	}
	return rec
}

// Listener journals every trade and every gate transition. Repeated denials
// while already paused or halted are not written. Write failures are logged
// and never reach the engine.
func Listener(j Journal, log *zap.Logger) risk.Listener {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ev risk.Event) {
		switch ev.Kind {
		case risk.EventTrade:
			if err := j.RecordTrade(TradeFromEvent(ev)); err != nil {
				log.Error("journal trade", zap.Error(err))
			}
		case risk.EventDenied, risk.EventResumed:
			if !ev.Decision.Changed {
				return
			}
			if err := j.RecordDecision(DecisionFromEvent(ev)); err != nil {
				log.Error("journal decision", zap.Error(err))
			}
		}
	}
}
