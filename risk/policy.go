package risk

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DailyWindow   = 24 * time.Hour
	MonthlyWindow = 30 * 24 * time.Hour

	// Cooldowns applied when the monthly and drawdown limits are breached.
	// The daily cooldown comes from Policy.PauseOnBreach.
	MonthlyBreachPause  = 30 * 24 * time.Hour
	DrawdownBreachPause = 7 * 24 * time.Hour
)

type Policy struct {
	TotalCapitalUSD decimal.Decimal // e.g. 250

	// Circuit breakers, as fractions of TotalCapitalUSD
	DailyMaxLossPct     decimal.Decimal // 0.05
	MonthlyMaxLossPct   decimal.Decimal // 0.15
	TotalMaxLossPct     decimal.Decimal // 0.40
	MaxDrawdownFromPeak decimal.Decimal // 0.25, fraction of peak capital

	PauseOnBreach time.Duration // 60m

	// Advisory only; surfaced in the snapshot, never blocks trading.
	MaxConsecutiveLosses int // 6

	// Dynamic sizing
	EnableDynamicSizing bool
	MinPositionPct      decimal.Decimal // 0.01
	MaxPositionPct      decimal.Decimal // 0.05
	LossSizingReduction decimal.Decimal // 0.20 per loss beyond the second
	WinSizingIncrease   decimal.Decimal // 0.10 per win beyond the third

	// Share of capital each strategy may commit. Missing entries get nothing.
	Allocation map[Strategy]decimal.Decimal
}

// DefaultPolicy mirrors the limits the bot has been running with.
func DefaultPolicy() Policy {
	return Policy{
		TotalCapitalUSD:      decimal.NewFromInt(250),
		DailyMaxLossPct:      decimal.RequireFromString("0.05"),
		MonthlyMaxLossPct:    decimal.RequireFromString("0.15"),
		TotalMaxLossPct:      decimal.RequireFromString("0.40"),
		MaxDrawdownFromPeak:  decimal.RequireFromString("0.25"),
		PauseOnBreach:        60 * time.Minute,
		MaxConsecutiveLosses: 6,
		EnableDynamicSizing:  true,
		MinPositionPct:       decimal.RequireFromString("0.01"),
		MaxPositionPct:       decimal.RequireFromString("0.05"),
		LossSizingReduction:  decimal.RequireFromString("0.20"),
		WinSizingIncrease:    decimal.RequireFromString("0.10"),
		Allocation: map[Strategy]decimal.Decimal{
			SmartMoney: decimal.RequireFromString("0.60"),
			Arbitrage:  decimal.RequireFromString("0.20"),
			DipArb:     decimal.RequireFromString("0.10"),
			Direct:     decimal.RequireFromString("0.10"),
		},
	}
}

func (p Policy) dailyLossLimit() decimal.Decimal {
	return p.TotalCapitalUSD.Mul(p.DailyMaxLossPct)
}

func (p Policy) monthlyLossLimit() decimal.Decimal {
	return p.TotalCapitalUSD.Mul(p.MonthlyMaxLossPct)
}

func (p Policy) totalLossLimit() decimal.Decimal {
	return p.TotalCapitalUSD.Mul(p.TotalMaxLossPct)
}
