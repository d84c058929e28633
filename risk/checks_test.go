package risk

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// loosePolicy disables every layer except the total-loss halt.
func loosePolicy() Policy {
	p := DefaultPolicy()
	p.DailyMaxLossPct = d("1")
	p.MonthlyMaxLossPct = d("1")
	p.MaxDrawdownFromPeak = d("1")
	return p
}

func TestCheckAllowsFreshEngine(t *testing.T) {
	t.Parallel()

	e := NewEngine(DefaultPolicy(), t0)
	dec := e.Check(t0)
	assert.True(t, dec.Allowed)
	assert.Equal(t, CodeNone, dec.Code)
	assert.False(t, dec.Changed)
}

func TestCheckDailyLimitPauses(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	e := NewEngine(DefaultPolicy(), t0, WithLogger(zap.New(core)))

	for i := 0; i < 3; i++ {
		e.Record(d("-5"), Arbitrage)
	}
	assertDec(t, "-15", e.Snapshot().DailyPnL)

	now := t0.Add(2 * time.Hour)
	dec := e.Check(now)
	assert.False(t, dec.Allowed)
	assert.Equal(t, CodeDailyLossLimit, dec.Code)
	assert.True(t, dec.Changed)
	assert.Equal(t, now.Add(60*time.Minute), dec.PauseUntil)

	snap := e.Snapshot()
	assert.True(t, snap.IsPaused)
	assert.Equal(t, now.Add(60*time.Minute), snap.PauseUntil)
	assert.Equal(t, CodeDailyLossLimit, snap.PauseReason)
	assert.False(t, snap.PermanentlyHalted)

	assert.Equal(t, 1, logs.FilterMessage("daily loss limit breached").Len())
}

func TestCheckDailyLimitBoundaryIsInclusive(t *testing.T) {
	t.Parallel()

	e := NewEngine(DefaultPolicy(), t0)
	e.Record(d("-12.49"), Direct)
	assert.True(t, e.CanTrade(t0))

	e.Record(d("-0.01"), Direct)
	dec := e.Check(t0)
	assert.False(t, dec.Allowed)
	assert.Equal(t, CodeDailyLossLimit, dec.Code)
}

func TestCheckPauseSelfClears(t *testing.T) {
	t.Parallel()

	e := NewEngine(DefaultPolicy(), t0)
	for i := 0; i < 3; i++ {
		e.Record(d("-5"), Arbitrage)
	}
	first := e.Check(t0)
	require.Equal(t, CodeDailyLossLimit, first.Code)
	until := first.PauseUntil

	dec := e.Check(until.Add(-time.Nanosecond))
	assert.False(t, dec.Allowed)
	assert.Equal(t, CodePaused, dec.Code)
	assert.False(t, dec.Changed)
	assert.Equal(t, until, dec.PauseUntil)

	// still inside the same day: resumes, then the daily layer trips again
	dec = e.Check(until)
	assert.True(t, dec.Resumed)
	assert.False(t, dec.Allowed)
	assert.Equal(t, CodeDailyLossLimit, dec.Code)
	assert.Equal(t, until.Add(60*time.Minute), dec.PauseUntil)

	// next day the window rolls and the re-evaluation passes
	dec = e.Check(t0.Add(24 * time.Hour))
	assert.True(t, dec.Resumed)
	assert.True(t, dec.Allowed)
	assert.False(t, e.Snapshot().IsPaused)
	assertDec(t, "0", e.Snapshot().DailyPnL)
	assertDec(t, "-15", e.Snapshot().MonthlyPnL)
}

func TestCheckMonthlyLimitPausesThirtyDays(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	p.DailyMaxLossPct = d("1")
	e := NewEngine(p, t0)

	e.Record(d("-40"), SmartMoney) // limit is 250 * 0.15 = 37.5
	now := t0.Add(time.Hour)
	dec := e.Check(now)
	assert.False(t, dec.Allowed)
	assert.Equal(t, CodeMonthlyLossLimit, dec.Code)
	assert.Equal(t, now.Add(30*24*time.Hour), dec.PauseUntil)
}

func TestCheckDailyReportedBeforeMonthly(t *testing.T) {
	t.Parallel()

	e := NewEngine(DefaultPolicy(), t0)
	e.Record(d("-40"), SmartMoney) // breaches both daily and monthly

	dec := e.Check(t0)
	assert.Equal(t, CodeDailyLossLimit, dec.Code)
	assert.Equal(t, t0.Add(time.Hour), dec.PauseUntil)
}

func TestCheckDrawdownPausesSevenDays(t *testing.T) {
	t.Parallel()

	e := NewEngine(DefaultPolicy(), t0)
	e.Record(d("150"), Arbitrage)
	require.True(t, e.CanTrade(t0)) // peak 400
	e.Record(d("-110"), Arbitrage)  // 290, drawdown 0.275

	dec := e.Check(t0)
	assert.False(t, dec.Allowed)
	assert.Equal(t, CodeDrawdownLimit, dec.Code)
	assert.Equal(t, t0.Add(7*24*time.Hour), dec.PauseUntil)

	snap := e.Snapshot()
	assertDec(t, "400", snap.PeakCapital)
	assertDec(t, "0.275", snap.CurrentDrawdown)
}

func TestCheckTotalLossHaltsPermanently(t *testing.T) {
	t.Parallel()

	e := NewEngine(loosePolicy(), t0)
	e.Record(d("-60"), Arbitrage)
	e.Record(d("-40"), DipArb)
	assertDec(t, "-100", e.Snapshot().TotalPnL)

	dec := e.Check(t0)
	assert.False(t, dec.Allowed)
	assert.Equal(t, CodeTotalLossLimit, dec.Code)
	assert.True(t, dec.Changed)
	assert.True(t, e.Snapshot().PermanentlyHalted)

	snap := e.Record(d("500"), Arbitrage)
	assert.True(t, snap.PermanentlyHalted)

	later := t0.Add(48 * time.Hour)
	for i := 0; i < 5; i++ {
		e.Record(d("100"), Direct)
		dec = e.Check(later.Add(time.Duration(i) * 24 * time.Hour))
		assert.False(t, dec.Allowed)
		assert.Equal(t, CodeHalted, dec.Code)
		assert.False(t, dec.Changed)
	}

	// halted checks have no side effects: windows were never rolled
	snap = e.Snapshot()
	assertDec(t, "900", snap.DailyPnL)
	assert.True(t, snap.PermanentlyHalted)
	assert.False(t, snap.IsPaused)
}

func TestCheckHaltNotReachedWhilePaused(t *testing.T) {
	t.Parallel()

	// with default limits the daily layer fires long before the total-loss one
	e := NewEngine(DefaultPolicy(), t0)
	e.Record(d("-100"), Arbitrage)

	dec := e.Check(t0)
	assert.Equal(t, CodeDailyLossLimit, dec.Code)
	assert.False(t, e.Snapshot().PermanentlyHalted)
}

func TestCheckPeakNeverDecreases(t *testing.T) {
	t.Parallel()

	e := NewEngine(loosePolicy(), t0)
	profits := []string{"20", "-5", "-30", "45", "1", "-60", "12", "-0.5", "80"}
	peak := e.Snapshot().PeakCapital
	now := t0
	for _, p := range profits {
		e.Record(d(p), Direct)
		now = now.Add(7 * time.Hour)
		e.Check(now)
		snap := e.Snapshot()
		assert.True(t, snap.PeakCapital.GreaterThanOrEqual(peak))
		assert.True(t, snap.PeakCapital.GreaterThanOrEqual(snap.CurrentCapital))
		peak = snap.PeakCapital
	}
}

func TestCheckPeakOnlyMovesAtCheck(t *testing.T) {
	t.Parallel()

	p := loosePolicy()
	p.MaxDrawdownFromPeak = d("0.25")

	tests := []struct {
		name     string
		batches  [][]string // each batch is recorded, then checked
		allowed  bool
		code     Code
		peak     string
		drawdown decimal.Decimal
	}{
		{
			name:     "win given back before check",
			batches:  [][]string{{"100", "-100"}},
			allowed:  true,
			peak:     "250",
			drawdown: decimal.Zero,
		},
		{
			name:     "spike then partial loss before check",
			batches:  [][]string{{"200", "-130"}},
			allowed:  true,
			peak:     "320",
			drawdown: decimal.Zero,
		},
		{
			name:     "win checked then given back",
			batches:  [][]string{{"150"}, {"-110"}},
			code:     CodeDrawdownLimit,
			peak:     "400",
			drawdown: d("0.275"),
		},
		{
			name:     "losses under a checked peak",
			batches:  [][]string{{"100"}, {"-30", "-20"}},
			allowed:  true,
			peak:     "350",
			drawdown: d("50").Div(d("350")),
		},
		{
			name:     "spikes between every check",
			batches:  [][]string{{"90", "-90"}, {"60", "-60"}, {"10"}},
			allowed:  true,
			peak:     "260",
			drawdown: decimal.Zero,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewEngine(p, t0)
			now := t0
			var dec Decision
			for _, batch := range tt.batches {
				for _, profit := range batch {
					e.Record(d(profit), Direct)
				}
				now = now.Add(time.Minute)
				dec = e.Check(now)
			}

			assert.Equal(t, tt.allowed, dec.Allowed)
			assert.Equal(t, tt.code, dec.Code)
			snap := e.Snapshot()
			assertDec(t, tt.peak, snap.PeakCapital)
			assert.True(t, tt.drawdown.Equal(snap.CurrentDrawdown),
				"drawdown %s, want %s", snap.CurrentDrawdown, tt.drawdown)
		})
	}
}

func TestGateStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ACTIVE", Active.String())
	assert.Equal(t, "PAUSED", Paused.String())
	assert.Equal(t, "HALTED", Halted.String())
	assert.Equal(t, "GateState(9)", GateState(9).String())
}
