package risk

import "github.com/shopspring/decimal"

// StreakTracker counts consecutive losing and winning trades. At most one of
// the two counters is non-zero. A break-even trade counts as a win.
type StreakTracker struct {
	losses int
	wins   int
}

func (s *StreakTracker) OnTrade(profit decimal.Decimal) {
	if profit.IsNegative() {
		s.losses++
		s.wins = 0
		return
	}
	s.losses = 0
	s.wins++
}

func (s StreakTracker) ConsecutiveLosses() int { return s.losses }
func (s StreakTracker) ConsecutiveWins() int   { return s.wins }
