package risk

import "github.com/shopspring/decimal"

// Streak thresholds for dynamic sizing. Reductions start with the third
// consecutive loss, increases with the fourth consecutive win.
const (
	lossStreakFree = 2
	winStreakFree  = 3
	maxWinSteps    = 5

	sizePrecision = 18
)

// SizeResult explains how a position fraction was derived.
type SizeResult struct {
	Base    decimal.Decimal
	Factor  decimal.Decimal // streak multiplier before clamping
	Size    decimal.Decimal
	Floored bool
	Capped  bool
}

// Size adjusts baseSizeFraction (0.02 for 2% of capital) for the current
// streak and clamps it to [MinPositionPct, MaxPositionPct]. With dynamic
// sizing disabled the base is returned untouched.
func Size(p Policy, baseSizeFraction decimal.Decimal, st StreakTracker) SizeResult {
	res := SizeResult{
		Base:   baseSizeFraction,
		Factor: decimal.NewFromInt(1),
		Size:   baseSizeFraction,
	}
	if !p.EnableDynamicSizing {
		return res
	}

	if st.losses > lossStreakFree {
		keep := decimal.NewFromInt(1).Sub(p.LossSizingReduction)
		res.Factor = res.Factor.Mul(powInt(keep, st.losses-lossStreakFree))
	}
	if st.wins > winStreakFree {
		steps := min(st.wins-winStreakFree, maxWinSteps)
		inc := decimal.NewFromInt(int64(steps)).Mul(p.WinSizingIncrease)
		res.Factor = res.Factor.Mul(decimal.NewFromInt(1).Add(inc))
	}

	size := baseSizeFraction.Mul(res.Factor)
	if size.LessThan(p.MinPositionPct) {
		size = p.MinPositionPct
		res.Floored = true
	}
	if size.GreaterThan(p.MaxPositionPct) {
		size = p.MaxPositionPct
		res.Capped = true
	}
	res.Size = size
	return res
}

// powInt raises x to a non-negative integer power, rounding each step so long
// streaks do not grow the mantissa without bound.
func powInt(x decimal.Decimal, n int) decimal.Decimal {
	out := decimal.NewFromInt(1)
	for i := 0; i < n; i++ {
		out = out.Mul(x).Round(sizePrecision)
	}
	return out
}
