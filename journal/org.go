package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatTradeOrg renders a TradeRecord as an Org-mode block. Structured facts
// go in a PROPERTIES drawer for easy search.
func FormatTradeOrg(t TradeRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Trade: %s %s (%s)\n", t.Strategy, signed(t.Profit.StringFixed(2)), shortID(t.TradeID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":TRADE_ID: %s\n", t.TradeID)
	fmt.Fprintf(&b, ":TIME: %s\n", t.Time.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":STRATEGY: %s\n", t.Strategy)
	fmt.Fprintf(&b, ":PROFIT: %s\n", t.Profit.StringFixed(2))
	fmt.Fprintf(&b, ":DAILY_PNL: %s\n", t.DailyPnL.StringFixed(2))
	fmt.Fprintf(&b, ":MONTHLY_PNL: %s\n", t.MonthlyPnL.StringFixed(2))
	fmt.Fprintf(&b, ":TOTAL_PNL: %s\n", t.TotalPnL.StringFixed(2))
	fmt.Fprintf(&b, ":CAPITAL: %s\n", t.Capital.StringFixed(2))
	fmt.Fprintf(&b, ":DRAWDOWN_PCT: %s\n", t.Drawdown.Shift(2).StringFixed(2))
	fmt.Fprintf(&b, ":STREAK: W%d L%d\n", t.WinStreak, t.LossStreak)
	b.WriteString(":END:\n")
	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []TradeRecord) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func FormatDecisionOrg(d DecisionRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Gate: %s -> %s (%s)\n", d.Code, d.State, shortID(d.DecisionID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":DECISION_ID: %s\n", d.DecisionID)
	fmt.Fprintf(&b, ":TIME: %s\n", d.Time.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":CODE: %s\n", d.Code)
	fmt.Fprintf(&b, ":STATE: %s\n", d.State)
	if !d.PauseUntil.IsZero() {
		fmt.Fprintf(&b, ":PAUSE_UNTIL: %s\n", d.PauseUntil.UTC().Format(time.RFC3339))
	}
	b.WriteString(":END:\n")
	if d.Msg != "" {
		fmt.Fprintf(&b, "- %s\n", d.Msg)
	}
	return b.String()
}

func FormatDecisionsOrg(ds []DecisionRecord) string {
	var b strings.Builder
	for i, d := range ds {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatDecisionOrg(d))
	}
	return b.String()
}

func signed(s string) string {
	if strings.HasPrefix(s, "-") {
		return s
	}
	return "+" + s
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
