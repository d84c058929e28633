package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rustyeddy/riskgate/risk"
)

// Collector holds the risk gate series. Each Collector registers into its
// own registry so several engines (or tests) never share state.
type Collector struct {
	reg *prometheus.Registry

	DailyPnL          prometheus.Gauge
	MonthlyPnL        prometheus.Gauge
	TotalPnL          prometheus.Gauge
	Capital           prometheus.Gauge
	PeakCapital       prometheus.Gauge
	Drawdown          prometheus.Gauge
	ConsecutiveWins   prometheus.Gauge
	ConsecutiveLosses prometheus.Gauge
	Paused            prometheus.Gauge
	Halted            prometheus.Gauge

	Trades      *prometheus.CounterVec
	StrategyPnL *prometheus.GaugeVec
	Denials     *prometheus.CounterVec
	Resumes     prometheus.Counter
}

func NewCollector() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),

		DailyPnL: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "riskgate_daily_pnl_usd",
			Help: "Realized P&L in the current daily window",
		}),
		MonthlyPnL: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "riskgate_monthly_pnl_usd",
			Help: "Realized P&L in the current 30-day window",
		}),
		TotalPnL: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "riskgate_total_pnl_usd",
			Help: "Realized P&L since start",
		}),
		Capital: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "riskgate_capital_usd",
			Help: "Starting capital plus total P&L",
		}),
		PeakCapital: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "riskgate_peak_capital_usd",
			Help: "Highest capital observed",
		}),
		Drawdown: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "riskgate_drawdown_ratio",
			Help: "Fractional drawdown from peak capital",
		}),
		ConsecutiveWins: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "riskgate_consecutive_wins",
			Help: "Current winning streak",
		}),
		ConsecutiveLosses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "riskgate_consecutive_losses",
			Help: "Current losing streak",
		}),
		Paused: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "riskgate_paused",
			Help: "1 while trading is paused after a breach",
		}),
		Halted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "riskgate_halted",
			Help: "1 once trading is permanently halted",
		}),

		Trades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_trades_total",
			Help: "Recorded trades by strategy",
		}, []string{"strategy"}),
		StrategyPnL: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "riskgate_strategy_pnl_usd",
			Help: "Realized P&L by strategy",
		}, []string{"strategy"}),
		Denials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_denials_total",
			Help: "Denied trade checks by reason code",
		}, []string{"code"}),
		Resumes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "riskgate_resumes_total",
			Help: "Pauses that expired and cleared",
		}),
	}

	c.reg.MustRegister(
		c.DailyPnL,
		c.MonthlyPnL,
		c.TotalPnL,
		c.Capital,
		c.PeakCapital,
		c.Drawdown,
		c.ConsecutiveWins,
		c.ConsecutiveLosses,
		c.Paused,
		c.Halted,
		c.Trades,
		c.StrategyPnL,
		c.Denials,
		c.Resumes,
	)

	// pre-create labelled series so dashboards see zeros before the first event
	for _, s := range risk.Strategies() {
		c.Trades.WithLabelValues(s.String())
		c.StrategyPnL.WithLabelValues(s.String())
	}
	for _, code := range risk.Codes() {
		c.Denials.WithLabelValues(string(code))
	}
	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.reg }
