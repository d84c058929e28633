package risk

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type EventKind int

const (
	EventTrade EventKind = iota
	EventDenied
	EventResumed
)

func (k EventKind) String() string {
	switch k {
	case EventTrade:
		return "trade"
	case EventDenied:
		return "denied"
	case EventResumed:
		return "resumed"
	}
	return "unknown"
}

// Event is delivered to listeners after the engine state changes or a trade
// is denied. Profit and Strategy are only set for EventTrade; Decision only
// for EventDenied and EventResumed.
type Event struct {
	Kind     EventKind
	At       time.Time
	Strategy Strategy
	Profit   decimal.Decimal
	Decision Decision
	Snapshot Snapshot
}

// Listener receives engine events. Listeners are called synchronously after
// the engine lock is released, in registration order.
type Listener func(Event)

// Engine owns the ledger, streak tracker and gate state. CanTrade/Check and
// Record are serialized behind a single mutex so concurrent strategy
// integrations never interleave updates.
type Engine struct {
	mu sync.Mutex

	policy Policy
	ledger *Ledger
	streak StreakTracker
	gate   gate

	trades int
	stats  map[Strategy]StrategyStats

	log       *zap.Logger
	clock     func() time.Time
	listeners []Listener
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClock sets the clock used to stamp recorded trades and snapshots.
// Window rolls and pauses always use the time passed to Check.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.clock = now
		}
	}
}

func WithListener(fn Listener) Option {
	return func(e *Engine) {
		if fn != nil {
			e.listeners = append(e.listeners, fn)
		}
	}
}

// NewEngine creates an engine whose daily and monthly windows start at start.
func NewEngine(p Policy, start time.Time, opts ...Option) *Engine {
	e := &Engine{
		policy: p,
		ledger: NewLedger(p.TotalCapitalUSD, start),
		stats:  make(map[Strategy]StrategyStats),
		log:    zap.NewNop(),
		clock:  time.Now,
	}
	for _, s := range Strategies() {
		e.stats[s] = StrategyStats{}
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) Policy() Policy { return e.policy }

// Check evaluates whether a new trade may be opened at now. It may roll the
// daily/monthly windows, clear an expired pause, start a pause or halt.
func (e *Engine) Check(now time.Time) Decision {
	e.mu.Lock()
	d := e.evaluate(now)
	var events []Event
	if d.Resumed {
		events = append(events, Event{Kind: EventResumed, At: now, Decision: d})
	}
	if !d.Allowed {
		e.log.Debug("trade denied", zap.String("code", string(d.Code)), zap.String("msg", d.Msg))
		events = append(events, Event{Kind: EventDenied, At: now, Decision: d})
	}
	if len(events) > 0 {
		snap := e.snapshot(now)
		for i := range events {
			events[i].Snapshot = snap
		}
	}
	e.mu.Unlock()

	e.notify(events...)
	return d
}

func (e *Engine) CanTrade(now time.Time) bool {
	return e.Check(now).Allowed
}

// Size returns the position fraction to use for a trade with the given base
// fraction, adjusted for the current win/loss streak.
func (e *Engine) Size(baseSizeFraction decimal.Decimal, now time.Time) decimal.Decimal {
	e.mu.Lock()
	st := e.streak
	e.mu.Unlock()

	res := Size(e.policy, baseSizeFraction, st)
	if res.Floored && st.ConsecutiveLosses() > lossStreakFree {
		e.log.Warn("position size reduced to minimum",
			zap.String("size", res.Size.String()),
			zap.Int("consecutive_losses", st.ConsecutiveLosses()),
			zap.Time("at", now))
	}
	return res.Size
}

// Record applies a realized profit (negative for a loss) from strategy and
// returns the updated snapshot. Unrecognized strategies still update the
// ledger and streaks; only the per-strategy stats are skipped.
func (e *Engine) Record(profit decimal.Decimal, strategy Strategy) Snapshot {
	at := e.clock()

	e.mu.Lock()
	e.trades++
	e.ledger.RecordPnL(profit)
	e.streak.OnTrade(profit)

	if st, ok := e.stats[strategy]; ok {
		st.Trades++
		st.Profit = st.Profit.Add(profit)
		e.stats[strategy] = st
	} else {
		e.log.Warn("trade recorded for unrecognized strategy",
			zap.Stringer("strategy", strategy),
			zap.String("profit", profit.String()))
	}

	snap := e.snapshot(at)
	e.mu.Unlock()

	if snap.StreakLimitReached && snap.ConsecutiveLosses == e.policy.MaxConsecutiveLosses {
		e.log.Warn("consecutive loss limit reached",
			zap.Int("consecutive_losses", snap.ConsecutiveLosses),
			zap.Int("limit", e.policy.MaxConsecutiveLosses))
	}

	e.notify(Event{Kind: EventTrade, At: at, Strategy: strategy, Profit: profit, Snapshot: snap})
	return snap
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot(e.clock())
}

// Budget returns the capital currently available to strategy under its
// allocation share.
func (e *Engine) Budget(strategy Strategy) decimal.Decimal {
	share, ok := e.policy.Allocation[strategy]
	if !ok {
		return decimal.Zero
	}
	e.mu.Lock()
	capital := e.ledger.CurrentCapital()
	e.mu.Unlock()
	if capital.Sign() <= 0 {
		return decimal.Zero
	}
	return capital.Mul(share)
}

func (e *Engine) notify(events ...Event) {
	for _, ev := range events {
		for _, fn := range e.listeners {
			fn(ev)
		}
	}
}
