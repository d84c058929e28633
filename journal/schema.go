package journal

// Money columns are TEXT so decimal values round-trip exactly.
const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	strategy TEXT NOT NULL,
	profit TEXT NOT NULL,
	daily_pnl TEXT NOT NULL,
	monthly_pnl TEXT NOT NULL,
	total_pnl TEXT NOT NULL,
	capital TEXT NOT NULL,
	drawdown TEXT NOT NULL,
	win_streak INTEGER NOT NULL,
	loss_streak INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS decisions (
	decision_id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	code TEXT NOT NULL,
	msg TEXT NOT NULL,
	state TEXT NOT NULL,
	pause_until DATETIME
);

CREATE INDEX IF NOT EXISTS idx_trades_time ON trades(time);
CREATE INDEX IF NOT EXISTS idx_decisions_time ON decisions(time);
`
