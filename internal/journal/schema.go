package journal

// Schema creates the plan journal tables.
const Schema = `
CREATE TABLE IF NOT EXISTS plans (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at    TIMESTAMP NOT NULL,
	symbol        TEXT NOT NULL,
	scenario      TEXT NOT NULL,
	current_price REAL NOT NULL,
	price_source  TEXT NOT NULL,
	entry_price   REAL NOT NULL,
	stop_price    REAL NOT NULL,
	target_price  REAL NOT NULL,
	reward_risk   REAL NOT NULL,
	setup_ok      INTEGER NOT NULL,
	enabled       INTEGER NOT NULL,
	lots          INTEGER NOT NULL,
	strength      REAL NOT NULL,
	note          TEXT
);

CREATE INDEX IF NOT EXISTS idx_plans_symbol ON plans(symbol, created_at);
`
