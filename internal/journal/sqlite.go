package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kissncome-byte/stock-app/internal/decision"
)

// SQLiteJournal records emitted trade plans for later review. It stores
// what the engine decided, not what anyone traded.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLite opens (and if needed creates) the journal database at path.
func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

// Close closes the underlying database.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// PlanRecord is one scenario leg as stored in the journal.
type PlanRecord struct {
	CreatedAt    time.Time
	Symbol       string
	Scenario     string
	CurrentPrice float64
	PriceSource  string
	Entry        float64
	Stop         float64
	Target       float64
	RewardRisk   float64
	Setup        bool
	Enabled      bool
	Lots         int
	Strength     float64
	Note         string
}

// RecordDecision stores both scenario legs of a decision.
func (j *SQLiteJournal) RecordDecision(d *decision.Decision) error {
	now := time.Now()
	for _, leg := range []decision.Leg{d.Breakout, d.Pullback} {
		_, err := j.db.Exec(`
			INSERT INTO plans
			(created_at, symbol, scenario, current_price, price_source,
			 entry_price, stop_price, target_price, reward_risk,
			 setup_ok, enabled, lots, strength, note)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			now, d.Symbol, string(leg.Scenario), d.CurrentPrice, d.PriceSource,
			leg.Entry, leg.Stop, leg.Target, leg.RewardRisk,
			leg.Setup, leg.Enabled, leg.Lots, leg.Strength, leg.Note,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// ListBySymbol returns the most recent plan records for a symbol, newest
// first, up to limit.
func (j *SQLiteJournal) ListBySymbol(symbol string, limit int) ([]PlanRecord, error) {
	rows, err := j.db.Query(`
		SELECT created_at, symbol, scenario, current_price, price_source,
		       entry_price, stop_price, target_price, reward_risk,
		       setup_ok, enabled, lots, strength, note
		FROM plans
		WHERE symbol = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PlanRecord
	for rows.Next() {
		var r PlanRecord
		var note sql.NullString
		if err := rows.Scan(&r.CreatedAt, &r.Symbol, &r.Scenario, &r.CurrentPrice, &r.PriceSource,
			&r.Entry, &r.Stop, &r.Target, &r.RewardRisk,
			&r.Setup, &r.Enabled, &r.Lots, &r.Strength, &note); err != nil {
			return nil, err
		}
		r.Note = note.String
		records = append(records, r)
	}
	return records, rows.Err()
}
