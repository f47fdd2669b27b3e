// Package persistence provides SQLite-backed storage for batch runs and the
// active game session. The core never touches this; the cmd layer owns
// when state is saved and restored.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/timberline/internal/config"
	"github.com/talgya/timberline/internal/game"
	"github.com/talgya/timberline/internal/sim"
)

// ErrNotFound is returned when a run or session ID has no row.
var ErrNotFound = errors.New("not found")

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		scenario_json TEXT NOT NULL,
		periods INTEGER NOT NULL,
		cumulative_profit REAL NOT NULL,
		final_forest_stock REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS period_records (
		run_id TEXT NOT NULL,
		period INTEGER NOT NULL,
		forest_stock REAL NOT NULL,
		harvested REAL NOT NULL,
		timber_inventory REAL NOT NULL,
		produced REAL NOT NULL,
		finished_inventory REAL NOT NULL,
		demand REAL NOT NULL,
		sales REAL NOT NULL,
		revenue REAL NOT NULL,
		harvest_cost REAL NOT NULL,
		production_cost REAL NOT NULL,
		holding_timber_cost REAL NOT NULL,
		holding_finished_cost REAL NOT NULL,
		total_cost REAL NOT NULL,
		period_profit REAL NOT NULL,
		cumulative_profit REAL NOT NULL,
		PRIMARY KEY (run_id, period)
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		updated_at TEXT NOT NULL,
		state_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_run ON period_records(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RunMeta is the stored header of one batch run.
type RunMeta struct {
	ID               string  `json:"id" db:"id"`
	CreatedAt        string  `json:"created_at" db:"created_at"`
	Periods          int     `json:"periods" db:"periods"`
	CumulativeProfit float64 `json:"cumulative_profit" db:"cumulative_profit"`
	FinalForestStock float64 `json:"final_forest_stock" db:"final_forest_stock"`
}

// SaveRun stores a finished batch run: one header row plus the full series.
func (db *DB) SaveRun(id string, scenario config.Scenario, records []sim.PeriodRecord) error {
	scenarioJSON, err := json.Marshal(scenario)
	if err != nil {
		return fmt.Errorf("marshal scenario: %w", err)
	}

	var cumProfit, finalStock float64
	if len(records) > 0 {
		last := records[len(records)-1]
		cumProfit = last.CumulativeProfit
		finalStock = last.ForestStock
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs
		(id, created_at, scenario_json, periods, cumulative_profit, final_forest_stock)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339), string(scenarioJSON),
		len(records), cumProfit, finalStock,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", id, err)
	}

	stmt, err := tx.Preparex(`INSERT INTO period_records
		(run_id, period, forest_stock, harvested, timber_inventory, produced,
		 finished_inventory, demand, sales, revenue, harvest_cost, production_cost,
		 holding_timber_cost, holding_finished_cost, total_cost, period_profit,
		 cumulative_profit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(
			id, r.Period, r.ForestStock, r.Harvested, r.TimberInventory,
			r.Produced, r.FinishedInventory, r.Demand, r.Sales, r.Revenue,
			r.HarvestCost, r.ProductionCost, r.HoldingTimberCost,
			r.HoldingFinishedCost, r.TotalCost, r.PeriodProfit,
			r.CumulativeProfit,
		)
		if err != nil {
			return fmt.Errorf("insert period %d of run %s: %w", r.Period, id, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns run headers, most recent first.
func (db *DB) ListRuns(limit int) ([]RunMeta, error) {
	var runs []RunMeta
	err := db.conn.Select(&runs,
		`SELECT id, created_at, periods, cumulative_profit, final_forest_stock
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	return runs, err
}

// LoadRun returns one run's header and full period series.
func (db *DB) LoadRun(id string) (RunMeta, []sim.PeriodRecord, error) {
	var meta RunMeta
	err := db.conn.Get(&meta,
		`SELECT id, created_at, periods, cumulative_profit, final_forest_stock
		 FROM runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return meta, nil, ErrNotFound
	}
	if err != nil {
		return meta, nil, err
	}

	var records []sim.PeriodRecord
	err = db.conn.Select(&records,
		`SELECT period, forest_stock, harvested, timber_inventory, produced,
		        finished_inventory, demand, sales, revenue, harvest_cost,
		        production_cost, holding_timber_cost, holding_finished_cost,
		        total_cost, period_profit, cumulative_profit
		 FROM period_records WHERE run_id = ? ORDER BY period ASC`, id)
	return meta, records, err
}

// SaveSession upserts the game session snapshot.
func (db *DB) SaveSession(id string, st game.State) error {
	stateJSON, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}
	_, err = db.conn.Exec(
		`INSERT OR REPLACE INTO sessions (id, updated_at, state_json) VALUES (?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339), string(stateJSON),
	)
	return err
}

// LoadSession restores a saved session snapshot.
func (db *DB) LoadSession(id string) (game.State, error) {
	var stateJSON string
	err := db.conn.Get(&stateJSON, "SELECT state_json FROM sessions WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return game.State{}, ErrNotFound
	}
	if err != nil {
		return game.State{}, err
	}

	var st game.State
	if err := json.Unmarshal([]byte(stateJSON), &st); err != nil {
		return game.State{}, fmt.Errorf("unmarshal session state: %w", err)
	}
	return st, nil
}

// SetMeta stores a key-value pair.
func (db *DB) SetMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", key, value)
	return err
}

// GetMeta retrieves a metadata value, or ErrNotFound.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}
