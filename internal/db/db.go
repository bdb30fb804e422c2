package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"eve-tradehub/internal/logger"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB
}

func dbPath() string {
	// Prefer working directory so the DB is stable across go run / go build.
	// Fall back to executable directory for deployed builds.
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "tradehub.db")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "tradehub.db")
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open() (*DB, error) {
	return OpenPath(dbPath())
}

// OpenPath opens a database at an explicit path. Used by tests.
func OpenPath(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	// Try to read current version
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS config (
				key   TEXT PRIMARY KEY,
				value TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS tick_history (
				id                INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp         TEXT NOT NULL,
				location_count    INTEGER NOT NULL,
				opportunity_count INTEGER NOT NULL,
				top_margin_pct    REAL NOT NULL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_tick_history_ts ON tick_history(timestamp);

			CREATE TABLE IF NOT EXISTS opportunity_results (
				id            INTEGER PRIMARY KEY AUTOINCREMENT,
				tick_id       INTEGER NOT NULL REFERENCES tick_history(id),
				type_id       INTEGER,
				buy_location  INTEGER,
				sell_location INTEGER,
				buy_price     REAL,
				sell_price    REAL,
				margin_abs    REAL,
				margin_pct    REAL,
				buy_volume    INTEGER,
				sell_volume   INTEGER
			);
			CREATE INDEX IF NOT EXISTS idx_opportunity_tick ON opportunity_results(tick_id);
			CREATE INDEX IF NOT EXISTS idx_opportunity_type ON opportunity_results(type_id);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1")
	}

	if version < 2 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS metric_baselines (
				metric     TEXT PRIMARY KEY,
				value      REAL NOT NULL,
				updated_at TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS alert_history (
				id         TEXT PRIMARY KEY,
				metric     TEXT NOT NULL,
				baseline   REAL NOT NULL,
				current    REAL NOT NULL,
				delta      REAL NOT NULL,
				direction  TEXT NOT NULL,
				created_at TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_alert_history_metric ON alert_history(metric);
			CREATE INDEX IF NOT EXISTS idx_alert_history_ts ON alert_history(created_at);

			INSERT OR IGNORE INTO schema_version (version) VALUES (2);
		`)
		if err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
		logger.Info("DB", "Applied migration v2 (alerting)")
	}

	if version < 3 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS valuation_history (
				id                  INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp           TEXT NOT NULL,
				total_items         INTEGER NOT NULL,
				total_value         REAL NOT NULL,
				total_profit        REAL NOT NULL,
				isk_in_orders       REAL NOT NULL,
				cost_basis_coverage REAL NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_valuation_ts ON valuation_history(timestamp);

			INSERT OR IGNORE INTO schema_version (version) VALUES (3);
		`)
		if err != nil {
			return fmt.Errorf("migration v3: %w", err)
		}
		logger.Info("DB", "Applied migration v3 (valuation history)")
	}

	return nil
}

// SqlDB returns the underlying *sql.DB for use by other packages.
func (d *DB) SqlDB() *sql.DB {
	return d.sql
}
