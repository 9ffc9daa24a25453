package data

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"nomimap/app"
)

// schemaVersion is the current database schema version.
// Bumping it drops every table on the next startup.
const schemaVersion = "v1"

// SQLite database handle
var (
	db     *sql.DB
	dbMu   sync.Mutex
	dbOnce sync.Once
)

// initDB opens (or creates) the SQLite database in the data directory
func initDB() error {
	var initErr error
	dbOnce.Do(func() {
		dbPath := filepath.Join(Dir(), "data", "nomimap.db")
		if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
			initErr = fmt.Errorf("failed to create data dir: %w", err)
			return
		}

		var err error
		db, err = sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=10000")
		if err != nil {
			initErr = fmt.Errorf("failed to open database: %w", err)
			return
		}

		// SQLite works best with limited connections
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		var storedVer string
		_ = db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&storedVer)
		if storedVer != schemaVersion {
			app.Log("data", "schema version mismatch (have %q, want %q), wiping", storedVer, schemaVersion)
			for _, table := range []string{"places_fts", "places", "sessions", "schema_version"} {
				if _, err = db.Exec(`DROP TABLE IF EXISTS ` + table); err != nil {
					initErr = fmt.Errorf("failed to drop %s: %w", table, err)
					return
				}
			}
		}

		_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (
				version TEXT NOT NULL
			);
			CREATE TABLE IF NOT EXISTS sessions (
				token      TEXT PRIMARY KEY,
				id         TEXT NOT NULL,
				created_at DATETIME NOT NULL
			);
			CREATE TABLE IF NOT EXISTS places (
				key        TEXT NOT NULL,
				position   INTEGER PRIMARY KEY,
				name       TEXT NOT NULL,
				category   TEXT,
				genre      TEXT,
				comment    TEXT,
				lat        REAL NOT NULL,
				lng        REAL NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_places_key ON places(key);

			CREATE VIRTUAL TABLE IF NOT EXISTS places_fts USING fts5(
				position UNINDEXED,
				name,
				category,
				genre,
				comment,
				tokenize='trigram'
			);
		`)
		if err != nil {
			initErr = fmt.Errorf("failed to create tables: %w", err)
			return
		}

		if storedVer != schemaVersion {
			if _, err = db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
				initErr = fmt.Errorf("failed to store schema version: %w", err)
				return
			}
		}

		app.Log("data", "SQLite database initialized at %s", dbPath)
	})
	return initErr
}

// DB returns the database handle, initializing if needed
func DB() (*sql.DB, error) {
	if err := initDB(); err != nil {
		return nil, err
	}
	return db, nil
}

// Close closes the database. The next call to DB reopens it, which
// lets tests point SetDir at a fresh directory.
func Close() error {
	dbMu.Lock()
	defer dbMu.Unlock()

	var err error
	if db != nil {
		err = db.Close()
		db = nil
	}
	dbOnce = sync.Once{}
	return err
}
