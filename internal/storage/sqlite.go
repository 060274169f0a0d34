package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // CGO-free SQLite driver

	"github.com/codewithboateng/lexcheck/internal/ir"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("not found")

// DB is the concrete storage backed by SQLite.
type DB struct {
	conn *sql.DB
}

// OpenSQLite opens (and creates if missing) a SQLite DB at path.
func OpenSQLite(path string) (*DB, error) {
	// Pragmas via DSN keep it portable with the modernc driver.
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)"
	c, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return &DB{conn: c}, nil
}

func (db *DB) Close() error { return db.conn.Close() }

// CreateSchema ensures tables exist.
func (db *DB) CreateSchema() error {
	_, err := db.conn.Exec(`
CREATE TABLE IF NOT EXISTS runs (
  id            TEXT PRIMARY KEY,
  started_at    TEXT,          -- RFC3339Nano
  source        TEXT,
  document_type TEXT,
  version       TEXT,
  compliant     INTEGER NOT NULL,
  total_flaws   INTEGER NOT NULL,
  run_json      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS flaws (
  run_id      TEXT NOT NULL,
  ordinal     INTEGER NOT NULL,
  flaw_type   TEXT NOT NULL,
  severity    TEXT NOT NULL,
  location    TEXT,
  description TEXT,
  suggestion  TEXT,
  evidence    TEXT,
  PRIMARY KEY (run_id, ordinal),
  FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_flaws_run ON flaws(run_id);
CREATE INDEX IF NOT EXISTS idx_flaws_type ON flaws(flaw_type);

CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT UNIQUE NOT NULL,
  pass_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'viewer',
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
  token TEXT PRIMARY KEY,
  user_id INTEGER NOT NULL,
  expires_at TEXT NOT NULL,
  created_at TEXT NOT NULL,
  FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS audit (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ts TEXT NOT NULL,
  username TEXT,
  action TEXT NOT NULL,
  resource TEXT,
  meta_json TEXT
);

CREATE TABLE IF NOT EXISTS waivers (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  flaw_type     TEXT NOT NULL,
  document_type TEXT,            -- NULL = any
  pattern_sub   TEXT,            -- optional substring to match evidence/description
  reason        TEXT NOT NULL,
  expires_at    TEXT NOT NULL,   -- RFC3339Nano
  created_by    TEXT NOT NULL,
  created_at    TEXT NOT NULL,
  revoked_at    TEXT             -- NULL = active
);
`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveRun upserts a run and (re)writes its flaws in report order.
func (db *DB) SaveRun(run *ir.Run) error {
	b, err := json.Marshal(run)
	if err != nil {
		return err
	}
	ts := run.StartedAt.UTC().Format(time.RFC3339Nano)

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`INSERT INTO runs (id, started_at, source, document_type, version, compliant, total_flaws, run_json)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET started_at=excluded.started_at, source=excluded.source,
           document_type=excluded.document_type, version=excluded.version,
           compliant=excluded.compliant, total_flaws=excluded.total_flaws, run_json=excluded.run_json`,
		run.ID, ts, run.Source, string(run.DocumentType), run.Version,
		boolInt(run.Report.IsCompliant()), run.Report.TotalFlaws, string(b),
	); err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}

	if _, err := tx.Exec(`DELETE FROM flaws WHERE run_id = ?`, run.ID); err != nil {
		return err
	}
	if len(run.Report.Flaws) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO flaws
			(run_id, ordinal, flaw_type, severity, location, description, suggestion, evidence)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, f := range run.Report.Flaws {
			if _, err := stmt.Exec(
				run.ID,
				i,
				f.FlawType,
				string(f.Severity),
				f.Location,
				f.Description,
				f.Suggestion,
				f.Evidence,
			); err != nil {
				return fmt.Errorf("save flaw %s: %w", f.FlawType, err)
			}
		}
	}

	return tx.Commit()
}

// LoadRun returns the full run (from stored JSON).
func (db *DB) LoadRun(id string) (ir.Run, error) {
	return db.loadOne(`SELECT run_json FROM runs WHERE id = ?`, id)
}

// LoadLatestRun returns the most recently started run.
func (db *DB) LoadLatestRun() (ir.Run, error) {
	return db.loadOne(`SELECT run_json FROM runs ORDER BY started_at DESC, id DESC LIMIT 1`)
}

func (db *DB) loadOne(q string, args ...any) (ir.Run, error) {
	var s string
	if err := db.conn.QueryRow(q, args...).Scan(&s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ir.Run{}, ErrNotFound
		}
		return ir.Run{}, err
	}
	var run ir.Run
	if err := json.Unmarshal([]byte(s), &run); err != nil {
		return ir.Run{}, fmt.Errorf("decode run: %w", err)
	}
	return run, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
