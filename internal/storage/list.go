package storage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/codewithboateng/lexcheck/internal/ir"
)

// ListRuns returns a lightweight list of runs, newest first.
func (db *DB) ListRuns(limit, offset int) ([]RunRow, error) {
	const q = `
		SELECT id, started_at, source, document_type, version, compliant, total_flaws
		  FROM runs
		 ORDER BY started_at DESC, id DESC
		 LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var rr RunRow
		var startedAtStr string
		var compliant int
		if err := rows.Scan(&rr.ID, &startedAtStr, &rr.Source, &rr.DocumentType, &rr.Version, &compliant, &rr.Flaws); err != nil {
			return nil, err
		}
		rr.Compliant = compliant == 1
		// Parse RFC3339Nano first, fallback to RFC3339
		if t, err := time.Parse(time.RFC3339Nano, startedAtStr); err == nil {
			rr.StartedAt = t
		} else if t2, err2 := time.Parse(time.RFC3339, startedAtStr); err2 == nil {
			rr.StartedAt = t2
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

// ListFlaws returns flaws for a run at or above minSeverity, in report order.
// The CASE expression mirrors ir.Severity.Rank.
func (db *DB) ListFlaws(runID string, minSeverity ir.Severity) ([]ir.Flaw, error) {
	const q = `
		SELECT flaw_type, severity, location, description, suggestion, evidence
		  FROM flaws
		 WHERE run_id = ?
		   AND (CASE severity WHEN 'CRITICAL' THEN 0 WHEN 'HIGH' THEN 1 WHEN 'MEDIUM' THEN 2 ELSE 3 END) <= ?
		 ORDER BY ordinal`
	rows, err := db.conn.Query(q, runID, minSeverity.Rank())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ir.Flaw{}
	for rows.Next() {
		var f ir.Flaw
		var sev string
		if err := rows.Scan(&f.FlawType, &sev, &f.Location, &f.Description, &f.Suggestion, &f.Evidence); err != nil {
			return nil, err
		}
		f.Severity = ir.Severity(sev)
		out = append(out, f)
	}
	return out, rows.Err()
}

// HasRun reports whether a run with id exists.
func (db *DB) HasRun(id string) (bool, error) {
	const q = `SELECT 1 FROM runs WHERE id = ? LIMIT 1`
	var one int
	err := db.conn.QueryRow(q, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}
