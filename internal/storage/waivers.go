package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Waiver suppresses findings of one flaw type until it expires or is revoked.
// DocumentType and PatternSub narrow the match when set.
type Waiver struct {
	ID           int64      `json:"id"`
	FlawType     string     `json:"flaw_type"`
	DocumentType string     `json:"document_type,omitempty"`
	PatternSub   string     `json:"pattern_sub,omitempty"`
	Reason       string     `json:"reason"`
	ExpiresAt    time.Time  `json:"expires_at"`
	CreatedBy    string     `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
}

func (db *DB) CreateWaiver(flawType, documentType, pattern, reason, createdBy string, expires time.Time) (int64, error) {
	flawType = strings.ToUpper(strings.TrimSpace(flawType))
	if flawType == "" {
		return 0, fmt.Errorf("waiver: flaw type is required")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := db.conn.Exec(`
INSERT INTO waivers(flaw_type, document_type, pattern_sub, reason, expires_at, created_by, created_at)
VALUES(?,?,?,?,?,?,?)`,
		flawType, nz(documentType), nz(pattern), reason, expires.UTC().Format(time.RFC3339Nano), createdBy, now)
	if err != nil {
		return 0, fmt.Errorf("create waiver: %w", err)
	}
	return res.LastInsertId()
}

// RevokeWaiver marks a waiver revoked; the revoker is recorded in the audit log by the caller.
func (db *DB) RevokeWaiver(id int64) error {
	res, err := db.conn.Exec(`UPDATE waivers SET revoked_at=? WHERE id=? AND revoked_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) ListWaivers(activeOnly bool) ([]Waiver, error) {
	q := `
SELECT id, flaw_type, COALESCE(document_type,''), COALESCE(pattern_sub,''),
       reason, expires_at, created_by, created_at, revoked_at
FROM waivers`
	args := []any{}
	if activeOnly {
		q += ` WHERE (revoked_at IS NULL) AND (expires_at > ?)`
		args = append(args, time.Now().UTC().Format(time.RFC3339Nano))
	}
	q += ` ORDER BY id DESC`
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Waiver{}
	for rows.Next() {
		var (
			w           Waiver
			exp, ca, ra sql.NullString
		)
		if err := rows.Scan(&w.ID, &w.FlawType, &w.DocumentType, &w.PatternSub, &w.Reason, &exp, &w.CreatedBy, &ca, &ra); err != nil {
			return nil, err
		}
		if t, ok := parseTS(exp); ok {
			w.ExpiresAt = t
		}
		if t, ok := parseTS(ca); ok {
			w.CreatedAt = t
		}
		if t, ok := parseTS(ra); ok {
			w.RevokedAt = &t
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func parseTS(s sql.NullString) (time.Time, bool) {
	if !s.Valid {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	return t, err == nil
}

func nz(s string) any {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return s
}
