package storage

import "time"

// RunRow is a lightweight listing row for /runs.
type RunRow struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	Source       string    `json:"source,omitempty"`
	DocumentType string    `json:"document_type"`
	Version      string    `json:"version,omitempty"`
	Compliant    bool      `json:"is_compliant"`
	Flaws        int       `json:"total_flaws"`
}
