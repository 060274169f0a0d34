package ir

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const Version = "1.0"

// Severity is the ordinal rank of a flaw: CRITICAL > HIGH > MEDIUM > LOW.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Severities lists every severity from most to least severe.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
}

// Rank orders severities for sorting; CRITICAL is 0. Unknown values sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	}
	return 4
}

// Blocking reports whether a flaw of this severity makes a document non-compliant.
func (s Severity) Blocking() bool {
	return s == SeverityCritical || s == SeverityHigh
}

func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToUpper(strings.TrimSpace(s)))
	if sev.Rank() > 3 {
		return "", fmt.Errorf("unknown severity %q", s)
	}
	return sev, nil
}

// DocumentType identifies which clause requirements apply to a document.
type DocumentType string

const (
	DocGeneral    DocumentType = "GENERAL"
	DocNDA        DocumentType = "NDA"
	DocEmployment DocumentType = "EMPLOYMENT_AGREEMENT"
	DocFounder    DocumentType = "FOUNDER_AGREEMENT"
	DocSAFE       DocumentType = "SAFE_AGREEMENT"
)

type DocumentTypeInfo struct {
	Value DocumentType `json:"value"`
	Label string       `json:"label"`
}

// DocumentTypes returns the recognised document types in display order.
func DocumentTypes() []DocumentTypeInfo {
	return []DocumentTypeInfo{
		{Value: DocGeneral, Label: "General Contract"},
		{Value: DocNDA, Label: "Non-Disclosure Agreement"},
		{Value: DocEmployment, Label: "Employment Agreement"},
		{Value: DocFounder, Label: "Founder Agreement"},
		{Value: DocSAFE, Label: "SAFE Agreement"},
	}
}

// NormalizeDocumentType maps s onto a recognised type. Matching is exact;
// anything else, including case variants, is GENERAL.
func NormalizeDocumentType(s string) DocumentType {
	dt := DocumentType(s)
	switch dt {
	case DocGeneral, DocNDA, DocEmployment, DocFounder, DocSAFE:
		return dt
	}
	return DocGeneral
}

type Flaw struct {
	FlawType    string   `json:"flaw_type"`
	Severity    Severity `json:"severity"`
	Location    string   `json:"location"` // "Document-wide" | "Line ~N" | named clause
	Description string   `json:"description"`
	Suggestion  string   `json:"suggestion"`
	Evidence    string   `json:"evidence,omitempty"`
}

// Verdict is what the document classifier says about the text as a whole.
type Verdict struct {
	IsValid    bool    `json:"is_valid"`
	Confidence float64 `json:"confidence"`
}

type Report struct {
	IsValid          bool             `json:"is_valid"`
	Confidence       float64          `json:"confidence"`
	TotalFlaws       int              `json:"total_flaws"`
	CountsBySeverity map[Severity]int `json:"counts_by_severity"`
	Flaws            []Flaw           `json:"flaws"`
	// Degraded is set when the classifier could not be used.
	Degraded bool `json:"degraded,omitempty"`
	Waived   int  `json:"waived,omitempty"`
}

// IsCompliant is recomputed from the flaw set on every call.
func (r Report) IsCompliant() bool {
	for _, f := range r.Flaws {
		if f.Severity.Blocking() {
			return false
		}
	}
	return true
}

func (r Report) Count(s Severity) int { return r.CountsBySeverity[s] }

func (r Report) MarshalJSON() ([]byte, error) {
	type plain Report
	return json.Marshal(struct {
		IsCompliant bool `json:"is_compliant"`
		plain
	}{IsCompliant: r.IsCompliant(), plain: plain(r)})
}

// Document is extracted input text plus where it came from.
type Document struct {
	Source string `json:"source"`
	Title  string `json:"title,omitempty"`
	Format string `json:"format"`
	Text   string `json:"-"`
}

// Run is one persisted validation of a single document.
type Run struct {
	ID           string       `json:"id"`
	StartedAt    time.Time    `json:"started_at"`
	Source       string       `json:"source,omitempty"`
	DocumentType DocumentType `json:"document_type"`
	Version      string       `json:"version,omitempty"`
	Summary      string       `json:"summary"`
	DurationMS   int64        `json:"duration_ms"`
	Report       Report       `json:"report"`
}
