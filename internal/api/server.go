package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codewithboateng/lexcheck/internal/ir"
	"github.com/codewithboateng/lexcheck/internal/rules"
	"github.com/codewithboateng/lexcheck/internal/storage"
)

// Store is the minimal persistence contract the API needs.
type Store interface {
	SaveRun(run *ir.Run) error
	ListRuns(limit, offset int) ([]storage.RunRow, error)
	LoadRun(id string) (ir.Run, error)
	LoadLatestRun() (ir.Run, error)
	ListFlaws(runID string, minSeverity ir.Severity) ([]ir.Flaw, error)

	ListWaivers(activeOnly bool) ([]storage.Waiver, error)
	CreateWaiver(flawType, documentType, pattern, reason, createdBy string, expires time.Time) (int64, error)
	RevokeWaiver(id int64) error
}

// UserStore is the auth/audit contract the API uses.
type UserStore interface {
	GetUserByUsername(string) (storage.User, string, error)
	CreateSession(int64, string, time.Time) error
	GetSession(string) (storage.User, error)
	DeleteSession(string) error
	LogAudit(username, action, resource string, meta map[string]any) error
}

// Analyzer validates one document; *validator.Validator satisfies it.
type Analyzer interface {
	Run(ctx context.Context, doc ir.Document, documentType string) (ir.Run, error)
	Patterns() *rules.PatternSet
}

// Publisher fans finished runs out to subscribers.
type Publisher interface {
	Publish(ctx context.Context, run *ir.Run) error
}

type Server struct {
	DB              Store
	UserStore       UserStore
	Analyzer        Analyzer
	Publisher       Publisher // optional
	Logger          *slog.Logger
	AllowedOrigins  []string
	SessionDuration time.Duration
	MaxUploadBytes  int64
	ClassifierReady bool
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	cors := s.withCORS

	// Health + metadata
	mux.HandleFunc("GET /api/v1/health", cors(s.handleHealth))
	mux.HandleFunc("GET /api/v1/document-types", cors(s.handleDocumentTypes))
	mux.HandleFunc("GET /api/v1/document-types/{type}/requirements", cors(s.handleRequirements))
	mux.HandleFunc("GET /api/v1/rules", cors(s.handleRules))

	// Analysis
	mux.HandleFunc("POST /api/v1/analyze", cors(s.handleAnalyze))

	// Auth
	mux.HandleFunc("POST /api/v1/auth/login", cors(s.handleLogin))
	mux.HandleFunc("POST /api/v1/auth/logout", cors(withAuth(s, s.handleLogout, "auth:logout")))
	mux.HandleFunc("GET /api/v1/auth/me", cors(withAuth(s, s.handleMe, "me")))

	// Runs
	mux.HandleFunc("GET /api/v1/runs", cors(s.handleListRuns))
	mux.HandleFunc("GET /api/v1/runs/latest", cors(s.handleGetLatest))
	mux.HandleFunc("GET /api/v1/runs/{id}", cors(s.handleGetRun))
	mux.HandleFunc("GET /api/v1/runs/{id}/flaws", cors(s.handleListFlaws))

	// Waivers
	mux.HandleFunc("GET /api/v1/waivers", cors(withAuth(s, s.handleListWaivers, "waivers:list")))
	mux.HandleFunc("POST /api/v1/waivers", cors(withAdmin(s, s.handleCreateWaiver, "waivers:create")))
	mux.HandleFunc("POST /api/v1/waivers/{id}/revoke", cors(withAdmin(s, s.handleRevokeWaiver, "waivers:revoke")))

	mux.Handle("GET /metrics", promhttp.Handler())

	// Fallback 404
	mux.HandleFunc("/", cors(func(w http.ResponseWriter, r *http.Request) {
		s.err(w, http.StatusNotFound, "not found")
	}))
	return s.logRequests(mux)
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "healthy",
		"classifier": s.ClassifierReady,
		"version":    ir.Version,
		"timestamp":  time.Now().UTC(),
	})
}

func (s *Server) handleDocumentTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"document_types": ir.DocumentTypes()})
}

type clauseStatus struct {
	ID      rules.ClauseID `json:"id"`
	Checked bool           `json:"checked"`
}

// GET /api/v1/document-types/{type}/requirements
func (s *Server) handleRequirements(w http.ResponseWriter, r *http.Request) {
	dt := ir.NormalizeDocumentType(r.PathValue("type"))
	req := rules.Lookup(string(dt))
	required := make([]clauseStatus, 0, len(req.Required))
	for _, id := range req.Required {
		_, ok := rules.CheckFor(id)
		required = append(required, clauseStatus{ID: id, Checked: ok})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document_type":      dt,
		"required_clauses":   required,
		"optional_clauses":   req.Optional,
		"prohibited_clauses": req.Prohibited,
	})
}

// GET /api/v1/rules (no auth needed for read-only)
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	var ps *rules.PatternSet
	if s.Analyzer != nil {
		ps = s.Analyzer.Patterns()
	}
	items := rules.List(ps)
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := clamp(parseInt(q.Get("limit"), 20), 1, 200)
	offset := max(parseInt(q.Get("offset"), 0), 0)

	rows, err := s.DB.ListRuns(limit, offset)
	if err != nil {
		s.dbErr(w, err)
		return
	}
	if rows == nil {
		rows = []storage.RunRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": rows, "limit": limit, "offset": offset,
	})
}

// GET /api/v1/runs/latest
func (s *Server) handleGetLatest(w http.ResponseWriter, r *http.Request) {
	run, err := s.DB.LoadLatestRun()
	if errors.Is(err, storage.ErrNotFound) {
		s.err(w, http.StatusNotFound, "no runs")
		return
	}
	if err != nil {
		s.dbErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.DB.LoadRun(r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		s.err(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		s.dbErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListFlaws(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	minSev := ir.SeverityLow
	if v := r.URL.Query().Get("min_severity"); v != "" {
		sev, err := ir.ParseSeverity(v)
		if err != nil {
			s.err(w, http.StatusBadRequest, err.Error())
			return
		}
		minSev = sev
	}
	items, err := s.DB.ListFlaws(id, minSev)
	if err != nil {
		s.dbErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id": id, "min_severity": minSev, "items": items,
	})
}

func (s *Server) err(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func (s *Server) dbErr(w http.ResponseWriter, err error) {
	s.logger().Error("storage error", "error", err)
	s.err(w, http.StatusInternalServerError, "db error")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return n
	}
	return def
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
