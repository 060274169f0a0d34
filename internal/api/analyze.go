package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/codewithboateng/lexcheck/internal/ir"
	"github.com/codewithboateng/lexcheck/internal/parser"
	"github.com/codewithboateng/lexcheck/internal/validator"
)

const defaultMaxUpload = 16 << 20

type analyzeReq struct {
	Text         string `json:"text"`
	DocumentType string `json:"document_type,omitempty"`
	Filename     string `json:"filename,omitempty"`
}

// POST /api/v1/analyze
//
// Accepts multipart form data (file + optional document_type) or a JSON body
// {text, document_type, filename}. An empty document_type is detected from
// the text.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	limit := s.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUpload
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	doc, docType, status, msg := s.readDocument(r, limit)
	if status != 0 {
		s.err(w, status, msg)
		return
	}

	run, err := s.Analyzer.Run(r.Context(), doc, docType)
	if errors.Is(err, validator.ErrEmptyText) {
		s.err(w, http.StatusBadRequest, "Could not read file content")
		return
	}
	if err != nil {
		s.logger().Error("analysis failed", "source", doc.Source, "error", err)
		s.err(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	if s.DB != nil {
		if err := s.DB.SaveRun(&run); err != nil {
			s.logger().Error("save run failed", "run", run.ID, "error", err)
		}
	}
	if s.Publisher != nil {
		if err := s.Publisher.Publish(r.Context(), &run); err != nil {
			s.logger().Warn("publish run failed", "run", run.ID, "error", err)
		}
	}
	s.logger().Info("document analyzed",
		"run", run.ID,
		"source", run.Source,
		"document_type", run.DocumentType,
		"flaws", run.Report.TotalFlaws,
		"compliant", run.Report.IsCompliant())
	writeJSON(w, http.StatusOK, run)
}

// readDocument returns a non-zero status with a message on client errors.
func (s *Server) readDocument(r *http.Request, limit int64) (ir.Document, string, int, string) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mt == "multipart/form-data" {
		if err := r.ParseMultipartForm(limit); err != nil {
			return ir.Document{}, "", bodyErrStatus(err), "invalid upload: " + err.Error()
		}
		file, hdr, err := r.FormFile("file")
		if err != nil {
			return ir.Document{}, "", http.StatusBadRequest, "No file provided"
		}
		defer file.Close()
		name := filepath.Base(hdr.Filename)
		if hdr.Filename == "" || name == "." {
			return ir.Document{}, "", http.StatusBadRequest, "No file selected"
		}
		if !parser.AllowedExtension(name) {
			return ir.Document{}, "", http.StatusBadRequest,
				"Invalid file type. Allowed: " + strings.Join(parser.AllowedExtensions(), ", ")
		}
		data, err := io.ReadAll(file)
		if err != nil {
			return ir.Document{}, "", http.StatusBadRequest, "Could not read file content"
		}
		doc, err := parser.Extract(name, data)
		if err != nil {
			return ir.Document{}, "", http.StatusBadRequest, "Could not read file content: " + err.Error()
		}
		return doc, r.FormValue("document_type"), 0, ""
	}

	var in analyzeReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return ir.Document{}, "", bodyErrStatus(err), "invalid json"
	}
	src := filepath.Base(in.Filename)
	if in.Filename == "" {
		src = "inline"
	}
	return ir.Document{Source: src, Format: "txt", Text: in.Text}, in.DocumentType, 0, ""
}

func bodyErrStatus(err error) int {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
