// Package parser turns files on disk (or uploaded bytes) into plain
// document text for validation.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codewithboateng/lexcheck/internal/ir"
)

// ErrUnsupportedFormat is returned for extensions with no text extractor.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// maxFileBytes caps a single input document.
const maxFileBytes = 16 << 20

var allowedExt = map[string]bool{
	".txt":  true,
	".md":   true,
	".doc":  true,
	".docx": true,
	".pdf":  true,
	".html": true,
	".htm":  true,
}

// AllowedExtension reports whether name has an extension accepted for upload.
// PDF is accepted here but Extract rejects it.
func AllowedExtension(name string) bool {
	return allowedExt[strings.ToLower(filepath.Ext(name))]
}

// AllowedExtensions returns the accepted extensions without dots, sorted.
func AllowedExtensions() []string {
	out := make([]string, 0, len(allowedExt))
	for e := range allowedExt {
		out = append(out, strings.TrimPrefix(e, "."))
	}
	sort.Strings(out)
	return out
}

type Diagnostics struct {
	Warnings []string
}

// Load reads and extracts a single file.
func Load(path string) (ir.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ir.Document{}, err
	}
	if info.Size() > maxFileBytes {
		return ir.Document{}, fmt.Errorf("%s: file larger than %d bytes", path, maxFileBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ir.Document{}, err
	}
	doc, err := Extract(filepath.Base(path), data)
	if err != nil {
		return ir.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	doc.Source = filepath.Clean(path)
	return doc, nil
}

// Parse walks root (a file or directory) and loads every supported document.
// Unreadable files become warnings.
func Parse(root string) ([]ir.Document, Diagnostics) {
	var docs []ir.Document
	diags := Diagnostics{}

	_ = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			diags.Warnings = append(diags.Warnings, err.Error())
			return nil
		}
		if d.IsDir() || !AllowedExtension(d.Name()) {
			return nil
		}
		doc, lerr := Load(p)
		if lerr != nil {
			slog.Debug("skip document", "path", p, "error", lerr)
			diags.Warnings = append(diags.Warnings, lerr.Error())
			return nil
		}
		if strings.TrimSpace(doc.Text) == "" {
			diags.Warnings = append(diags.Warnings, p+": no text extracted")
			return nil
		}
		docs = append(docs, doc)
		return nil
	})

	if len(docs) == 0 {
		diags.Warnings = append(diags.Warnings, "no readable documents found under "+root)
	}
	return docs, diags
}
