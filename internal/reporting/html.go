package reporting

import (
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"

	"github.com/codewithboateng/lexcheck/internal/ir"
)

var severityColor = map[ir.Severity]string{
	ir.SeverityCritical: "#c62828",
	ir.SeverityHigh:     "#ef6c00",
	ir.SeverityMedium:   "#f9a825",
	ir.SeverityLow:      "#1565c0",
}

// RenderHTML writes a standalone HTML page for run.
func RenderHTML(w io.Writer, run *ir.Run) error {
	r := run.Report
	ew := &errWriter{w: w}

	// Head + styles
	ew.printf("<!doctype html><html><head><meta charset='utf-8'><title>%s</title>", html.EscapeString(run.ID))
	ew.printf("<style>body{font-family:system-ui,Arial,sans-serif;padding:20px;line-height:1.4} table{border-collapse:collapse;margin:8px 0} td,th{border:1px solid #ddd;padding:6px;vertical-align:top} h1,h2{margin:6px 0 4px} .dim{color:#666} .mono{font-family:ui-monospace,Menlo,Consolas,monospace} .sev{font-weight:600}</style>")
	ew.printf("</head><body>")

	// Title + summary
	ew.printf("<h1>lexcheck report – <span class='mono'>%s</span></h1>", html.EscapeString(run.ID))
	ew.printf("<p>Source: <span class='mono'>%s</span> &nbsp; Type: %s</p>",
		html.EscapeString(run.Source), html.EscapeString(string(run.DocumentType)))
	ew.printf("<p><b>%s</b></p>", html.EscapeString(run.Summary))

	compliance := "Compliant"
	if !r.IsCompliant() {
		compliance = "Non-compliant"
	}
	ew.printf("<p>%s &nbsp; Valid: %t &nbsp; Confidence: %.2f", compliance, r.IsValid, r.Confidence)
	if r.Degraded {
		ew.printf(" <span class='dim'>(classifier unavailable)</span>")
	}
	if r.Waived > 0 {
		ew.printf(" &nbsp; Waived: %d", r.Waived)
	}
	ew.printf("</p>")

	// Counts
	ew.printf("<table><tr>")
	for _, s := range ir.Severities() {
		ew.printf("<th>%s</th>", s)
	}
	ew.printf("</tr><tr>")
	for _, s := range ir.Severities() {
		ew.printf("<td>%d</td>", r.Count(s))
	}
	ew.printf("</tr></table>")

	if len(r.Flaws) == 0 {
		ew.printf("<h2>Flaws</h2><p class='dim'>No flaws found.</p>")
	} else {
		ew.printf("<h2>Flaws</h2><table><tr><th>Severity</th><th>Type</th><th>Location</th><th>Description</th><th>Suggestion</th><th>Evidence</th></tr>")
		for _, f := range r.Flaws {
			ew.printf("<tr><td class='sev' style='color:%s'>%s</td><td class='mono'>%s</td><td>%s</td><td>%s</td><td>%s</td><td class='mono'>%s</td></tr>",
				severityColor[f.Severity],
				html.EscapeString(string(f.Severity)),
				html.EscapeString(f.FlawType),
				html.EscapeString(f.Location),
				html.EscapeString(f.Description),
				html.EscapeString(f.Suggestion),
				html.EscapeString(f.Evidence),
			)
		}
		ew.printf("</table>")
	}

	ew.printf("</body></html>")
	return ew.err
}

// WriteHTML writes <outDir>/<run.ID>.html and returns its path.
func WriteHTML(outDir string, run *ir.Run) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, run.ID+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := RenderHTML(f, run); err != nil {
		return "", err
	}
	return path, nil
}

// errWriter keeps the first write error so rendering code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
