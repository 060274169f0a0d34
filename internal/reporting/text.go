package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/codewithboateng/lexcheck/internal/ir"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4CAF50"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	sevStyles  = map[ir.Severity]lipgloss.Style{
		ir.SeverityCritical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5555")),
		ir.SeverityHigh:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA94D")),
		ir.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD43B")),
		ir.SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("#74C0FC")),
	}
)

// RenderText returns a terminal report. Colours are dropped automatically
// when the output is not a TTY.
func RenderText(run *ir.Run) string {
	r := run.Report
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  [%s]", displaySource(run), run.DocumentType)))
	b.WriteByte('\n')
	if r.IsCompliant() {
		b.WriteString(okStyle.Render("COMPLIANT"))
	} else {
		b.WriteString(failStyle.Render("NON-COMPLIANT"))
	}
	b.WriteString("  " + run.Summary + "\n")

	meta := fmt.Sprintf("valid=%t confidence=%.2f", r.IsValid, r.Confidence)
	if r.Degraded {
		meta += " (classifier unavailable)"
	}
	if r.Waived > 0 {
		meta += fmt.Sprintf(" waived=%d", r.Waived)
	}
	b.WriteString(dimStyle.Render(meta) + "\n")

	for _, f := range r.Flaws {
		sev := sevStyles[f.Severity].Render(fmt.Sprintf("%-8s", f.Severity))
		fmt.Fprintf(&b, "  %s %s  %s\n", sev, f.FlawType, dimStyle.Render(f.Location))
		fmt.Fprintf(&b, "           %s\n", f.Description)
		fmt.Fprintf(&b, "           %s %s\n", dimStyle.Render("fix:"), f.Suggestion)
		if f.Evidence != "" {
			fmt.Fprintf(&b, "           %s %q\n", dimStyle.Render("evidence:"), f.Evidence)
		}
	}
	return b.String()
}

// WriteText writes RenderText(run) to w.
func WriteText(w io.Writer, run *ir.Run) error {
	_, err := io.WriteString(w, RenderText(run))
	return err
}

func displaySource(run *ir.Run) string {
	if run.Source != "" {
		return run.Source
	}
	return run.ID
}
