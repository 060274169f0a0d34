package reporting

import (
	"fmt"

	"github.com/codewithboateng/lexcheck/internal/ir"
)

// Summary is the one-line verdict shown above a report.
func Summary(r ir.Report) string {
	switch crit, high := r.Count(ir.SeverityCritical), r.Count(ir.SeverityHigh); {
	case r.IsCompliant() && r.TotalFlaws == 0:
		return "Document is legally compliant with no significant issues found."
	case crit > 0:
		return fmt.Sprintf("CRITICAL: Document has %d critical issue(s) that must be addressed. Total: %d issues found.", crit, r.TotalFlaws)
	case high > 0:
		return fmt.Sprintf("WARNING: Document has %d high-priority issue(s) requiring attention. Total: %d issues found.", high, r.TotalFlaws)
	default:
		return fmt.Sprintf("Document has %d minor issue(s) that should be reviewed.", r.TotalFlaws)
	}
}
