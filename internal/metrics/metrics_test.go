package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/codewithboateng/lexcheck/internal/ir"
)

func TestObserveReport(t *testing.T) {
	before := testutil.ToFloat64(Validations.WithLabelValues("NDA", "false"))
	critBefore := testutil.ToFloat64(Flaws.WithLabelValues("CRITICAL"))

	ObserveReport(ir.DocNDA, ir.Report{
		TotalFlaws: 2,
		Flaws: []ir.Flaw{
			{FlawType: "A", Severity: ir.SeverityCritical},
			{FlawType: "B", Severity: ir.SeverityCritical},
		},
	}, 5*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(Validations.WithLabelValues("NDA", "false")))
	assert.Equal(t, critBefore+2, testutil.ToFloat64(Flaws.WithLabelValues("CRITICAL")))
}
