package observability

import (
	"testing"
	"time"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("cab-a", "GET", "/health", 200, 12*time.Millisecond)
	RecordMarksInstalled("cab-a", "replace_all", 3)
	RecordMarksDropped("cab-a", 1)
	RecordReconcilePush("cab-a", "ok", 24*time.Millisecond)
}
