package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dmagro/sidecar-payouts/internal/pipeline"
)

// JSONReport is the machine-readable form of a payouts run.
type JSONReport struct {
	*pipeline.Report
	TotalPayout float64 `json:"total"`
}

// JSONFailure is written instead of a report when a stage fails.
type JSONFailure struct {
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// NewJSONReport attaches the grand total to report.
func NewJSONReport(report *pipeline.Report) JSONReport {
	return JSONReport{Report: report, TotalPayout: report.Total()}
}

// RenderJSON writes v as one indented JSON document.
func RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}
