package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/dmagro/sidecar-payouts/internal/history"
)

// RenderHistoryTerminal lists recorded runs, newest first.
func RenderHistoryTerminal(w io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, yellow("No recorded runs"))
		return
	}

	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	tbl := table.New("ID", "Recorded", "Chain", "Account", "Depth", "Policy", "Outcome", "Total").WithWriter(w)
	tbl.WithHeaderFormatter(headerFmt)

	for _, r := range runs {
		tbl.AddRow(
			r.ID,
			r.RecordedAt.Local().Format("2006-01-02 15:04:05"),
			r.Chain,
			r.Account,
			r.Depth,
			r.Policy,
			formatOutcome(r.Outcome),
			formatFloat(r.Total),
		)
	}

	tbl.Print()
}

func formatOutcome(outcome string) string {
	switch outcome {
	case "complete":
		return green(outcome)
	case "empty-era", "missing-payouts-array":
		return yellow(outcome)
	default:
		return outcome
	}
}
