package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/dmagro/sidecar-payouts/internal/payouts"
	"github.com/dmagro/sidecar-payouts/internal/pipeline"
	"github.com/dmagro/sidecar-payouts/internal/stats"
)

// Colors for status indicators
var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// DisableColors turns off ANSI escapes for every renderer in this package.
func DisableColors() {
	color.NoColor = true
}

// Options tunes terminal rendering of a payouts report.
type Options struct {
	// Decimals shifts totals into token units when positive.
	Decimals int32
	Symbol   string
	ShowEras bool
	Chart    bool
}

// RenderTerminal writes the stage lines, each account's outcome and the
// final total.
func RenderTerminal(w io.Writer, report *pipeline.Report, opts Options) {
	fmt.Fprintf(w, "%s %s\n", bold("Sidecar:"), report.BaseURL)
	fmt.Fprintf(w, "%s %s\n", bold("Chain:"), cyan(report.Chain))
	fmt.Fprintf(w, "%s %d (%s)\n", bold("Depth:"), report.Depth, report.Policy)

	for _, ar := range report.Accounts {
		fmt.Fprintln(w)
		renderAccount(w, ar, opts)
	}

	if len(report.Accounts) > 1 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s\n", bold("Total Payout (all accounts),"), formatTotal(report.Total(), opts))
	}
}

func renderAccount(w io.Writer, ar pipeline.AccountReport, opts Options) {
	s := ar.Summary

	fmt.Fprintf(w, "%s %s\n", bold("Account:"), ar.Account)
	fmt.Fprintf(w, "  Query: %s\n", ar.URL)

	switch s.Outcome {
	case payouts.OutcomeNoEras:
		fmt.Fprintf(w, "  %s There is 0 payout\n", yellow("•"))
	case payouts.OutcomeNoPayoutsForDepth:
		fmt.Fprintf(w, "  %s There is no payouts for given depth\n", yellow("•"))
	case payouts.OutcomeEmptyEra:
		fmt.Fprintf(w, "  %s Era %s has 0 payout, later eras not counted\n", yellow("⚠"), s.StoppedEra)
	case payouts.OutcomeMissingPayouts:
		fmt.Fprintf(w, "  %s Era %s came without payouts, later eras not counted\n", yellow("⚠"), s.StoppedEra)
	}
	if s.SkippedEras > 0 {
		fmt.Fprintf(w, "  %s Skipped %d era(s) without payouts\n", yellow("⚠"), s.SkippedEras)
	}

	if opts.ShowEras && len(s.Eras) > 0 {
		renderEraTable(w, s.Eras, opts)
	}
	if opts.Chart && len(s.Eras) > 1 {
		fmt.Fprintln(w, EraChart(s.Eras, ar.Account))
	}

	label := "Total Payout,"
	if s.Outcome.Stopped() {
		label = "Partial Payout,"
	}
	fmt.Fprintf(w, "%s %s\n", bold(label), formatTotal(s.Total, opts))
}

func renderEraTable(w io.Writer, eras []payouts.EraTotal, opts Options) {
	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	tbl := table.New("Era", "Entries", "Unclaimed", "Total").WithWriter(w)
	tbl.WithHeaderFormatter(headerFmt)

	for _, era := range eras {
		total := formatTotal(era.Total, opts)
		if era.Skipped {
			total = yellow("skipped")
		}
		tbl.AddRow(era.Label, era.Entries, era.Counted, total)
	}

	tbl.Print()

	var totals []float64
	for _, era := range eras {
		if !era.Skipped {
			totals = append(totals, era.Total)
		}
	}
	if len(totals) > 1 {
		d := stats.Distribute(totals)
		fmt.Fprintf(w, "  Per era: mean %s, median %s, p95 %s, max %s\n",
			formatFloat(d.Mean), formatFloat(d.P50), formatFloat(d.P95), formatFloat(d.Max))
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatTotal prints the raw float without rounding, followed by the token
// amount when decimals are configured.
func formatTotal(total float64, opts Options) string {
	raw := formatFloat(total)
	if opts.Decimals <= 0 {
		return green(raw)
	}
	return fmt.Sprintf("%s (%s)", green(raw), payouts.FormatUnits(total, opts.Decimals, opts.Symbol))
}
