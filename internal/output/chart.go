package output

import (
	"github.com/guptarohit/asciigraph"

	"github.com/dmagro/sidecar-payouts/internal/payouts"
)

const (
	chartHeight   = 8
	chartMinWidth = 20
)

// EraChart plots per-era unclaimed totals, oldest era first. Skipped eras
// plot as zero.
func EraChart(eras []payouts.EraTotal, caption string) string {
	if len(eras) == 0 {
		return ""
	}

	data := make([]float64, len(eras))
	for i, era := range eras {
		data[i] = era.Total
	}

	width := len(data) * 4
	if width < chartMinWidth {
		width = chartMinWidth
	}

	return asciigraph.Plot(data,
		asciigraph.Height(chartHeight),
		asciigraph.Width(width),
		asciigraph.Caption("unclaimed per era: "+caption),
	)
}
