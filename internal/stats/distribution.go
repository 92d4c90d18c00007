// Package stats summarises how unclaimed payouts spread over eras.
package stats

import (
	"math"
	"slices"
)

// Distribution describes a set of per-era totals.
type Distribution struct {
	Count int
	Mean  float64
	P50   float64
	P95   float64
	Max   float64
}

// Distribute computes the distribution of values. The input is not modified.
func Distribute(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var sum float64
	for _, v := range values {
		sum += v
	}

	return Distribution{
		Count: len(values),
		Mean:  sum / float64(len(values)),
		P50:   Percentile(sorted, 0.50),
		P95:   Percentile(sorted, 0.95),
		Max:   sorted[len(sorted)-1],
	}
}

// Percentile uses the nearest-rank method on an ascending slice.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}

	index := int(math.Ceil(float64(n)*p)) - 1
	if index >= n {
		index = n - 1
	}
	if index < 0 {
		index = 0
	}

	return sorted[index]
}
