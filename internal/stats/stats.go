// Package stats computes summary statistics over response time samples.
package stats

import (
	"errors"
	"slices"
)

// ErrEmptyInput is returned when a statistic is requested over zero samples.
var ErrEmptyInput = errors.New("stats: no samples")

// Summary holds the statistics reported at shutdown.
type Summary struct {
	Count   int
	Average float64
	Median  float64
}

// Average returns the arithmetic mean of samples.
func Average(samples []float64) (float64, error) {
	if len(samples) == 0 {
		return 0, ErrEmptyInput
	}

	var sum float64
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples)), nil
}

// Median returns the middle value of samples, or the mean of the two middle
// values when the count is even. The input slice is not modified.
func Median(samples []float64) (float64, error) {
	if len(samples) == 0 {
		return 0, ErrEmptyInput
	}

	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	middle := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[middle-1] + sorted[middle]) / 2, nil
	}
	return sorted[middle], nil
}

// Summarize computes both the average and the median of samples.
func Summarize(samples []float64) (Summary, error) {
	avg, err := Average(samples)
	if err != nil {
		return Summary{}, err
	}
	med, err := Median(samples)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Count: len(samples), Average: avg, Median: med}, nil
}
