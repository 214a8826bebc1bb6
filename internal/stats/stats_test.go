package stats

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAverageAndMedian(t *testing.T) {
	tests := []struct {
		name        string
		samples     []float64
		wantAverage float64
		wantMedian  float64
	}{
		{
			name:        "single sample",
			samples:     []float64{247},
			wantAverage: 247,
			wantMedian:  247,
		},
		{
			name:        "even count",
			samples:     []float64{1, 102, 103, 104},
			wantAverage: 77.5,
			wantMedian:  102.5,
		},
		{
			name:        "odd count unsorted",
			samples:     []float64{9, 1, 5},
			wantAverage: 5,
			wantMedian:  5,
		},
		{
			name:        "even count unsorted",
			samples:     []float64{104, 1, 103, 102},
			wantAverage: 77.5,
			wantMedian:  102.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avg, err := Average(tt.samples)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAverage, avg)

			med, err := Median(tt.samples)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMedian, med)
		})
	}
}

func TestEmptyInput(t *testing.T) {
	_, err := Average(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Median([]float64{})
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Summarize(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestMedianDoesNotReorderInput(t *testing.T) {
	samples := []float64{3, 1, 2}
	_, err := Median(samples)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, samples)
}

func TestSummarize(t *testing.T) {
	summary, err := Summarize([]float64{1, 102, 103, 104})
	require.NoError(t, err)
	assert.Equal(t, Summary{Count: 4, Average: 77.5, Median: 102.5}, summary)
}

func TestStatsBoundedBySamples(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		samples := rapid.SliceOfN(rapid.Float64Range(0, 1e6), 1, 200).Draw(t, "samples")
		lo, hi := slices.Min(samples), slices.Max(samples)

		avg, err := Average(samples)
		if err != nil {
			t.Fatalf("Average: %v", err)
		}
		// summation error stays well below this tolerance for the drawn range
		if avg < lo-1e-6 || avg > hi+1e-6 {
			t.Fatalf("average %v outside [%v, %v]", avg, lo, hi)
		}

		med, err := Median(samples)
		if err != nil {
			t.Fatalf("Median: %v", err)
		}
		if med < lo || med > hi {
			t.Fatalf("median %v outside [%v, %v]", med, lo, hi)
		}
	})
}
