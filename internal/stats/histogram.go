package stats

import (
	"errors"
	"math"
)

// ErrNoValues is returned when a computation needs at least one value.
var ErrNoValues = errors.New("no values")

// ErrTooManyBins is returned when a bin width would split the value range
// into more than MaxBins bins.
var ErrTooManyBins = errors.New("too many bins")

// MaxBins bounds the number of bins a single histogram may have
const MaxBins = 10000

// Bin is one equal-width histogram bin covering [Lower, Upper).
// The last bin of a histogram also includes its upper edge.
type Bin struct {
	Lower   float64 `json:"lower"`
	Upper   float64 `json:"upper"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// BinCount returns ceil((max-min)/binWidth), or 1 when all values are equal.
func BinCount(min, max, binWidth float64) int {
	n := int(math.Ceil((max - min) / binWidth))
	if n < 1 {
		return 1
	}
	return n
}

// Histogram bins values into equal-width bins of binWidth starting at the
// minimum value. Percent is the share of all values falling in the bin.
func Histogram(values []float64, binWidth float64) ([]Bin, error) {
	if len(values) == 0 {
		return nil, ErrNoValues
	}
	if binWidth <= 0 || math.IsNaN(binWidth) || math.IsInf(binWidth, 0) {
		return nil, errors.New("bin width must be positive and finite")
	}

	min, max := Min(values), Max(values)
	if math.Ceil((max-min)/binWidth) > MaxBins {
		return nil, ErrTooManyBins
	}
	n := BinCount(min, max, binWidth)

	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Lower = min + float64(i)*binWidth
		bins[i].Upper = min + float64(i+1)*binWidth
	}

	for _, v := range values {
		idx := int((v - min) / binWidth)
		if idx >= n {
			idx = n - 1
		}
		bins[idx].Count++
	}

	total := float64(len(values))
	for i := range bins {
		bins[i].Percent = float64(bins[i].Count) / total * 100
	}
	return bins, nil
}
