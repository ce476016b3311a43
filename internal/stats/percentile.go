package stats

// Percentile calculates the p-th percentile (0-100)
// Uses linear interpolation between closest ranks
func Percentile(values []float64, p float64) float64 {
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return Quantile(values, p/100.0)
}

// Summary is a describe-style summary of one numeric column.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"` // sample
	Min    float64 `json:"min"`
	P25    float64 `json:"p25"`
	Median float64 `json:"p50"`
	P75    float64 `json:"p75"`
	Max    float64 `json:"max"`
}

// Describe returns count, mean, sample std, min, quartiles and max of values.
// An empty input yields a zero Summary.
func Describe(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	return Summary{
		Count:  len(values),
		Mean:   Mean(values),
		Std:    StdDev(values),
		Min:    Min(values),
		P25:    Quantile(values, 0.25),
		Median: Quantile(values, 0.5),
		P75:    Quantile(values, 0.75),
		Max:    Max(values),
	}
}
