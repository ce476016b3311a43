package retention

import (
	"errors"
	"fmt"
	"math"

	"github.com/jengzang/retention-backend-go/internal/analysis"
	"github.com/jengzang/retention-backend-go/internal/models"
	"github.com/jengzang/retention-backend-go/internal/stats"
)

// DefaultBinWidth is the week-delay histogram bin width used when none is given
const DefaultBinWidth = 10

// DelayHistogram computes a percent-normalised histogram of repurchase week
// delays for each selected bucket, in selection order. Each bucket covers the
// repurchases of its cohort months that match product. A bucket without rows
// is returned empty rather than failing.
func DelayHistogram(orders []models.Order, buckets []models.DelayBucket, selections []string,
	product models.Product, binWidth float64) ([]models.DelayDistribution, error) {
	if binWidth <= 0 {
		binWidth = DefaultBinWidth
	}
	if math.IsNaN(binWidth) || math.IsInf(binWidth, 0) {
		return nil, analysis.InvalidParameter("bin_width", binWidth)
	}

	scoped, err := FilterByProduct(Repurchases(orders), product)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]models.DelayBucket, len(buckets))
	for _, b := range buckets {
		byName[b.Name] = b
	}

	out := make([]models.DelayDistribution, 0, len(selections))
	for _, name := range selections {
		bucket, ok := byName[name]
		if !ok {
			return nil, analysis.InvalidParameter("bucket", name)
		}

		delays := weekDelays(scoped, bucket.Months)
		dist := models.DelayDistribution{
			Bucket:   bucket.Name,
			Label:    bucket.Label,
			Months:   bucket.Months,
			Count:    len(delays),
			BinWidth: binWidth,
		}

		bins, err := stats.Histogram(delays, binWidth)
		switch {
		case errors.Is(err, stats.ErrNoValues):
			dist.Empty = true
			dist.Bins = []stats.Bin{}
		case errors.Is(err, stats.ErrTooManyBins):
			return nil, analysis.InvalidParameter("bin_width", binWidth)
		case err != nil:
			return nil, fmt.Errorf("failed to bin bucket %s: %w", name, err)
		default:
			dist.Bins = bins
		}
		out = append(out, dist)
	}
	return out, nil
}

func weekDelays(orders []models.Order, months []string) []float64 {
	want := make(map[string]struct{}, len(months))
	for _, m := range months {
		want[m] = struct{}{}
	}

	delays := make([]float64, 0)
	for _, o := range orders {
		if o.WeekDelay == nil {
			continue
		}
		if _, ok := want[o.YearMonth()]; ok {
			delays = append(delays, *o.WeekDelay)
		}
	}
	return delays
}
