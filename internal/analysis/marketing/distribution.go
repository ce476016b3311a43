package marketing

import (
	"errors"
	"fmt"

	"github.com/jengzang/retention-backend-go/internal/analysis"
	"github.com/jengzang/retention-backend-go/internal/models"
	"github.com/jengzang/retention-backend-go/internal/stats"
)

// Default histogram bin widths
const (
	DefaultUserBinWidth      = 1
	DefaultAggregateBinWidth = 20
)

// UserHistogram bins the spot-level users of one timezone
func UserHistogram(records []models.AdSpotRecord, timezone string, binWidth float64) (models.UserHistogram, error) {
	if binWidth <= 0 {
		binWidth = DefaultUserBinWidth
	}

	values := make([]float64, 0)
	for _, r := range records {
		if r.Timezone == timezone {
			values = append(values, r.Users)
		}
	}

	bins, err := histogram(values, binWidth)
	if err != nil {
		return models.UserHistogram{}, fmt.Errorf("failed to bin users of %s: %w", timezone, err)
	}
	return models.UserHistogram{Timezone: timezone, BinWidth: binWidth, Bins: bins}, nil
}

// AggregateHistogram bins one column of the program aggregates
func AggregateHistogram(aggregates []models.ProgramAggregate, field models.AggregateField,
	binWidth float64) (models.AggregateHistogram, error) {
	if binWidth <= 0 {
		binWidth = DefaultAggregateBinWidth
	}

	values, err := column(aggregates, field)
	if err != nil {
		return models.AggregateHistogram{}, err
	}

	bins, err := histogram(values, binWidth)
	if err != nil {
		return models.AggregateHistogram{}, fmt.Errorf("failed to bin %s: %w", field, err)
	}
	return models.AggregateHistogram{Field: field, BinWidth: binWidth, Bins: bins}, nil
}

// Describe summarises total impressions and total users of the aggregates
func Describe(aggregates []models.ProgramAggregate) (models.AggregateDescription, error) {
	if len(aggregates) == 0 {
		return models.AggregateDescription{}, analysis.ErrEmptyDataset
	}

	impressions, _ := column(aggregates, models.FieldTotalImpression)
	users, _ := column(aggregates, models.FieldTotalUsers)
	return models.AggregateDescription{
		TotalImpression: stats.Describe(impressions),
		TotalUsers:      stats.Describe(users),
	}, nil
}

func column(aggregates []models.ProgramAggregate, field models.AggregateField) ([]float64, error) {
	var get func(models.ProgramAggregate) float64
	switch field {
	case models.FieldTotalImpression:
		get = func(a models.ProgramAggregate) float64 { return a.TotalImpression }
	case models.FieldTotalUsers:
		get = func(a models.ProgramAggregate) float64 { return a.TotalUsers }
	default:
		return nil, analysis.InvalidParameter("field", field)
	}

	values := make([]float64, 0, len(aggregates))
	for _, a := range aggregates {
		values = append(values, get(a))
	}
	return values, nil
}

func histogram(values []float64, binWidth float64) ([]stats.Bin, error) {
	bins, err := stats.Histogram(values, binWidth)
	switch {
	case errors.Is(err, stats.ErrNoValues):
		return nil, analysis.ErrEmptyDataset
	case errors.Is(err, stats.ErrTooManyBins):
		return nil, analysis.InvalidParameter("bin_width", binWidth)
	}
	return bins, err
}
