package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jonboulle/clockwork"

	"github.com/jengzang/retention-backend-go/internal/analysis"
	"github.com/jengzang/retention-backend-go/internal/analysis/marketing"
	"github.com/jengzang/retention-backend-go/internal/config"
	"github.com/jengzang/retention-backend-go/internal/models"
)

// MarketingService scores TV programs over the current ad ledger snapshot
type MarketingService struct {
	loader    *DatasetLoader
	dashboard *config.Dashboard
	clock     clockwork.Clock
	logger    *slog.Logger
}

// NewMarketingService creates a new marketing service
func NewMarketingService(loader *DatasetLoader, dashboard *config.Dashboard, clock clockwork.Clock, logger *slog.Logger) *MarketingService {
	return &MarketingService{
		loader:    loader,
		dashboard: dashboard,
		clock:     clock,
		logger:    logger,
	}
}

// Timezones lists the timezones of the cleaned ledger
func (s *MarketingService) Timezones(ctx context.Context, f models.MarketingFilter) (*models.Report[[]string], error) {
	snap, records, err := s.cleaned(ctx, f.RemoveOutliers)
	if err != nil {
		return nil, err
	}
	return report(s.loader, s.clock, snap.Version, "marketing.timezones", cleanParams(f), func() ([]string, error) {
		return marketing.Timezones(records), nil
	})
}

// UserStats reports spot-level user statistics per timezone of the cleaned ledger
func (s *MarketingService) UserStats(ctx context.Context, f models.MarketingFilter) (*models.Report[[]models.TimezoneUserStats], error) {
	snap, records, err := s.cleaned(ctx, f.RemoveOutliers)
	if err != nil {
		return nil, err
	}
	return report(s.loader, s.clock, snap.Version, "marketing.user_stats", cleanParams(f), func() ([]models.TimezoneUserStats, error) {
		return marketing.TimezoneUserStats(records), nil
	})
}

// UserHistogram bins spot-level users of one timezone, the first one when unset
func (s *MarketingService) UserHistogram(ctx context.Context, f models.MarketingFilter) (*models.Report[models.UserHistogram], error) {
	snap, records, err := s.cleaned(ctx, f.RemoveOutliers)
	if err != nil {
		return nil, err
	}

	timezone := f.Timezone
	if timezone == "" {
		timezones := marketing.Timezones(records)
		if len(timezones) == 0 {
			return nil, fmt.Errorf("no timezones in ledger: %w", analysis.ErrEmptyDataset)
		}
		timezone = timezones[0]
	}

	params := struct {
		RemoveOutliers bool
		Timezone       string
	}{f.RemoveOutliers, timezone}

	return report(s.loader, s.clock, snap.Version, "marketing.user_histogram", params, func() (models.UserHistogram, error) {
		return marketing.UserHistogram(records, timezone, s.dashboard.Histogram.UserBinWidth)
	})
}

// Programs returns the program aggregates passing the user threshold with
// their summary statistics and distributions
func (s *MarketingService) Programs(ctx context.Context, f models.MarketingFilter) (*models.Report[models.ProgramOverview], error) {
	if err := finite("threshold", f.Threshold); err != nil {
		return nil, err
	}
	snap, records, err := s.cleaned(ctx, f.RemoveOutliers)
	if err != nil {
		return nil, err
	}

	params := struct {
		RemoveOutliers bool
		Threshold      float64
	}{f.RemoveOutliers, f.Threshold}

	return report(s.loader, s.clock, snap.Version, "marketing.programs", params, func() (models.ProgramOverview, error) {
		aggregates, err := marketing.FilterByUserThreshold(marketing.AggregateByProgram(records), f.Threshold)
		if err != nil {
			return models.ProgramOverview{}, err
		}

		desc, err := marketing.Describe(aggregates)
		if err != nil {
			return models.ProgramOverview{}, fmt.Errorf("no programs above threshold %v: %w", f.Threshold, err)
		}

		overview := models.ProgramOverview{
			Threshold:       f.Threshold,
			Programs:        aggregates,
			CountByTimezone: marketing.CountByTimezone(aggregates),
			Description:     desc,
		}
		for _, field := range []models.AggregateField{models.FieldTotalImpression, models.FieldTotalUsers} {
			h, err := marketing.AggregateHistogram(aggregates, field, s.dashboard.Histogram.AggregateBinWidth)
			if err != nil {
				return models.ProgramOverview{}, err
			}
			overview.Histograms = append(overview.Histograms, h)
		}
		return overview, nil
	})
}

// Ranking scores the programs passing the user threshold in the requested
// timezones, all timezones when none are given
func (s *MarketingService) Ranking(ctx context.Context, f models.MarketingFilter) (*models.Report[models.ProgramRanking], error) {
	for name, v := range map[string]float64{"threshold": f.Threshold, "exponent": f.Exponent} {
		if err := finite(name, v); err != nil {
			return nil, err
		}
	}
	snap, records, err := s.cleaned(ctx, f.RemoveOutliers)
	if err != nil {
		return nil, err
	}

	timezones := append([]string(nil), f.Timezones...)
	if len(timezones) == 0 {
		timezones = marketing.Timezones(records)
	}
	sort.Strings(timezones)

	params := struct {
		RemoveOutliers bool
		Threshold      float64
		Exponent       float64
		Timezones      []string
	}{f.RemoveOutliers, f.Threshold, f.Exponent, timezones}

	return report(s.loader, s.clock, snap.Version, "marketing.ranking", params, func() (models.ProgramRanking, error) {
		aggregates, err := marketing.FilterByUserThreshold(marketing.AggregateByProgram(records), f.Threshold)
		if err != nil {
			return models.ProgramRanking{}, err
		}
		return marketing.RankPrograms(aggregates, f.Exponent, timezones)
	})
}

// cleaned returns the ad snapshot and its cleaned ledger, memoised per snapshot
func (s *MarketingService) cleaned(ctx context.Context, removeOutliers bool) (*Snapshot[models.AdSpotRecord], []models.AdSpotRecord, error) {
	snap, err := s.loader.AdSpots(ctx)
	if err != nil {
		return nil, nil, err
	}

	params := struct {
		RemoveOutliers bool
		Floor          string
	}{removeOutliers, s.dashboard.AdTimeFloor.Format(models.DateLayout)}

	records, err := memo(s.loader.Results(), snap.Version, "marketing.clean", params, func() ([]models.AdSpotRecord, error) {
		return marketing.CleanLedger(snap.Rows, s.dashboard.AdTimeFloor, removeOutliers), nil
	})
	if err != nil {
		return nil, nil, err
	}
	return snap, records, nil
}

func cleanParams(f models.MarketingFilter) any {
	return struct{ RemoveOutliers bool }{f.RemoveOutliers}
}
