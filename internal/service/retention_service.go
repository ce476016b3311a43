package service

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/jengzang/retention-backend-go/internal/analysis/retention"
	"github.com/jengzang/retention-backend-go/internal/config"
	"github.com/jengzang/retention-backend-go/internal/models"
)

// RetentionService computes repurchase metrics over the current order snapshot
type RetentionService struct {
	loader    *DatasetLoader
	dashboard *config.Dashboard
	clock     clockwork.Clock
	logger    *slog.Logger
}

// NewRetentionService creates a new retention service
func NewRetentionService(loader *DatasetLoader, dashboard *config.Dashboard, clock clockwork.Clock, logger *slog.Logger) *RetentionService {
	return &RetentionService{
		loader:    loader,
		dashboard: dashboard,
		clock:     clock,
		logger:    logger,
	}
}

// Normalize fills unset filter fields with dashboard defaults
func (s *RetentionService) Normalize(f models.RetentionFilter) models.RetentionFilter {
	if f.Start.IsZero() {
		f.Start = s.dashboard.DefaultStart
	}
	if f.End.IsZero() {
		f.End = s.clock.Now()
	}
	f.Start, f.End = models.DateOf(f.Start), models.DateOf(f.End)

	if f.Product == "" {
		f.Product = models.ProductAll
	}
	if f.BinWidth <= 0 {
		f.BinWidth = s.dashboard.Histogram.DelayBinWidth
	}
	if len(f.Buckets) == 0 {
		f.Buckets = append([]string(nil), s.dashboard.DefaultBuckets...)
	}
	return f
}

// Months lists the year-months holding repurchases, newest first
func (s *RetentionService) Months(ctx context.Context, f models.RetentionFilter) (*models.Report[[]string], error) {
	snap, err := s.loader.Orders(ctx)
	if err != nil {
		return nil, err
	}

	params := struct{ RemoveShortTerm bool }{f.RemoveShortTerm}
	return report(s.loader, s.clock, snap.Version, "retention.months", params, func() ([]string, error) {
		orders := retention.ApplyShortTermRepurchaseFilter(snap.Rows, f.RemoveShortTerm)
		return retention.Months(retention.Repurchases(orders)), nil
	})
}

// MonthlySummary computes the per-month repurchase summary within the filter's date range
func (s *RetentionService) MonthlySummary(ctx context.Context, f models.RetentionFilter) (*models.Report[[]models.MonthlySummaryRow], error) {
	f = s.Normalize(f)
	snap, err := s.loader.Orders(ctx)
	if err != nil {
		return nil, err
	}

	params := dateParams(f)
	return report(s.loader, s.clock, snap.Version, "retention.monthly", params, func() ([]models.MonthlySummaryRow, error) {
		orders, err := s.scoped(snap.Rows, f)
		if err != nil {
			return nil, err
		}
		return retention.MonthlySummary(orders), nil
	})
}

// OverallSummary computes the repurchase snapshot within the filter's date range.
// An empty range yields a report with undefined percentages together with
// analysis.ErrDivisionUndefined.
func (s *RetentionService) OverallSummary(ctx context.Context, f models.RetentionFilter) (*models.Report[models.OverallSummary], error) {
	f = s.Normalize(f)
	snap, err := s.loader.Orders(ctx)
	if err != nil {
		return nil, err
	}

	params := dateParams(f)
	return report(s.loader, s.clock, snap.Version, "retention.overall", params, func() (models.OverallSummary, error) {
		orders, err := s.scoped(snap.Rows, f)
		if err != nil {
			return models.OverallSummary{}, err
		}
		return retention.OverallSummary(orders)
	})
}

// DelayHistogram computes week-delay distributions for the selected buckets.
// Without an explicit month the selected bucket covers the newest month with repurchases.
func (s *RetentionService) DelayHistogram(ctx context.Context, f models.RetentionFilter) (*models.Report[[]models.DelayDistribution], error) {
	if err := finite("bin_width", f.BinWidth); err != nil {
		return nil, err
	}
	f = s.Normalize(f)
	snap, err := s.loader.Orders(ctx)
	if err != nil {
		return nil, err
	}

	params := struct {
		RemoveShortTerm bool
		Product         models.Product
		Buckets         []string
		Month           string
		BinWidth        float64
	}{f.RemoveShortTerm, f.Product, f.Buckets, f.Month, f.BinWidth}

	return report(s.loader, s.clock, snap.Version, "retention.delay", params, func() ([]models.DelayDistribution, error) {
		orders := retention.ApplyShortTermRepurchaseFilter(snap.Rows, f.RemoveShortTerm)

		month := f.Month
		if month == "" {
			if months := retention.Months(retention.Repurchases(orders)); len(months) > 0 {
				month = months[0]
			}
		}

		selections := f.Buckets
		if month == "" {
			selections = without(selections, models.BucketSelected)
		}
		return retention.DelayHistogram(orders, s.dashboard.DelayBuckets(month), selections, f.Product, f.BinWidth)
	})
}

// PurchaseSequence computes the Nth-order distribution within the filter's date range and product
func (s *RetentionService) PurchaseSequence(ctx context.Context, f models.RetentionFilter) (*models.Report[models.PurchaseSequenceTable], error) {
	f = s.Normalize(f)
	snap, err := s.loader.Orders(ctx)
	if err != nil {
		return nil, err
	}

	params := struct {
		Dates   any
		Product models.Product
	}{dateParams(f), f.Product}

	return report(s.loader, s.clock, snap.Version, "retention.sequence", params, func() (models.PurchaseSequenceTable, error) {
		orders, err := s.scoped(snap.Rows, f)
		if err != nil {
			return models.PurchaseSequenceTable{}, err
		}
		orders, err = retention.FilterByProduct(orders, f.Product)
		if err != nil {
			return models.PurchaseSequenceTable{}, err
		}
		return retention.PurchaseSequenceDistribution(orders), nil
	})
}

// scoped applies the short-term toggle and the date range
func (s *RetentionService) scoped(orders []models.Order, f models.RetentionFilter) ([]models.Order, error) {
	orders = retention.ApplyShortTermRepurchaseFilter(orders, f.RemoveShortTerm)
	return retention.FilterByDateRange(orders, f.Start, f.End)
}

func dateParams(f models.RetentionFilter) any {
	return struct {
		Start           string
		End             string
		RemoveShortTerm bool
	}{f.Start.Format(models.DateLayout), f.End.Format(models.DateLayout), f.RemoveShortTerm}
}

func without(values []string, drop string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != drop {
			out = append(out, v)
		}
	}
	return out
}
