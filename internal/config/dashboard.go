package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jengzang/retention-backend-go/internal/models"
)

//go:embed dashboard.yaml
var dashboardYAML []byte

// Dashboard holds the calendar configuration shared by the dashboards
type Dashboard struct {
	DefaultStartRaw string               `yaml:"default_start"`
	AdTimeFloorRaw  string               `yaml:"ad_time_floor"`
	Histogram       HistogramConfig      `yaml:"histogram"`
	SelectedLabel   string               `yaml:"selected_label"`
	Buckets         []models.DelayBucket `yaml:"buckets"`
	DefaultBuckets  []string             `yaml:"default_buckets"`

	DefaultStart time.Time `yaml:"-"`
	AdTimeFloor  time.Time `yaml:"-"`
}

// HistogramConfig holds default bin widths
type HistogramConfig struct {
	DelayBinWidth     float64 `yaml:"delay_bin_width"`
	UserBinWidth      float64 `yaml:"user_bin_width"`
	AggregateBinWidth float64 `yaml:"aggregate_bin_width"`
}

// DefaultDashboard returns the embedded dashboard configuration
func DefaultDashboard() (*Dashboard, error) {
	return parseDashboard(dashboardYAML)
}

// LoadDashboard reads the dashboard configuration from path, or the embedded
// default when path is empty
func LoadDashboard(path string) (*Dashboard, error) {
	if path == "" {
		return DefaultDashboard()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard config: %w", err)
	}
	return parseDashboard(data)
}

func parseDashboard(data []byte) (*Dashboard, error) {
	var d Dashboard
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse dashboard config: %w", err)
	}
	if err := d.validate(); err != nil {
		return nil, fmt.Errorf("invalid dashboard config: %w", err)
	}
	return &d, nil
}

func (d *Dashboard) validate() error {
	var err error
	if d.DefaultStart, err = time.Parse(models.DateLayout, d.DefaultStartRaw); err != nil {
		return fmt.Errorf("default_start: %w", err)
	}
	if d.AdTimeFloor, err = time.Parse(models.DateLayout, d.AdTimeFloorRaw); err != nil {
		return fmt.Errorf("ad_time_floor: %w", err)
	}

	h := &d.Histogram
	if h.DelayBinWidth < 0 || h.UserBinWidth < 0 || h.AggregateBinWidth < 0 {
		return fmt.Errorf("histogram bin widths must not be negative")
	}

	seen := make(map[string]bool, len(d.Buckets))
	for _, b := range d.Buckets {
		if b.Name == "" {
			return fmt.Errorf("bucket without name")
		}
		if b.Name == models.BucketSelected {
			return fmt.Errorf("bucket name %q is reserved for the selected month", b.Name)
		}
		if seen[b.Name] {
			return fmt.Errorf("duplicate bucket %q", b.Name)
		}
		seen[b.Name] = true

		if len(b.Months) == 0 {
			return fmt.Errorf("bucket %q has no months", b.Name)
		}
		for _, m := range b.Months {
			if _, err := time.Parse(models.YearMonthLayout, m); err != nil {
				return fmt.Errorf("bucket %q month %q: %w", b.Name, m, err)
			}
		}
	}

	for _, name := range d.DefaultBuckets {
		if name != models.BucketSelected && !seen[name] {
			return fmt.Errorf("default bucket %q is not defined", name)
		}
	}
	return nil
}

// DelayBuckets returns the configured buckets followed by the selected-month
// bucket for month. An empty month omits the selected bucket.
func (d *Dashboard) DelayBuckets(month string) []models.DelayBucket {
	out := make([]models.DelayBucket, 0, len(d.Buckets)+1)
	out = append(out, d.Buckets...)
	if month != "" {
		out = append(out, models.DelayBucket{
			Name:   models.BucketSelected,
			Label:  d.SelectedLabel,
			Months: []string{month},
		})
	}
	return out
}
