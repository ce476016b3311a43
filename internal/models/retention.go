package models

import (
	"time"

	"github.com/jengzang/retention-backend-go/internal/stats"
)

// MonthlySummaryRow is one cohort month of the repurchase summary
type MonthlySummaryRow struct {
	YearMonth                string  `json:"year_month"`
	OrderCount               int     `json:"order_count"`
	RepurchaseCount          int     `json:"repurchase_count"`
	MattressRepurchaseCount  int     `json:"mattress_repurchase_count"`
	AccessoryRepurchaseCount int     `json:"accessory_repurchase_count"`
	RepurchasePct            Percent `json:"all_repurchase_pct"`
	MattressRepurchasePct    Percent `json:"mattress_repurchase_pct"`
	AccessoryRepurchasePct   Percent `json:"accessory_repurchase_pct"`
}

// OverallSummary is the repurchase snapshot over a whole filtered set
type OverallSummary struct {
	TotalOrders        int     `json:"total_orders"`
	RepeatPct          Percent `json:"repeat_pct"`
	RepeatMattressPct  Percent `json:"repeat_mattress_pct"`
	RepeatAccessoryPct Percent `json:"repeat_accessory_pct"`
}

// Delay bucket names
const (
	BucketBaseline = "baseline"
	BucketRecent   = "recent"
	BucketSelected = "selected"
)

// DelayBucket is a named sub-population of repurchases, defined by the
// cohort months it covers
type DelayBucket struct {
	Name   string   `json:"name" yaml:"name"`
	Label  string   `json:"label" yaml:"label"`
	Months []string `json:"months" yaml:"months"`
}

// DelayDistribution is the percent-normalised histogram of week delays for one bucket
type DelayDistribution struct {
	Bucket   string      `json:"bucket"`
	Label    string      `json:"label,omitempty"`
	Months   []string    `json:"months"`
	Count    int         `json:"count"`
	BinWidth float64     `json:"bin_width"`
	Empty    bool        `json:"empty"`
	Bins     []stats.Bin `json:"bins"`
}

// PurchaseSequenceRow is the share of all orders reaching the Nth purchase
type PurchaseSequenceRow struct {
	NthOrder   int     `json:"nth_order"`
	OrderCount int     `json:"order_count"`
	PctOfAll   Percent `json:"pct_of_all_orders"`
}

// PurchaseSequenceTable is the Nth-order distribution with its denominator
type PurchaseSequenceTable struct {
	TotalOrders int                   `json:"total_orders"`
	Rows        []PurchaseSequenceRow `json:"rows"`
}

// Report wraps a result table with the dataset snapshot it was computed from
type Report[T any] struct {
	DatasetVersion string    `json:"dataset_version"`
	GeneratedAt    time.Time `json:"generated_at"`
	Data           T         `json:"data"`
}
