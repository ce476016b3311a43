package models

import "github.com/jengzang/retention-backend-go/internal/stats"

// AggregateField names a numeric column of ProgramAggregate
type AggregateField string

const (
	FieldTotalImpression AggregateField = "total_impression"
	FieldTotalUsers      AggregateField = "total_users"
)

// UserHistogram is the distribution of spot-level users in one timezone
type UserHistogram struct {
	Timezone string      `json:"timezone"`
	BinWidth float64     `json:"bin_width"`
	Bins     []stats.Bin `json:"bins"`
}

// AggregateHistogram is the distribution of one program aggregate column
type AggregateHistogram struct {
	Field    AggregateField `json:"field"`
	BinWidth float64        `json:"bin_width"`
	Bins     []stats.Bin    `json:"bins"`
}

// AggregateDescription summarises the filtered program aggregates
type AggregateDescription struct {
	TotalImpression stats.Summary `json:"total_impression"`
	TotalUsers      stats.Summary `json:"total_users"`
}

// ProgramOverview is the filtered aggregate table with its summary views
type ProgramOverview struct {
	Threshold       float64              `json:"threshold"`
	Programs        []ProgramAggregate   `json:"programs"`
	CountByTimezone map[string]int       `json:"count_by_timezone"`
	Description     AggregateDescription `json:"description"`
	Histograms      []AggregateHistogram `json:"histograms"`
}
