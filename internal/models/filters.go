package models

import "time"

// DateLayout is the layout of date query parameters
const DateLayout = "2006-01-02"

// RetentionFilter holds the parameters of a retention query.
// Zero Start/End and BinWidth are replaced by dashboard defaults in the service.
type RetentionFilter struct {
	Start           time.Time `form:"start" time_format:"2006-01-02" time_utc:"1" json:"start"`
	End             time.Time `form:"end" time_format:"2006-01-02" time_utc:"1" json:"end"`
	RemoveShortTerm bool      `form:"remove_short_term" json:"remove_short_term"`
	Product         Product   `form:"product,default=all" json:"product"`
	Buckets         []string  `form:"buckets" json:"buckets"`
	Month           string    `form:"month" json:"month"`
	BinWidth        float64   `form:"bin_width" json:"bin_width"`
}

// MarketingFilter holds the parameters of a marketing query
type MarketingFilter struct {
	RemoveOutliers bool     `form:"remove_outliers" json:"remove_outliers"`
	Threshold      float64  `form:"threshold" json:"threshold"` // std units
	Exponent       float64  `form:"exponent,default=1" json:"exponent"`
	Timezones      []string `form:"timezones" json:"timezones"`
	Timezone       string   `form:"timezone" json:"timezone"`
}
