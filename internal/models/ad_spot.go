package models

import "time"

// AdSpotRecord represents one purchased TV ad airing
type AdSpotRecord struct {
	Timezone   string    `json:"timezone" db:"timezone"`
	Channel    string    `json:"channel" db:"channel"`
	Program    string    `json:"program" db:"program"`
	AdTime     time.Time `json:"ad_time" db:"ad_time_ntz"`
	Spots      int       `json:"spots" db:"spot"`
	Cost       float64   `json:"cost" db:"cost"`
	Impression float64   `json:"impression" db:"impression"`
	Users      float64   `json:"users" db:"users"`
}

// ProgramKey identifies a program aggregate
type ProgramKey struct {
	Timezone string `json:"timezone"`
	Channel  string `json:"channel"`
	Program  string `json:"program"`
}

// Less orders keys by timezone, channel, then program
func (k ProgramKey) Less(o ProgramKey) bool {
	if k.Timezone != o.Timezone {
		return k.Timezone < o.Timezone
	}
	if k.Channel != o.Channel {
		return k.Channel < o.Channel
	}
	return k.Program < o.Program
}

// ProgramAggregate is the per-program sum of ad spots with timezone user statistics
type ProgramAggregate struct {
	ProgramKey
	TotalSpots      int     `json:"total_spots"`
	TotalCost       float64 `json:"total_cost"`
	TotalImpression float64 `json:"total_impression"`
	TotalUsers      float64 `json:"total_users"`
	UsersMean       float64 `json:"users_mean"` // population, per timezone
	UsersStd        float64 `json:"users_std"`  // population, per timezone
}

// Record converts the aggregate back into a single ledger row carrying its sums
func (a ProgramAggregate) Record() AdSpotRecord {
	return AdSpotRecord{
		Timezone:   a.Timezone,
		Channel:    a.Channel,
		Program:    a.Program,
		Spots:      a.TotalSpots,
		Cost:       a.TotalCost,
		Impression: a.TotalImpression,
		Users:      a.TotalUsers,
	}
}

// ProgramScore is a program aggregate with its cost-effectiveness scores
type ProgramScore struct {
	ProgramAggregate
	CPU         float64 `json:"cpu"`          // cost per user
	UPM         float64 `json:"upm"`          // users per impression
	CPUWeighted float64 `json:"cpu_weighted"` // cpu^exponent
	Rating      float64 `json:"rating"`       // upm / cpu_weighted
}

// ProgramRanking holds the two orderings of the scored programs
type ProgramRanking struct {
	Exponent      float64        `json:"exponent"`
	Timezones     []string       `json:"timezones"`
	CostEffective []ProgramScore `json:"cost_effective"` // timezone asc, cpu asc
	Recommended   []ProgramScore `json:"recommended"`    // timezone asc, rating desc
}

// TimezoneUserStats summarises spot-level users within one timezone
type TimezoneUserStats struct {
	Timezone string  `json:"timezone"`
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
}
