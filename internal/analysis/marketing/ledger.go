// Package marketing scores TV programs by how cheaply they acquire users.
package marketing

import (
	"sort"
	"time"

	"github.com/jengzang/retention-backend-go/internal/models"
	"github.com/jengzang/retention-backend-go/internal/stats"
)

// OutlierSigma is the number of standard deviations above the timezone mean
// past which a spot's users count is treated as an outlier
const OutlierSigma = 5

// CleanLedger drops free spots, spots without impressions and spots aired
// before floor. With removeOutliers it also drops spots whose users exceed
// the timezone mean by more than OutlierSigma standard deviations, measured
// on the already filtered rows.
func CleanLedger(records []models.AdSpotRecord, floor time.Time, removeOutliers bool) []models.AdSpotRecord {
	out := make([]models.AdSpotRecord, 0, len(records))
	for _, r := range records {
		if r.Cost == 0 || r.Impression == 0 {
			continue
		}
		if r.AdTime.Before(floor) {
			continue
		}
		out = append(out, r)
	}

	if !removeOutliers {
		return out
	}

	limits := make(map[string]float64)
	for _, s := range TimezoneUserStats(out) {
		limits[s.Timezone] = s.Mean + OutlierSigma*s.Std
	}

	kept := out[:0]
	for _, r := range out {
		if r.Users <= limits[r.Timezone] {
			kept = append(kept, r)
		}
	}
	return kept
}

// TimezoneUserStats reports the mean and sample standard deviation of
// spot-level users per timezone, sorted by timezone. A timezone with a single
// spot has a zero deviation.
func TimezoneUserStats(records []models.AdSpotRecord) []models.TimezoneUserStats {
	users := make(map[string][]float64)
	for _, r := range records {
		users[r.Timezone] = append(users[r.Timezone], r.Users)
	}

	out := make([]models.TimezoneUserStats, 0, len(users))
	for tz, values := range users {
		out = append(out, models.TimezoneUserStats{
			Timezone: tz,
			Count:    len(values),
			Mean:     stats.Mean(values),
			Std:      stats.StdDev(values),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timezone < out[j].Timezone
	})
	return out
}

// Timezones lists the distinct timezones of the ledger in ascending order
func Timezones(records []models.AdSpotRecord) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		if _, ok := seen[r.Timezone]; ok {
			continue
		}
		seen[r.Timezone] = struct{}{}
		out = append(out, r.Timezone)
	}
	sort.Strings(out)
	return out
}
