package marketing

import (
	"sort"

	"github.com/jengzang/retention-backend-go/internal/analysis"
	"github.com/jengzang/retention-backend-go/internal/models"
	"github.com/jengzang/retention-backend-go/internal/stats"
)

// AggregateByProgram sums spots, cost, impressions and users per
// (timezone, channel, program) and attaches the population mean and standard
// deviation of total users across the programs of each timezone.
// Rows are sorted by key.
func AggregateByProgram(records []models.AdSpotRecord) []models.ProgramAggregate {
	index := make(map[models.ProgramKey]int)
	out := make([]models.ProgramAggregate, 0)
	for _, r := range records {
		key := models.ProgramKey{Timezone: r.Timezone, Channel: r.Channel, Program: r.Program}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, models.ProgramAggregate{ProgramKey: key})
		}
		out[i].TotalSpots += r.Spots
		out[i].TotalCost += r.Cost
		out[i].TotalImpression += r.Impression
		out[i].TotalUsers += r.Users
	}

	users := make(map[string][]float64)
	for _, a := range out {
		users[a.Timezone] = append(users[a.Timezone], a.TotalUsers)
	}
	for i := range out {
		values := users[out[i].Timezone]
		out[i].UsersMean = stats.Mean(values)
		out[i].UsersStd = stats.PopulationStdDev(values)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ProgramKey.Less(out[j].ProgramKey)
	})
	return out
}

// FilterByUserThreshold keeps programs whose total users reach the timezone
// mean plus k standard deviations and that have impressions
func FilterByUserThreshold(aggregates []models.ProgramAggregate, k float64) ([]models.ProgramAggregate, error) {
	if k < 0 {
		return nil, analysis.InvalidParameter("threshold", k)
	}

	out := make([]models.ProgramAggregate, 0, len(aggregates))
	for _, a := range aggregates {
		if a.TotalUsers >= a.UsersMean+k*a.UsersStd && a.TotalImpression > 0 {
			out = append(out, a)
		}
	}
	return out, nil
}

// CountByTimezone counts programs per timezone
func CountByTimezone(aggregates []models.ProgramAggregate) map[string]int {
	out := make(map[string]int)
	for _, a := range aggregates {
		out[a.Timezone]++
	}
	return out
}
