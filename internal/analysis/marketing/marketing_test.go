package marketing

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/retention-backend-go/internal/analysis"
	"github.com/jengzang/retention-backend-go/internal/models"
)

var floor = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

func spot(tz, channel, program string, cost, impression, users float64) models.AdSpotRecord {
	return models.AdSpotRecord{
		Timezone:   tz,
		Channel:    channel,
		Program:    program,
		AdTime:     floor.AddDate(0, 2, 0),
		Spots:      1,
		Cost:       cost,
		Impression: impression,
		Users:      users,
	}
}

func TestCleanLedger(t *testing.T) {
	t.Parallel()

	old := spot("A", "c1", "p1", 10, 5, 3)
	old.AdTime = floor.Add(-time.Second)
	onFloor := spot("A", "c1", "p1", 10, 5, 3)
	onFloor.AdTime = floor

	records := []models.AdSpotRecord{
		spot("A", "c1", "p1", 0, 5, 3),
		spot("A", "c1", "p1", 10, 0, 3),
		old,
		onFloor,
		spot("B", "c2", "p2", 7, 2, 1),
	}
	input := append([]models.AdSpotRecord(nil), records...)

	got := CleanLedger(records, floor, false)
	assert.Equal(t, []models.AdSpotRecord{onFloor, records[4]}, got)
	assert.Equal(t, input, records)
}

func TestCleanLedger_RemovesOutliersPerTimezone(t *testing.T) {
	t.Parallel()

	records := make([]models.AdSpotRecord, 0, 32)
	for i := 0; i < 30; i++ {
		records = append(records, spot("A", "c1", "p1", 10, 5, 10))
	}
	records = append(records, spot("A", "c1", "p9", 10, 5, 1000))
	// same users value in another timezone is not an outlier there
	records = append(records, spot("B", "c1", "p9", 10, 5, 1000))

	kept := CleanLedger(records, floor, false)
	assert.Len(t, kept, 32)

	cleaned := CleanLedger(records, floor, true)
	require.Len(t, cleaned, 31)
	for _, r := range cleaned {
		if r.Timezone == "A" {
			assert.Equal(t, 10.0, r.Users)
		}
	}
	assert.Equal(t, "B", cleaned[30].Timezone)
}

func TestCleanLedger_OutlierLimitUsesSampleStd(t *testing.T) {
	t.Parallel()

	// limit is 4.26 + 5*16.45 = 86.51 with the sample deviation, so 85 stays
	records := make([]models.AdSpotRecord, 0, 27)
	for i := 0; i < 23; i++ {
		records = append(records, spot("A", "c1", "p1", 10, 5, 0))
	}
	for i := 0; i < 3; i++ {
		records = append(records, spot("A", "c1", "p2", 10, 5, 10))
	}
	records = append(records, spot("A", "c1", "p3", 10, 5, 85))

	assert.Len(t, CleanLedger(records, floor, true), 27)

	got := TimezoneUserStats([]models.AdSpotRecord{
		spot("A", "c", "p", 1, 1, 10),
		spot("A", "c", "p", 1, 1, 10),
		spot("A", "c", "p", 1, 1, 40),
	})
	require.Len(t, got, 1)
	assert.InDelta(t, 17.3205081, got[0].Std, 1e-6)
}

func TestTimezoneUserStats(t *testing.T) {
	t.Parallel()

	records := []models.AdSpotRecord{
		spot("B", "c", "p", 1, 1, 4),
		spot("A", "c", "p", 1, 1, 2),
		spot("A", "c", "p", 1, 1, 4),
	}
	got := TimezoneUserStats(records)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Timezone)
	assert.Equal(t, 2, got[0].Count)
	assert.InDelta(t, 3.0, got[0].Mean, 1e-9)
	assert.InDelta(t, 1.4142136, got[0].Std, 1e-6)
	assert.Equal(t, models.TimezoneUserStats{Timezone: "B", Count: 1, Mean: 4, Std: 0}, got[1])

	assert.Equal(t, []string{"A", "B"}, Timezones(records))
}

func programFixture() []models.AdSpotRecord {
	return []models.AdSpotRecord{
		spot("A", "c1", "p1", 6, 1, 4),
		spot("A", "c1", "p1", 4, 1, 6),
		spot("A", "c1", "p2", 20, 3, 10),
		spot("A", "c2", "p3", 80, 4, 40),
		spot("B", "c1", "p1", 5, 2, 5),
	}
}

func TestAggregateByProgram(t *testing.T) {
	t.Parallel()

	got := AggregateByProgram(programFixture())
	require.Len(t, got, 4)

	first := got[0]
	assert.Equal(t, models.ProgramKey{Timezone: "A", Channel: "c1", Program: "p1"}, first.ProgramKey)
	assert.Equal(t, 2, first.TotalSpots)
	assert.Equal(t, 10.0, first.TotalCost)
	assert.Equal(t, 2.0, first.TotalImpression)
	assert.Equal(t, 10.0, first.TotalUsers)

	// timezone A totals are 10, 10, 40
	for _, a := range got[:3] {
		assert.InDelta(t, 20.0, a.UsersMean, 1e-9)
		assert.InDelta(t, 14.1421356, a.UsersStd, 1e-6)
	}
	assert.Equal(t, "B", got[3].Timezone)
	assert.Equal(t, 5.0, got[3].UsersMean)
	assert.Zero(t, got[3].UsersStd)
}

func TestAggregateByProgram_Idempotent(t *testing.T) {
	t.Parallel()

	once := AggregateByProgram(programFixture())
	records := make([]models.AdSpotRecord, 0, len(once))
	for _, a := range once {
		records = append(records, a.Record())
	}
	twice := AggregateByProgram(records)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("re-aggregation changed the table (-once +twice):\n%s", diff)
	}
}

func TestFilterByUserThreshold(t *testing.T) {
	t.Parallel()

	aggregates := AggregateByProgram(programFixture())
	aggregates = append(aggregates, models.ProgramAggregate{
		ProgramKey: models.ProgramKey{Timezone: "C", Channel: "c", Program: "silent"},
		TotalUsers: 3,
		UsersMean:  1,
	})

	tests := []struct {
		name string
		k    float64
		want []string
	}{
		{name: "mean only", k: 0, want: []string{"A/p3", "B/p1"}},
		{name: "one std", k: 1, want: []string{"A/p3", "B/p1"}},
		{name: "two std", k: 2, want: []string{"B/p1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterByUserThreshold(aggregates, tt.k)
			require.NoError(t, err)
			keys := make([]string, 0, len(got))
			for _, a := range got {
				keys = append(keys, a.Timezone+"/"+a.Program)
			}
			assert.Equal(t, tt.want, keys)
		})
	}

	_, err := FilterByUserThreshold(aggregates, -0.5)
	require.ErrorIs(t, err, analysis.ErrInvalidParameter)

	counts := CountByTimezone(aggregates)
	assert.Equal(t, map[string]int{"A": 3, "B": 1, "C": 1}, counts)
}

func aggregate(tz, program string, cost, impression, users float64) models.ProgramAggregate {
	return models.ProgramAggregate{
		ProgramKey:      models.ProgramKey{Timezone: tz, Channel: "c", Program: program},
		TotalSpots:      1,
		TotalCost:       cost,
		TotalImpression: impression,
		TotalUsers:      users,
	}
}

func TestRankPrograms(t *testing.T) {
	t.Parallel()

	t.Run("rating is upm over weighted cpu", func(t *testing.T) {
		// cpu 4 / upm 10 and cpu 2 / upm 10
		aggregates := []models.ProgramAggregate{
			aggregate("A", "pricey", 40, 1, 10),
			aggregate("A", "cheap", 20, 1, 10),
		}
		ranking, err := RankPrograms(aggregates, 1, []string{"A"})
		require.NoError(t, err)

		require.Len(t, ranking.CostEffective, 2)
		assert.Equal(t, "cheap", ranking.CostEffective[0].Program)
		assert.InDelta(t, 2.0, ranking.CostEffective[0].CPU, 1e-9)
		assert.InDelta(t, 10.0, ranking.CostEffective[0].UPM, 1e-9)

		require.Len(t, ranking.Recommended, 2)
		assert.Equal(t, "cheap", ranking.Recommended[0].Program)
		assert.InDelta(t, 5.0, ranking.Recommended[0].Rating, 1e-9)
		assert.InDelta(t, 2.5, ranking.Recommended[1].Rating, 1e-9)
	})

	t.Run("exponent penalises cost", func(t *testing.T) {
		aggregates := []models.ProgramAggregate{
			aggregate("A", "reach", 30, 1, 10),  // cpu 3, upm 10
			aggregate("A", "cheap", 20, 10, 10), // cpu 2, upm 1
		}
		low, err := RankPrograms(aggregates, 1, []string{"A"})
		require.NoError(t, err)
		assert.Equal(t, "reach", low.Recommended[0].Program)

		high, err := RankPrograms(aggregates, 10, []string{"A"})
		require.NoError(t, err)
		assert.Equal(t, "cheap", high.Recommended[0].Program)
		assert.InDelta(t, 1024.0, high.Recommended[0].CPUWeighted, 1e-9)
	})

	t.Run("restricted to timezones in ascending order", func(t *testing.T) {
		aggregates := []models.ProgramAggregate{
			aggregate("C", "p", 10, 1, 10),
			aggregate("A", "p", 50, 1, 10),
			aggregate("B", "p", 10, 1, 10),
		}
		ranking, err := RankPrograms(aggregates, 1, []string{"C", "A"})
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "C"}, ranking.Timezones)
		require.Len(t, ranking.CostEffective, 2)
		assert.Equal(t, "A", ranking.CostEffective[0].Timezone)
		assert.Equal(t, "C", ranking.Recommended[1].Timezone)
	})

	t.Run("no timezones", func(t *testing.T) {
		ranking, err := RankPrograms([]models.ProgramAggregate{aggregate("A", "p", 1, 1, 1)}, 1, nil)
		require.NoError(t, err)
		assert.Empty(t, ranking.CostEffective)
		assert.Empty(t, ranking.Recommended)
	})

	t.Run("zero users", func(t *testing.T) {
		_, err := RankPrograms([]models.ProgramAggregate{aggregate("A", "p", 10, 1, 0)}, 1, []string{"A"})
		require.ErrorIs(t, err, analysis.ErrUndefinedRatio)
	})

	t.Run("zero impressions", func(t *testing.T) {
		_, err := RankPrograms([]models.ProgramAggregate{aggregate("A", "p", 10, 0, 5)}, 1, []string{"A"})
		require.ErrorIs(t, err, analysis.ErrUndefinedRatio)
	})

	t.Run("zero users outside the selection is ignored", func(t *testing.T) {
		_, err := RankPrograms([]models.ProgramAggregate{aggregate("B", "p", 10, 1, 0)}, 1, []string{"A"})
		require.NoError(t, err)
	})

	t.Run("exponent below one", func(t *testing.T) {
		_, err := RankPrograms(nil, 0.5, []string{"A"})
		require.ErrorIs(t, err, analysis.ErrInvalidParameter)
	})
}

func TestHistograms(t *testing.T) {
	t.Parallel()

	records := programFixture()

	users, err := UserHistogram(records, "A", 0)
	require.NoError(t, err)
	assert.Equal(t, float64(DefaultUserBinWidth), users.BinWidth)
	// users 4, 6, 10, 40 with width 1: ceil(36) bins
	require.Len(t, users.Bins, 36)
	assert.Equal(t, 1, users.Bins[0].Count)
	assert.Equal(t, 1, users.Bins[35].Count)

	_, err = UserHistogram(records, "Z", 1)
	require.ErrorIs(t, err, analysis.ErrEmptyDataset)

	aggregates := AggregateByProgram(records)
	totals, err := AggregateHistogram(aggregates, models.FieldTotalUsers, 0)
	require.NoError(t, err)
	// totals 5, 10, 10, 40 with width 20
	require.Len(t, totals.Bins, 2)
	assert.Equal(t, 75.0, totals.Bins[0].Percent)

	_, err = AggregateHistogram(aggregates, "total_cost", 20)
	require.ErrorIs(t, err, analysis.ErrInvalidParameter)

	_, err = AggregateHistogram(nil, models.FieldTotalImpression, 20)
	require.ErrorIs(t, err, analysis.ErrEmptyDataset)

	_, err = UserHistogram(records, "A", 1e-6)
	require.ErrorIs(t, err, analysis.ErrInvalidParameter)
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	desc, err := Describe(AggregateByProgram(programFixture()))
	require.NoError(t, err)
	assert.Equal(t, 4, desc.TotalUsers.Count)
	assert.InDelta(t, 16.25, desc.TotalUsers.Mean, 1e-9)
	assert.Equal(t, 5.0, desc.TotalUsers.Min)
	assert.Equal(t, 40.0, desc.TotalUsers.Max)
	assert.Equal(t, 2.0, desc.TotalImpression.Min)

	_, err = Describe(nil)
	require.ErrorIs(t, err, analysis.ErrEmptyDataset)
}
