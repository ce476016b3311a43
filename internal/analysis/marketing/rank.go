package marketing

import (
	"fmt"
	"math"
	"sort"

	"github.com/jengzang/retention-backend-go/internal/analysis"
	"github.com/jengzang/retention-backend-go/internal/models"
)

// RankPrograms scores the programs of the given timezones and returns them
// ordered by cost per user and by rating, both within ascending timezone.
// A program with no users or impressions fails the whole ranking with
// analysis.ErrUndefinedRatio.
func RankPrograms(aggregates []models.ProgramAggregate, exponent float64, timezones []string) (models.ProgramRanking, error) {
	if exponent < 1 || math.IsNaN(exponent) {
		return models.ProgramRanking{}, analysis.InvalidParameter("exponent", exponent)
	}

	want := make(map[string]struct{}, len(timezones))
	for _, tz := range timezones {
		want[tz] = struct{}{}
	}
	selected := make([]string, 0, len(want))
	for tz := range want {
		selected = append(selected, tz)
	}
	sort.Strings(selected)

	scores := make([]models.ProgramScore, 0)
	for _, a := range aggregates {
		if _, ok := want[a.Timezone]; !ok {
			continue
		}
		s, err := score(a, exponent)
		if err != nil {
			return models.ProgramRanking{}, err
		}
		scores = append(scores, s)
	}

	costEffective := append([]models.ProgramScore(nil), scores...)
	sort.SliceStable(costEffective, func(i, j int) bool {
		a, b := costEffective[i], costEffective[j]
		if a.Timezone != b.Timezone {
			return a.Timezone < b.Timezone
		}
		return a.CPU < b.CPU
	})

	recommended := append([]models.ProgramScore(nil), scores...)
	sort.SliceStable(recommended, func(i, j int) bool {
		a, b := recommended[i], recommended[j]
		if a.Timezone != b.Timezone {
			return a.Timezone < b.Timezone
		}
		return a.Rating > b.Rating
	})

	return models.ProgramRanking{
		Exponent:      exponent,
		Timezones:     selected,
		CostEffective: costEffective,
		Recommended:   recommended,
	}, nil
}

func score(a models.ProgramAggregate, exponent float64) (models.ProgramScore, error) {
	if a.TotalUsers == 0 || a.TotalImpression == 0 {
		return models.ProgramScore{}, fmt.Errorf("%w: %s/%s/%s", analysis.ErrUndefinedRatio,
			a.Timezone, a.Channel, a.Program)
	}

	cpu := a.TotalCost / a.TotalUsers
	weighted := math.Pow(cpu, exponent)
	if weighted == 0 || math.IsInf(weighted, 0) {
		return models.ProgramScore{}, fmt.Errorf("%w: cost weight of %s/%s/%s is %v", analysis.ErrUndefinedRatio,
			a.Timezone, a.Channel, a.Program, weighted)
	}

	upm := a.TotalUsers / a.TotalImpression
	return models.ProgramScore{
		ProgramAggregate: a,
		CPU:              cpu,
		UPM:              upm,
		CPUWeighted:      weighted,
		Rating:           upm / weighted,
	}, nil
}
