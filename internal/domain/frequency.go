package domain

import (
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Statistic selects how qualifying crossing days are reduced to one Green Date.
type Statistic string

const (
	// StatisticMedian takes the lower empirical median of the qualifying days.
	StatisticMedian Statistic = "median"
	// StatisticKth takes the minYears-th earliest qualifying day.
	StatisticKth Statistic = "kth"
)

// ParseStatistic maps a flag value onto a Statistic.
func ParseStatistic(s string) (Statistic, error) {
	switch st := Statistic(strings.ToLower(strings.TrimSpace(s))); st {
	case StatisticMedian, StatisticKth:
		return st, nil
	case "":
		return StatisticMedian, nil
	default:
		return "", fmt.Errorf("unknown statistic %q", s)
	}
}

// SelectGreenDate applies the frequency rule to a YearRecord. When at least
// minYears seasons have a crossing the result is Computed, otherwise NotMet.
// A record with no data at all is an Error carrying ErrNoData.
func SelectGreenDate(record YearRecord, minYears int, statistic Statistic) CellResult {
	res := CellResult{
		State:         NotMet,
		YearsMet:      record.Met(),
		YearsWithData: record.WithData(),
	}
	if res.YearsWithData == 0 {
		res.State = Error
		res.Reason = ErrNoData.Error()
		return res
	}
	if res.YearsMet < minYears || res.YearsMet == 0 {
		return res
	}

	days := make([]float64, 0, res.YearsMet)
	for _, e := range record {
		if e.Event != nil {
			days = append(days, float64(e.Event.DayOfSeason))
		}
	}
	slices.Sort(days)

	var chosen float64
	switch statistic {
	case StatisticKth:
		k := max(minYears, 1)
		chosen = days[k-1]
	default:
		chosen = stat.Quantile(0.5, stat.Empirical, days, nil)
	}

	res.State = Computed
	res.DayOfSeason = int(chosen)
	if len(days) > 1 {
		res.Spread = stat.StdDev(days, nil)
	}
	for i := len(record) - 1; i >= 0; i-- {
		if ev := record[i].Event; ev != nil && ev.DayOfSeason == res.DayOfSeason {
			res.Year = ev.Season
			break
		}
	}
	return res
}
