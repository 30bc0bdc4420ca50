package domain

import (
	"iter"
	"time"
)

// CrossingEvent is the first date in a season on which the trailing rolling
// sum reached the rain threshold.
type CrossingEvent struct {
	Date        time.Time
	Season      int
	DayOfSeason int
	Sum         float32
}

// YearEntry is one season of a YearRecord. HasData is false when no complete
// window ended inside the season; such a season can never qualify.
type YearEntry struct {
	Season  Season
	HasData bool
	Event   *CrossingEvent
}

// YearRecord holds one entry per analysed season, oldest first.
type YearRecord []YearEntry

// Met returns the number of seasons with a crossing.
func (r YearRecord) Met() int {
	n := 0
	for _, e := range r {
		if e.Event != nil {
			n++
		}
	}
	return n
}

// WithData returns the number of seasons that had at least one complete window.
func (r YearRecord) WithData() int {
	n := 0
	for _, e := range r {
		if e.HasData {
			n++
		}
	}
	return n
}

// FirstCrossings folds a rolling-sum sequence into a YearRecord over seasons,
// which must be ordered oldest first. Each window is attributed to the season
// containing its ending date; within a season the earliest qualifying date
// wins. Consumption stops once the last season has ended.
func FirstCrossings(sums iter.Seq2[time.Time, float32], threshold float32, cal SeasonCalendar, seasons []Season) YearRecord {
	record := make(YearRecord, len(seasons))
	if len(seasons) == 0 {
		return record
	}
	index := make(map[int]int, len(seasons))
	for i, s := range seasons {
		record[i].Season = s
		index[s.Year] = i
	}
	last := seasons[len(seasons)-1].End

	for d, sum := range sums {
		if d.After(last) {
			break
		}
		i, ok := index[cal.YearOf(d)]
		if !ok {
			continue
		}
		entry := &record[i]
		entry.HasData = true
		if entry.Event != nil || sum < threshold {
			continue
		}
		entry.Event = &CrossingEvent{
			Date:        d,
			Season:      entry.Season.Year,
			DayOfSeason: cal.DayOfSeason(d),
			Sum:         sum,
		}
	}
	return record
}
