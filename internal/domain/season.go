package domain

import (
	"time"
)

// DateLayout is the ISO calendar date format used on the command line and in
// netCDF metadata.
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b (negative if b is before a).
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)) / day)
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD) as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// Season is one season year. Start and End are both inclusive.
type Season struct {
	Year  int
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls inside the season.
func (s Season) Contains(d time.Time) bool {
	d = Day(d)
	return !d.Before(s.Start) && !d.After(s.End)
}

// Days returns the season length in days (365 or 366).
func (s Season) Days() int {
	return DaysBetween(s.Start, s.End) + 1
}

// SeasonCalendar defines the month on which a season year begins. The zero
// value starts seasons in January, i.e. plain calendar years.
type SeasonCalendar struct {
	StartMonth time.Month
}

func (c SeasonCalendar) startMonth() time.Month {
	if c.StartMonth < time.January || c.StartMonth > time.December {
		return time.January
	}
	return c.StartMonth
}

// YearOf returns the label of the season containing d: the calendar year in
// which that season ends.
func (c SeasonCalendar) YearOf(d time.Time) int {
	m := c.startMonth()
	if m == time.January || d.Month() < m {
		return d.Year()
	}
	return d.Year() + 1
}

// Season returns the bounds of the season labelled year.
func (c SeasonCalendar) Season(year int) Season {
	m := c.startMonth()
	startYear := year
	if m != time.January {
		startYear--
	}
	start := time.Date(startYear, m, 1, 0, 0, 0, 0, time.UTC)
	return Season{Year: year, Start: start, End: start.AddDate(1, 0, -1)}
}

// DayOfSeason returns the 1-based day count of d within its season.
func (c SeasonCalendar) DayOfSeason(d time.Time) int {
	s := c.Season(c.YearOf(d))
	return DaysBetween(s.Start, d) + 1
}

// DateOfSeasonDay is the inverse of DayOfSeason for the given season.
func (c SeasonCalendar) DateOfSeasonDay(year, dayOfSeason int) time.Time {
	return c.Season(year).Start.AddDate(0, 0, dayOfSeason-1)
}

// CompleteSeasons returns every season lying entirely inside [from, to], oldest first.
func (c SeasonCalendar) CompleteSeasons(from, to time.Time) []Season {
	from, to = Day(from), Day(to)
	var seasons []Season
	for year := c.YearOf(from); ; year++ {
		s := c.Season(year)
		if s.End.After(to) {
			break
		}
		if s.Start.Before(from) {
			continue
		}
		seasons = append(seasons, s)
	}
	return seasons
}

// LastSeasons returns at most n of the most recent complete seasons inside
// [from, to], oldest first.
func (c SeasonCalendar) LastSeasons(from, to time.Time, n int) []Season {
	seasons := c.CompleteSeasons(from, to)
	if n >= 0 && len(seasons) > n {
		seasons = seasons[len(seasons)-n:]
	}
	return seasons
}
