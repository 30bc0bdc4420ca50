package netcdf

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/couchcryptid/green-date/internal/domain"
)

var epochLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05Z",
	"2006-01-02 15:04",
	"2006-1-2 15:4:5",
	"2006-01-02",
	"2006-1-2",
}

// parseTimeUnits parses CF units such as "days since 1889-01-01 00:00:00".
func parseTimeUnits(units string) (step time.Duration, epoch time.Time, err error) {
	unit, since, ok := strings.Cut(strings.TrimSpace(units), " since ")
	if !ok {
		return 0, time.Time{}, fmt.Errorf("time units %q: want \"<unit> since <date>\"", units)
	}
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "days", "day", "d":
		step = 24 * time.Hour
	case "hours", "hour", "h":
		step = time.Hour
	case "minutes", "minute", "min":
		step = time.Minute
	case "seconds", "second", "s":
		step = time.Second
	default:
		return 0, time.Time{}, fmt.Errorf("time units %q: unsupported unit %q", units, unit)
	}

	since = strings.TrimSpace(since)
	since = strings.TrimSuffix(since, " UTC")
	since = strings.TrimSuffix(since, " +00:00")
	for _, layout := range epochLayouts {
		if t, perr := time.ParseInLocation(layout, since, time.UTC); perr == nil {
			return step, t, nil
		}
	}
	return 0, time.Time{}, fmt.Errorf("time units %q: unparseable reference date %q", units, since)
}

// decodeTimes converts offsets from the epoch into calendar days (UTC midnight).
func decodeTimes(offsets []float64, units string) ([]time.Time, error) {
	step, epoch, err := parseTimeUnits(units)
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, len(offsets))
	for i, o := range offsets {
		if math.IsNaN(o) || math.IsInf(o, 0) {
			return nil, fmt.Errorf("time[%d] is not finite", i)
		}
		dates[i] = domain.Day(epoch.Add(time.Duration(math.Round(o * float64(step)))))
		if i > 0 && !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("time axis not increasing at %s", dates[i].Format(domain.DateLayout))
		}
	}
	return dates, nil
}
