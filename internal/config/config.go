package config

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/green-date/internal/domain"
)

// Error reports an invalid configuration value. Config errors are fatal and
// surface before any cell is dispatched.
type Error struct {
	Field  string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	msg := "invalid " + e.Field + ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func invalid(field, reason string) error {
	return &Error{Field: field, Reason: reason}
}

// IsConfigError reports whether err is (or wraps) a configuration error.
func IsConfigError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

// WorkerMode selects how many workers the grid dispatcher runs.
type WorkerMode string

const (
	WorkersSingle    WorkerMode = "single"
	WorkersAllButOne WorkerMode = "all_but_one"
	WorkersAll       WorkerMode = "all"
)

// WorkerModes lists the accepted --multiprocessing values.
var WorkerModes = []string{string(WorkersSingle), string(WorkersAllButOne), string(WorkersAll)}

// ParseWorkerMode validates a --multiprocessing value.
func ParseWorkerMode(s string) (WorkerMode, error) {
	switch m := WorkerMode(s); m {
	case WorkersSingle, WorkersAllButOne, WorkersAll:
		return m, nil
	default:
		return "", invalid("multiprocessing", fmt.Sprintf("%q is not one of %s", s, strings.Join(WorkerModes, ", ")))
	}
}

// Workers returns the pool size for the given core count. all_but_one never
// drops below one worker.
func (m WorkerMode) Workers(cores int) int {
	cores = max(cores, 1)
	switch m {
	case WorkersSingle:
		return 1
	case WorkersAll:
		return cores
	default:
		return max(cores-1, 1)
	}
}

// AnalysisConfig is the immutable parameter bundle shared by every worker.
// A zero StartDate or EndDate means the dataset extent; Resolve fills them in.
type AnalysisConfig struct {
	StartDate     time.Time
	EndDate       time.Time
	Period        int
	RainThreshold float64
	WorkerMode    WorkerMode
	Years         int
	MinYears      int
	SeasonStart   time.Month
	Statistic     domain.Statistic
	ChunkRows     int
}

// DefaultAnalysis returns the analysis defaults: 30 mm in 3 days in 7 of the
// last 10 seasons starting 1 September.
func DefaultAnalysis() AnalysisConfig {
	return AnalysisConfig{
		Period:        3,
		RainThreshold: 30,
		WorkerMode:    WorkersAllButOne,
		Years:         10,
		MinYears:      7,
		SeasonStart:   time.September,
		Statistic:     domain.StatisticMedian,
		ChunkRows:     1,
	}
}

// Validate checks the values that do not depend on the dataset.
func (a AnalysisConfig) Validate() error {
	switch {
	case a.Period <= 0:
		return invalid("period", fmt.Sprintf("must be positive, got %d", a.Period))
	case a.RainThreshold < 0 || math.IsNaN(a.RainThreshold) || math.IsInf(a.RainThreshold, 0):
		return invalid("rain_threshold", fmt.Sprintf("must be a finite non-negative depth, got %g", a.RainThreshold))
	case a.Years <= 0:
		return invalid("years", fmt.Sprintf("must be positive, got %d", a.Years))
	case a.MinYears <= 0 || a.MinYears > a.Years:
		return invalid("min_years", fmt.Sprintf("must be in [1, %d], got %d", a.Years, a.MinYears))
	case a.SeasonStart < time.January || a.SeasonStart > time.December:
		return invalid("season_start", fmt.Sprintf("must be a month 1-12, got %d", a.SeasonStart))
	case a.ChunkRows <= 0:
		return invalid("chunk_rows", fmt.Sprintf("must be positive, got %d", a.ChunkRows))
	case !a.StartDate.IsZero() && !a.EndDate.IsZero() && a.StartDate.After(a.EndDate):
		return invalid("start_date", fmt.Sprintf("%s is after end_date %s",
			a.StartDate.Format(domain.DateLayout), a.EndDate.Format(domain.DateLayout)))
	}
	if _, err := ParseWorkerMode(string(a.WorkerMode)); err != nil {
		return err
	}
	if _, err := domain.ParseStatistic(string(a.Statistic)); err != nil {
		return &Error{Field: "statistic", Reason: "unsupported", Err: err}
	}
	return nil
}

// Resolve clamps the date range to the dataset's [first, last] dates and
// checks that enough complete seasons remain. It returns a new value.
func (a AnalysisConfig) Resolve(first, last time.Time) (AnalysisConfig, error) {
	if err := a.Validate(); err != nil {
		return AnalysisConfig{}, err
	}
	first, last = domain.Day(first), domain.Day(last)
	out := a
	if out.StartDate.IsZero() || out.StartDate.Before(first) {
		out.StartDate = first
	}
	if out.EndDate.IsZero() || out.EndDate.After(last) {
		out.EndDate = last
	}
	if out.StartDate.After(out.EndDate) {
		return AnalysisConfig{}, invalid("start_date", fmt.Sprintf("range %s..%s does not overlap data %s..%s",
			a.StartDate.Format(domain.DateLayout), a.EndDate.Format(domain.DateLayout),
			first.Format(domain.DateLayout), last.Format(domain.DateLayout)))
	}
	if n := len(out.Seasons()); n < out.Years {
		return AnalysisConfig{}, invalid("end_date", fmt.Sprintf("need %d complete seasons of history in %s..%s, found %d",
			out.Years, out.StartDate.Format(domain.DateLayout), out.EndDate.Format(domain.DateLayout), n))
	}
	return out, nil
}

// Calendar returns the season boundary definition.
func (a AnalysisConfig) Calendar() domain.SeasonCalendar {
	return domain.SeasonCalendar{StartMonth: a.SeasonStart}
}

// Seasons returns the analysed seasons: the most recent Years complete
// seasons inside [StartDate, EndDate], oldest first.
func (a AnalysisConfig) Seasons() []domain.Season {
	return a.Calendar().LastSeasons(a.StartDate, a.EndDate, a.Years)
}

// DataRange returns the dates the analysis reads: from period-1 days before
// the first analysed season (so its first windows are complete) to the end
// of the last one.
func (a AnalysisConfig) DataRange() (from, to time.Time) {
	seasons := a.Seasons()
	if len(seasons) == 0 {
		return a.StartDate, a.EndDate
	}
	return seasons[0].Start.AddDate(0, 0, -(a.Period - 1)), seasons[len(seasons)-1].End
}

// Criteria derives the per-cell analysis parameters.
func (a AnalysisConfig) Criteria() *domain.Criteria {
	return &domain.Criteria{
		Period:    a.Period,
		Threshold: float32(a.RainThreshold),
		Calendar:  a.Calendar(),
		Seasons:   a.Seasons(),
		MinYears:  a.MinYears,
		Statistic: a.Statistic,
	}
}

// Meta describes a run of this analysis for the output grid.
func (a AnalysisConfig) Meta(title string) domain.GridMeta {
	m := domain.GridMeta{
		Title:       title,
		Period:      a.Period,
		Threshold:   float32(a.RainThreshold),
		SeasonStart: a.Calendar().StartMonth,
		MinYears:    a.MinYears,
		Statistic:   a.Statistic,
	}
	if seasons := a.Seasons(); len(seasons) > 0 {
		m.FirstSeason = seasons[0].Year
		m.LastSeason = seasons[len(seasons)-1].Year
	}
	return m
}

// Workers returns the worker pool size for this machine.
func (a AnalysisConfig) Workers() int {
	return a.WorkerMode.Workers(runtime.NumCPU())
}

// Extent is a lon/lat bounding box.
type Extent struct {
	Left   float64
	Right  float64
	Bottom float64
	Top    float64
}

// DefaultExtent covers Northern Australia.
var DefaultExtent = Extent{Left: 112, Right: 154, Bottom: -28, Top: -10}

// ParseExtent parses "left,right,bottom,top".
func ParseExtent(s string) (Extent, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Extent{}, invalid("extent", fmt.Sprintf("want left,right,bottom,top, got %q", s))
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Extent{}, &Error{Field: "extent", Reason: fmt.Sprintf("bad number %q", p), Err: err}
		}
		v[i] = f
	}
	e := Extent{Left: v[0], Right: v[1], Bottom: v[2], Top: v[3]}
	if e.Left >= e.Right || e.Bottom >= e.Top {
		return Extent{}, invalid("extent", fmt.Sprintf("empty box %q", s))
	}
	return e, nil
}

// Contains reports whether the point lies inside the box, edges included.
func (e Extent) Contains(lon, lat float64) bool {
	return lon >= e.Left && lon <= e.Right && lat >= e.Bottom && lat <= e.Top
}

func (e Extent) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", e.Left, e.Right, e.Bottom, e.Top)
}

// Logging holds the logger settings shared by every command.
type Logging struct {
	LogLevel  string
	LogFormat string
}

// loadLogging reads LOG_LEVEL and LOG_FORMAT. verbose forces info level unless
// the environment asks for debug.
func loadLogging(verbose bool) (Logging, error) {
	l := Logging{
		LogLevel:  strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "warn")),
		LogFormat: strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "text")),
	}
	if verbose && l.LogLevel != "debug" {
		l.LogLevel = "info"
	}
	switch l.LogFormat {
	case "text", "json":
	default:
		return Logging{}, invalid("LOG_FORMAT", fmt.Sprintf("%q is not text or json", l.LogFormat))
	}
	return l, nil
}
