package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/akamensky/argparse"

	"github.com/couchcryptid/green-date/internal/domain"
)

// DefaultOutputPattern is the compute output path; {threshold} is replaced by
// the rain threshold so runs at several thresholds can be spliced later.
const DefaultOutputPattern = "results/green_date_{threshold}mm.nc"

// MapOptions are the rendering flags shared by greendate and greenmap.
type MapOptions struct {
	Title   string
	Style   string
	Borders string
	Places  string
	Extent  Extent
}

// Config holds the settings of the greendate command.
type Config struct {
	Logging
	DailyRain   []string
	Variable    string
	Output      string
	MetricsFile string
	Map         MapOptions
	Analysis    AnalysisConfig
}

// OutputPath expands {threshold} in the output pattern.
func (c *Config) OutputPath() string {
	return ExpandThreshold(c.Output, c.Analysis.RainThreshold)
}

// ExpandThreshold substitutes {threshold} with the threshold in mm, written
// without a trailing fraction when it is whole.
func ExpandThreshold(pattern string, threshold float64) string {
	return strings.ReplaceAll(pattern, "{threshold}", strconv.FormatFloat(threshold, 'f', -1, 64))
}

// OutputKind is the artifact type chosen by the output file extension.
type OutputKind string

const (
	OutputNetCDF OutputKind = "netcdf"
	OutputPNG    OutputKind = "png"
	OutputSVG    OutputKind = "svg"
)

// KindOf maps an output path onto its artifact type.
func KindOf(path string) (OutputKind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nc", ".nc4":
		return OutputNetCDF, nil
	case ".png":
		return OutputPNG, nil
	case ".svg":
		return OutputSVG, nil
	default:
		return "", invalid("output", fmt.Sprintf("%q must end in .nc, .png or .svg", path))
	}
}

func addMapFlags(p *argparse.Parser) (title, style, borders, places, extent *string) {
	title = p.String("", "title", &argparse.Options{Default: "", Help: "Map title"})
	style = p.String("", "style", &argparse.Options{Default: "", Help: "YAML colour style (levels, colours)"})
	borders = p.String("", "borders", &argparse.Options{Default: "", Help: "Shapefile of state borders to overlay"})
	places = p.String("", "places", &argparse.Options{Default: "", Help: "Shapefile of populated places to label"})
	extent = p.String("", "extent", &argparse.Options{Default: DefaultExtent.String(), Help: "Map and analysis extent: left,right,bottom,top"})
	return
}

func mapOptions(title, style, borders, places, extent string) (MapOptions, error) {
	e, err := ParseExtent(extent)
	if err != nil {
		return MapOptions{}, err
	}
	return MapOptions{Title: title, Style: style, Borders: borders, Places: places, Extent: e}, nil
}

func parseDateFlag(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}, &Error{Field: field, Reason: fmt.Sprintf("%q is not YYYY-MM-DD", s), Err: err}
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func usage(p *argparse.Parser, err error) error {
	return &Error{Field: "arguments", Reason: p.Usage(err), Err: err}
}

// Parse reads the greendate flags from args (args[0] is the program name).
func Parse(args []string) (*Config, error) {
	def := DefaultAnalysis()
	p := argparse.NewParser("greendate", "Computes the Green Date for every cell of a gridded daily rainfall dataset")

	dailyRain := p.String("", "daily_rain", &argparse.Options{Required: true, Help: "Comma separated netCDF files of daily rainfall"})
	variable := p.String("", "variable", &argparse.Options{Default: "daily_rain", Help: "Rainfall variable name"})
	start := p.String("", "start_date", &argparse.Options{Default: "", Help: "First date to analyse (YYYY-MM-DD); default the first date of the data"})
	end := p.String("", "end_date", &argparse.Options{Default: "", Help: "Last date to analyse (YYYY-MM-DD); default the last date of the data"})
	period := p.Int("", "period", &argparse.Options{Default: def.Period, Help: "Days over which rainfall is accumulated"})
	threshold := p.Float("", "rain_threshold", &argparse.Options{Default: def.RainThreshold, Help: "Rainfall in mm the period must reach"})
	mode := p.Selector("", "multiprocessing", WorkerModes, &argparse.Options{Default: string(def.WorkerMode), Help: "Worker count: single, all_but_one or all cores"})
	years := p.Int("", "years", &argparse.Options{Default: def.Years, Help: "Number of most recent seasons analysed"})
	minYears := p.Int("", "min_years", &argparse.Options{Default: def.MinYears, Help: "Seasons that must reach the threshold"})
	seasonStart := p.Int("", "season_start", &argparse.Options{Default: int(def.SeasonStart), Help: "Month (1-12) on which a season starts"})
	statistic := p.Selector("", "statistic", []string{string(domain.StatisticMedian), string(domain.StatisticKth)}, &argparse.Options{Default: string(def.Statistic), Help: "How qualifying days are reduced to one date"})
	chunkRows := p.Int("", "chunk_rows", &argparse.Options{Default: def.ChunkRows, Help: "Latitude rows per unit of work"})
	output := p.String("o", "output", &argparse.Options{Default: DefaultOutputPattern, Help: "Output file: .nc grid, or .png/.svg map"})
	metricsFile := p.String("", "metrics_file", &argparse.Options{Default: "", Help: "Write Prometheus metrics to this textfile"})
	title, style, borders, places, extent := addMapFlags(p)
	verbose := p.Flag("v", "verbose", &argparse.Options{Help: "Log progress at info level"})

	if err := p.Parse(args); err != nil {
		return nil, usage(p, err)
	}

	startDate, err := parseDateFlag("start_date", *start)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDateFlag("end_date", *end)
	if err != nil {
		return nil, err
	}
	workerMode, err := ParseWorkerMode(*mode)
	if err != nil {
		return nil, err
	}
	stat, err := domain.ParseStatistic(*statistic)
	if err != nil {
		return nil, &Error{Field: "statistic", Reason: "unsupported", Err: err}
	}

	analysis := AnalysisConfig{
		StartDate:     startDate,
		EndDate:       endDate,
		Period:        *period,
		RainThreshold: *threshold,
		WorkerMode:    workerMode,
		Years:         *years,
		MinYears:      *minYears,
		SeasonStart:   time.Month(*seasonStart),
		Statistic:     stat,
		ChunkRows:     *chunkRows,
	}
	if err := analysis.Validate(); err != nil {
		return nil, err
	}

	files := splitList(*dailyRain)
	if len(files) == 0 {
		return nil, invalid("daily_rain", "at least one file is required")
	}
	if _, err := KindOf(*output); err != nil {
		return nil, err
	}
	mapOpts, err := mapOptions(*title, *style, *borders, *places, *extent)
	if err != nil {
		return nil, err
	}
	logging, err := loadLogging(*verbose)
	if err != nil {
		return nil, err
	}

	return &Config{
		Logging:     logging,
		DailyRain:   files,
		Variable:    *variable,
		Output:      *output,
		MetricsFile: *metricsFile,
		Map:         mapOpts,
		Analysis:    analysis,
	}, nil
}

// MapConfig holds the settings of the greenmap command.
type MapConfig struct {
	Logging
	GreenDate string
	Output    string
	Map       MapOptions
}

// ParseMap reads the greenmap flags.
func ParseMap(args []string) (*MapConfig, error) {
	p := argparse.NewParser("greenmap", "Renders a Green Date grid as a map")
	greenDate := p.String("", "green_date", &argparse.Options{Required: true, Help: "Green Date netCDF grid written by greendate"})
	output := p.String("o", "output", &argparse.Options{Default: "results/green_date.png", Help: "Output map (.png or .svg)"})
	title, style, borders, places, extent := addMapFlags(p)
	verbose := p.Flag("v", "verbose", &argparse.Options{Help: "Log progress at info level"})

	if err := p.Parse(args); err != nil {
		return nil, usage(p, err)
	}
	kind, err := KindOf(*output)
	if err != nil {
		return nil, err
	}
	if kind == OutputNetCDF {
		return nil, invalid("output", "greenmap renders .png or .svg maps")
	}
	mapOpts, err := mapOptions(*title, *style, *borders, *places, *extent)
	if err != nil {
		return nil, err
	}
	logging, err := loadLogging(*verbose)
	if err != nil {
		return nil, err
	}
	return &MapConfig{Logging: logging, GreenDate: *greenDate, Output: *output, Map: mapOpts}, nil
}

// SpliceConfig holds the settings of the greensplice command.
type SpliceConfig struct {
	Logging
	ClayContent    string
	ClayVariable   string
	GreenDateFiles string
	Rules          string
	Output         string
}

// ParseSplice reads the greensplice flags.
func ParseSplice(args []string) (*SpliceConfig, error) {
	p := argparse.NewParser("greensplice", "Combines Green Date grids by soil clay content")
	clay := p.String("", "clay_content", &argparse.Options{Required: true, Help: "netCDF grid of clay content in percent"})
	clayVar := p.String("", "clay_variable", &argparse.Options{Default: "clay_content_percentage", Help: "Clay content variable name"})
	files := p.String("", "green_date_files", &argparse.Options{Default: DefaultOutputPattern, Help: "Green Date grid path pattern with {threshold}"})
	rules := p.String("", "rules", &argparse.Options{Default: "", Help: "YAML clay-to-threshold rules"})
	output := p.String("o", "output", &argparse.Options{Default: "results/green_date_soil.nc", Help: "Output netCDF grid"})
	verbose := p.Flag("v", "verbose", &argparse.Options{Help: "Log progress at info level"})

	if err := p.Parse(args); err != nil {
		return nil, usage(p, err)
	}
	if !strings.Contains(*files, "{threshold}") {
		return nil, invalid("green_date_files", fmt.Sprintf("%q has no {threshold} placeholder", *files))
	}
	if kind, err := KindOf(*output); err != nil || kind != OutputNetCDF {
		return nil, invalid("output", fmt.Sprintf("%q must be a .nc file", *output))
	}
	logging, err := loadLogging(*verbose)
	if err != nil {
		return nil, err
	}
	return &SpliceConfig{
		Logging:        logging,
		ClayContent:    *clay,
		ClayVariable:   *clayVar,
		GreenDateFiles: *files,
		Rules:          *rules,
		Output:         *output,
	}, nil
}
