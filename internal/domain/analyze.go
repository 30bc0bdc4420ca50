package domain

// Criteria bundles the per-cell analysis parameters. It is derived once from
// the run configuration and shared read-only by every worker.
type Criteria struct {
	Period    int
	Threshold float32
	Calendar  SeasonCalendar
	Seasons   []Season
	MinYears  int
	Statistic Statistic
}

// AnalyzeCell runs the per-cell pipeline: accumulate, extract the first
// crossing per season, then select the Green Date. Malformed series become
// Error cells rather than errors so one bad cell never aborts a grid.
func AnalyzeCell(s RainfallSeries, c *Criteria) CellResult {
	if err := s.Validate(); err != nil {
		return ErrorResult(err)
	}
	record := FirstCrossings(RollingSums(s, c.Period), c.Threshold, c.Calendar, c.Seasons)
	return SelectGreenDate(record, c.MinYears, c.Statistic)
}
