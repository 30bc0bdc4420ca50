// Package domain models the Green Date analysis of gridded daily rainfall.
//
// # Data Source
//
// Rainfall comes from gridded daily datasets such as the SILO "daily_rain"
// product (https://www.longpaddock.qld.gov.au/silo/gridded-data/), one netCDF
// file per calendar year on a 0.05° latitude/longitude grid. Each cell carries
// one depth per calendar day in millimetres, stored as float32. Cells over the
// ocean are entirely fill values.
//
// # Seasons
//
// Northern Australia's wet season straddles New Year, so crossings are grouped
// by season rather than calendar year:
//
//	SeasonStart = September (default)
//	2015-09-01 .. 2016-08-31  →  season 2016
//	2016-09-01 .. 2017-08-31  →  season 2017
//
// A season is labelled by the calendar year in which it ends. With a January
// start the label is simply the calendar year. Days are counted from the start
// of the season, 1-based:
//
//	1 Sep = day 1, 1 Oct = day 31, 1 Jan = day 123, 1 Mar = day 182 (non-leap)
//
// With a January start, DayOfSeason equals the ordinary day-of-year.
//
// # Rolling Windows
//
// A window of `period` days ending on date d covers [d-period+1, d]. Only
// complete windows are reported: the window must lie inside the series, span
// consecutive calendar days, and hold no missing (NaN) sample. Sums are
// computed per window in float32, the precision of the input, and compared
// with the threshold using >=.
//
// A window is attributed to the season that contains its final day, so a
// window ending on 2 September belongs to the new season even though it
// started in August.
//
// # Frequency Rule
//
// Only the most recent `Years` complete seasons (default 10) ending at the
// analysis end date are considered. If at least `MinYears` (default 7) of them
// have a crossing, the Green Date is derived from the crossing days:
//
//	median: lower empirical median of the qualifying days (default)
//	kth:    the MinYears-th earliest day, i.e. the day by which MinYears
//	        seasons had crossed
//
// Seasons without data never count as qualifying.
package domain
