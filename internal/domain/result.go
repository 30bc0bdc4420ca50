package domain

import "fmt"

// CellState is the terminal state of one cell's analysis.
type CellState int8

const (
	Computed CellState = iota
	NotMet
	Error
)

func (s CellState) String() string {
	switch s {
	case Computed:
		return "computed"
	case NotMet:
		return "not_met"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("CellState(%d)", int8(s))
	}
}

// CellResult is the Green Date outcome for one cell. DayOfSeason, Year and
// Spread are only meaningful when State is Computed.
type CellResult struct {
	State         CellState
	DayOfSeason   int
	Year          int
	YearsMet      int
	YearsWithData int
	Spread        float64
	Reason        string
}

// ErrorResult builds an Error cell carrying err's message.
func ErrorResult(err error) CellResult {
	return CellResult{State: Error, Reason: err.Error()}
}
