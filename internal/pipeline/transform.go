package pipeline

import (
	"github.com/couchcryptid/green-date/internal/domain"
)

// CriteriaAnalyzer implements CellAnalyzer with the domain Green Date rule.
type CriteriaAnalyzer struct {
	criteria *domain.Criteria
}

// NewAnalyzer creates a CriteriaAnalyzer. The criteria are shared read-only
// by every worker and must not be modified while a run is in progress.
func NewAnalyzer(criteria *domain.Criteria) *CriteriaAnalyzer {
	return &CriteriaAnalyzer{criteria: criteria}
}

func (a *CriteriaAnalyzer) Analyze(series domain.RainfallSeries) domain.CellResult {
	return domain.AnalyzeCell(series, a.criteria)
}
