// Package splice combines Green Date grids computed at several rain
// thresholds into one grid, choosing each cell's threshold from the clay
// content of its soil. Heavier soils need more rain before pasture responds.
package splice

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Bin maps clay content below MaxClay percent onto a rain threshold. The
// last bin has no MaxClay and takes everything else.
type Bin struct {
	MaxClay   *float64 `yaml:"max_clay,omitempty"`
	Threshold float64  `yaml:"threshold"`
}

// Rules is an ordered list of clay bins.
type Rules struct {
	Bins []Bin `yaml:"bins"`
}

func upTo(v float64) *float64 { return &v }

// DefaultRules are the clay bins used for northern Australian soils.
func DefaultRules() Rules {
	return Rules{Bins: []Bin{
		{MaxClay: upTo(20), Threshold: 10},
		{MaxClay: upTo(30), Threshold: 20},
		{MaxClay: upTo(35), Threshold: 30},
		{MaxClay: upTo(45), Threshold: 40},
		{Threshold: 50},
	}}
}

// LoadRules reads YAML rules; an empty path gives DefaultRules.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules: %w", err)
	}
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("parse rules %s: %w", path, err)
	}
	if err := r.Validate(); err != nil {
		return Rules{}, fmt.Errorf("rules %s: %w", path, err)
	}
	return r, nil
}

// Validate checks that bins ascend and end with an open bin.
func (r Rules) Validate() error {
	if len(r.Bins) == 0 {
		return errors.New("no bins")
	}
	prev := math.Inf(-1)
	for i, b := range r.Bins {
		if b.Threshold <= 0 {
			return fmt.Errorf("bin %d: threshold must be positive", i)
		}
		last := i == len(r.Bins)-1
		switch {
		case last && b.MaxClay != nil:
			return fmt.Errorf("bin %d: the last bin must not set max_clay", i)
		case !last && b.MaxClay == nil:
			return fmt.Errorf("bin %d: only the last bin may omit max_clay", i)
		case !last && *b.MaxClay <= prev:
			return fmt.Errorf("bin %d: max_clay %g does not ascend", i, *b.MaxClay)
		}
		if !last {
			prev = *b.MaxClay
		}
	}
	return nil
}

// ThresholdFor returns the threshold for a clay percentage. Missing clay
// content has no threshold.
func (r Rules) ThresholdFor(clay float64) (float64, bool) {
	if math.IsNaN(clay) {
		return 0, false
	}
	for _, b := range r.Bins {
		if b.MaxClay == nil || clay < *b.MaxClay {
			return b.Threshold, true
		}
	}
	return 0, false
}

// Thresholds lists the distinct thresholds in ascending order.
func (r Rules) Thresholds() []float64 {
	out := make([]float64, 0, len(r.Bins))
	for _, b := range r.Bins {
		out = append(out, b.Threshold)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
