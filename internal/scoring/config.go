package scoring

import (
	"fmt"
	"sort"
)

// Config controls final scoring and banding.
type Config struct {
	// CutPoints are ascending theta thresholds between Levels. A theta
	// equal to a cut point falls in the higher band.
	CutPoints []float64 `yaml:"cut_points" json:"cut_points" validate:"dive,min=-10,max=10"`
	Levels    []string  `yaml:"levels" json:"levels" validate:"min=1,dive,required"`

	// ReferenceStandardError maps to 0% confidence; 0 maps to 100%.
	ReferenceStandardError float64 `yaml:"reference_standard_error" json:"reference_standard_error" validate:"gt=0"`

	// MinTheta and MaxTheta are the ends of the 0-100 scaled score.
	MinTheta float64 `yaml:"min_theta" json:"min_theta"`
	MaxTheta float64 `yaml:"max_theta" json:"max_theta" validate:"gtfield=MinTheta"`

	// TrendThreshold is the theta change needed before a trend is up or
	// down rather than stable.
	TrendThreshold float64 `yaml:"trend_threshold" json:"trend_threshold" validate:"gte=0"`
}

// DefaultConfig returns the scoring defaults.
func DefaultConfig() Config {
	return Config{
		CutPoints:              []float64{-1, 0, 1},
		Levels:                 []string{"beginner", "intermediate", "advanced", "expert"},
		ReferenceStandardError: 1.0,
		MinTheta:               -4,
		MaxTheta:               4,
		TrendThreshold:         0.2,
	}
}

// Check validates the relations between fields that struct tags cannot.
func (c Config) Check() error {
	if len(c.Levels) != len(c.CutPoints)+1 {
		return fmt.Errorf("scoring: %d levels need %d cut points, got %d", len(c.Levels), len(c.Levels)-1, len(c.CutPoints))
	}
	if !sort.Float64sAreSorted(c.CutPoints) {
		return fmt.Errorf("scoring: cut points must be ascending: %v", c.CutPoints)
	}
	for i := 1; i < len(c.CutPoints); i++ {
		if c.CutPoints[i] == c.CutPoints[i-1] {
			return fmt.Errorf("scoring: duplicate cut point %v", c.CutPoints[i])
		}
	}
	return nil
}
