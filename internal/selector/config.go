package selector

// Config tunes item selection.
type Config struct {
	// TopK is the size of the randomesque exposure pool. 1 always picks
	// the most informative item (ties aside).
	TopK int `yaml:"top_k" json:"top_k" validate:"gte=1"`

	// ExposureWindow keeps pool members within this fraction of the best
	// score, so exposure control never trades away much information.
	ExposureWindow float64 `yaml:"exposure_window" json:"exposure_window" validate:"gte=0,lte=1"`

	// TieEpsilon is the absolute score difference treated as a tie.
	TieEpsilon float64 `yaml:"tie_epsilon" json:"tie_epsilon" validate:"gte=0"`

	// CoverageWeight discounts categories already asked in the session:
	// score = information / (1 + CoverageWeight * timesAsked).
	CoverageWeight float64 `yaml:"coverage_weight" json:"coverage_weight" validate:"gte=0"`
}

// DefaultConfig returns the selection defaults.
func DefaultConfig() Config {
	return Config{
		TopK:           3,
		ExposureWindow: 0.10,
		TieEpsilon:     1e-6,
		CoverageWeight: 0.25,
	}
}
