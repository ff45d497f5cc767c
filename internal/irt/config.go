package irt

// Config controls the ability estimator and the defaults substituted for
// uncalibrated or malformed item parameters.
type Config struct {
	// PriorTheta is the ability every session starts from.
	PriorTheta float64 `yaml:"prior_theta" json:"prior_theta"`

	// PriorStandardError is the starting uncertainty of PriorTheta.
	PriorStandardError float64 `yaml:"prior_standard_error" json:"prior_standard_error" validate:"gt=0"`

	// MinTheta and MaxTheta bound every estimate.
	MinTheta float64 `yaml:"min_theta" json:"min_theta"`
	MaxTheta float64 `yaml:"max_theta" json:"max_theta" validate:"gtfield=MinTheta"`

	// MinStandardError is the floor the standard error never drops below.
	MinStandardError float64 `yaml:"min_standard_error" json:"min_standard_error" validate:"gt=0,ltefield=PriorStandardError"`

	// DefaultDiscrimination replaces missing or non-positive discrimination.
	DefaultDiscrimination float64 `yaml:"default_discrimination" json:"default_discrimination" validate:"gt=0"`

	// DefaultGuessing replaces guessing values outside [0, 1).
	DefaultGuessing float64 `yaml:"default_guessing" json:"default_guessing" validate:"gte=0,lt=1"`

	// DifficultyLimit clamps item difficulty to [-limit, limit]. 0 disables.
	DifficultyLimit float64 `yaml:"difficulty_limit" json:"difficulty_limit" validate:"gte=0"`
}

// DefaultConfig returns the estimator defaults.
func DefaultConfig() Config {
	return Config{
		PriorTheta:            0,
		PriorStandardError:    1.0,
		MinTheta:              -4,
		MaxTheta:              4,
		MinStandardError:      0.05,
		DefaultDiscrimination: 1.0,
		DefaultGuessing:       0,
		DifficultyLimit:       6,
	}
}
