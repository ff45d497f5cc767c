package session

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/irt"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/scoring"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/selector"
)

// Config is everything a session needs. It is passed explicitly to each
// session; there is no package-level configuration.
type Config struct {
	Estimator irt.Config      `yaml:"estimator" json:"estimator"`
	Selector  selector.Config `yaml:"selector" json:"selector"`
	Stopping  StoppingConfig  `yaml:"stopping" json:"stopping"`
	Scoring   scoring.Config  `yaml:"scoring" json:"scoring"`

	// Seed fixes the tie-break random source. 0 picks a fresh seed per
	// session.
	Seed uint64 `yaml:"seed" json:"seed"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Estimator: irt.DefaultConfig(),
		Selector:  selector.DefaultConfig(),
		Stopping:  DefaultStoppingConfig(),
		Scoring:   scoring.DefaultConfig(),
	}
}

var validate = validator.New()

// Validate checks struct constraints and the relations between sections.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Scoring.Check(); err != nil {
		return err
	}
	if c.Estimator.PriorTheta < c.Estimator.MinTheta || c.Estimator.PriorTheta > c.Estimator.MaxTheta {
		return fmt.Errorf("config: prior_theta %v outside [%v, %v]", c.Estimator.PriorTheta, c.Estimator.MinTheta, c.Estimator.MaxTheta)
	}
	if c.Stopping.PrecisionTarget < c.Estimator.MinStandardError {
		return fmt.Errorf("config: precision_target %v is below min_standard_error %v and can never be reached",
			c.Stopping.PrecisionTarget, c.Estimator.MinStandardError)
	}
	return nil
}

// LoadConfig loads configuration with priority: env > file > defaults.
// An empty path or a missing file leaves the defaults in place.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	loadConfigFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

func loadConfigFromEnv(cfg *Config) {
	envFloat("AIBORG_CAT_PRIOR_THETA", &cfg.Estimator.PriorTheta)
	envFloat("AIBORG_CAT_PRIOR_SE", &cfg.Estimator.PriorStandardError)
	envFloat("AIBORG_CAT_MIN_SE", &cfg.Estimator.MinStandardError)

	envInt("AIBORG_CAT_TOP_K", &cfg.Selector.TopK)
	envFloat("AIBORG_CAT_EXPOSURE_WINDOW", &cfg.Selector.ExposureWindow)
	envFloat("AIBORG_CAT_COVERAGE_WEIGHT", &cfg.Selector.CoverageWeight)

	envInt("AIBORG_CAT_MIN_QUESTIONS", &cfg.Stopping.MinQuestions)
	envInt("AIBORG_CAT_MAX_QUESTIONS", &cfg.Stopping.MaxQuestions)
	envFloat("AIBORG_CAT_PRECISION_TARGET", &cfg.Stopping.PrecisionTarget)

	if v := os.Getenv("AIBORG_CAT_CUT_POINTS"); v != "" {
		var cuts []float64
		for _, part := range strings.Split(v, ",") {
			f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				cuts = nil
				break
			}
			cuts = append(cuts, f)
		}
		if cuts != nil {
			cfg.Scoring.CutPoints = cuts
		}
	}
	if v := os.Getenv("AIBORG_CAT_LEVELS"); v != "" {
		levels := strings.Split(v, ",")
		for i := range levels {
			levels[i] = strings.TrimSpace(levels[i])
		}
		cfg.Scoring.Levels = levels
	}

	if v := os.Getenv("AIBORG_CAT_SEED"); v != "" {
		if u, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Seed = u
		}
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
