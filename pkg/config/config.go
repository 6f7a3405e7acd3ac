// Package config holds the tournament engine configuration. Values come from
// built-in defaults, then an optional YAML file, then TOURNEY_* environment
// variables.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/tourney/pkg/errors"
	"github.com/YuminosukeSato/tourney/pkg/log"
)

// Config holds the engine configuration
type Config struct {
	// Folds is the number of cross-validation folds per candidate.
	Folds int `yaml:"folds"`
	// Seed drives fold assignment and the randomized learners.
	Seed int64 `yaml:"seed"`
	// Parallelism bounds how many candidates are evaluated at once.
	Parallelism int `yaml:"parallelism"`
	// FoldWorkers bounds how many folds of one candidate run at once.
	FoldWorkers int    `yaml:"fold_workers"`
	LogLevel    string `yaml:"log_level"`

	Discretize DiscretizeConfig `yaml:"discretize"`
	MLP        MLPConfig        `yaml:"mlp"`
}

// DiscretizeConfig configures the equal-width binning filter.
type DiscretizeConfig struct {
	Bins int `yaml:"bins"`
}

// MLPConfig configures the multilayer perceptron candidate.
type MLPConfig struct {
	Epochs int `yaml:"epochs"`
}

// Default returns the configuration the engine uses when nothing is set.
func Default() *Config {
	return &Config{
		Folds:       10,
		Seed:        1,
		Parallelism: 1,
		FoldWorkers: 1,
		LogLevel:    "info",
		Discretize:  DiscretizeConfig{Bins: 10},
		MLP:         MLPConfig{Epochs: 500},
	}
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Folds = getEnvAsInt("TOURNEY_FOLDS", c.Folds)
	c.Seed = int64(getEnvAsInt("TOURNEY_SEED", int(c.Seed)))
	c.Parallelism = getEnvAsInt("TOURNEY_PARALLELISM", c.Parallelism)
	c.FoldWorkers = getEnvAsInt("TOURNEY_FOLD_WORKERS", c.FoldWorkers)
	c.LogLevel = getEnv("TOURNEY_LOG_LEVEL", c.LogLevel)
	c.Discretize.Bins = getEnvAsInt("TOURNEY_DISCRETIZE_BINS", c.Discretize.Bins)
	c.MLP.Epochs = getEnvAsInt("TOURNEY_MLP_EPOCHS", c.MLP.Epochs)
}

// Validate reports the first invalid setting as a ValidationError.
func (c *Config) Validate() error {
	switch {
	case c.Folds < 2:
		return errors.NewValidationError("folds", "must be at least 2", c.Folds)
	case c.Parallelism < 1:
		return errors.NewValidationError("parallelism", "must be at least 1", c.Parallelism)
	case c.FoldWorkers < 1:
		return errors.NewValidationError("fold_workers", "must be at least 1", c.FoldWorkers)
	case !log.IsValidLevel(c.LogLevel):
		return errors.NewValidationError("log_level", "must be one of debug, info, warn, error", c.LogLevel)
	case c.Discretize.Bins < 1:
		return errors.NewValidationError("discretize.bins", "must be at least 1", c.Discretize.Bins)
	case c.MLP.Epochs < 1:
		return errors.NewValidationError("mlp.epochs", "must be at least 1", c.MLP.Epochs)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
