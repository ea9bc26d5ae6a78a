package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Data    DataConfig    `yaml:"data" envconfig:"DATA"`
	Output  OutputConfig  `yaml:"output" envconfig:"OUTPUT"`
	Model   ModelConfig   `yaml:"model" envconfig:"MODEL"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// DataConfig contains input table locations
type DataConfig struct {
	TrainPath string `yaml:"train_path" envconfig:"TRAIN_PATH" default:"data/train.csv" validate:"required"`
	TestPath  string `yaml:"test_path" envconfig:"TEST_PATH" default:"data/test.csv" validate:"required"`
}

// OutputConfig contains output file locations
type OutputConfig struct {
	Dir        string `yaml:"dir" envconfig:"DIR" default:"output" validate:"required"`
	ReportFile string `yaml:"report_file" envconfig:"REPORT_FILE" default:"eda_report.xlsx"`
}

// ModelConfig contains training hyperparameters shared across the run
type ModelConfig struct {
	Seed      int64   `yaml:"seed" envconfig:"SEED" default:"42"`
	Folds     int     `yaml:"folds" envconfig:"FOLDS" default:"5" validate:"min=2"`
	Threshold float64 `yaml:"threshold" envconfig:"THRESHOLD" default:"0.5" validate:"gte=0,lte=1"`

	// Random forest search
	ForestTrees  int `yaml:"forest_trees" envconfig:"FOREST_TREES" default:"200" validate:"min=1"`
	ForestTrials int `yaml:"forest_trials" envconfig:"FOREST_TRIALS" default:"5" validate:"min=1"`

	// Gradient boosting
	BoostRounds int     `yaml:"boost_rounds" envconfig:"BOOST_ROUNDS" default:"20" validate:"min=1"`
	BoostDepth  int     `yaml:"boost_depth" envconfig:"BOOST_DEPTH" default:"3" validate:"min=1"`
	BoostEta    float64 `yaml:"boost_eta" envconfig:"BOOST_ETA" default:"0.3" validate:"gt=0,lte=1"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/churn.log"`
}

// Load assembles configuration in three layers: struct-tag defaults and
// CHURN_* environment variables first, then an optional YAML file whose
// explicit keys override both. An empty configFile skips the file layer.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process("CHURN", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// validate checks the assembled configuration
func (c *Config) validate() error {
	return validator.New().Struct(c)
}

// SubmissionPath returns the full path of a submission file in the output
// directory.
func (c *Config) SubmissionPath(name string) string {
	return filepath.Join(c.Output.Dir, name)
}

// ReportPath returns the full path of the EDA report workbook.
func (c *Config) ReportPath() string {
	return filepath.Join(c.Output.Dir, c.Output.ReportFile)
}

// EnsureOutputDir creates the output directory if it does not exist.
func (c *Config) EnsureOutputDir() error {
	if err := os.MkdirAll(c.Output.Dir, 0755); err != nil {
		return fmt.Errorf("create output directory %s: %w", c.Output.Dir, err)
	}
	return nil
}
