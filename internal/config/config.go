// =============================================================================
// txgen - Configuration Module
// =============================================================================
//
// This module loads the optional YAML configuration file. Every setting has
// a default, and a run without a config file behaves like the stock
// generator: one million rows into transactions.csv.
//
// EXAMPLE (txgen.yaml):
//   output_path: "out/tx_{date}_{uuid}.csv"
//   record_count: 250000
//   seed: 42
//   log_level: debug
//
// Command-line flags override values loaded here.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/txgen/internal/generator"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// GENERATION SETTINGS
	// =========================================================================

	// OutputPath is where generated records are written. It may contain
	// {uuid}, {timestamp}, {date} and {seed} placeholders.
	// Default: "transactions.csv"
	OutputPath string `yaml:"output_path"`

	// RecordCount is the number of data rows to generate.
	// Default: 1000000
	RecordCount *int `yaml:"record_count"`

	// Seed fixes the random sequence. 0 picks a random seed per run.
	// Default: 0
	Seed uint64 `yaml:"seed"`

	// ClientMax and TxMax are the inclusive upper bounds for ids.
	// Defaults: 10000 and 100000
	ClientMax int `yaml:"client_max"`
	TxMax     int `yaml:"tx_max"`

	// AmountMax is the exclusive upper bound for deposit and withdrawal
	// amounts.
	// Default: 100000
	AmountMax float64 `yaml:"amount_max"`

	// ProgressInterval logs progress every that many rows at debug level.
	// Default: 100000
	ProgressInterval int `yaml:"progress_interval"`

	// SummaryDir, when set, receives a text summary after each run.
	SummaryDir string `yaml:"summary_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "trace", "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat is "text" or "json".
	// Default: "text"
	LogFormat string `yaml:"log_format"`

	// LogFile, when set, also receives every log line.
	LogFile string `yaml:"log_file"`
}

// Count returns the configured record count.
func (c *Config) Count() int {
	if c.RecordCount == nil {
		return DefaultRecordCount
	}
	return *c.RecordCount
}

// Bounds returns the generator sampling ranges.
func (c *Config) Bounds() generator.Bounds {
	return generator.Bounds{
		ClientMax: c.ClientMax,
		TxMax:     c.TxMax,
		AmountMax: c.AmountMax,
	}
}

// Defaults.
const (
	DefaultOutputPath       = "transactions.csv"
	DefaultRecordCount      = 1_000_000
	DefaultProgressInterval = 100_000
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load reads the configuration from configPath. A missing file is not an
// error; the defaults are returned instead.
func Load(configPath string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	ApplyDefaults(&config)

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var config Config
	ApplyDefaults(&config)
	return &config
}

// ApplyDefaults sets default values for any unset configuration options.
func ApplyDefaults(config *Config) {
	bounds := generator.DefaultBounds()

	if config.OutputPath == "" {
		config.OutputPath = DefaultOutputPath
	}
	if config.RecordCount == nil {
		count := DefaultRecordCount
		config.RecordCount = &count
	}
	if config.ClientMax == 0 {
		config.ClientMax = bounds.ClientMax
	}
	if config.TxMax == 0 {
		config.TxMax = bounds.TxMax
	}
	if config.AmountMax == 0 {
		config.AmountMax = bounds.AmountMax
	}
	if config.ProgressInterval == 0 {
		config.ProgressInterval = DefaultProgressInterval
	}
	if config.LogLevel == "" {
		config.LogLevel = DefaultLogLevel
	}
	if config.LogFormat == "" {
		config.LogFormat = DefaultLogFormat
	}
}

// Validate checks the configuration after defaults are applied.
func Validate(config *Config) error {
	if config.Count() < 0 {
		return fmt.Errorf("record_count must not be negative, got %d", config.Count())
	}
	if err := config.Bounds().Validate(); err != nil {
		return err
	}
	if config.ProgressInterval < 0 {
		return fmt.Errorf("progress_interval must not be negative, got %d", config.ProgressInterval)
	}

	switch config.LogLevel {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", config.LogLevel)
	}

	switch config.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q", config.LogFormat)
	}

	return nil
}
