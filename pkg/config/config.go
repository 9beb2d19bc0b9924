// Package config provides configuration loading and management for lumturb.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"lumturb/internal/models"
	"lumturb/pkg/lognormal"
	"lumturb/pkg/structure"
)

// Report formats understood by the report writer.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Analysis parameters
	Analysis struct {
		// Scales are the pixel offsets at which increments are sampled
		Scales []int `yaml:"scales"`

		// Lambda divides the increment standard deviation to give the
		// log-normal shape parameter
		Lambda float64 `yaml:"lambda"`

		// Epsilon is the dissipation scale used to rescale structure functions
		Epsilon float64 `yaml:"epsilon"`

		// MaxOrder is the highest structure-function order
		MaxOrder int `yaml:"maxOrder"`

		// NumWorkers specifies how many scales are processed concurrently
		NumWorkers int `yaml:"numWorkers"`

		// MaxSamples caps each scale's sample (0 keeps all increments)
		MaxSamples int `yaml:"maxSamples"`

		// Seed drives subsampling when MaxSamples is set
		Seed uint64 `yaml:"seed"`
	} `yaml:"analysis"`

	// Comparison parameters
	Compare struct {
		// Welch selects the unequal-variance t-test
		Welch bool `yaml:"welch"`

		// Alpha is the significance level used when flagging orders
		Alpha float64 `yaml:"alpha"`
	} `yaml:"compare"`

	// Output parameters
	Output struct {
		// ReportFormat is one of text, yaml or json
		ReportFormat string `yaml:"reportFormat"`

		// HistogramBins is the number of bins in the increment histograms
		HistogramBins int `yaml:"histogramBins"`

		// CurvePoints is the number of points at which fitted densities are evaluated
		CurvePoints int `yaml:"curvePoints"`

		// MapsDir is where increment maps are written; empty disables them
		MapsDir string `yaml:"mapsDir"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Analysis.Scales = append([]int(nil), models.DefaultScales...)
	cfg.Analysis.Lambda = lognormal.DefaultLambda
	cfg.Analysis.Epsilon = structure.DefaultEpsilon
	cfg.Analysis.MaxOrder = structure.DefaultMaxOrder
	cfg.Analysis.NumWorkers = runtime.NumCPU() // Use all available cores by default

	cfg.Compare.Alpha = 0.05

	cfg.Output.ReportFormat = FormatText
	cfg.Output.HistogramBins = 50
	cfg.Output.CurvePoints = 100
	cfg.Output.Verbose = false

	return cfg
}

// Validate rejects values the analysis cannot run with. It never replaces
// them with defaults.
func (c *Config) Validate() error {
	var errs []error
	if err := models.ScaleSet(c.Analysis.Scales).Validate(); err != nil {
		errs = append(errs, err)
	}
	if !(c.Analysis.Lambda > 0) {
		errs = append(errs, fmt.Errorf("%w: got %v", models.ErrInvalidLambda, c.Analysis.Lambda))
	}
	if !(c.Analysis.Epsilon > 0) {
		errs = append(errs, fmt.Errorf("%w: got %v", models.ErrInvalidEpsilon, c.Analysis.Epsilon))
	}
	if c.Analysis.MaxOrder < 1 {
		errs = append(errs, fmt.Errorf("maxOrder must be at least 1, got %d", c.Analysis.MaxOrder))
	}
	if c.Analysis.NumWorkers < 1 {
		errs = append(errs, fmt.Errorf("numWorkers must be at least 1, got %d", c.Analysis.NumWorkers))
	}
	if c.Analysis.MaxSamples < 0 {
		errs = append(errs, fmt.Errorf("maxSamples must be non-negative, got %d", c.Analysis.MaxSamples))
	}
	if !(c.Compare.Alpha > 0 && c.Compare.Alpha < 1) {
		errs = append(errs, fmt.Errorf("alpha must be in (0, 1), got %v", c.Compare.Alpha))
	}
	switch c.Output.ReportFormat {
	case FormatText, FormatYAML, FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("unknown report format %q", c.Output.ReportFormat))
	}
	if c.Output.HistogramBins < 1 {
		errs = append(errs, fmt.Errorf("histogramBins must be at least 1, got %d", c.Output.HistogramBins))
	}
	if c.Output.CurvePoints < 2 {
		errs = append(errs, fmt.Errorf("curvePoints must be at least 2, got %d", c.Output.CurvePoints))
	}
	return errors.Join(errs...)
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
