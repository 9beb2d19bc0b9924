package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"lumturb/internal/models"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Analysis.Scales) != 5 || cfg.Analysis.Scales[4] != 20 {
		t.Errorf("expected default scales [1 2 5 10 20], got %v", cfg.Analysis.Scales)
	}
	if cfg.Analysis.Lambda != 0.1 {
		t.Errorf("expected lambda 0.1, got %f", cfg.Analysis.Lambda)
	}
	if cfg.Analysis.Epsilon != 0.1 {
		t.Errorf("expected epsilon 0.1, got %f", cfg.Analysis.Epsilon)
	}
	if cfg.Analysis.MaxOrder != 5 {
		t.Errorf("expected max order 5, got %d", cfg.Analysis.MaxOrder)
	}
	if cfg.Analysis.NumWorkers < 1 {
		t.Error("workers should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}

	// Mutating the config must not touch the package defaults.
	cfg.Analysis.Scales[0] = 99
	if models.DefaultScales[0] != 1 {
		t.Error("default scales were aliased")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"zero lambda", func(c *Config) { c.Analysis.Lambda = 0 }, models.ErrInvalidLambda},
		{"negative epsilon", func(c *Config) { c.Analysis.Epsilon = -0.1 }, models.ErrInvalidEpsilon},
		{"zero scale", func(c *Config) { c.Analysis.Scales = []int{1, 0} }, models.ErrInvalidScale},
		{"duplicate scale", func(c *Config) { c.Analysis.Scales = []int{2, 2} }, models.ErrDuplicateScale},
		{"no scales", func(c *Config) { c.Analysis.Scales = nil }, models.ErrInvalidScale},
		{"zero order", func(c *Config) { c.Analysis.MaxOrder = 0 }, nil},
		{"zero workers", func(c *Config) { c.Analysis.NumWorkers = 0 }, nil},
		{"negative samples", func(c *Config) { c.Analysis.MaxSamples = -1 }, nil},
		{"alpha one", func(c *Config) { c.Compare.Alpha = 1 }, nil},
		{"bad format", func(c *Config) { c.Output.ReportFormat = "xml" }, nil},
		{"zero bins", func(c *Config) { c.Output.HistogramBins = 0 }, nil},
		{"one point", func(c *Config) { c.Output.CurvePoints = 1 }, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Analysis.Lambda != 0.1 {
		t.Errorf("expected defaults, got lambda %f", cfg.Analysis.Lambda)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lumturb.yaml")

	cfg := DefaultConfig()
	cfg.Analysis.Scales = []int{1, 3, 9}
	cfg.Analysis.Epsilon = 0.25
	cfg.Analysis.Seed = 42
	cfg.Compare.Welch = true
	cfg.Output.ReportFormat = FormatYAML

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded.Analysis.Scales) != 3 || loaded.Analysis.Scales[2] != 9 {
		t.Errorf("expected scales [1 3 9], got %v", loaded.Analysis.Scales)
	}
	if loaded.Analysis.Epsilon != 0.25 {
		t.Errorf("expected epsilon 0.25, got %f", loaded.Analysis.Epsilon)
	}
	if loaded.Analysis.Seed != 42 {
		t.Errorf("expected seed 42, got %d", loaded.Analysis.Seed)
	}
	if !loaded.Compare.Welch {
		t.Error("expected welch to be set")
	}
	if loaded.Output.ReportFormat != FormatYAML {
		t.Errorf("expected yaml format, got %s", loaded.Output.ReportFormat)
	}
}

func TestLoadConfigPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	content := "analysis:\n  lambda: 0.5\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Analysis.Lambda != 0.5 {
		t.Errorf("expected lambda 0.5, got %f", cfg.Analysis.Lambda)
	}
	if cfg.Analysis.Epsilon != 0.1 {
		t.Errorf("expected default epsilon, got %f", cfg.Analysis.Epsilon)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("analysis: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("written default config is invalid: %v", err)
	}
}
