// Package projectconfig provides the ProjectConfig struct and loader for
// .booker.yaml configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up by Load.
const FileName = ".booker.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultTimezone    = "America/Chicago"
	DefaultModel       = "gpt-4.1"
	DefaultTemperature = 0.2
	DefaultTimeoutSec  = 120
	DefaultMaxClarify  = 3
)

// ProjectConfig is the configuration loaded from .booker.yaml.
type ProjectConfig struct {
	Timezone    string   `yaml:"timezone,omitempty"`
	Model       string   `yaml:"model,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
	TimeoutSec  int      `yaml:"timeout_sec,omitempty"`
	MaxClarify  int      `yaml:"max_clarify,omitempty"`

	// PromptsDir overrides the built-in prompts when set.
	PromptsDir string `yaml:"prompts_dir,omitempty"`

	// TraceLog is the NDJSON workflow trace file. Empty disables tracing.
	TraceLog string `yaml:"trace_log,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Timezone:    DefaultTimezone,
		Model:       DefaultModel,
		Temperature: float64Ptr(DefaultTemperature),
		TimeoutSec:  DefaultTimeoutSec,
		MaxClarify:  DefaultMaxClarify,
	}
}

// Location resolves Timezone.
func (c *ProjectConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Timeout returns TimeoutSec as a duration.
func (c *ProjectConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// TemperatureOrDefault returns Temperature, or DefaultTemperature when unset.
func (c *ProjectConfig) TemperatureOrDefault() float64 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}

// Load finds .booker.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}
	return parse(data, FileName)
}

// LoadFile reads an explicit config file. Unlike Load, a missing file is an
// error.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return parse(data, path)
}

func parse(data []byte, name string) (*ProjectConfig, error) {
	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}

	cfg := New()
	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .booker.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) ([]byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for range 10 {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	if src.Timezone != "" {
		dst.Timezone = src.Timezone
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.Temperature != nil {
		dst.Temperature = src.Temperature
	}
	if src.TimeoutSec != 0 {
		dst.TimeoutSec = src.TimeoutSec
	}
	if src.MaxClarify != 0 {
		dst.MaxClarify = src.MaxClarify
	}
	if src.PromptsDir != "" {
		dst.PromptsDir = src.PromptsDir
	}
	if src.TraceLog != "" {
		dst.TraceLog = src.TraceLog
	}
}

func float64Ptr(f float64) *float64 {
	return &f
}
