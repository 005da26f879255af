package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/dirtree/internal/util"
	"gopkg.in/yaml.v3"
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl = util.InfoLevel

	// DefaultInstructions reads commands from stdin
	DefaultInstructions = ""

	// DefaultKeepEmptySegments drops the empty names produced by "a//b" or "/a"
	DefaultKeepEmptySegments = false

	DefaultMountDebug = false
	DefaultFsName     = "dirtree"
	DefaultName       = "dirtree"
)

// StdinInstructions is the Instructions value that explicitly selects stdin.
const StdinInstructions = "-"

// Config contains runtime configuration values for a dirtree run.
type Config struct {
	MountOptions
	LogLvl            util.LogLevel // Internal log level (Default info)
	Instructions      string        // Path to the command file; "" or "-" reads stdin
	KeepEmptySegments bool          // Keep empty path segments as literal "" names (Default false)
}

// ReadsStdin reports whether commands come from stdin rather than a file.
func (c *Config) ReadsStdin() bool {
	return c.Instructions == "" || c.Instructions == StdinInstructions
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	// LogLvl is a verbosity between 1 (error) and 5 (trace), not a [util.LogLevel]
	LogLvl            *int    `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	Instructions      *string `yaml:"instructions,omitempty" json:"instructions,omitempty"`
	KeepEmptySegments *bool   `yaml:"keep_empty_segments,omitempty" json:"keep_empty_segments,omitempty"`
	Debug             *bool   `yaml:"mount_debug,omitempty" json:"mount_debug,omitempty"`
	FsName            *string `yaml:"fs_name,omitempty" json:"fs_name,omitempty"`
	Name              *string `yaml:"name,omitempty" json:"name,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		MountOptions: MountOptions{
			Debug:  DefaultMountDebug,
			FsName: DefaultFsName,
			Name:   DefaultName,
		},
		LogLvl:            DefaultLogLvl,
		Instructions:      DefaultInstructions,
		KeepEmptySegments: DefaultKeepEmptySegments,
	}
}

// NewConfig creates a Config from defaults with override applied on top.
// A nil override yields the defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = VerboseToLogLvl(*override.LogLvl)
	}
	if override.Instructions != nil {
		c.Instructions = *override.Instructions
	}
	if override.KeepEmptySegments != nil {
		c.KeepEmptySegments = *override.KeepEmptySegments
	}
	if override.Debug != nil {
		c.Debug = *override.Debug
	}
	if override.FsName != nil {
		c.FsName = *override.FsName
	}
	if override.Name != nil {
		c.Name = *override.Name
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}
