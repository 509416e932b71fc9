// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"basket-rules/internal/errors"
	"basket-rules/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Input describes the transactions CSV
	Input InputConfig `json:"input"`

	// Mining contains frequent itemset and rule thresholds
	Mining MiningConfig `json:"mining"`

	// Recommend contains recommendation defaults
	Recommend RecommendConfig `json:"recommend"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Store contains snapshot store configuration
	Store StoreConfig `json:"store"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// InputConfig contains CSV input settings
type InputConfig struct {
	// Path is the transactions CSV file
	Path string `json:"path"`

	// DateLayout is a Go time layout tried before the built-in ones
	DateLayout string `json:"date_layout,omitempty"`

	// Delimiter is the field separator
	Delimiter string `json:"delimiter" validate:"len=1"`

	// SkipInvalid skips malformed rows instead of failing
	SkipInvalid bool `json:"skip_invalid"`
}

// MiningConfig contains mining thresholds
type MiningConfig struct {
	// MinSupport is the minimum itemset support, in (0, 1]
	MinSupport float64 `json:"min_support" validate:"gt=0,lte=1"`

	// MaxLen caps itemset size, 0 for unbounded
	MaxLen int `json:"max_len" validate:"gte=0"`

	// Metric selects the rule filter metric
	Metric string `json:"metric" validate:"oneof=support confidence lift leverage conviction zhangs_metric"`

	// MinThreshold is the minimum value of Metric
	MinThreshold float64 `json:"min_threshold"`
}

// RecommendConfig contains recommendation defaults
type RecommendConfig struct {
	// Count is the default number of recommendations
	Count int `json:"count" validate:"gte=1"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// Format is the default output format
	Format string `json:"format" validate:"oneof=cli json markdown csv"`

	// Precision is the number of decimals printed for metrics
	Precision int `json:"precision" validate:"gte=0,lte=12"`

	// Limit caps printed rules, 0 for all
	Limit int `json:"limit" validate:"gte=0"`

	// NoColor disables terminal colors
	NoColor bool `json:"no_color"`
}

// StoreConfig contains snapshot store settings
type StoreConfig struct {
	// Path is the SQLite database file
	Path string `json:"path"`
}

// ServerConfig contains HTTP settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr" validate:"required"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	storePath := filepath.Join(homeDir, ".basket-rules", "snapshots.db")

	return &Config{
		Version: "1.0",
		Input: InputConfig{
			Delimiter: ",",
		},
		Mining: MiningConfig{
			MinSupport:   0.01,
			MaxLen:       0,
			Metric:       "lift",
			MinThreshold: 1.0,
		},
		Recommend: RecommendConfig{
			Count: 1,
		},
		Output: OutputConfig{
			Format:    "cli",
			Precision: 4,
		},
		Store: StoreConfig{
			Path: storePath,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file. A missing file yields the defaults.
// Files ending in .hcl are decoded as HCL, everything else as JSON.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Config("read config file", err).WithContext("path", path)
	}

	config := Default()
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		if err := decodeHCL(path, data, config); err != nil {
			return nil, err
		}
		return config, nil
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Config("parse config file", err).WithContext("path", path)
	}
	return config, nil
}

// Save saves configuration to a file as JSON
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
