/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"
)

// Config represents the tfrecord tool configuration
type Config struct {
	Reader  Reader  `yaml:"reader"`
	Writer  Writer  `yaml:"writer"`
	Shuffle Shuffle `yaml:"shuffle"`
	Logging Logging `yaml:"logging"`
	Metrics Metrics `yaml:"metrics"`
}

// Reader contains defaults for opening record files
type Reader struct {
	CheckIntegrity bool   `yaml:"check_integrity"`
	BufferSize     int    `yaml:"buffer_size"`
	Compression    string `yaml:"compression"`
	MaxRecordSize  uint64 `yaml:"max_record_size"`
}

// Writer contains defaults for creating record files
type Writer struct {
	BufferSize  int    `yaml:"buffer_size"`
	Compression string `yaml:"compression"`
	Overlapped  bool   `yaml:"overlapped"`
}

// Shuffle contains shuffle buffer defaults
type Shuffle struct {
	Capacity int     `yaml:"capacity"`
	Seed     *uint64 `yaml:"seed,omitempty"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
	File   string `yaml:"file,omitempty"`
}

// Metrics contains the Prometheus endpoint configuration
type Metrics struct {
	Addr string `yaml:"addr,omitempty"` // host:port, empty disables the endpoint
}

var (
	compressions = []interface{}{"", "none", "gzip", "zlib"}
	levels       = []interface{}{"", "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled"}
)

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Reader: Reader{
			CheckIntegrity: true,
			BufferSize:     64 * 1024,
			Compression:    "none",
		},
		Writer: Writer{
			BufferSize:  8192,
			Compression: "none",
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Reader),
		validation.Field(&c.Writer),
		validation.Field(&c.Shuffle),
		validation.Field(&c.Logging),
		validation.Field(&c.Metrics),
	)
}

func (r Reader) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BufferSize, validation.Min(0)),
		validation.Field(&r.Compression, validation.In(compressions...)),
	)
}

func (w Writer) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.BufferSize, validation.Min(0)),
		validation.Field(&w.Compression, validation.In(compressions...)),
	)
}

func (s Shuffle) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Capacity, validation.Min(0)),
	)
}

func (l Logging) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In(levels...)),
	)
}

func (m Metrics) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Addr, is.DialString),
	)
}

// LoadConfig loads configuration from the specified path. Keys missing from
// the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Validate path to prevent directory traversal
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// BootstrapConfig writes the default configuration unless a file already
// exists at configPath, and returns the configuration in effect
func BootstrapConfig(configPath string) (*Config, error) {
	if ConfigExists(configPath) {
		return LoadConfig(configPath)
	}

	config := DefaultConfig()
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./tfrecord.yaml"
	}

	// For Linux/macOS, use ~/.config/tfrecord/config.yaml
	configDir := filepath.Join(homeDir, ".config", "tfrecord")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
