// ============================================================================
// paramval - Parametric Value Layer
// ============================================================================
//
// Package:     config
// Description: TOML and YAML configuration for the paramval tools
// Author:      Mike Stoffels
// Created:     2026-09-24
// License:     MIT
// ============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general" yaml:"general"`
	Engine  EngineConfig  `toml:"engine" yaml:"engine"`
	Store   StoreConfig   `toml:"store" yaml:"store"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
	Output  OutputConfig  `toml:"output" yaml:"output"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name        string `toml:"name" yaml:"name"`
	Environment string `toml:"environment" yaml:"environment"`
	DataDir     string `toml:"data_dir" yaml:"data_dir"`
	LogLevel    string `toml:"log_level" yaml:"log_level"`
	LogFormat   string `toml:"log_format" yaml:"log_format"`
}

// EngineConfig holds run context settings
type EngineConfig struct {
	// CancelCacheSize bounds the memoizing canceller; negative disables it
	CancelCacheSize int      `toml:"cancel_cache_size" yaml:"cancel_cache_size"`
	CancelCacheTTL  Duration `toml:"cancel_cache_ttl" yaml:"cancel_cache_ttl"`
	// Checkpoints > 0 enables value equality in the DAG pool
	Checkpoints    int    `toml:"checkpoints" yaml:"checkpoints"`
	CheckpointSeed int64  `toml:"checkpoint_seed" yaml:"checkpoint_seed"`
	DisableFolding bool   `toml:"disable_folding" yaml:"disable_folding"`
	Rounding       string `toml:"rounding" yaml:"rounding"`
}

// StoreConfig holds snapshot store settings
type StoreConfig struct {
	Path string `toml:"path" yaml:"path"`
}

// ServerConfig holds evaluation service settings
type ServerConfig struct {
	Host            string   `toml:"host" yaml:"host"`
	Port            int      `toml:"port" yaml:"port"`
	RequestTimeout  Duration `toml:"request_timeout" yaml:"request_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// OutputConfig holds CLI rendering settings
type OutputConfig struct {
	Format    string `toml:"format" yaml:"format"`
	Precision int    `toml:"precision" yaml:"precision"`
	Color     bool   `toml:"color" yaml:"color"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file, chosen by extension
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	return &cfg, nil
}

// LoadFromEnv loads configuration from the PARAMVAL_CONFIG environment variable
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("PARAMVAL_CONFIG")
	if path == "" {
		// Try default locations
		defaultPaths := []string{
			"./configs/paramval.toml",
			"./paramval.toml",
			"./paramval.yaml",
			filepath.Join(os.Getenv("HOME"), ".config/paramval/config.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return nil, fmt.Errorf("no config file found, set PARAMVAL_CONFIG or create configs/paramval.toml")
	}

	return Load(path)
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "paramval"
	}
	if c.General.Environment == "" {
		c.General.Environment = "development"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	// Engine
	if c.Engine.CancelCacheSize == 0 {
		c.Engine.CancelCacheSize = 4096
	}
	if c.Engine.CheckpointSeed == 0 {
		c.Engine.CheckpointSeed = 1
	}
	if c.Engine.Rounding == "" {
		c.Engine.Rounding = "ties-to-even"
	}

	// Store
	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(c.General.DataDir, "paramval.db")
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 9330
	}
	if c.Server.RequestTimeout.Duration == 0 {
		c.Server.RequestTimeout.Duration = 30 * time.Second
	}
	if c.Server.ShutdownTimeout.Duration == 0 {
		c.Server.ShutdownTimeout.Duration = 10 * time.Second
	}

	// Output
	if c.Output.Format == "" {
		c.Output.Format = "text"
	}
	if c.Output.Precision == 0 {
		c.Output.Precision = 17
	}
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.Store.Path = os.ExpandEnv(c.Store.Path)
}

// ServerAddress returns host:port of the evaluation service
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
