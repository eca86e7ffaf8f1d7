// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package config loads reactord's YAML configuration, merging a
// config.yaml found in the working directory over built-in defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	reactorerrors "github.com/momentics/reactord/errors"
)

// ServerConfig holds the listener and static-asset settings.
type ServerConfig struct {
	Port        uint16 `yaml:"port"`
	AliveTime   uint   `yaml:"alive_time"`
	AssetFolder string `yaml:"asset_folder"`
}

// AppenderConfig describes one logging sink attached to a logger.
type AppenderConfig struct {
	Type      string `yaml:"type"`
	File      string `yaml:"file,omitempty"`
	Formatter string `yaml:"formatter,omitempty"`
}

// LoggerConfig describes one named logger and its sinks.
type LoggerConfig struct {
	Name      string           `yaml:"name"`
	Level     string           `yaml:"level"`
	Capacity  int              `yaml:"capacity,omitempty"`
	Formatter string           `yaml:"formatter,omitempty"`
	Appenders []AppenderConfig `yaml:"appenders"`
}

// Config is the complete recognized configuration surface, per the
// recognized-keys table this package implements.
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Loggers []LoggerConfig `yaml:"loggers"`
}

const minPort = 1024

// Default builds the built-in configuration: port 10000, a 60-second
// idle timeout, an "assets" root, and a single synchronous root logger
// writing info-and-above to stdout.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        10000,
			AliveTime:   60,
			AssetFolder: "assets",
		},
		Loggers: []LoggerConfig{
			{
				Name:  "root",
				Level: "info",
				Appenders: []AppenderConfig{
					{Type: "stdout"},
				},
			},
		},
	}
}

// Load decodes path on top of Default(), returning the defaults
// unchanged if path does not exist. It validates server.port ≥ 1024.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, reactorerrors.ErrInvalidInput)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding %s: %v: %w", path, err, reactorerrors.ErrInvalidInput)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the recognized-keys table's hard constraints.
func (c *Config) Validate() error {
	if c.Server.Port < minPort {
		return fmt.Errorf("server.port %d is below the minimum of %d: %w", c.Server.Port, minPort, reactorerrors.ErrInvalidInput)
	}
	return nil
}

// FieldDescription names one recognized configuration key and what it
// controls, mirrored from the original implementation's per-variable
// Lookup descriptions.
type FieldDescription struct {
	Key         string
	Description string
}

// Describe returns a human-readable listing of every recognized
// configuration key, for an operator-facing dump independent of the
// bootstrap CLI's no-required-arguments surface.
func Describe() []FieldDescription {
	return []FieldDescription{
		{Key: "server.port", Description: "Listening TCP port; must be >= 1024 (default 10000)"},
		{Key: "server.alive_time", Description: "Idle timeout per connection, in seconds (default 60)"},
		{Key: "server.asset_folder", Description: "Root directory for static assets, relative to cwd (default \"assets\")"},
		{Key: "loggers", Description: "Sequence of {name, level, capacity?, formatter?, appenders} logger configurations"},
	}
}
