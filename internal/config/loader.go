package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file values after ${VAR} expansion.
const (
	EnvRestURL   = "STREAMER_REST_URL"
	EnvConnectID = "STREAMER_CONNECT_ID"
	EnvLogLevel  = "STREAMER_LOG_LEVEL"
	EnvLogFile   = "STREAMER_LOG_FILE"
)

// Load reads a YAML config file, then applies STREAMER_* overrides.
func Load(path string) (*StreamerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// Parse decodes YAML after expanding ${VAR} references. Unknown keys are
// rejected so a misspelled setting does not silently fall back to its
// default. An empty document yields a zero config.
func Parse(data []byte) (*StreamerConfig, error) {
	dec := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(data)))))
	dec.KnownFields(true)

	var cfg StreamerConfig
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	return &cfg, nil
}

// ApplyEnv overwrites fields whose STREAMER_* variable is set and non-empty.
func (c *StreamerConfig) ApplyEnv() {
	if v := os.Getenv(EnvRestURL); v != "" {
		c.API.RestURL = v
	}
	if v := os.Getenv(EnvConnectID); v != "" {
		c.Connections.ConnectID = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.Logging.File = v
	}
}

// LoadAndValidate loads config, applies defaults, and validates.
func LoadAndValidate(path string) (*StreamerConfig, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LoadWithDefaults loads config and fills unset fields.
func LoadWithDefaults(path string) (*StreamerConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}
