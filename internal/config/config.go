package config

import "time"

// StreamerConfig is the root configuration for the streamer.
type StreamerConfig struct {
	API         APIConfig         `yaml:"api"`
	Connections ConnectionsConfig `yaml:"connections"`
	Streams     []StreamConfig    `yaml:"streams"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// APIConfig holds KuCoin Futures REST settings.
type APIConfig struct {
	RestURL   string        `yaml:"rest_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// ConnectionsConfig holds streaming connection settings shared by all streams.
type ConnectionsConfig struct {
	ConnectID          string        `yaml:"connect_id"`
	MaxRetry           int           `yaml:"max_retry"`   // Passes over the endpoint list
	RetryDelay         time.Duration `yaml:"retry_delay"` // Pause between passes
	HandshakeTimeout   time.Duration `yaml:"handshake_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	MaxReconnects      int           `yaml:"max_reconnects"` // 0 = unlimited
	EventBufferSize    int           `yaml:"event_buffer_size"`
}

// StreamConfig is one independent session: a set of topic templates and
// a symbol selector.
type StreamConfig struct {
	Name    string   `yaml:"name"`
	Topics  []string `yaml:"topics"`
	Symbols []string `yaml:"symbols"` // empty or [all] = every active contract
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // text or json
	File       string `yaml:"file"`   // optional rotating log file
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}
