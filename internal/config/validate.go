package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *StreamerConfig) Validate() error {
	if err := c.API.validate(); err != nil {
		return err
	}
	if err := c.Connections.validate(); err != nil {
		return err
	}

	if len(c.Streams) == 0 {
		return errors.New("streams: at least one stream is required")
	}
	names := make(map[string]bool, len(c.Streams))
	for i, s := range c.Streams {
		prefix := fmt.Sprintf("streams[%d]", i)
		if s.Name == "" {
			return fmt.Errorf("%s.name is required", prefix)
		}
		if names[s.Name] {
			return fmt.Errorf("%s.name %q is duplicated", prefix, s.Name)
		}
		names[s.Name] = true
		if len(s.Topics) == 0 {
			return fmt.Errorf("%s.topics must not be empty", prefix)
		}
		for _, topic := range s.Topics {
			if strings.TrimSpace(topic) == "" {
				return fmt.Errorf("%s.topics contains an empty topic", prefix)
			}
		}
		for _, sym := range s.Symbols {
			if strings.TrimSpace(sym) == "" {
				return fmt.Errorf("%s.symbols contains an empty symbol", prefix)
			}
			if len(s.Symbols) > 1 && strings.EqualFold(sym, "all") {
				return fmt.Errorf("%s.symbols: %q cannot be combined with explicit symbols", prefix, sym)
			}
		}
	}

	return c.Logging.validate()
}

func (a *APIConfig) validate() error {
	u, err := url.Parse(a.RestURL)
	if err != nil {
		return fmt.Errorf("api.rest_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.rest_url must be http(s), got %q", a.RestURL)
	}
	if a.Timeout < 0 {
		return errors.New("api.timeout must be >= 0")
	}
	return nil
}

func (c *ConnectionsConfig) validate() error {
	if c.MaxRetry < 1 {
		return errors.New("connections.max_retry must be >= 1")
	}
	if c.RetryDelay < 0 {
		return errors.New("connections.retry_delay must be >= 0")
	}
	if c.ReconnectBaseDelay <= 0 {
		return errors.New("connections.reconnect_base_delay must be > 0")
	}
	if c.ReconnectMaxDelay < c.ReconnectBaseDelay {
		return errors.New("connections.reconnect_max_delay must be >= reconnect_base_delay")
	}
	if c.MaxReconnects < 0 {
		return errors.New("connections.max_reconnects must be >= 0")
	}
	if c.EventBufferSize < 1 {
		return errors.New("connections.event_buffer_size must be >= 1")
	}
	return nil
}

func (l *LoggingConfig) validate() error {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", l.Level)
	}
	switch strings.ToLower(l.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", l.Format)
	}
	if l.MaxSizeMB < 0 || l.MaxBackups < 0 || l.MaxAgeDays < 0 {
		return errors.New("logging rotation limits must be >= 0")
	}
	return nil
}
