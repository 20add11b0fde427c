package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultRestURL            = "https://api-futures.kucoin.com/api/v1"
	DefaultAPITimeout         = 10 * time.Second
	DefaultUserAgent          = "futures-stream"
	DefaultConnectID          = "_crypto-connector"
	DefaultMaxRetry           = 5
	DefaultRetryDelay         = 500 * time.Millisecond
	DefaultHandshakeTimeout   = 10 * time.Second
	DefaultWriteTimeout       = 5 * time.Second
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 30 * time.Second
	DefaultEventBufferSize    = 1024
	DefaultTopic              = "/contractMarket/tickerV2:"
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
	DefaultLogMaxSizeMB       = 10
	DefaultLogMaxBackups      = 3
	DefaultLogMaxAgeDays      = 28
)

// ApplyDefaults fills unset optional fields. A config without streams gets
// one ticker stream over all active contracts.
func (c *StreamerConfig) ApplyDefaults() {
	// API defaults
	if c.API.RestURL == "" {
		c.API.RestURL = DefaultRestURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = DefaultUserAgent
	}

	// Connections defaults
	if c.Connections.ConnectID == "" {
		c.Connections.ConnectID = DefaultConnectID
	}
	if c.Connections.MaxRetry == 0 {
		c.Connections.MaxRetry = DefaultMaxRetry
	}
	if c.Connections.RetryDelay == 0 {
		c.Connections.RetryDelay = DefaultRetryDelay
	}
	if c.Connections.HandshakeTimeout == 0 {
		c.Connections.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Connections.WriteTimeout == 0 {
		c.Connections.WriteTimeout = DefaultWriteTimeout
	}
	if c.Connections.ReconnectBaseDelay == 0 {
		c.Connections.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Connections.ReconnectMaxDelay == 0 {
		c.Connections.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Connections.EventBufferSize == 0 {
		c.Connections.EventBufferSize = DefaultEventBufferSize
	}

	// Streams defaults
	if len(c.Streams) == 0 {
		c.Streams = []StreamConfig{{Name: "tickers"}}
	}
	for i := range c.Streams {
		s := &c.Streams[i]
		if len(s.Topics) == 0 {
			s.Topics = []string{DefaultTopic}
		}
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = DefaultLogMaxBackups
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = DefaultLogMaxAgeDays
	}
}
