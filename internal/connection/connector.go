package connection

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Dialer opens one streaming connection to url.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// heartbeatTuner is implemented by dialers that adopt the server's
// advertised ping interval and timeout.
type heartbeatTuner interface {
	TuneHeartbeat(interval, timeout time.Duration)
}

// WebsocketDialer dials gorilla websocket connections.
type WebsocketDialer struct {
	logger *slog.Logger
	dialer *websocket.Dialer

	mu  sync.RWMutex
	cfg ClientConfig
}

// NewWebsocketDialer creates a dialer for the given connection settings.
func NewWebsocketDialer(cfg ClientConfig, logger *slog.Logger) *WebsocketDialer {
	if logger == nil {
		logger = slog.Default()
	}

	return &WebsocketDialer{
		logger: logger,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		cfg: cfg,
	}
}

// Dial establishes the websocket connection.
func (d *WebsocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	d.mu.RLock()
	cfg := d.cfg
	d.mu.RUnlock()

	header := http.Header{}
	if cfg.UserAgent != "" {
		header.Set("User-Agent", cfg.UserAgent)
	}

	conn, resp, err := d.dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("handshake failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, err
	}

	d.logger.Debug("websocket connected", "url", redactToken(url))

	return newClient(conn, cfg, d.logger), nil
}

// TuneHeartbeat overrides the ping settings for subsequent dials. Zero
// values keep the current setting.
func (d *WebsocketDialer) TuneHeartbeat(interval, timeout time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if interval > 0 {
		d.cfg.PingInterval = interval
	}
	if timeout > 0 {
		d.cfg.PingTimeout = timeout
	}
}

// Connector tries an ordered endpoint list for a bounded number of passes.
type Connector struct {
	dialer Dialer
	cfg    ConnectorConfig
	logger *slog.Logger
}

// NewConnector creates a Connector. MaxRetry < 1 means DefaultMaxRetry.
func NewConnector(dialer Dialer, cfg ConnectorConfig, logger *slog.Logger) *Connector {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRetry < 1 {
		cfg.MaxRetry = DefaultMaxRetry
	}

	return &Connector{
		dialer: dialer,
		cfg:    cfg,
		logger: logger,
	}
}

// Connect dials each URL in order, MaxRetry passes over the list, and
// returns the first connection that succeeds. Dials are never concurrent.
func (c *Connector) Connect(ctx context.Context, urls []string) (Conn, error) {
	if len(urls) == 0 {
		return nil, ErrNoEndpoints
	}

	var lastErr error
	for pass := 0; pass < c.cfg.MaxRetry; pass++ {
		if pass > 0 && c.cfg.RetryDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.cfg.RetryDelay):
			}
		}

		for _, u := range urls {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			c.logger.Info("connecting", "url", redactToken(u), "try", pass)

			conn, err := c.dialer.Dial(ctx, u)
			if err == nil {
				return conn, nil
			}

			c.logger.Error("error during handshake", "url", redactToken(u), "try", pass, "error", err)
			lastErr = err
		}
	}

	return nil, fmt.Errorf("%w after %d passes: %w", ErrMaxRetryExceeded, c.cfg.MaxRetry, lastErr)
}
