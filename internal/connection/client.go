package connection

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is one live streaming connection. ReadFrame and WriteJSON must be
// called from a single goroutine; Close may be called from any goroutine.
type Conn interface {
	// ReadFrame blocks for the next frame. The first close frame from the
	// server is returned as a FrameClose with a nil error; reads after it fail.
	// A connection dropped without a close frame returns an error.
	ReadFrame() (Frame, error)

	// WriteJSON sends v as a text frame.
	WriteJSON(v any) error

	// Close sends a normal closure and releases the connection. Idempotent.
	Close() error
}

// client implements Conn over a gorilla websocket.
type client struct {
	cfg    ClientConfig
	logger *slog.Logger
	conn   *websocket.Conn

	done      chan struct{}
	closeOnce sync.Once

	// Write serialization
	writeMu sync.Mutex

	// State
	mu         sync.RWMutex
	lastPongAt time.Time
	closeSeen  bool
	closed     bool
}

func newClient(conn *websocket.Conn, cfg ClientConfig, logger *slog.Logger) *client {
	if logger == nil {
		logger = slog.Default()
	}

	c := &client{
		cfg:        cfg,
		logger:     logger,
		conn:       conn,
		done:       make(chan struct{}),
		lastPongAt: time.Now(),
	}

	// Server pings count as liveness too; reply with pong.
	conn.SetPingHandler(func(data string) error {
		c.touch()
		err := conn.WriteControl(
			websocket.PongMessage,
			[]byte(data),
			time.Now().Add(time.Second),
		)
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})

	conn.SetPongHandler(func(string) error {
		c.touch()
		return nil
	})

	if cfg.PingInterval > 0 {
		go c.heartbeatLoop()
	}

	return c
}

// ReadFrame reads the next frame.
func (c *client) ReadFrame() (Frame, error) {
	if d := c.readWindow(); d > 0 {
		c.conn.SetReadDeadline(time.Now().Add(d))
	}

	mt, data, err := c.conn.ReadMessage()
	receivedAt := time.Now() // Capture timestamp immediately

	if err != nil {
		// 1006 is synthesized locally for a dropped socket; no frame arrived.
		var ce *websocket.CloseError
		if errors.As(err, &ce) && ce.Code != websocket.CloseAbnormalClosure {
			c.mu.Lock()
			first := !c.closeSeen
			c.closeSeen = true
			c.mu.Unlock()
			if first {
				return Frame{
					Kind:       FrameClose,
					ReceivedAt: receivedAt,
					CloseCode:  ce.Code,
					CloseText:  ce.Text,
				}, nil
			}
		}
		return Frame{}, err
	}

	c.touch()

	kind := FrameText
	if mt == websocket.BinaryMessage {
		kind = FrameBinary
	}
	return Frame{Kind: kind, Data: data, ReceivedAt: receivedAt}, nil
}

// WriteJSON writes v as a JSON text frame.
func (c *client) WriteJSON(v any) error {
	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return ErrAlreadyClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.cfg.WriteTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}
	return c.conn.WriteJSON(v)
}

// Close gracefully closes the connection.
func (c *client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		close(c.done)

		c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		err = c.conn.Close()
	})
	return err
}

// readWindow is how long a read may block before the connection is stale.
func (c *client) readWindow() time.Duration {
	if c.cfg.PingInterval <= 0 {
		return 0
	}
	return c.cfg.PingInterval + c.cfg.PingTimeout
}

func (c *client) touch() {
	c.mu.Lock()
	c.lastPongAt = time.Now()
	c.mu.Unlock()
	if d := c.readWindow(); d > 0 {
		c.conn.SetReadDeadline(time.Now().Add(d))
	}
}

// heartbeatLoop sends ping control frames. Missing replies surface as a
// read deadline error in ReadFrame.
func (c *client) heartbeatLoop() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			wt := c.cfg.WriteTimeout
			if wt <= 0 {
				wt = time.Second
			}
			deadline := time.Now().Add(wt)
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}

			c.mu.RLock()
			lastPong := c.lastPongAt
			c.mu.RUnlock()
			if since := time.Since(lastPong); since > c.readWindow() {
				c.logger.Warn("no pong received, connection stale",
					"last_pong", lastPong,
					"timeout", c.readWindow(),
				)
			}
		}
	}
}
