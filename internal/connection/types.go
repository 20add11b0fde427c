package connection

import (
	"errors"
	"fmt"
	"time"

	"github.com/rickgao/futures-stream/internal/market"
	"github.com/rickgao/futures-stream/internal/router"
)

// Errors
var (
	ErrNoEndpoints      = errors.New("no streaming endpoints")
	ErrMaxRetryExceeded = errors.New("max connection retry reached")
	ErrMaxReconnects    = errors.New("max reconnects reached")
	ErrAlreadyClosed    = errors.New("already closed")
	ErrAlreadyStarted   = errors.New("session already started")
)

// SessionError is returned by Session.Run when the session cannot continue.
type SessionError struct {
	Op  string // "connect" or "reconnect"
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session %s: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// FrameKind identifies an inbound frame.
type FrameKind int

const (
	FrameText FrameKind = iota
	FrameBinary
	FrameClose
)

func (k FrameKind) String() string {
	switch k {
	case FrameText:
		return "text"
	case FrameBinary:
		return "binary"
	case FrameClose:
		return "close"
	default:
		return fmt.Sprintf("frame(%d)", int(k))
	}
}

// Frame is one inbound message.
type Frame struct {
	Kind       FrameKind
	Data       []byte
	ReceivedAt time.Time // Local timestamp when the read returned
	CloseCode  int       // FrameClose only
	CloseText  string    // FrameClose only
}

// ClientConfig configures a single streaming connection.
type ClientConfig struct {
	HandshakeTimeout time.Duration // Dial + upgrade deadline
	WriteTimeout     time.Duration // Write deadline for sends
	PingInterval     time.Duration // Heartbeat period (0 disables heartbeat)
	PingTimeout      time.Duration // Extra silence tolerated after a missed heartbeat
	UserAgent        string
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		PingInterval:     18 * time.Second,
		PingTimeout:      10 * time.Second,
	}
}

// ConnectorConfig configures endpoint failover.
type ConnectorConfig struct {
	MaxRetry   int           // Full passes over the endpoint list
	RetryDelay time.Duration // Pause between passes (never after the last)
}

// DefaultMaxRetry is the number of passes when ConnectorConfig.MaxRetry is unset.
const DefaultMaxRetry = 5

// DefaultConnectorConfig returns sensible defaults.
func DefaultConnectorConfig() ConnectorConfig {
	return ConnectorConfig{
		MaxRetry:   DefaultMaxRetry,
		RetryDelay: 500 * time.Millisecond,
	}
}

// DefaultConnectID is the connectId sent when none is configured.
const DefaultConnectID = "_crypto-connector"

// DefaultExchange labels session logs.
const DefaultExchange = "kucoin-futures"

// SessionConfig configures a Session. Topics and Selector are fixed for the
// session's lifetime.
type SessionConfig struct {
	Name      string
	Exchange  string
	ConnectID string
	Topics    []string
	Selector  market.Selector

	Connector ConnectorConfig

	ReconnectBaseDelay time.Duration // First backoff interval
	ReconnectMaxDelay  time.Duration // Backoff cap
	MaxReconnects      int           // 0 = unlimited

	EventBufferSize int // Initial EventQueue capacity
}

// DefaultSessionConfig returns sensible defaults.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Exchange:           DefaultExchange,
		ConnectID:          DefaultConnectID,
		Selector:           market.All(),
		Connector:          DefaultConnectorConfig(),
		ReconnectBaseDelay: 1 * time.Second,
		ReconnectMaxDelay:  30 * time.Second,
		EventBufferSize:    1024,
	}
}

// State is the session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
	StateSubscribing
	StateReconnecting
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateSubscribing:
		return "subscribing"
	case StateReconnecting:
		return "reconnecting"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SessionStats contains runtime statistics.
type SessionStats struct {
	ID                  string
	Name                string
	State               State
	Connects            int64
	Reconnects          int64
	Welcomes            int64
	SubscriptionsSent   int64
	SubscriptionsFailed int64
	CloseFrames         int64
	BinaryFrames        int64
	ConnectedAt         time.Time // Most recent successful connect
	LastError           string    // Most recent read or connect error
	Dispatch            router.DispatchStats
}
