package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/rickgao/futures-stream/internal/api"
	"github.com/rickgao/futures-stream/internal/market"
	"github.com/rickgao/futures-stream/internal/router"
)

// RestClient is the REST surface a Session needs. *api.Client satisfies it.
type RestClient interface {
	FetchStreamingCredentials(ctx context.Context) (*api.StreamingCredentials, error)
	market.SymbolSource
}

// Session owns one streaming connection at a time and keeps it subscribed.
type Session struct {
	id        string
	cfg       SessionConfig
	rest      RestClient
	dialer    Dialer
	connector *Connector
	logger    *slog.Logger

	queue      *router.EventQueue
	dispatcher *router.Dispatcher
	nextID     func() uint64

	mu    sync.RWMutex
	state State
	conn  Conn // at most one live connection
	stats SessionStats
}

// NewSession creates a Session. Call Run to start it.
func NewSession(cfg SessionConfig, rest RestClient, dialer Dialer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}
	cfg.Topics = append([]string(nil), cfg.Topics...)

	id := uuid.NewString()
	logger = logger.With(
		"exchange", cfg.Exchange,
		"session", cfg.Name,
		"session_id", id,
	)

	queue := router.NewEventQueue(cfg.EventBufferSize)

	return &Session{
		id:         id,
		cfg:        cfg,
		rest:       rest,
		dialer:     dialer,
		connector:  NewConnector(dialer, cfg.Connector, logger),
		logger:     logger,
		queue:      queue,
		dispatcher: router.NewDispatcher(queue, logger),
		nextID:     market.IDSequence(1),
		state:      StateIdle,
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Events returns the outbound event stream. It is closed when Run returns.
func (s *Session) Events() *router.EventQueue {
	return s.queue
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Stats returns current statistics.
func (s *Session) Stats() SessionStats {
	s.mu.RLock()
	stats := s.stats
	stats.State = s.state
	s.mu.RUnlock()

	stats.ID = s.id
	stats.Name = s.cfg.Name
	stats.Dispatch = s.dispatcher.Stats()
	return stats
}

// Run connects, subscribes and streams until ctx is cancelled, returning
// nil. Read failures trigger a reconnect. A failed connect phase, or
// exceeding MaxReconnects, ends the session with a *SessionError.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.state = StateConnecting
	s.mu.Unlock()

	defer func() {
		s.dropConn()
		s.queue.Close()
		s.setState(StateStopped)
		s.logger.Info("session stopped")
	}()

	bo := backoff.NewExponentialBackOff()
	if s.cfg.ReconnectBaseDelay > 0 {
		bo.InitialInterval = s.cfg.ReconnectBaseDelay
	}
	if s.cfg.ReconnectMaxDelay > 0 {
		bo.MaxInterval = s.cfg.ReconnectMaxDelay
	}
	bo.Reset()

	s.logger.Info("session starting",
		"topics", s.cfg.Topics,
		"selector", s.cfg.Selector.String(),
	)

	reconnects := 0
	for {
		conn, err := s.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.recordError(err)
			s.logger.Error("connect failed", "error", err)
			return &SessionError{Op: "connect", Err: err}
		}

		err = s.stream(ctx, conn, bo)
		s.dropConn()
		if ctx.Err() != nil {
			return nil
		}

		s.setState(StateReconnecting)
		s.recordError(err)
		reconnects++

		s.mu.Lock()
		s.stats.Reconnects++
		s.mu.Unlock()

		if s.cfg.MaxReconnects > 0 && reconnects > s.cfg.MaxReconnects {
			s.logger.Error("giving up after max reconnects",
				"max_reconnects", s.cfg.MaxReconnects,
				"error", err,
			)
			return &SessionError{
				Op:  "reconnect",
				Err: fmt.Errorf("%w (%d): %w", ErrMaxReconnects, s.cfg.MaxReconnects, err),
			}
		}

		wait := bo.NextBackOff()
		s.logger.Warn("connection lost, reconnecting",
			"error", err,
			"attempt", reconnects,
			"wait", wait,
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// connect fetches fresh credentials and dials the resolved endpoints.
// Credentials are never reused across calls.
func (s *Session) connect(ctx context.Context) (Conn, error) {
	s.setState(StateConnecting)

	creds, err := s.rest.FetchStreamingCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch credentials: %w", err)
	}

	if t, ok := s.dialer.(heartbeatTuner); ok && len(creds.InstanceServers) > 0 {
		srv := creds.InstanceServers[0]
		t.TuneHeartbeat(
			time.Duration(srv.PingInterval)*time.Millisecond,
			time.Duration(srv.PingTimeout)*time.Millisecond,
		)
	}

	urls, err := ResolveEndpoints(creds, s.cfg.ConnectID)
	if err != nil {
		return nil, fmt.Errorf("resolve endpoints: %w", err)
	}

	conn, err := s.connector.Connect(ctx, urls)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.conn = conn
	s.state = StateStreaming
	s.stats.Connects++
	s.stats.ConnectedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("connected", "endpoints", len(urls))
	return conn, nil
}

// stream runs the read loop on conn until a read fails. Cancelling ctx
// closes conn, which unblocks the pending read.
func (s *Session) stream(ctx context.Context, conn Conn, bo *backoff.ExponentialBackOff) error {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		frame, err := conn.ReadFrame()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		switch frame.Kind {
		case FrameBinary:
			s.mu.Lock()
			s.stats.BinaryFrames++
			s.mu.Unlock()
			s.logger.Debug("ignoring binary frame", "bytes", len(frame.Data))

		case FrameClose:
			s.mu.Lock()
			s.stats.CloseFrames++
			s.mu.Unlock()
			s.logger.Warn("close frame received",
				"code", frame.CloseCode,
				"text", frame.CloseText,
			)

		default:
			ev, err := s.dispatcher.Dispatch(frame.Data, frame.ReceivedAt)
			if err != nil {
				continue
			}
			if ev.Kind != router.KindControl || !ev.Control.IsWelcome() {
				continue
			}

			s.mu.Lock()
			s.stats.Welcomes++
			s.mu.Unlock()
			bo.Reset()

			if err := s.subscribe(ctx, conn); err != nil {
				return err
			}
		}
	}
}

// subscribe sends one request per (topic, symbol) pair. A failed write is
// logged and skipped; a failed symbol lookup is returned. Cancellation stops
// the burst before the next write.
func (s *Session) subscribe(ctx context.Context, conn Conn) error {
	s.setState(StateSubscribing)
	defer s.setState(StateStreaming)

	symbols, err := market.Resolve(ctx, s.cfg.Selector, s.rest)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		s.logger.Warn("no symbols to subscribe")
		return nil
	}

	reqs := market.BuildRequests(s.cfg.Topics, symbols, s.nextID)

	var sent, failed int64
	defer func() {
		s.mu.Lock()
		s.stats.SubscriptionsSent += sent
		s.stats.SubscriptionsFailed += failed
		s.mu.Unlock()
	}()

	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := conn.WriteJSON(req); err != nil {
			// Shutdown closed the connection under us.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			s.logger.Error("subscribe failed", "topic", req.Topic, "id", req.ID, "error", err)
			failed++
			continue
		}
		sent++
	}

	s.logger.Info("subscribed",
		"requests", len(reqs),
		"sent", sent,
		"failed", failed,
		"symbols", len(symbols),
	)
	return nil
}

// dropConn closes and discards the current connection, if any.
func (s *Session) dropConn() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		if err := conn.Close(); err != nil && !errors.Is(err, ErrAlreadyClosed) {
			s.logger.Debug("close connection", "error", err)
		}
	}
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) recordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	s.stats.LastError = err.Error()
	s.mu.Unlock()
}
