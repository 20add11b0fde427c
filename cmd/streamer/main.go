// streamer connects to KuCoin Futures market-data streams and prints ticks to console.
// Usage: go run ./cmd/streamer --config configs/streamer.example.yaml
//
// Without --config the streamer subscribes to tickerV2 for every active contract.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/futures-stream/internal/api"
	"github.com/rickgao/futures-stream/internal/config"
	"github.com/rickgao/futures-stream/internal/connection"
	"github.com/rickgao/futures-stream/internal/logging"
	"github.com/rickgao/futures-stream/internal/market"
	"github.com/rickgao/futures-stream/internal/router"
	"github.com/rickgao/futures-stream/internal/version"
)

const statsInterval = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	verbose := flag.Bool("verbose", false, "debug logging and full event JSON")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}

	logger, closer, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := run(cfg, *verbose, logger); err != nil {
		logger.Error("streamer exited with error", "error", err)
		closer.Close()
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.StreamerConfig, error) {
	if path != "" {
		return config.LoadAndValidate(path)
	}
	cfg := &config.StreamerConfig{}
	cfg.ApplyEnv()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cfg *config.StreamerConfig, verbose bool, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting streamer", version.Attr(), "streams", len(cfg.Streams))

	apiClient := api.NewClient(cfg.API.RestURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithUserAgent(version.UserAgent(cfg.API.UserAgent)),
		api.WithLogger(logger),
	)

	sessions := make([]*connection.Session, 0, len(cfg.Streams))
	for _, sc := range cfg.Streams {
		// Each session owns its dialer so heartbeat tuning stays per connection.
		dialer := connection.NewWebsocketDialer(clientConfig(cfg), logger)
		sessions = append(sessions, connection.NewSession(sessionConfig(cfg, sc), apiClient, dialer, logger))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, sess := range sessions {
		g.Go(func() error {
			return sess.Run(gctx)
		})
		g.Go(func() error {
			consume(gctx, sess, verbose, logger)
			return nil
		})
	}
	g.Go(func() error {
		logStats(gctx, sessions, logger)
		return nil
	})

	logger.Info("streaming started - press Ctrl+C to stop")

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Info("shutdown complete")
	return err
}

func clientConfig(cfg *config.StreamerConfig) connection.ClientConfig {
	cc := connection.DefaultClientConfig()
	cc.HandshakeTimeout = cfg.Connections.HandshakeTimeout
	cc.WriteTimeout = cfg.Connections.WriteTimeout
	cc.UserAgent = version.UserAgent(cfg.API.UserAgent)
	return cc
}

// sessionConfig maps one configured stream onto a session.
func sessionConfig(cfg *config.StreamerConfig, sc config.StreamConfig) connection.SessionConfig {
	out := connection.DefaultSessionConfig()
	out.Name = sc.Name
	out.ConnectID = cfg.Connections.ConnectID
	out.Topics = append([]string(nil), sc.Topics...)
	out.Selector = market.ParseSelector(sc.Symbols)
	out.Connector = connection.ConnectorConfig{
		MaxRetry:   cfg.Connections.MaxRetry,
		RetryDelay: cfg.Connections.RetryDelay,
	}
	out.ReconnectBaseDelay = cfg.Connections.ReconnectBaseDelay
	out.ReconnectMaxDelay = cfg.Connections.ReconnectMaxDelay
	out.MaxReconnects = cfg.Connections.MaxReconnects
	out.EventBufferSize = cfg.Connections.EventBufferSize
	return out
}

// consume drains a session's events until the queue closes or ctx ends.
func consume(ctx context.Context, sess *connection.Session, verbose bool, logger *slog.Logger) {
	events := sess.Events()
	for {
		ev, err := events.Next(ctx)
		if err != nil {
			if !errors.Is(err, router.ErrQueueClosed) && !errors.Is(err, context.Canceled) {
				logger.Warn("event consumer stopped", "session", sess.ID(), "error", err)
			}
			return
		}
		printEvent(os.Stdout, ev, verbose)
	}
}

func printEvent(w io.Writer, ev router.Event, verbose bool) {
	switch ev.Kind {
	case router.KindTick:
		if verbose {
			data, _ := json.Marshal(ev.Tick)
			fmt.Fprintf(w, "[TICK] %s\n", data)
			return
		}
		t := ev.Tick
		fmt.Fprintf(w, "[TICK] symbol=%s seq=%d bid=%s x %d ask=%s x %d spread=%s\n",
			t.Symbol, t.Sequence, t.BestBidPrice, t.BestBidSize, t.BestAskPrice, t.BestAskSize, t.Spread())
	case router.KindControl:
		if verbose {
			fmt.Fprintf(w, "[CONTROL] id=%s type=%s\n", ev.Control.ID, ev.Control.Type)
		}
	default:
		if verbose {
			fmt.Fprintf(w, "[RAW] %s\n", ev.Raw)
		}
	}
}

func logStats(ctx context.Context, sessions []*connection.Session, logger *slog.Logger) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, sess := range sessions {
				st := sess.Stats()
				logger.Info("stats",
					"session", st.ID,
					"name", st.Name,
					"state", st.State.String(),
					"connects", st.Connects,
					"reconnects", st.Reconnects,
					"subscriptions", st.SubscriptionsSent,
					"frames", st.Dispatch.FramesReceived,
					"ticks", st.Dispatch.Ticks,
					"acks", st.Dispatch.Acks,
					"exchange_errors", st.Dispatch.ControlErrors,
					"malformed", st.Dispatch.MalformedFrames,
					"queue_len", st.Dispatch.Queue.Len,
				)
			}
		}
	}
}
