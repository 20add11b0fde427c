package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/futures-stream/internal/config"
	"github.com/rickgao/futures-stream/internal/model"
	"github.com/rickgao/futures-stream/internal/router"
)

func TestLoadConfig_NoPathUsesDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if len(cfg.Streams) != 1 {
		t.Fatalf("len(Streams) = %d, want 1", len(cfg.Streams))
	}
	if got := cfg.Streams[0].Topics; len(got) != 1 || got[0] != config.DefaultTopic {
		t.Errorf("Topics = %v, want [%s]", got, config.DefaultTopic)
	}
	if cfg.API.RestURL != config.DefaultRestURL {
		t.Errorf("RestURL = %q", cfg.API.RestURL)
	}
}

func TestSessionConfig(t *testing.T) {
	cfg := &config.StreamerConfig{
		Connections: config.ConnectionsConfig{
			ConnectID:          "conn-1",
			MaxRetry:           3,
			RetryDelay:         250 * time.Millisecond,
			ReconnectBaseDelay: 2 * time.Second,
			ReconnectMaxDelay:  time.Minute,
			MaxReconnects:      7,
			EventBufferSize:    64,
		},
	}

	tests := []struct {
		name    string
		symbols []string
		wantAll bool
		want    []string
	}{
		{"empty symbols select all", nil, true, nil},
		{"all keyword", []string{"ALL"}, true, nil},
		{"explicit list", []string{"XBTUSDTM", "ETHUSDTM"}, false, []string{"XBTUSDTM", "ETHUSDTM"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := config.StreamConfig{Name: "s", Topics: []string{"/contractMarket/tickerV2:{symbol}"}, Symbols: tt.symbols}
			got := sessionConfig(cfg, sc)

			if got.Name != "s" || got.ConnectID != "conn-1" {
				t.Errorf("Name/ConnectID = %q/%q", got.Name, got.ConnectID)
			}
			if got.Selector.IsAll() != tt.wantAll {
				t.Errorf("Selector.IsAll() = %v, want %v", got.Selector.IsAll(), tt.wantAll)
			}
			if !tt.wantAll && strings.Join(got.Selector.Symbols(), ",") != strings.Join(tt.want, ",") {
				t.Errorf("Symbols() = %v, want %v", got.Selector.Symbols(), tt.want)
			}
			if got.Connector.MaxRetry != 3 || got.Connector.RetryDelay != 250*time.Millisecond {
				t.Errorf("Connector = %+v", got.Connector)
			}
			if got.ReconnectBaseDelay != 2*time.Second || got.ReconnectMaxDelay != time.Minute {
				t.Errorf("reconnect delays = %v/%v", got.ReconnectBaseDelay, got.ReconnectMaxDelay)
			}
			if got.MaxReconnects != 7 || got.EventBufferSize != 64 {
				t.Errorf("MaxReconnects/EventBufferSize = %d/%d", got.MaxReconnects, got.EventBufferSize)
			}
		})
	}
}

func TestSessionConfig_TopicsCopied(t *testing.T) {
	sc := config.StreamConfig{Topics: []string{"/a:"}}
	got := sessionConfig(&config.StreamerConfig{}, sc)
	sc.Topics[0] = "/b:"

	if got.Topics[0] != "/a:" {
		t.Errorf("Topics aliased config slice: %v", got.Topics)
	}
}

func TestPrintEvent(t *testing.T) {
	tick := &model.Tick{
		Symbol:       "XBTUSDTM",
		Sequence:     42,
		BestBidPrice: decimal.RequireFromString("100.5"),
		BestBidSize:  3,
		BestAskPrice: decimal.RequireFromString("101"),
		BestAskSize:  4,
	}

	tests := []struct {
		name    string
		ev      router.Event
		verbose bool
		want    string
	}{
		{
			name: "tick",
			ev:   router.Event{Kind: router.KindTick, Tick: tick},
			want: "[TICK] symbol=XBTUSDTM seq=42 bid=100.5 x 3 ask=101 x 4 spread=0.5\n",
		},
		{
			name:    "control verbose",
			ev:      router.Event{Kind: router.KindControl, Control: &model.ControlMessage{ID: "abc", Type: "welcome"}},
			verbose: true,
			want:    "[CONTROL] id=abc type=welcome\n",
		},
		{
			name: "control quiet",
			ev:   router.Event{Kind: router.KindControl, Control: &model.ControlMessage{ID: "abc", Type: "ack"}},
			want: "",
		},
		{
			name:    "unrecognized verbose",
			ev:      router.Event{Kind: router.KindUnrecognized, Raw: []byte(`{"x":1}`)},
			verbose: true,
			want:    "[RAW] {\"x\":1}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printEvent(&buf, tt.ev, tt.verbose)
			if buf.String() != tt.want {
				t.Errorf("printEvent() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}
