package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient("")
		if c.baseURL != DefaultBaseURL {
			t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultBaseURL)
		}
		if c.httpClient.Timeout != 30*time.Second {
			t.Errorf("timeout = %v, want %v", c.httpClient.Timeout, 30*time.Second)
		}
		if c.logger == nil {
			t.Error("logger should not be nil")
		}
	})

	t.Run("with options", func(t *testing.T) {
		c := NewClient("https://example.com/api/v1",
			WithTimeout(5*time.Second),
			WithUserAgent("streamer/test"),
			WithLogger(nil),
		)
		if c.baseURL != "https://example.com/api/v1" {
			t.Errorf("baseURL = %q", c.baseURL)
		}
		if c.httpClient.Timeout != 5*time.Second {
			t.Errorf("timeout = %v, want %v", c.httpClient.Timeout, 5*time.Second)
		}
		if c.userAgent != "streamer/test" {
			t.Errorf("userAgent = %q, want %q", c.userAgent, "streamer/test")
		}
		if c.logger == nil {
			t.Error("nil logger option should be ignored")
		}
	})

	t.Run("with custom http client", func(t *testing.T) {
		hc := &http.Client{Timeout: time.Second}
		c := NewClient("", WithHTTPClient(hc))
		if c.httpClient != hc {
			t.Error("custom http client not applied")
		}
	})
}

func TestDoRequest(t *testing.T) {
	t.Run("sets headers and returns body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Accept") != "application/json" {
				t.Errorf("Accept header = %q, want %q", r.Header.Get("Accept"), "application/json")
			}
			if r.Header.Get("User-Agent") != "streamer/test" {
				t.Errorf("User-Agent header = %q, want %q", r.Header.Get("User-Agent"), "streamer/test")
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status": "ok"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, WithUserAgent("streamer/test"))
		body, err := c.doRequest(context.Background(), http.MethodGet, "/test", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(body) != `{"status": "ok"}` {
			t.Errorf("body = %q, want %q", string(body), `{"status": "ok"}`)
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		c := NewClient(server.URL)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.doRequest(ctx, http.MethodGet, "/test", nil)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error should wrap context.Canceled, got %v", err)
		}
	})
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"unauthorized", http.StatusUnauthorized, `{}`, ErrUnauthorized},
		{"server error", http.StatusInternalServerError, `oops`, ErrServerError},
		{"unavailable", http.StatusServiceUnavailable, ``, ErrUnavailable},
		{"teapot", http.StatusTeapot, `short and stout`, ErrUnexpectedStatus},
		{"not found", http.StatusNotFound, `{"error":"nope"}`, ErrUnexpectedStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient(server.URL)
			_, err := c.doRequest(context.Background(), http.MethodGet, "/test", nil)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if string(apiErr.Body) != tt.body {
				t.Errorf("Body = %q, want %q", apiErr.Body, tt.body)
			}
		})
	}

	t.Run("unexpected status carries code", func(t *testing.T) {
		err := statusError(http.StatusTeapot, nil)
		if !strings.Contains(errors.Unwrap(err).Error(), "418") {
			t.Errorf("error = %v, want status code in message", err)
		}
	})

	t.Run("bad request decodes content error", func(t *testing.T) {
		err := statusError(http.StatusBadRequest, []byte(`{"code":400100,"msg":"bad symbol"}`))
		// 400100 overflows int16, so decoding fails.
		if err == nil || !strings.Contains(err.Error(), "decode 400 body") {
			t.Fatalf("error = %v, want decode failure", err)
		}

		err = statusError(http.StatusBadRequest, []byte(`{"code":4001,"msg":"bad symbol"}`))
		var content *ContentError
		if !errors.As(err, &content) {
			t.Fatalf("expected *ContentError, got %T", err)
		}
		if content.Code != 4001 || content.Msg != "bad symbol" {
			t.Errorf("content = %+v", content)
		}
		if content.Error() != "code: 4001 msg: bad symbol" {
			t.Errorf("Error() = %q", content.Error())
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %T", err)
		}
		if apiErr.Message != "bad symbol" {
			t.Errorf("Message = %q, want %q", apiErr.Message, "bad symbol")
		}
	})

	t.Run("ok returns nil", func(t *testing.T) {
		if err := statusError(http.StatusOK, nil); err != nil {
			t.Errorf("statusError(200) = %v, want nil", err)
		}
	})
}

func TestFetchStreamingCredentials(t *testing.T) {
	t.Run("decodes token and servers", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %s, want POST", r.Method)
			}
			if r.URL.Path != "/bullet-public" {
				t.Errorf("path = %s, want /bullet-public", r.URL.Path)
			}
			w.Write([]byte(`{
				"code": "200000",
				"data": {
					"token": "abc",
					"instanceServers": [
						{"endpoint": "wss://a", "protocol": "websocket", "encrypt": true, "pingInterval": 18000, "pingTimeout": 10000},
						{"endpoint": "wss://b", "protocol": "websocket", "encrypt": true, "pingInterval": 18000, "pingTimeout": 10000}
					]
				}
			}`))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		creds, err := c.FetchStreamingCredentials(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if creds.Token != "abc" {
			t.Errorf("Token = %q, want %q", creds.Token, "abc")
		}
		if len(creds.InstanceServers) != 2 {
			t.Fatalf("len(InstanceServers) = %d, want 2", len(creds.InstanceServers))
		}
		if creds.InstanceServers[0].Endpoint != "wss://a" || creds.InstanceServers[1].Endpoint != "wss://b" {
			t.Errorf("endpoints out of order: %+v", creds.InstanceServers)
		}
		if creds.InstanceServers[0].PingInterval != 18000 {
			t.Errorf("PingInterval = %d, want 18000", creds.InstanceServers[0].PingInterval)
		}
	})

	t.Run("service unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		c := NewClient(server.URL)
		_, err := c.FetchStreamingCredentials(context.Background())
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("error = %v, want ErrUnavailable", err)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		_, err := c.FetchStreamingCredentials(context.Background())
		if err == nil || !strings.Contains(err.Error(), "unmarshal response") {
			t.Errorf("error = %v, want unmarshal failure", err)
		}
	})
}

func TestFetchActiveSymbols(t *testing.T) {
	t.Run("preserves order and duplicates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("method = %s, want GET", r.Method)
			}
			if r.URL.Path != "/contracts/active" {
				t.Errorf("path = %s, want /contracts/active", r.URL.Path)
			}
			w.Write([]byte(`{"code":"200000","data":[
				{"symbol":"XBTUSDTM","rootSymbol":"USDT","type":"FFWCSX","tickSize":0.1,"lotSize":1,"maxPrice":1000000.0,"maxOrderQty":1000000},
				{"symbol":"ETHUSDTM","rootSymbol":"USDT","type":"FFWCSX","tickSize":0.01},
				{"symbol":"XBTUSDTM"}
			]}`))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		symbols, err := c.FetchActiveSymbols(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"XBTUSDTM", "ETHUSDTM", "XBTUSDTM"}
		if len(symbols) != len(want) {
			t.Fatalf("symbols = %v, want %v", symbols, want)
		}
		for i := range want {
			if symbols[i] != want[i] {
				t.Errorf("symbols[%d] = %q, want %q", i, symbols[i], want[i])
			}
		}
	})

	t.Run("decodes contract fields", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":[{"symbol":"XBTUSDTM","baseCurrency":"XBT","quoteCurrency":"USDT","settleCurrency":"USDT","tickSize":0.1}]}`))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		contracts, err := c.GetActiveContracts(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(contracts) != 1 {
			t.Fatalf("len = %d, want 1", len(contracts))
		}
		ct := contracts[0]
		if ct.BaseCurrency != "XBT" || ct.QuoteCurrency != "USDT" {
			t.Errorf("currencies = %s/%s", ct.BaseCurrency, ct.QuoteCurrency)
		}
		if !ct.TickSize.Equal(decimal.RequireFromString("0.1")) {
			t.Errorf("TickSize = %s, want 0.1", ct.TickSize)
		}
	})

	t.Run("empty list", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"code":"200000","data":[]}`))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		symbols, err := c.FetchActiveSymbols(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(symbols) != 0 {
			t.Errorf("symbols = %v, want empty", symbols)
		}
	})

	t.Run("unauthorized", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		c := NewClient(server.URL)
		_, err := c.FetchActiveSymbols(context.Background())
		if !errors.Is(err, ErrUnauthorized) {
			t.Errorf("error = %v, want ErrUnauthorized", err)
		}
	})
}
