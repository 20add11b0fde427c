package api

import "github.com/shopspring/decimal"

// BulletResponse from POST /bullet-public
type BulletResponse struct {
	Code string               `json:"code"`
	Data StreamingCredentials `json:"data"`
}

// StreamingCredentials is a single-use token plus candidate streaming endpoints.
// Instance servers are ordered by exchange preference.
type StreamingCredentials struct {
	Token           string           `json:"token"`
	InstanceServers []InstanceServer `json:"instanceServers"`
}

// InstanceServer is one streaming endpoint returned by the bullet handshake.
type InstanceServer struct {
	Endpoint     string `json:"endpoint"`
	Protocol     string `json:"protocol"`
	Encrypt      bool   `json:"encrypt"`
	PingInterval int64  `json:"pingInterval"` // Milliseconds
	PingTimeout  int64  `json:"pingTimeout"`  // Milliseconds
}

// ContractsResponse from GET /contracts/active
type ContractsResponse struct {
	Code string     `json:"code,omitempty"`
	Data []Contract `json:"data"`
}

// Contract represents an active futures contract.
type Contract struct {
	Symbol         string          `json:"symbol"`
	RootSymbol     string          `json:"rootSymbol"`
	Type           string          `json:"type"` // e.g. "FFWCSX" (perpetual)
	BaseCurrency   string          `json:"baseCurrency"`
	QuoteCurrency  string          `json:"quoteCurrency"`
	SettleCurrency string          `json:"settleCurrency"`
	MaxOrderQty    decimal.Decimal `json:"maxOrderQty"`
	MaxPrice       decimal.Decimal `json:"maxPrice"`
	LotSize        decimal.Decimal `json:"lotSize"`
	TickSize       decimal.Decimal `json:"tickSize"`
}
