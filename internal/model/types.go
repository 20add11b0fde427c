package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Inbound Types
// -----------------------------------------------------------------------------

// Tick is a best bid/offer update for one contract (tickerV2 payload).
type Tick struct {
	Symbol       string          // Contract symbol (e.g., "XBTUSDTM")
	Sequence     uint64          // Exchange sequence, local to one connection
	BestBidPrice decimal.Decimal // Best bid price
	BestBidSize  uint64          // Best bid size (lots)
	BestAskPrice decimal.Decimal // Best ask price
	BestAskSize  uint64          // Best ask size (lots)
	Timestamp    uint64          // Exchange timestamp (ns since epoch)
}

// Time returns the exchange timestamp as a time.Time.
func (t Tick) Time() time.Time {
	return time.Unix(0, int64(t.Timestamp))
}

// Spread returns BestAskPrice - BestBidPrice.
func (t Tick) Spread() decimal.Decimal {
	return t.BestAskPrice.Sub(t.BestBidPrice)
}

// Mid returns the midpoint between best bid and best ask.
func (t Tick) Mid() decimal.Decimal {
	return t.BestBidPrice.Add(t.BestAskPrice).Div(decimal.NewFromInt(2))
}

// ControlMessage is a generic {id, type} message from the exchange
// (welcome, ack, pong, error).
type ControlMessage struct {
	ID   string
	Type string
}

// Control message types.
const (
	ControlWelcome = "welcome"
	ControlAck     = "ack"
	ControlPong    = "pong"
	ControlError   = "error"
)

// IsWelcome reports whether the exchange is ready to accept subscriptions.
func (c ControlMessage) IsWelcome() bool {
	return c.Type == ControlWelcome
}

// -----------------------------------------------------------------------------
// Outbound Types
// -----------------------------------------------------------------------------

// SubscribeRequest is a client->server topic subscription.
type SubscribeRequest struct {
	ID             uint64 `json:"id"`
	Type           string `json:"type"` // always "subscribe"
	Topic          string `json:"topic"`
	PrivateChannel bool   `json:"privateChannel"`
	Response       bool   `json:"response"` // ask the server for an ack
}

// RequestTypeSubscribe is the Type of every SubscribeRequest.
const RequestTypeSubscribe = "subscribe"

// NewSubscribeRequest builds a public, acknowledged subscription for topic.
func NewSubscribeRequest(id uint64, topic string) SubscribeRequest {
	return SubscribeRequest{
		ID:             id,
		Type:           RequestTypeSubscribe,
		Topic:          topic,
		PrivateChannel: false,
		Response:       true,
	}
}
