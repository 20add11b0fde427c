package market

import (
	"strings"
	"sync/atomic"

	"github.com/rickgao/futures-stream/internal/model"
)

// SymbolPlaceholder marks where a symbol is substituted into a topic
// template. Templates without it get the symbol appended.
const SymbolPlaceholder = "{symbol}"

// ExpandTopic renders a topic template for one symbol.
//
//	ExpandTopic("/contractMarket/tickerV2:", "XBTUSDTM") // "/contractMarket/tickerV2:XBTUSDTM"
//	ExpandTopic("/contract/instrument:{symbol}", "XBTUSDTM")
func ExpandTopic(template, symbol string) string {
	if strings.Contains(template, SymbolPlaceholder) {
		return strings.ReplaceAll(template, SymbolPlaceholder, symbol)
	}
	return template + symbol
}

// BuildRequests returns one subscribe request per (topic, symbol) pair,
// topic-major: for [T1 T2] x [A B] the order is T1A, T1B, T2A, T2B.
// nextID is called once per request in emission order.
func BuildRequests(topics, symbols []string, nextID func() uint64) []model.SubscribeRequest {
	reqs := make([]model.SubscribeRequest, 0, len(topics)*len(symbols))
	for _, topic := range topics {
		for _, symbol := range symbols {
			reqs = append(reqs, model.NewSubscribeRequest(nextID(), ExpandTopic(topic, symbol)))
		}
	}
	return reqs
}

// IDSequence returns a goroutine-safe generator of increasing request IDs,
// the first being start.
func IDSequence(start uint64) func() uint64 {
	var n atomic.Uint64
	n.Store(start)
	return func() uint64 {
		return n.Add(1) - 1
	}
}
